//go:build ignore

// Replay-appcommand runs captured AppCommand XML documents through the
// codec and reports what decodes. Useful for checking the parser against
// responses captured from firmware versions not on the bench.
//
// Captures are plain XML files, one document per file, e.g. saved with:
//
//	curl -s -d @get-audyssey.xml http://192.168.1.34:8080/goform/AppCommand0300.xml > capture-x4500h.xml
//
// Usage:
//
//	go run tools/replay-appcommand.go <directory-or-file>
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/muurk/avrkit/internal/appcommand"
)

// Statistics tracks parsing results across all processed files
type Statistics struct {
	TotalFiles   int
	ParseSuccess int
	ParseFailure int
	ParamNames   map[string]int
	Failed       []FailedFile
}

// FailedFile stores information about parsing failures
type FailedFile struct {
	File  string
	Error string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: replay-appcommand <directory-or-file>")
		fmt.Println("Example: replay-appcommand captures/")
		fmt.Println("         replay-appcommand capture-x4500h.xml")
		os.Exit(1)
	}

	path := os.Args[1]

	stats := Statistics{
		ParamNames: make(map[string]int),
	}

	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Error accessing path: %v\n", err)
		os.Exit(1)
	}

	var files []string
	if info.IsDir() {
		pattern := filepath.Join(path, "*.xml")
		files, err = filepath.Glob(pattern)
		if err != nil {
			fmt.Printf("Error finding XML files: %v\n", err)
			os.Exit(1)
		}
		if len(files) == 0 {
			fmt.Printf("No XML files found in %s\n", path)
			os.Exit(1)
		}
	} else {
		files = []string{path}
	}

	fmt.Printf("=== AppCommand Replay ===\n")
	fmt.Printf("Files to process: %d\n\n", len(files))

	for _, file := range files {
		processFile(file, &stats)
	}

	printStatistics(&stats)
}

func processFile(filename string, stats *Statistics) {
	stats.TotalFiles++

	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Printf("Error reading file %s: %v\n", filename, err)
		return
	}

	resp, err := appcommand.Parse(data)
	if err != nil {
		stats.ParseFailure++
		stats.Failed = append(stats.Failed, FailedFile{
			File:  filename,
			Error: err.Error(),
		})
		return
	}

	stats.ParseSuccess++

	fmt.Printf("--- %s\n", filename)
	if resp.OK() {
		fmt.Println("  type: acknowledgement (cmd OK)")
		return
	}
	if !resp.HasParamList() {
		fmt.Println("  type: no cmd/list node")
		return
	}

	params := resp.Params()
	fmt.Printf("  type: parameter list (%d entries)\n", len(params))
	for _, p := range params {
		stats.ParamNames[p.Name]++
		line := fmt.Sprintf("    %-14s = %q", p.Name, p.Value)
		if flag, present := p.ControlFlag(); present {
			line += fmt.Sprintf("  control=%v", flag)
		}
		fmt.Println(line)
	}
}

func printStatistics(stats *Statistics) {
	fmt.Println()
	fmt.Println("=== Results ===")
	fmt.Printf("Files:          %d\n", stats.TotalFiles)
	fmt.Printf("Parse success:  %d\n", stats.ParseSuccess)
	fmt.Printf("Parse failure:  %d\n", stats.ParseFailure)

	if len(stats.ParamNames) > 0 {
		fmt.Println("\nParameter names seen:")
		for name, count := range stats.ParamNames {
			fmt.Printf("  %-14s %d\n", name, count)
		}
	}

	if len(stats.Failed) > 0 {
		fmt.Println("\nFailures:")
		for _, f := range stats.Failed {
			fmt.Printf("  %s: %s\n", f.File, f.Error)
		}
	}

	if stats.ParseFailure == 0 {
		fmt.Println("\nAll captures decoded.")
	} else {
		fmt.Printf("\n%d capture(s) did not decode; attach them to a parser issue.\n", stats.ParseFailure)
	}
}
