package ui

import (
	"fmt"
	"sort"
	"strings"
)

// ResultType indicates success, failure, or warning
type ResultType int

const (
	ResultSuccess ResultType = iota
	ResultFailure
	ResultWarning
)

// Result is the outcome box printed at the end of a CLI command.
type Result struct {
	Type            ResultType        // Success, failure, or warning
	Title           string            // e.g., "Audyssey settings applied"
	Details         map[string]string // Key-value details to display
	Error           error             // Error (for failure results)
	Troubleshooting []string          // Troubleshooting tips (for failure results)
	Width           int               // Terminal width
}

// NewSuccessResult creates a success result box
func NewSuccessResult(title string, details map[string]string) *Result {
	return &Result{
		Type:    ResultSuccess,
		Title:   title,
		Details: details,
		Width:   GetTerminalWidth(),
	}
}

// NewFailureResult creates a failure result box
func NewFailureResult(title string, err error, troubleshooting []string) *Result {
	return &Result{
		Type:            ResultFailure,
		Title:           title,
		Error:           err,
		Troubleshooting: troubleshooting,
		Width:           GetTerminalWidth(),
	}
}

// NewWarningResult creates a warning result box
func NewWarningResult(title string, details map[string]string) *Result {
	return &Result{
		Type:    ResultWarning,
		Title:   title,
		Details: details,
		Width:   GetTerminalWidth(),
	}
}

// SetWidth sets the terminal width for responsive rendering
func (r *Result) SetWidth(width int) *Result {
	r.Width = width
	return r
}

// AddDetail adds a detail key-value pair
func (r *Result) AddDetail(key, value string) *Result {
	if r.Details == nil {
		r.Details = make(map[string]string)
	}
	r.Details[key] = value
	return r
}

// Render returns the styled result box as a string
func (r *Result) Render() string {
	width := r.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	switch r.Type {
	case ResultFailure:
		return r.renderFailure(width)
	case ResultWarning:
		return r.renderWarning(width)
	default:
		return r.renderSuccess(width)
	}
}

func (r *Result) renderSuccess(width int) string {
	lines := []string{
		SuccessTitleStyle.Render(fmt.Sprintf("   %s  SUCCESS  ─  %s", SuccessMarker, r.Title)),
	}
	lines = append(lines, r.detailLines()...)
	return SuccessBoxStyle(width).Render(strings.Join(lines, "\n"))
}

func (r *Result) renderFailure(width int) string {
	lines := []string{
		ErrorTitleStyle.Render(fmt.Sprintf("   %s  FAILED  ─  %s", FailureMarker, r.Title)),
	}

	if r.Error != nil {
		lines = append(lines, "")
		lines = append(lines, ErrorMessageStyle.Render("   Error: "+r.Error.Error()))
	}

	if len(r.Troubleshooting) > 0 {
		lines = append(lines, "")
		lines = append(lines, r.renderTroubleshootingBox(width))
	}

	return ErrorBoxStyle(width).Render(strings.Join(lines, "\n"))
}

func (r *Result) renderWarning(width int) string {
	lines := []string{
		WarningTitleStyle.Render(fmt.Sprintf("   ⚠  WARNING  ─  %s", r.Title)),
	}
	lines = append(lines, r.detailLines()...)
	return WarningBoxStyle(width).Render(strings.Join(lines, "\n"))
}

// detailLines renders the detail pairs in stable key order
func (r *Result) detailLines() []string {
	if len(r.Details) == 0 {
		return nil
	}

	keys := make([]string, 0, len(r.Details))
	for key := range r.Details {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys)+1)
	lines = append(lines, "")
	for _, key := range keys {
		keyStyled := ResultKeyStyle.Render(fmt.Sprintf("   %s:", key))
		valueStyled := ResultValueStyle.Render(r.Details[key])
		lines = append(lines, keyStyled+" "+valueStyled)
	}
	return lines
}

// renderTroubleshootingBox renders the inner troubleshooting box
func (r *Result) renderTroubleshootingBox(width int) string {
	lines := []string{
		TroubleshootingTitleStyle.Render("Troubleshooting:"),
		"",
	}
	for _, tip := range r.Troubleshooting {
		lines = append(lines, TroubleshootingItemStyle.Render("  • "+tip))
	}
	return TroubleshootingBoxStyle(width).Render(strings.Join(lines, "\n"))
}

// String implements fmt.Stringer
func (r *Result) String() string {
	return r.Render()
}
