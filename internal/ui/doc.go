// Package ui provides terminal UI components for the avrkit CLIs.
//
// This package uses Bubble Tea and Lipgloss to render polished terminal output
// for receiver commands. Unlike the interactive TUI wizard, these components
// follow a "run once and exit" pattern - they render output compellingly but
// don't require user interaction.
//
// # Architecture
//
// The UI package provides four main component types:
//
//   - Header: Command banner showing operation name and parameters
//   - Progress: Progress bar with step list showing real-time status
//   - Result: Success/failure boxes with styled information
//   - Printer: Orchestrator that writes headers, results, and payload boxes
//
// # Usage Pattern
//
// Commands use this package by:
//
//  1. Creating a Printer (or rendering components directly)
//  2. Printing a header with command metadata
//  3. Reporting progress via a Progress display or step callback
//  4. Printing a success or failure box with the outcome
//
// Example:
//
//	p := ui.NewPrinter(os.Stdout)
//	p.PrintHeader("AUDYSSEY SETTINGS", "avrkit-cfg audyssey set", map[string]string{
//	    "Receiver": "192.168.1.34:8080",
//	})
//	// ... apply settings ...
//	p.PrintSuccess("Audyssey settings applied", map[string]string{
//	    "MultEQ":     "Reference",
//	    "Dynamic EQ": "On",
//	})
//
// # Logging Integration
//
// This package expects logging to be controlled via the AVRKIT_LOG_LEVEL
// environment variable. When unset or empty, zap logging is silent, allowing
// the curated UI output to be displayed cleanly. Set AVRKIT_LOG_LEVEL to
// "debug", "info", "warn", or "error" to enable logging output.
//
// # Verbose Mode
//
// When --verbose is passed to commands, the payload box displays the raw XML
// exchanged with the receiver after the result. This is useful for debugging
// and seeing exactly which AppCommand requests were sent.
package ui
