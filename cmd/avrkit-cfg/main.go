// Avrkit-cfg is a configuration utility for Denon and Marantz network
// AV receivers.
//
// It provides receiver discovery, an interactive settings wizard, and
// direct commands for reading and writing Audyssey room correction
// settings over the receiver's HTTP control interface.
//
// Usage:
//
//	avrkit-cfg [command] [flags]
//
// Running without arguments launches the interactive wizard.
// See 'avrkit-cfg --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/avrkit/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "avrkit-cfg",
	Short: "AV Receiver Audyssey Configuration Utility",
	Long: `A standalone utility for configuring Denon and Marantz AV receivers.

Provides receiver discovery, an interactive settings wizard, and direct
commands for reading and writing Audyssey room correction settings
(MultEQ curve, Dynamic EQ, Reference Level Offset, Dynamic Volume).

If no command is specified, the interactive wizard will launch automatically.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run wizard when no subcommand provided
		return runWizard(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("avrkit-cfg %s (commit: %s)\n", version.Version, version.Commit)
	},
}
