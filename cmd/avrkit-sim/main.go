// Avrkit-sim is a Denon/Marantz AV receiver simulator.
//
// It serves the receiver's HTTP control surface (the AppCommand0300
// settings endpoint and the Deviceinfo document) backed by in-memory
// Audyssey state, plus a WebSocket feed broadcasting every handled
// command for protocol debugging. Useful for developing against the
// protocol without a receiver on the bench.
//
// Usage:
//
//	avrkit-sim serve [flags]
//
// See 'avrkit-sim serve --help' for available options.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/avrkit/internal/server"
	"github.com/muurk/avrkit/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "avrkit-sim",
	Short: "AV Receiver Simulator",
	Long: `A standalone simulator of the Denon/Marantz HTTP control protocol.

The simulator answers GetAudyssey and SetAudyssey commands from in-memory
state, enforcing the same rules as real firmware (valid codes only, and
no reference level offset writes while Dynamic EQ is off). Every handled
command is broadcast on a WebSocket feed for inspection.

Note: For talking to real receivers, use the separate 'avrkit-cfg' utility.`,
	Version: version.Version,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command flags
var (
	host         string
	port         int
	tlsPort      int
	modelName    string
	friendlyName string
	logLevel     string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the receiver simulator",
	Long: `Start the receiver simulator and serve the control endpoints.

The simulator listens on the HEOS-era control port by default. An HTTPS
listener with a self-signed certificate can be enabled with --tls-port
to mirror receivers that also expose the API over TLS.`,
	Example: `  # Start with defaults (port 8080)
  avrkit-sim serve

  # Pretend to be an older model on the legacy port
  avrkit-sim serve --port 80 --model AVR-X2200W

  # Enable the HTTPS listener and debug logging
  avrkit-sim serve --tls-port 10443 --log-level debug`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&host, "host", "", "Interface to bind (empty = all interfaces)")
	serveCmd.Flags().IntVar(&port, "port", 8080, "HTTP control port")
	serveCmd.Flags().IntVar(&tlsPort, "tls-port", 0, "HTTPS port with a self-signed certificate (0 = disabled)")
	serveCmd.Flags().StringVar(&modelName, "model", "", "Model name served in the device info document")
	serveCmd.Flags().StringVar(&friendlyName, "friendly-name", "", "Friendly name served in the device info document")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func runServe(cmd *cobra.Command, args []string) error {
	config := &server.Config{
		Host:         host,
		Port:         port,
		TLSPort:      tlsPort,
		ModelName:    modelName,
		FriendlyName: friendlyName,
		LogLevel:     logLevel,
	}

	srv, err := server.New(config)
	if err != nil {
		return fmt.Errorf("failed to create simulator: %w", err)
	}

	return srv.Start()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("avrkit-sim %s (commit: %s)\n", version.Version, version.Commit)
	},
}
