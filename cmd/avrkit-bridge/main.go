// Avrkit-bridge mirrors a receiver's Audyssey settings onto MQTT.
//
// It polls one receiver over its HTTP control interface and publishes
// the settings as retained MQTT topics, while accepting writes on the
// matching set topics. This makes the receiver's room correction state
// available to home automation platforms without a vendor integration.
//
// Usage:
//
//	avrkit-bridge run --broker tcp://127.0.0.1:1883 --device 192.168.1.34
//
// See 'avrkit-bridge run --help' for available options.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/avrkit/internal/bridge"
	"github.com/muurk/avrkit/internal/logging"
	"github.com/muurk/avrkit/internal/receiver"
	"github.com/muurk/avrkit/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "avrkit-bridge",
	Short: "AV Receiver MQTT Bridge",
	Long: `Mirrors one receiver's Audyssey settings onto an MQTT broker.

State topics are retained under <prefix>/<receiver>/audyssey/ and the
matching /set topics accept the same labels for writes. An availability
topic doubles as the session's last will so integrations can tell a
silent receiver from a dead bridge.

Note: For one-off reads and writes, use the separate 'avrkit-cfg' utility.`,
	Version: version.Version,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

// Run command flags
var (
	brokerURL    string
	username     string
	password     string
	clientID     string
	topicPrefix  string
	pollInterval time.Duration
	deviceHost   string
	devicePort   int
	logLevel     string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the bridge",
	Long: `Connect to the broker and the receiver, then poll and mirror until
interrupted.

The receiver may be offline when the bridge starts; polls that time out
are skipped silently and the topics keep their last retained values.`,
	Example: `  # Local broker, receiver by address
  avrkit-bridge run --broker tcp://127.0.0.1:1883 --device 192.168.1.34

  # Authenticated broker with a custom topic prefix and faster polling
  avrkit-bridge run --broker tcp://broker.lan:1883 --username ha --password secret \
    --prefix home/av --interval 10s --device 192.168.1.34

  # Older model on the legacy control port
  avrkit-bridge run --broker tcp://127.0.0.1:1883 --device 192.168.1.34 --port 8080`,
	RunE: runBridge,
}

func init() {
	runCmd.Flags().StringVar(&brokerURL, "broker", "tcp://127.0.0.1:1883", "MQTT broker URL")
	runCmd.Flags().StringVar(&username, "username", "", "MQTT username")
	runCmd.Flags().StringVar(&password, "password", "", "MQTT password")
	runCmd.Flags().StringVar(&clientID, "client-id", "", "MQTT client ID (default avrkit-bridge-<hostname>)")
	runCmd.Flags().StringVar(&topicPrefix, "prefix", "avrkit", "Topic prefix")
	runCmd.Flags().DurationVar(&pollInterval, "interval", 30*time.Second, "Receiver poll interval")
	runCmd.Flags().StringVar(&deviceHost, "device", "", "Receiver host (required)")
	runCmd.Flags().IntVar(&devicePort, "port", receiver.DefaultPort, "Receiver HTTP port")
	runCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	runCmd.MarkFlagRequired("device")
}

func runBridge(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	client := receiver.NewClient(deviceHost, devicePort)

	config := &bridge.Config{
		Broker:      brokerURL,
		Username:    username,
		Password:    password,
		ClientID:    clientID,
		TopicPrefix: topicPrefix,
		Interval:    pollInterval,
	}

	b, err := bridge.New(config, client)
	if err != nil {
		return fmt.Errorf("failed to create bridge: %w", err)
	}

	return b.Start()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("avrkit-bridge %s (commit: %s)\n", version.Version, version.Commit)
	},
}
