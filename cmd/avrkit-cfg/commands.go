package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/muurk/avrkit/internal/audyssey"
	"github.com/muurk/avrkit/internal/config"
	"github.com/muurk/avrkit/internal/discovery"
	"github.com/muurk/avrkit/internal/receiver"
	"github.com/muurk/avrkit/internal/ui"
	"github.com/muurk/avrkit/internal/urls"
	"github.com/muurk/avrkit/internal/wizard/tui"
)

// Command flags
var (
	deviceRef    string
	devicePort   int
	timeoutSecs  int
	scanTimeout  int
	outputFormat string
	saveScan     bool
	retries      int

	setMultEQ      string
	setDynamicEQ   string
	setRefLevel    string
	setDynamicVol  string
	verifyAfterSet bool
)

func init() {
	// Common flags for receiver commands (persistent on root)
	rootCmd.PersistentFlags().StringVar(&deviceRef, "device", "", "Receiver host, registry nickname, or MAC (skips discovery)")
	rootCmd.PersistentFlags().IntVar(&devicePort, "port", 0, "Receiver HTTP port (0 = auto)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, compact, json)")
	rootCmd.PersistentFlags().IntVar(&timeoutSecs, "timeout", 5, "HTTP timeout in seconds")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(audysseyCmd)
	rootCmd.AddCommand(wizardCmd)
	rootCmd.AddCommand(registryCmd)
	rootCmd.AddCommand(docsCmd)
}

// scanCmd discovers receivers on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for AV receivers on the network",
	Long: `Scan for Denon and Marantz receivers using mDNS/DNS-SD discovery.

This command listens for HEOS service broadcasts and displays all
discovered receivers with their addresses, models, and metadata.`,
	Example: `  # Scan for 10 seconds (default)
  avrkit-cfg scan

  # Quick 3-second scan
  avrkit-cfg scan --scan-timeout 3

  # Scan and remember found receivers in the registry
  avrkit-cfg scan --save`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "scan-timeout", 10, "Scan timeout in seconds")
	scanCmd.Flags().BoolVar(&saveScan, "save", false, "Record discovered receivers in the registry")
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for receivers (timeout: %ds)...\n\n", scanTimeout)

	receivers, err := discovery.ScanForReceivers(time.Duration(scanTimeout) * time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(receivers) == 0 {
		fmt.Println("No receivers found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the receiver is powered on (not in low-power standby)")
		fmt.Println("  - Check that Network Control is enabled in the receiver's setup menu")
		fmt.Println("  - Verify your computer is on the same network segment")
		fmt.Println("  - Try increasing --scan-timeout for slower networks")
		fmt.Println("  - Use --device flag to specify the address manually")
		return nil
	}

	fmt.Printf("Found %d receiver(s):\n\n", len(receivers))

	for i, rc := range receivers {
		fmt.Printf("%d. %s\n", i+1, rc.Name)
		if rc.Model != "" {
			fmt.Printf("   Model:   %s\n", rc.Model)
		}
		fmt.Printf("   Address: %s:%d\n", rc.IP, rc.Port)
		if rc.MAC != "" {
			fmt.Printf("   MAC:     %s\n", rc.MAC)
		}
		fmt.Println()
	}

	if saveScan {
		if err := saveDiscovered(receivers); err != nil {
			return err
		}
		fmt.Println("Receivers recorded in the registry.")
		fmt.Println()
	}

	fmt.Println("Use 'avrkit-cfg status --device <host>' to view receiver state")
	fmt.Println("Use 'avrkit-cfg wizard' for interactive configuration")

	return nil
}

func saveDiscovered(receivers []*discovery.Receiver) error {
	reg, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	for _, rc := range receivers {
		if rc.MAC == "" {
			continue
		}
		entry := reg.EnsureReceiver(rc.MAC)
		if rc.Model != "" {
			entry.Model = rc.Model
		}
		if entry.Nickname == "" && rc.Name != "" {
			entry.Nickname = rc.Name
		}
		reg.UpdateReceiverLastSeen(rc.MAC, rc.IP, rc.Port)
	}
	if err := reg.Save(); err != nil {
		return fmt.Errorf("failed to save registry: %w", err)
	}
	return nil
}

// statusCmd displays receiver identification and current settings
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show receiver identification and Audyssey settings",
	Long: `Connect to a receiver, fetch its device information document, and
read the current Audyssey settings.`,
	Example: `  # Status with auto-discovery or registry default
  avrkit-cfg status

  # Status for a specific receiver
  avrkit-cfg status --device 192.168.1.34

  # Older model on the legacy control port
  avrkit-cfg status --device 192.168.1.34 --port 8080`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := resolveClient(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("Fetching status from %s:%d...\n\n", client.Host(), client.Port())

	info, err := client.FetchDeviceInfo()
	if err != nil {
		ui.NewPrinter(nil).PrintError("Could not reach the receiver", err, receiver.TroubleshootingLines(err))
		return fmt.Errorf("failed to fetch device info: %s", receiver.GetShortErrorMessage(err))
	}

	fmt.Printf("Model:         %s\n", info.Model())
	if info.MacAddress != "" {
		fmt.Printf("MAC:           %s\n", config.CanonicalMAC(info.MacAddress))
	}
	if info.DeviceZones > 0 {
		fmt.Printf("Zones:         %d\n", info.DeviceZones)
	}
	if info.UpgradeVersion != "" {
		fmt.Printf("Firmware:      %s\n", info.UpgradeVersion)
	}
	fmt.Println()

	settings := audyssey.NewSettings(client)
	if !settings.Update() {
		return fmt.Errorf("receiver at %s did not answer the Audyssey query", client.Host())
	}

	return printSettings(settings)
}

// audysseyCmd groups the settings read/write commands
var audysseyCmd = &cobra.Command{
	Use:   "audyssey",
	Short: "Read and write Audyssey room correction settings",
}

func init() {
	audysseyCmd.AddCommand(audysseyGetCmd)
	audysseyCmd.AddCommand(audysseySetCmd)
	audysseyCmd.AddCommand(audysseyOptionsCmd)
	audysseyCmd.AddCommand(presetCmd)
}

// audysseyGetCmd reads the current settings
var audysseyGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Read current Audyssey settings",
	Example: `  # Read settings with auto-discovery
  avrkit-cfg audyssey get

  # Read settings from a specific receiver, JSON output
  avrkit-cfg audyssey get --device 192.168.1.34 --format json`,
	RunE: runAudysseyGet,
}

func runAudysseyGet(cmd *cobra.Command, args []string) error {
	client, err := resolveClient(cmd)
	if err != nil {
		return err
	}

	settings := audyssey.NewSettings(client)
	if !settings.Update() {
		return fmt.Errorf("receiver at %s did not answer the Audyssey query", client.Host())
	}

	recordLastSettings(client, settings)
	return printSettings(settings)
}

// audysseySetCmd writes one or more settings
var audysseySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change Audyssey settings",
	Long: `Change one or more Audyssey settings. Labels are validated against
the receiver's option tables before any network traffic.

The reference level offset requires Dynamic EQ to be on; when both are
changed in one invocation Dynamic EQ is written first so the offset
write is accepted.`,
	Example: `  # Switch the EQ curve
  avrkit-cfg audyssey set --multeq Reference --device 192.168.1.34

  # Enable Dynamic EQ with a +5dB offset and verify the result
  avrkit-cfg audyssey set --dynamic-eq on --ref-level-offset +5dB --verify

  # Turn off Dynamic Volume
  avrkit-cfg audyssey set --dynamic-volume Off`,
	RunE: runAudysseySet,
}

func init() {
	audysseySetCmd.Flags().StringVar(&setMultEQ, "multeq", "", "MultEQ curve (Off, Flat, L/R Bypass, Reference)")
	audysseySetCmd.Flags().StringVar(&setDynamicEQ, "dynamic-eq", "", "Dynamic EQ switch (on, off)")
	audysseySetCmd.Flags().StringVar(&setRefLevel, "ref-level-offset", "", "Reference level offset (0dB, +5dB, +10dB, +15dB)")
	audysseySetCmd.Flags().StringVar(&setDynamicVol, "dynamic-volume", "", "Dynamic Volume (Off, Light, Medium, Heavy)")
	audysseySetCmd.Flags().BoolVar(&verifyAfterSet, "verify", false, "Re-read settings after applying and confirm they took")
	audysseySetCmd.Flags().IntVar(&retries, "retries", 3, "Number of verification retries")
}

func runAudysseySet(cmd *cobra.Command, args []string) error {
	if setMultEQ == "" && setDynamicEQ == "" && setRefLevel == "" && setDynamicVol == "" {
		return fmt.Errorf("nothing to change; pass at least one of --multeq, --dynamic-eq, --ref-level-offset, --dynamic-volume")
	}

	client, err := resolveClient(cmd)
	if err != nil {
		return err
	}

	settings := audyssey.NewSettings(client)
	if !settings.Update() {
		return fmt.Errorf("receiver at %s did not answer the Audyssey query", client.Host())
	}

	plan := audyssey.NewPlan(settings)
	if setDynamicEQ != "" {
		on, err := parseSwitch(setDynamicEQ)
		if err != nil {
			return fmt.Errorf("--dynamic-eq: %w", err)
		}
		plan.SetDynamicEQ(on)
	}
	if setMultEQ != "" {
		plan.SetMultiEQ(setMultEQ)
	}
	if setRefLevel != "" {
		plan.SetRefLevelOffset(setRefLevel)
	}
	if setDynamicVol != "" {
		plan.SetDynamicVolume(setDynamicVol)
	}

	return applyPlan(client, settings, plan)
}

// applyPlan validates a plan, applies its steps, and reports the result.
// Shared by the set and preset apply commands.
func applyPlan(client *receiver.Client, settings *audyssey.Settings, plan *audyssey.Plan) error {
	if err := plan.Validate(); err != nil {
		return err
	}

	steps, err := plan.Steps()
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		fmt.Println("Receiver already matches the requested settings; nothing to do.")
		return nil
	}

	printer := ui.NewPrinter(nil)
	printer.PrintHeader("Audyssey Settings", "avrkit-cfg audyssey set", map[string]string{
		"Receiver": fmt.Sprintf("%s:%d", client.Host(), client.Port()),
		"Changes":  fmt.Sprintf("%d", len(steps)),
	})

	// Writes that switch room correction off get the typed confirmation
	// gate; other flagged changes get a warning box but proceed.
	if disablesCorrection(steps) {
		if !ui.RoomCorrectionConfirmation(applyWarnings(settings, steps)) {
			return nil
		}
	} else if audyssey.WarnBeforeApply(settings, steps) != "" {
		details := map[string]string{}
		for i, warning := range applyWarnings(settings, steps) {
			details[fmt.Sprintf("Note %d", i+1)] = warning
		}
		printer.PrintWarning("Review these changes", details)
	}

	progress := ui.NewProgress("Applying changes", len(steps))
	names := make([]string, len(steps))
	for i, step := range steps {
		names[i] = fmt.Sprintf("%s → %s", audyssey.DisplayName(step.Parameter), step.Label)
	}
	progress.SetStepNames(names)

	for i, step := range steps {
		if !step.Apply(settings) {
			progress.FailStep(i+1, "rejected")
			fmt.Println(progress.Render())
			printer.PrintError(
				"Receiver rejected the change",
				fmt.Errorf("%s = %s was not accepted", audyssey.DisplayName(step.Parameter), step.Label),
				[]string{
					"Check that the setting is available on this model",
					"The reference level offset requires Dynamic EQ to be on",
					"Run 'avrkit-cfg audyssey options' for the accepted labels",
				},
			)
			return fmt.Errorf("receiver rejected %s = %s", audyssey.DisplayName(step.Parameter), step.Label)
		}
		progress.CompleteStep(i+1, "")
	}
	fmt.Println(progress.Render())

	details := map[string]string{}
	if verifyAfterSet {
		opts := audyssey.DefaultVerifyOptions()
		opts.MaxRetries = retries
		result := settings.VerifySteps(steps, opts)
		if !result.Success {
			printer.PrintError(
				"Settings did not verify",
				result.Error,
				result.Mismatches,
			)
			return fmt.Errorf("verification failed after %d attempt(s)", result.Attempts)
		}
		details["Verified"] = fmt.Sprintf("yes (%d attempt(s))", result.Attempts)
	} else {
		details["Verified"] = "no (--verify not set)"
	}

	printer.PrintSuccess("Settings applied", details)

	recordLastSettings(client, settings)
	return printSettings(settings)
}

// disablesCorrection reports whether any step turns MultEQ or Dynamic EQ
// off, the writes that bypass the stored calibration.
func disablesCorrection(steps []audyssey.Step) bool {
	for _, step := range steps {
		switch step.Parameter {
		case audyssey.ParamMultiEQ, audyssey.ParamDynamicEQ:
			if step.Label == "Off" {
				return true
			}
		}
	}
	return false
}

// applyWarnings extracts the per-change warning lines for the
// confirmation box.
func applyWarnings(settings *audyssey.Settings, steps []audyssey.Step) []string {
	msg := audyssey.WarnBeforeApply(settings, steps)
	warnings := make([]string, 0, 2)
	for _, line := range strings.Split(msg, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "⚠️") && !strings.Contains(line, "REVIEW THESE CHANGES") {
			warnings = append(warnings, strings.TrimSpace(strings.TrimPrefix(line, "⚠️")))
		}
	}
	if len(warnings) == 0 {
		warnings = append(warnings, "This write switches room correction off")
	}
	return warnings
}

// audysseyOptionsCmd lists the accepted labels per setting
var audysseyOptionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the accepted labels for each setting",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(audyssey.FormatOptionsTable())
	},
}

// wizardCmd launches the interactive TUI wizard
var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Launch interactive settings wizard",
	Long: `Launch an interactive TUI wizard for receiver configuration.

The wizard provides a user-friendly interface for:
- Discovering receivers on the network
- Viewing current Audyssey settings
- Editing settings with guided option cycling
- Applying changes with automatic verification

This is the recommended way to adjust settings for most users.`,
	Example: `  # Launch wizard with auto-discovery
  avrkit-cfg wizard
  # Or simply (wizard is default):
  avrkit-cfg

  # Launch wizard for a specific receiver
  avrkit-cfg wizard --device 192.168.1.34
  avrkit-cfg --device 192.168.1.34`,
	RunE: runWizard,
}

func runWizard(cmd *cobra.Command, args []string) error {
	var model tea.Model

	if deviceRef != "" {
		client, err := resolveClient(cmd)
		if err != nil {
			return err
		}

		// Verify the receiver answers before entering the TUI
		if err := client.Ping(); err != nil {
			ui.NewPrinter(nil).PrintError(
				fmt.Sprintf("Could not reach %s:%d", client.Host(), client.Port()),
				err,
				receiver.TroubleshootingLines(err),
			)
			return fmt.Errorf("failed to connect to receiver: %s", receiver.GetShortErrorMessage(err))
		}

		rc := &discovery.Receiver{
			IP:   client.Host(),
			Port: client.Port(),
			Name: client.Host(),
		}
		model = tui.NewAppModel(tui.ScreenDashboard, rc)
	} else {
		// Start with discovery screen (will auto-scan)
		model = tui.NewAppModel(tui.ScreenDiscovery, nil)
	}

	p := tea.NewProgram(model)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("wizard error: %w", err)
	}

	return nil
}

// docsCmd prints links to the protocol references
var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Print links to protocol and project documentation",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Documentation and protocol references:")
		fmt.Println()
		fmt.Printf("  Getting started:        %s\n", urls.GettingStarted)
		fmt.Printf("  AppCommand protocol:    %s\n", urls.AppCommandProtocol)
		fmt.Printf("  HEOS CLI protocol:      %s\n", urls.HEOSProtocol)
		fmt.Printf("  denonavr project:       %s\n", urls.DenonAVRProject)
		fmt.Printf("  Troubleshooting:        %s\n", urls.TroubleshootingGuide)
	},
}

// printSettings renders adapter state in the selected output format
func printSettings(s *audyssey.Settings) error {
	switch outputFormat {
	case "compact":
		fmt.Println(s.FormatCompact())
	case "json":
		data, err := json.MarshalIndent(settingsDocument(s), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
	case "detailed":
		fallthrough
	default:
		fmt.Println(s.FormatDetailed())
	}
	return nil
}

// settingsJSON is the scripting-friendly shape of the adapter state.
// Unknown values marshal as null, matching the adapter's nil fields.
type settingsJSON struct {
	MultEQ         *string `json:"multeq"`
	DynamicEQ      *bool   `json:"dynamic_eq"`
	RefLevelOffset *string `json:"ref_level_offset"`
	DynamicVolume  *string `json:"dynamic_volume"`
}

func settingsDocument(s *audyssey.Settings) settingsJSON {
	return settingsJSON{
		MultEQ:         s.MultiEQ,
		DynamicEQ:      s.DynamicEQ,
		RefLevelOffset: s.RefLevelOffset,
		DynamicVolume:  s.DynamicVolume,
	}
}

// parseSwitch maps the on/off spellings accepted on the command line
func parseSwitch(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid value %q (use on or off)", value)
}

// recordLastSettings stores the most recent read in the registry entry
// for the target receiver, when one exists. Registry problems are not
// worth failing a successful command over.
func recordLastSettings(client *receiver.Client, s *audyssey.Settings) {
	reg, err := config.LoadRegistry()
	if err != nil {
		return
	}
	mac := findRegistryKey(reg, client.Host())
	if mac == "" {
		return
	}
	reg.RecordSettings(mac, settingsMeta(s))
	_ = reg.Save()
}

// findRegistryKey locates the registry entry whose stored host matches
// the client, falling back to the --device reference.
func findRegistryKey(reg *config.Registry, host string) string {
	for mac, rc := range reg.Receivers {
		if rc.Host == host {
			return mac
		}
	}
	if deviceRef != "" {
		if mac, _, ok := reg.Resolve(deviceRef); ok {
			return mac
		}
	}
	return ""
}

func settingsMeta(s *audyssey.Settings) *config.SettingsMeta {
	meta := &config.SettingsMeta{}
	if s.MultiEQ != nil {
		meta.MultEQ = *s.MultiEQ
	}
	if s.DynamicEQ != nil {
		if *s.DynamicEQ {
			meta.DynamicEQ = "On"
		} else {
			meta.DynamicEQ = "Off"
		}
	}
	if s.RefLevelOffset != nil && *s.RefLevelOffset != audyssey.NotApplicable {
		meta.RefLevelOffset = *s.RefLevelOffset
	}
	if s.DynamicVolume != nil {
		meta.DynamicVolume = *s.DynamicVolume
	}
	return meta
}

// resolveClient turns the --device flag, registry default, or a
// single-receiver discovery into a connected client.
func resolveClient(cmd *cobra.Command) (*receiver.Client, error) {
	host, port, err := resolveTarget(cmd)
	if err != nil {
		return nil, err
	}

	client := receiver.NewClient(host, port)
	if timeoutSecs > 0 {
		client.SetTimeout(time.Duration(timeoutSecs) * time.Second)
	}
	return client, nil
}

func resolveTarget(cmd *cobra.Command) (string, int, error) {
	portChanged := cmd.Flags().Changed("port")

	pick := func(entryPort int) int {
		if portChanged && devicePort > 0 {
			return devicePort
		}
		if entryPort > 0 {
			return entryPort
		}
		return receiver.DefaultPort
	}

	reg, regErr := config.LoadRegistry()

	// Explicit --device: registry nickname or MAC first, then raw host
	if deviceRef != "" {
		if regErr == nil {
			if _, entry, ok := reg.Resolve(deviceRef); ok && entry.Host != "" {
				return entry.Host, pick(entry.Port), nil
			}
		}
		return deviceRef, pick(0), nil
	}

	// Registry default receiver
	if regErr == nil {
		if _, entry, ok := reg.DefaultReceiver(); ok && entry.Host != "" {
			fmt.Printf("Using default receiver %s (%s)\n\n", entry.Nickname, entry.Host)
			return entry.Host, pick(entry.Port), nil
		}
	}

	// Discovery as a last resort; only an unambiguous single hit is used
	fmt.Println("No receiver specified, attempting auto-discovery...")
	receivers, err := discovery.ScanForReceivers(5 * time.Second)
	if err != nil {
		return "", 0, fmt.Errorf("discovery failed: %w", err)
	}

	if len(receivers) == 0 {
		return "", 0, fmt.Errorf("no receivers found; use --device to specify the address manually")
	}

	if len(receivers) > 1 {
		fmt.Printf("Found %d receivers:\n", len(receivers))
		for i, rc := range receivers {
			fmt.Printf("%d. %s (%s)\n", i+1, rc.Name, rc.IP)
		}
		return "", 0, fmt.Errorf("multiple receivers found; use --device to specify which one")
	}

	rc := receivers[0]
	fmt.Printf("Found receiver: %s (%s)\n\n", rc.Name, rc.IP)
	return rc.IP, pick(rc.Port), nil
}
