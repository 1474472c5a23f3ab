package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/avrkit/internal/audyssey"
	"github.com/muurk/avrkit/internal/config"
	"github.com/muurk/avrkit/internal/ui"
)

// Registry command flags
var (
	addNickname string
	addPort     int
)

// registryCmd groups the receiver registry commands
var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Manage the local receiver registry",
	Long: `Manage the local registry of known receivers.

The registry stores nicknames, last known addresses, and saved Audyssey
presets per receiver, keyed by MAC address. 'scan --save' populates it
automatically; these commands edit it directly.`,
}

func init() {
	registryCmd.AddCommand(registryListCmd)
	registryCmd.AddCommand(registryAddCmd)
	registryCmd.AddCommand(registryRemoveCmd)
	registryCmd.AddCommand(registryDefaultCmd)

	registryAddCmd.Flags().StringVar(&addNickname, "nickname", "", "Friendly name for the receiver")
	registryAddCmd.Flags().IntVar(&addPort, "control-port", 0, "Control port (0 = default)")
}

var registryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered receivers",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := config.LoadRegistry()
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}

		if len(reg.Receivers) == 0 {
			path, _ := config.GetConfigPath()
			fmt.Println("No receivers registered.")
			fmt.Printf("\nRun 'avrkit-cfg scan --save' to populate %s\n", path)
			return nil
		}

		defaultMAC := ""
		if reg.Preferences != nil {
			defaultMAC = config.CanonicalMAC(reg.Preferences.DefaultReceiver)
		}

		macs := make([]string, 0, len(reg.Receivers))
		for mac := range reg.Receivers {
			macs = append(macs, mac)
		}
		sort.Strings(macs)

		for _, mac := range macs {
			entry := reg.Receivers[mac]
			marker := " "
			if mac == defaultMAC {
				marker = "*"
			}
			name := entry.Nickname
			if name == "" {
				name = "(unnamed)"
			}
			fmt.Printf("%s %s  %s\n", marker, mac, name)
			if entry.Host != "" {
				port := entry.Port
				if port == 0 {
					port = 80
				}
				fmt.Printf("    Address:   %s:%d\n", entry.Host, port)
			}
			if entry.Model != "" {
				fmt.Printf("    Model:     %s\n", entry.Model)
			}
			if !entry.LastSeen.IsZero() {
				fmt.Printf("    Last seen: %s\n", entry.LastSeen.Format("2006-01-02 15:04"))
			}
			if names := entry.PresetNames(); len(names) > 0 {
				fmt.Printf("    Presets:   %s\n", strings.Join(names, ", "))
			}
			fmt.Println()
		}

		if defaultMAC != "" {
			fmt.Println("* = default receiver")
		}
		return nil
	},
}

var registryAddCmd = &cobra.Command{
	Use:   "add <mac> <host>",
	Short: "Add or update a receiver entry",
	Example: `  # Register a receiver by MAC and address
  avrkit-cfg registry add 00:05:CD:12:34:56 192.168.1.34 --nickname "Living Room"

  # Older model on the legacy control port
  avrkit-cfg registry add 00:05:CD:12:34:56 192.168.1.34 --control-port 8080`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := config.LoadRegistry()
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}

		mac := config.CanonicalMAC(args[0])
		entry := reg.EnsureReceiver(mac)
		entry.Host = args[1]
		if addPort > 0 {
			entry.Port = addPort
		}
		if addNickname != "" {
			entry.Nickname = addNickname
		}

		if err := reg.Save(); err != nil {
			return fmt.Errorf("failed to save registry: %w", err)
		}

		fmt.Printf("Registered %s (%s)\n", mac, entry.Host)
		return nil
	},
}

var registryRemoveCmd = &cobra.Command{
	Use:   "remove <mac-or-nickname>",
	Short: "Remove a receiver entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := config.LoadRegistry()
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}

		mac, entry, ok := reg.Resolve(args[0])
		if !ok {
			return fmt.Errorf("no receiver matching %q in registry", args[0])
		}

		name := entry.Nickname
		if name == "" {
			name = mac
		}
		if !ui.Confirm(fmt.Sprintf("Remove %s and its saved presets?", name)) {
			fmt.Println("Cancelled.")
			return nil
		}

		reg.RemoveReceiver(mac)
		if err := reg.Save(); err != nil {
			return fmt.Errorf("failed to save registry: %w", err)
		}

		fmt.Printf("Removed %s\n", name)
		return nil
	},
}

var registryDefaultCmd = &cobra.Command{
	Use:   "default <mac-or-nickname>",
	Short: "Set the default receiver",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := config.LoadRegistry()
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}

		if err := reg.SetDefaultReceiver(args[0]); err != nil {
			return err
		}
		if err := reg.Save(); err != nil {
			return fmt.Errorf("failed to save registry: %w", err)
		}

		_, entry, _ := reg.DefaultReceiver()
		name := entry.Nickname
		if name == "" {
			name = args[0]
		}
		fmt.Printf("Default receiver set to %s\n", name)
		return nil
	},
}

// presetCmd groups the Audyssey preset commands
var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Save and apply named settings presets",
	Long: `Save the current Audyssey settings under a name, or apply a saved
preset. Presets are stored per receiver in the registry; the builtin
presets (` + strings.Join(config.BuiltinPresetNames(), ", ") + `) are always available.`,
}

func init() {
	presetCmd.AddCommand(presetListCmd)
	presetCmd.AddCommand(presetSaveCmd)
	presetCmd.AddCommand(presetApplyCmd)

	presetApplyCmd.Flags().BoolVar(&verifyAfterSet, "verify", false, "Re-read settings after applying and confirm they took")
	presetApplyCmd.Flags().IntVar(&retries, "retries", 3, "Number of verification retries")
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Builtin presets:")
		for _, name := range config.BuiltinPresetNames() {
			fmt.Printf("  %-10s %s\n", name, presetSummary(config.BuiltinPresets[name]))
		}

		reg, err := config.LoadRegistry()
		if err != nil {
			return nil
		}
		for mac, entry := range reg.Receivers {
			names := entry.PresetNames()
			if len(names) == 0 {
				continue
			}
			label := entry.Nickname
			if label == "" {
				label = mac
			}
			fmt.Printf("\nPresets for %s:\n", label)
			for _, name := range names {
				fmt.Printf("  %-10s %s\n", name, presetSummary(entry.Presets[strings.ToLower(name)]))
			}
		}
		return nil
	},
}

var presetSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save the current settings as a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := resolveClient(cmd)
		if err != nil {
			return err
		}

		settings := audyssey.NewSettings(client)
		if !settings.Update() {
			return fmt.Errorf("receiver at %s did not answer the Audyssey query", client.Host())
		}

		reg, err := config.LoadRegistry()
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		mac := findRegistryKey(reg, client.Host())
		if mac == "" {
			return fmt.Errorf("receiver %s is not in the registry; run 'avrkit-cfg scan --save' first", client.Host())
		}

		reg.SavePreset(mac, args[0], settingsMeta(settings))
		if err := reg.Save(); err != nil {
			return fmt.Errorf("failed to save registry: %w", err)
		}

		fmt.Printf("Saved preset %q for %s\n", args[0], client.Host())
		return nil
	},
}

var presetApplyCmd = &cobra.Command{
	Use:   "apply <name>",
	Short: "Apply a saved or builtin preset",
	Example: `  # Apply the builtin night preset
  avrkit-cfg preset apply night --device 192.168.1.34

  # Apply a saved preset with verification
  avrkit-cfg preset apply movie --verify`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := resolveClient(cmd)
		if err != nil {
			return err
		}

		meta, err := lookupPreset(client.Host(), args[0])
		if err != nil {
			return err
		}

		settings := audyssey.NewSettings(client)
		if !settings.Update() {
			return fmt.Errorf("receiver at %s did not answer the Audyssey query", client.Host())
		}

		plan := audyssey.NewPlan(settings)
		if meta.DynamicEQ != "" {
			plan.SetDynamicEQ(strings.EqualFold(meta.DynamicEQ, "On"))
		}
		if meta.MultEQ != "" {
			plan.SetMultiEQ(meta.MultEQ)
		}
		if meta.RefLevelOffset != "" {
			plan.SetRefLevelOffset(meta.RefLevelOffset)
		}
		if meta.DynamicVolume != "" {
			plan.SetDynamicVolume(meta.DynamicVolume)
		}

		return applyPlan(client, settings, plan)
	},
}

// lookupPreset checks the target receiver's saved presets first, then
// the builtins.
func lookupPreset(host, name string) (*config.SettingsMeta, error) {
	if reg, err := config.LoadRegistry(); err == nil {
		if mac := findRegistryKey(reg, host); mac != "" {
			if meta, ok := reg.LookupPreset(mac, name); ok {
				return meta, nil
			}
		}
	}
	if meta, ok := config.BuiltinPresets[strings.ToLower(name)]; ok {
		return meta.Clone(), nil
	}
	return nil, fmt.Errorf("no preset named %q (builtins: %s)", name, strings.Join(config.BuiltinPresetNames(), ", "))
}

func presetSummary(meta *config.SettingsMeta) string {
	if meta.IsZero() {
		return "(empty)"
	}
	parts := make([]string, 0, 4)
	if meta.MultEQ != "" {
		parts = append(parts, "MultEQ "+meta.MultEQ)
	}
	if meta.DynamicEQ != "" {
		parts = append(parts, "Dynamic EQ "+meta.DynamicEQ)
	}
	if meta.RefLevelOffset != "" {
		parts = append(parts, "Offset "+meta.RefLevelOffset)
	}
	if meta.DynamicVolume != "" {
		parts = append(parts, "Dynamic Volume "+meta.DynamicVolume)
	}
	return strings.Join(parts, ", ")
}
