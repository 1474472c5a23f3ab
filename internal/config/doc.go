// Package config provides user configuration management for the avrkit project.
//
// This package manages a YAML-based configuration file that stores user-defined
// metadata for Denon and Marantz AV receivers, such as nicknames, last known
// addresses, and saved Audyssey presets. The configuration follows OS-specific
// conventions for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/avrkit/receivers.yaml or $HOME/.config/avrkit/receivers.yaml
//   - macOS: $HOME/.config/avrkit/receivers.yaml
//   - Windows: %LOCALAPPDATA%\avrkit\receivers.yaml
//
// # Presets
//
// A preset is a named Audyssey configuration. Builtin presets ("movie",
// "music", "night", "direct") work with every receiver; presets saved for a
// specific receiver shadow builtins of the same name. Preset names are
// case-insensitive. All stored values are the labels the receiver reports
// ("Reference", "+5dB"), never wire codes, so the file can be edited by hand.
//
// # Usage Example
//
//	// Load the global registry
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Add or update receiver metadata
//	registry.SetReceiverNickname("00:05:CD:12:34:56", "Living Room")
//	registry.SavePreset("00:05:CD:12:34:56", "late movie", &config.SettingsMeta{
//	    MultEQ:        "Reference",
//	    DynamicEQ:     "On",
//	    DynamicVolume: "Medium",
//	})
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
