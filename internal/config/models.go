package config

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Registry represents the entire user configuration file.
// This stores user-defined metadata for receivers and application preferences.
type Registry struct {
	Version     int                  `yaml:"version"`
	Receivers   map[string]*Receiver `yaml:"receivers,omitempty"` // Keyed by MAC address
	Preferences *Preferences         `yaml:"preferences,omitempty"`
}

// Receiver represents user-defined metadata for a single AV receiver.
// This is keyed by the receiver's MAC address in the Registry.
type Receiver struct {
	Nickname     string                   `yaml:"nickname,omitempty"`      // User-friendly name
	Host         string                   `yaml:"host,omitempty"`          // Last known IP address or hostname
	Port         int                      `yaml:"port,omitempty"`          // HTTP port (80 on most models, 8080 on 2016+ ones)
	Model        string                   `yaml:"model,omitempty"`         // Model name reported by the receiver
	Zones        int                      `yaml:"zones,omitempty"`         // Zone count reported by the receiver
	Notes        string                   `yaml:"notes,omitempty"`         // Free-form user notes
	LastSeen     time.Time                `yaml:"last_seen,omitempty"`     // Last discovery/connection time
	LastSettings *SettingsMeta            `yaml:"last_settings,omitempty"` // Audyssey settings from the most recent read
	Presets      map[string]*SettingsMeta `yaml:"presets,omitempty"`       // Saved Audyssey presets (keyed by lower-case name)
}

// SettingsMeta is a stored Audyssey configuration. Fields hold the
// human-readable labels the receiver reports ("Reference", "+5dB") rather
// than wire codes, so the file stays hand-editable. An empty field means
// "not specified" and is skipped when the preset is applied.
type SettingsMeta struct {
	MultEQ         string `yaml:"multeq,omitempty"`
	DynamicEQ      string `yaml:"dynamic_eq,omitempty"` // "On" or "Off"
	RefLevelOffset string `yaml:"ref_level_offset,omitempty"`
	DynamicVolume  string `yaml:"dynamic_volume,omitempty"`
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	AutoDiscover    bool   `yaml:"auto_discover"`              // Enable automatic mDNS discovery on startup
	DiscoverTimeout int    `yaml:"discover_timeout"`           // mDNS discovery timeout in seconds
	DefaultPort     int    `yaml:"default_port,omitempty"`     // Port to try when a receiver entry has none
	DefaultReceiver string `yaml:"default_receiver,omitempty"` // MAC of the receiver commands target by default
	OutputFormat    string `yaml:"output_format,omitempty"`    // Preferred CLI output format ("text" or "json")
}

// Clone returns a copy of the settings, or nil for nil settings.
func (m *SettingsMeta) Clone() *SettingsMeta {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

// IsZero reports whether no field is set.
func (m *SettingsMeta) IsZero() bool {
	return m == nil || *m == (SettingsMeta{})
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:   1,
		Receivers: make(map[string]*Receiver),
		Preferences: &Preferences{
			AutoDiscover:    true,
			DiscoverTimeout: 10,
			DefaultPort:     80,
		},
	}
}

// CanonicalMAC normalizes a MAC address to upper-case colon-separated form
// ("00:05:CD:12:34:56"). mDNS discovery and the Deviceinfo endpoint report
// MACs in different shapes, and the registry needs one stable key for both.
// Input that does not look like a MAC is returned upper-cased unchanged.
func CanonicalMAC(mac string) string {
	hex := strings.ToUpper(strings.Map(func(r rune) rune {
		switch r {
		case ':', '-', '.', ' ':
			return -1
		}
		return r
	}, mac))
	if len(hex) != 12 {
		return strings.ToUpper(strings.TrimSpace(mac))
	}
	parts := make([]string, 0, 6)
	for i := 0; i < 12; i += 2 {
		parts = append(parts, hex[i:i+2])
	}
	return strings.Join(parts, ":")
}

// GetReceiver retrieves receiver metadata by MAC address.
// Returns nil if the receiver doesn't exist in the registry.
func (r *Registry) GetReceiver(mac string) *Receiver {
	return r.Receivers[CanonicalMAC(mac)]
}

// EnsureReceiver ensures a receiver entry exists in the registry.
// If the receiver doesn't exist, creates a new entry with default values.
// Returns the receiver entry (existing or newly created).
func (r *Registry) EnsureReceiver(mac string) *Receiver {
	if r.Receivers == nil {
		r.Receivers = make(map[string]*Receiver)
	}

	key := CanonicalMAC(mac)
	if rc, exists := r.Receivers[key]; exists {
		return rc
	}

	// Create new receiver entry
	rc := &Receiver{
		Presets: make(map[string]*SettingsMeta),
	}
	r.Receivers[key] = rc
	return rc
}

// UpdateReceiverLastSeen updates the last seen timestamp and address for a
// receiver. A port of zero keeps the previously recorded port.
func (r *Registry) UpdateReceiverLastSeen(mac, host string, port int) {
	rc := r.EnsureReceiver(mac)
	rc.LastSeen = time.Now()
	rc.Host = host
	if port > 0 {
		rc.Port = port
	}
}

// SetReceiverNickname sets a user-friendly nickname for a receiver.
func (r *Registry) SetReceiverNickname(mac, nickname string) {
	rc := r.EnsureReceiver(mac)
	rc.Nickname = nickname
}

// RecordSettings stores the most recently read Audyssey settings for a
// receiver. The stored copy is independent of the caller's value.
func (r *Registry) RecordSettings(mac string, meta *SettingsMeta) {
	rc := r.EnsureReceiver(mac)
	rc.LastSettings = meta.Clone()
}

// presetKey normalizes a preset name for storage and lookup.
// Preset names are case-insensitive.
func presetKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SavePreset stores a named Audyssey preset for a receiver.
func (r *Registry) SavePreset(mac, name string, meta *SettingsMeta) {
	rc := r.EnsureReceiver(mac)
	if rc.Presets == nil {
		rc.Presets = make(map[string]*SettingsMeta)
	}
	rc.Presets[presetKey(name)] = meta.Clone()
}

// DeletePreset removes a named preset from a receiver.
// Returns true if the preset existed. Builtin presets cannot be deleted.
func (r *Registry) DeletePreset(mac, name string) bool {
	rc := r.GetReceiver(mac)
	if rc == nil || rc.Presets == nil {
		return false
	}
	key := presetKey(name)
	if _, exists := rc.Presets[key]; !exists {
		return false
	}
	delete(rc.Presets, key)
	return true
}

// LookupPreset resolves a preset name for a receiver. Receiver-specific
// presets shadow the builtin ones. The returned settings are a copy.
func (r *Registry) LookupPreset(mac, name string) (*SettingsMeta, bool) {
	key := presetKey(name)
	if rc := r.GetReceiver(mac); rc != nil {
		if meta, exists := rc.Presets[key]; exists {
			return meta.Clone(), true
		}
	}
	if meta, exists := BuiltinPresets[key]; exists {
		return meta.Clone(), true
	}
	return nil, false
}

// RemoveReceiver deletes a receiver entry by MAC address.
// Returns true if the entry existed. A default pointing at the removed
// receiver is cleared.
func (r *Registry) RemoveReceiver(mac string) bool {
	key := CanonicalMAC(mac)
	if _, exists := r.Receivers[key]; !exists {
		return false
	}
	delete(r.Receivers, key)
	if r.Preferences != nil && CanonicalMAC(r.Preferences.DefaultReceiver) == key {
		r.Preferences.DefaultReceiver = ""
	}
	return true
}

// Resolve finds a receiver by MAC address or nickname.
// Returns the MAC address key and the entry, or false if nothing matches.
func (r *Registry) Resolve(ref string) (string, *Receiver, bool) {
	if rc := r.GetReceiver(ref); rc != nil {
		return CanonicalMAC(ref), rc, true
	}
	return r.FindByNickname(ref)
}

// SetDefaultReceiver records which receiver commands target when none is
// named on the command line. Accepts a MAC address or nickname of a
// receiver already present in the registry.
func (r *Registry) SetDefaultReceiver(ref string) error {
	mac, _, ok := r.Resolve(ref)
	if !ok {
		return fmt.Errorf("no receiver matching %q in registry", ref)
	}
	if r.Preferences == nil {
		r.Preferences = &Preferences{}
	}
	r.Preferences.DefaultReceiver = mac
	return nil
}

// DefaultReceiver returns the configured default receiver entry.
func (r *Registry) DefaultReceiver() (string, *Receiver, bool) {
	if r.Preferences == nil || r.Preferences.DefaultReceiver == "" {
		return "", nil, false
	}
	return r.Resolve(r.Preferences.DefaultReceiver)
}

// FindByNickname looks up a receiver by nickname (case-insensitive).
// Returns the MAC address key and the entry, or false if nothing matches.
func (r *Registry) FindByNickname(nickname string) (string, *Receiver, bool) {
	want := strings.ToLower(strings.TrimSpace(nickname))
	if want == "" {
		return "", nil, false
	}
	for mac, rc := range r.Receivers {
		if strings.ToLower(rc.Nickname) == want {
			return mac, rc, true
		}
	}
	return "", nil, false
}

// PresetNames returns the receiver's preset names in sorted order.
func (rc *Receiver) PresetNames() []string {
	names := make([]string, 0, len(rc.Presets))
	for name := range rc.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuiltinPresets are Audyssey configurations that apply to any receiver.
// Receiver-specific presets with the same name take precedence. The
// reference level offsets follow the Audyssey guidance per source type
// (0dB for film mixed at reference, +15dB for music).
var BuiltinPresets = map[string]*SettingsMeta{
	"movie": {
		MultEQ:         "Reference",
		DynamicEQ:      "On",
		RefLevelOffset: "0dB",
		DynamicVolume:  "Off",
	},
	"music": {
		MultEQ:         "Reference",
		DynamicEQ:      "On",
		RefLevelOffset: "+15dB",
		DynamicVolume:  "Off",
	},
	"night": {
		MultEQ:         "Reference",
		DynamicEQ:      "On",
		RefLevelOffset: "0dB",
		DynamicVolume:  "Heavy",
	},
	"direct": {
		MultEQ:        "L/R Bypass",
		DynamicEQ:     "Off",
		DynamicVolume: "Off",
	},
}

// BuiltinPresetNames returns the builtin preset names in sorted order.
func BuiltinPresetNames() []string {
	names := make([]string, 0, len(BuiltinPresets))
	for name := range BuiltinPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
