package audyssey

import (
	"fmt"
	"strings"
)

// displayNames maps wire parameter names to the labels the receiver's
// own on-screen menus use
var displayNames = map[string]string{
	ParamDynamicEQ:      "Dynamic EQ",
	ParamRefLevelOffset: "Reference Level Offset",
	ParamDynamicVolume:  "Dynamic Volume",
	ParamMultiEQ:        "MultEQ",
}

// DisplayName returns the human name of a wire parameter, or the wire
// name itself when unknown
func DisplayName(param string) string {
	if name, ok := displayNames[param]; ok {
		return name
	}
	return param
}

// formatLabel renders an optional label, "(unknown)" before the first
// successful update
func formatLabel(v *string) string {
	if v == nil {
		return "(unknown)"
	}
	return *v
}

// formatOnOff renders an optional switch as On/Off
func formatOnOff(v *bool) string {
	if v == nil {
		return "(unknown)"
	}
	if *v {
		return dynamicEQOnLabel
	}
	return dynamicEQOffLabel
}

// formatControl renders a control flag, empty when the receiver did not
// report one
func formatControl(v *bool) string {
	if v == nil {
		return ""
	}
	if *v {
		return "adjustable"
	}
	return "locked"
}

// Summary returns a one-line summary of the settings
func (s *Settings) Summary() string {
	return fmt.Sprintf("MultEQ: %s | Dynamic EQ: %s | Ref Offset: %s | Dynamic Volume: %s",
		formatLabel(s.MultiEQ),
		formatOnOff(s.DynamicEQ),
		formatLabel(s.RefLevelOffset),
		formatLabel(s.DynamicVolume))
}

// settingLine renders one name/value row with the control flag appended
// when the receiver reported one
func settingLine(name, value string, control *bool) string {
	if c := formatControl(control); c != "" {
		return fmt.Sprintf("%-24s%s [%s]\n", name+":", value, c)
	}
	return fmt.Sprintf("%-24s%s\n", name+":", value)
}

// FormatCompact returns a compact multi-line format suitable for
// terminal display
func (s *Settings) FormatCompact() string {
	var b strings.Builder

	b.WriteString(settingLine(DisplayName(ParamMultiEQ), formatLabel(s.MultiEQ), s.MultiEQControl))
	b.WriteString(settingLine(DisplayName(ParamDynamicEQ), formatOnOff(s.DynamicEQ), s.DynamicEQControl))
	b.WriteString(settingLine(DisplayName(ParamRefLevelOffset), formatLabel(s.RefLevelOffset), s.RefLevelOffsetControl))
	b.WriteString(settingLine(DisplayName(ParamDynamicVolume), formatLabel(s.DynamicVolume), s.DynamicVolumeControl))

	return b.String()
}

// FormatDetailed returns a comprehensive formatted string with all
// settings details
func (s *Settings) FormatDetailed() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("╔════════════════════════════════════════════════════════════════╗\n")
	b.WriteString("║              AUDYSSEY CALIBRATION SETTINGS                     ║\n")
	b.WriteString("╚════════════════════════════════════════════════════════════════╝\n")
	b.WriteString("\n")

	b.WriteString("=== Room Correction ===\n")
	b.WriteString(settingLine(DisplayName(ParamMultiEQ), formatLabel(s.MultiEQ), s.MultiEQControl))
	b.WriteString("\n")

	b.WriteString("=== Loudness Correction ===\n")
	b.WriteString(settingLine(DisplayName(ParamDynamicEQ), formatOnOff(s.DynamicEQ), s.DynamicEQControl))
	b.WriteString(settingLine(DisplayName(ParamRefLevelOffset), formatLabel(s.RefLevelOffset), s.RefLevelOffsetControl))
	b.WriteString("\n")

	b.WriteString("=== Volume Leveling ===\n")
	b.WriteString(settingLine(DisplayName(ParamDynamicVolume), formatLabel(s.DynamicVolume), s.DynamicVolumeControl))

	return b.String()
}

// FormatSteps returns a formatted string showing what will be written,
// in apply order
func FormatSteps(steps []Step) string {
	var b strings.Builder

	b.WriteString("=== Pending Changes ===\n")

	if len(steps) == 0 {
		b.WriteString("(no changes specified)\n")
		return b.String()
	}

	for _, st := range steps {
		b.WriteString(fmt.Sprintf("  %-24s→ %s\n", DisplayName(st.Parameter), st.Label))
	}

	return b.String()
}

// FormatDiff returns a formatted diff between two snapshots
func FormatDiff(old, new *Snapshot) string {
	var b strings.Builder

	b.WriteString("=== Settings Differences ===\n")

	hasChanges := false

	if !eqString(old.MultiEQ, new.MultiEQ) {
		b.WriteString(fmt.Sprintf("  %-24s%s → %s\n", DisplayName(ParamMultiEQ)+":",
			formatLabel(old.MultiEQ), formatLabel(new.MultiEQ)))
		hasChanges = true
	}
	if !eqBool(old.DynamicEQ, new.DynamicEQ) {
		b.WriteString(fmt.Sprintf("  %-24s%s → %s\n", DisplayName(ParamDynamicEQ)+":",
			formatOnOff(old.DynamicEQ), formatOnOff(new.DynamicEQ)))
		hasChanges = true
	}
	if !eqString(old.RefLevelOffset, new.RefLevelOffset) {
		b.WriteString(fmt.Sprintf("  %-24s%s → %s\n", DisplayName(ParamRefLevelOffset)+":",
			formatLabel(old.RefLevelOffset), formatLabel(new.RefLevelOffset)))
		hasChanges = true
	}
	if !eqString(old.DynamicVolume, new.DynamicVolume) {
		b.WriteString(fmt.Sprintf("  %-24s%s → %s\n", DisplayName(ParamDynamicVolume)+":",
			formatLabel(old.DynamicVolume), formatLabel(new.DynamicVolume)))
		hasChanges = true
	}

	if !hasChanges {
		b.WriteString("(no differences detected)\n")
	}

	return b.String()
}

// FormatOptionsTable returns a reference table of every parameter with
// its wire codes and labels
func FormatOptionsTable() string {
	var b strings.Builder

	b.WriteString("=== Audyssey Parameter Reference ===\n")

	b.WriteString(optionsSection(ParamMultiEQ, multiEQByLabel, MultiEQOptions))
	b.WriteString(optionsSection(ParamDynamicEQ, map[string]string{dynamicEQOffLabel: "0", dynamicEQOnLabel: "1"},
		[]string{dynamicEQOffLabel, dynamicEQOnLabel}))
	b.WriteString(optionsSection(ParamRefLevelOffset, refLevelOffsetByLabel, RefLevelOffsetOptions))
	b.WriteString(optionsSection(ParamDynamicVolume, dynamicVolumeByLabel, DynamicVolumeOptions))

	b.WriteString("\nNote: the reference level offset is only accepted while Dynamic EQ is on.\n")

	return b.String()
}

// optionsSection renders the code table of one parameter
func optionsSection(param string, byLabel map[string]string, labels []string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("\n%s (%s)\n", DisplayName(param), param))
	b.WriteString("  Code | Label\n")
	b.WriteString("  -----+------------\n")

	for _, label := range labels {
		b.WriteString(fmt.Sprintf("   %s   | %s\n", byLabel[label], label))
	}

	return b.String()
}
