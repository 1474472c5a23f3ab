package audyssey

import (
	"strings"
	"testing"
)

// TestSummary tests the one-line settings summary
func TestSummary(t *testing.T) {
	s := presetSettings(newFakeTransport())

	got := s.Summary()
	want := "MultEQ: Flat | Dynamic EQ: On | Ref Offset: +5dB | Dynamic Volume: Light"
	if got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}

// TestSummary_BeforeFirstUpdate tests the summary of unread settings
func TestSummary_BeforeFirstUpdate(t *testing.T) {
	s := NewSettings(newFakeTransport())

	got := s.Summary()
	if !strings.Contains(got, "(unknown)") {
		t.Errorf("Expected unknown markers in %q", got)
	}
}

// TestFormatCompact tests the compact terminal rendering
func TestFormatCompact(t *testing.T) {
	s := presetSettings(newFakeTransport())

	got := s.FormatCompact()

	for _, want := range []string{
		"MultEQ:",
		"Flat [adjustable]",
		"Dynamic EQ:",
		"Reference Level Offset:",
		"+5dB [adjustable]",
		"Dynamic Volume:",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatCompact() missing %q:\n%s", want, got)
		}
	}
}

// TestFormatCompact_LockedParameter tests the locked control rendering
func TestFormatCompact_LockedParameter(t *testing.T) {
	s := NewSettings(newFakeTransport())
	s.MultiEQ = strPtr(MultiEQReference)
	s.MultiEQControl = boolPtr(false)

	got := s.FormatCompact()
	if !strings.Contains(got, "Reference [locked]") {
		t.Errorf("Expected locked marker in:\n%s", got)
	}
}

// TestFormatCompact_NoControlFlags tests rendering when the receiver
// reported no control attributes
func TestFormatCompact_NoControlFlags(t *testing.T) {
	s := NewSettings(newFakeTransport())
	s.MultiEQ = strPtr(MultiEQReference)

	got := s.FormatCompact()
	if strings.Contains(got, "[adjustable]") || strings.Contains(got, "[locked]") {
		t.Errorf("Expected no control markers in:\n%s", got)
	}
}

// TestFormatDetailed tests the full report layout
func TestFormatDetailed(t *testing.T) {
	s := presetSettings(newFakeTransport())

	got := s.FormatDetailed()

	for _, want := range []string{
		"AUDYSSEY CALIBRATION SETTINGS",
		"=== Room Correction ===",
		"=== Loudness Correction ===",
		"=== Volume Leveling ===",
		"MultEQ:",
		"Dynamic EQ:",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatDetailed() missing %q", want)
		}
	}
}

// TestFormatSteps tests pending change rendering
func TestFormatSteps(t *testing.T) {
	steps := []Step{
		{Parameter: ParamDynamicEQ, Label: "On"},
		{Parameter: ParamMultiEQ, Label: MultiEQReference},
	}

	got := FormatSteps(steps)

	if !strings.Contains(got, "=== Pending Changes ===") {
		t.Errorf("Missing header in %q", got)
	}
	if !strings.Contains(got, "Dynamic EQ") || !strings.Contains(got, "→ On") {
		t.Errorf("Missing Dynamic EQ line in %q", got)
	}
	if !strings.Contains(got, "MultEQ") || !strings.Contains(got, "→ Reference") {
		t.Errorf("Missing MultEQ line in %q", got)
	}
}

// TestFormatSteps_Empty tests rendering an empty step list
func TestFormatSteps_Empty(t *testing.T) {
	got := FormatSteps(nil)
	if !strings.Contains(got, "(no changes specified)") {
		t.Errorf("Expected empty notice in %q", got)
	}
}

// TestFormatDiff tests snapshot difference rendering
func TestFormatDiff(t *testing.T) {
	old := &Snapshot{
		DynamicEQ:      boolPtr(true),
		RefLevelOffset: strPtr(RefLevelOffset5dB),
		DynamicVolume:  strPtr(DynamicVolumeOff),
		MultiEQ:        strPtr(MultiEQReference),
	}
	new := &Snapshot{
		DynamicEQ:      boolPtr(false),
		RefLevelOffset: strPtr(NotApplicable),
		DynamicVolume:  strPtr(DynamicVolumeOff),
		MultiEQ:        strPtr(MultiEQReference),
	}

	got := FormatDiff(old, new)

	if !strings.Contains(got, "Dynamic EQ:") || !strings.Contains(got, "On → Off") {
		t.Errorf("Missing Dynamic EQ diff in:\n%s", got)
	}
	if !strings.Contains(got, "+5dB → N/A") {
		t.Errorf("Missing offset diff in:\n%s", got)
	}
	if strings.Contains(got, "Dynamic Volume:") {
		t.Errorf("Unchanged Dynamic Volume rendered in:\n%s", got)
	}
}

// TestFormatDiff_NoChanges tests rendering identical snapshots
func TestFormatDiff_NoChanges(t *testing.T) {
	snap := &Snapshot{MultiEQ: strPtr(MultiEQFlat)}
	other := &Snapshot{MultiEQ: strPtr(MultiEQFlat)}

	got := FormatDiff(snap, other)
	if !strings.Contains(got, "(no differences detected)") {
		t.Errorf("Expected no-differences notice in %q", got)
	}
}

// TestFormatOptionsTable tests the parameter reference table
func TestFormatOptionsTable(t *testing.T) {
	got := FormatOptionsTable()

	for _, want := range []string{
		"MultEQ (multeq)",
		"Dynamic EQ (dynamiceq)",
		"Reference Level Offset (reflevoffset)",
		"Dynamic Volume (dynamicvol)",
		"L/R Bypass",
		"+15dB",
		"Heavy",
		"only accepted while Dynamic EQ is on",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatOptionsTable() missing %q", want)
		}
	}

	// Codes render next to their labels
	if !strings.Contains(got, "3   | Reference") {
		t.Errorf("Expected code column in:\n%s", got)
	}
}

// TestDisplayName tests wire-to-display name mapping
func TestDisplayName(t *testing.T) {
	tests := []struct {
		param string
		want  string
	}{
		{param: ParamDynamicEQ, want: "Dynamic EQ"},
		{param: ParamRefLevelOffset, want: "Reference Level Offset"},
		{param: ParamDynamicVolume, want: "Dynamic Volume"},
		{param: ParamMultiEQ, want: "MultEQ"},
		{param: "lfc", want: "lfc"},
	}

	for _, tt := range tests {
		if got := DisplayName(tt.param); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.param, got, tt.want)
		}
	}
}
