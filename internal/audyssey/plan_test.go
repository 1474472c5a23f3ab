package audyssey

import (
	"strings"
	"testing"
)

// settingsWithDynamicEQ returns a detached baseline for plan tests
func settingsWithDynamicEQ(on bool) *Settings {
	s := NewSettings(newFakeTransport())
	s.DynamicEQ = &on
	return s
}

// TestPlan_Validate tests label and dependency validation
func TestPlan_Validate(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *Plan
		wantErr bool
		errPart string
	}{
		{
			name:    "empty plan is valid",
			build:   func() *Plan { return NewPlan(nil) },
			wantErr: false,
		},
		{
			name:    "known labels pass",
			build:   func() *Plan { return NewPlan(nil).SetMultiEQ(MultiEQReference).SetDynamicVolume(DynamicVolumeHeavy) },
			wantErr: false,
		},
		{
			name:    "unknown multeq label",
			build:   func() *Plan { return NewPlan(nil).SetMultiEQ("Studio") },
			wantErr: true,
			errPart: "unknown MultEQ mode",
		},
		{
			name:    "unknown offset label",
			build:   func() *Plan { return NewPlan(nil).SetDynamicEQ(true).SetRefLevelOffset("+20dB") },
			wantErr: true,
			errPart: "unknown reference level offset",
		},
		{
			name:    "unknown dynamic volume label",
			build:   func() *Plan { return NewPlan(nil).SetDynamicVolume("Midnight") },
			wantErr: true,
			errPart: "unknown Dynamic Volume mode",
		},
		{
			name:    "offset with plan turning dynamic EQ on",
			build:   func() *Plan { return NewPlan(nil).SetDynamicEQ(true).SetRefLevelOffset(RefLevelOffset5dB) },
			wantErr: false,
		},
		{
			name:    "offset with plan turning dynamic EQ off",
			build:   func() *Plan { return NewPlan(nil).SetDynamicEQ(false).SetRefLevelOffset(RefLevelOffset5dB) },
			wantErr: true,
			errPart: "turns it off",
		},
		{
			name:    "offset with no baseline",
			build:   func() *Plan { return NewPlan(nil).SetRefLevelOffset(RefLevelOffset5dB) },
			wantErr: true,
			errPart: "requires Dynamic EQ on",
		},
		{
			name: "offset with baseline dynamic EQ on",
			build: func() *Plan {
				return NewPlan(settingsWithDynamicEQ(true)).SetRefLevelOffset(RefLevelOffset5dB)
			},
			wantErr: false,
		},
		{
			name: "offset with baseline dynamic EQ off",
			build: func() *Plan {
				return NewPlan(settingsWithDynamicEQ(false)).SetRefLevelOffset(RefLevelOffset5dB)
			},
			wantErr: true,
			errPart: "requires Dynamic EQ on",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected validation error, got nil")
				}
				if tt.errPart != "" && !strings.Contains(err.Error(), tt.errPart) {
					t.Errorf("Expected error containing %q, got %q", tt.errPart, err.Error())
				}
			} else if err != nil {
				t.Errorf("Unexpected validation error: %v", err)
			}
		})
	}
}

// TestPlan_StepsOrder tests that Dynamic EQ is written before the
// reference level offset regardless of call order
func TestPlan_StepsOrder(t *testing.T) {
	steps, err := NewPlan(nil).
		SetMultiEQ(MultiEQReference).
		SetRefLevelOffset(RefLevelOffset5dB).
		SetDynamicEQ(true).
		Steps()
	if err != nil {
		t.Fatalf("Steps failed: %v", err)
	}

	want := []Step{
		{Parameter: ParamDynamicEQ, Label: "On"},
		{Parameter: ParamRefLevelOffset, Label: RefLevelOffset5dB},
		{Parameter: ParamMultiEQ, Label: MultiEQReference},
	}

	if len(steps) != len(want) {
		t.Fatalf("Expected %d steps, got %d: %v", len(want), len(steps), steps)
	}
	for i, w := range want {
		if steps[i] != w {
			t.Errorf("Step %d: expected %+v, got %+v", i, w, steps[i])
		}
	}
}

// TestPlan_StepsValidationFailure tests that invalid plans resolve to no steps
func TestPlan_StepsValidationFailure(t *testing.T) {
	steps, err := NewPlan(nil).SetMultiEQ("Studio").Steps()
	if err == nil {
		t.Fatal("Expected error for unknown label")
	}
	if steps != nil {
		t.Errorf("Expected nil steps on validation failure, got %v", steps)
	}
}

// TestPlan_HasChanges tests change tracking across set and reset
func TestPlan_HasChanges(t *testing.T) {
	p := NewPlan(nil)

	if p.HasChanges() {
		t.Error("Fresh plan reports changes")
	}

	p.SetDynamicVolume(DynamicVolumeLight)
	if !p.HasChanges() {
		t.Error("Plan with a change reports none")
	}

	p.Reset()
	if p.HasChanges() {
		t.Error("Reset plan still reports changes")
	}

	steps, err := p.Steps()
	if err != nil {
		t.Fatalf("Steps after reset failed: %v", err)
	}
	if len(steps) != 0 {
		t.Errorf("Expected no steps after reset, got %v", steps)
	}
}

// TestPlan_ReferenceDefaults tests the calibrated playback preset
func TestPlan_ReferenceDefaults(t *testing.T) {
	steps, err := NewPlan(nil).SetReferenceDefaults().Steps()
	if err != nil {
		t.Fatalf("Steps failed: %v", err)
	}

	want := []Step{
		{Parameter: ParamDynamicEQ, Label: "On"},
		{Parameter: ParamRefLevelOffset, Label: RefLevelOffset0dB},
		{Parameter: ParamDynamicVolume, Label: DynamicVolumeOff},
		{Parameter: ParamMultiEQ, Label: MultiEQReference},
	}

	if len(steps) != len(want) {
		t.Fatalf("Expected %d steps, got %d", len(want), len(steps))
	}
	for i, w := range want {
		if steps[i] != w {
			t.Errorf("Step %d: expected %+v, got %+v", i, w, steps[i])
		}
	}
}

// TestPlan_NightDefaults tests the late night preset
func TestPlan_NightDefaults(t *testing.T) {
	steps, err := NewPlan(nil).SetNightDefaults().Steps()
	if err != nil {
		t.Fatalf("Steps failed: %v", err)
	}

	want := []Step{
		{Parameter: ParamDynamicEQ, Label: "On"},
		{Parameter: ParamDynamicVolume, Label: DynamicVolumeHeavy},
	}

	if len(steps) != len(want) {
		t.Fatalf("Expected %d steps, got %d: %v", len(want), len(steps), steps)
	}
	for i, w := range want {
		if steps[i] != w {
			t.Errorf("Step %d: expected %+v, got %+v", i, w, steps[i])
		}
	}
}

// TestStep_Apply tests step dispatch through the settings adapter
func TestStep_Apply(t *testing.T) {
	tests := []struct {
		name   string
		step   Step
		verify func(t *testing.T, s *Settings)
	}{
		{
			name: "dynamic EQ on",
			step: Step{Parameter: ParamDynamicEQ, Label: "On"},
			verify: func(t *testing.T, s *Settings) {
				if s.DynamicEQ == nil || !*s.DynamicEQ {
					t.Errorf("Expected DynamicEQ true, got %v", s.DynamicEQ)
				}
			},
		},
		{
			name: "dynamic EQ off",
			step: Step{Parameter: ParamDynamicEQ, Label: "Off"},
			verify: func(t *testing.T, s *Settings) {
				if s.DynamicEQ == nil || *s.DynamicEQ {
					t.Errorf("Expected DynamicEQ false, got %v", s.DynamicEQ)
				}
			},
		},
		{
			name: "multeq",
			step: Step{Parameter: ParamMultiEQ, Label: MultiEQFlat},
			verify: func(t *testing.T, s *Settings) {
				if s.MultiEQ == nil || *s.MultiEQ != MultiEQFlat {
					t.Errorf("Expected MultiEQ %q, got %v", MultiEQFlat, s.MultiEQ)
				}
			},
		},
		{
			name: "dynamic volume",
			step: Step{Parameter: ParamDynamicVolume, Label: DynamicVolumeHeavy},
			verify: func(t *testing.T, s *Settings) {
				if s.DynamicVolume == nil || *s.DynamicVolume != DynamicVolumeHeavy {
					t.Errorf("Expected DynamicVolume %q, got %v", DynamicVolumeHeavy, s.DynamicVolume)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newFakeTransport(ackReply())
			s := NewSettings(tr)

			if !tt.step.Apply(s) {
				t.Fatal("Apply returned false on acknowledged write")
			}
			tt.verify(t, s)
		})
	}
}

// TestStep_ApplyUnknownParameter tests that an unmapped step fails
// without touching the network
func TestStep_ApplyUnknownParameter(t *testing.T) {
	tr := newFakeTransport(ackReply())
	s := NewSettings(tr)

	st := Step{Parameter: "lfc", Label: "On"}
	if st.Apply(s) {
		t.Error("Apply succeeded for an unknown parameter")
	}
	if tr.calls != 0 {
		t.Errorf("Expected no transport calls, got %d", tr.calls)
	}
}
