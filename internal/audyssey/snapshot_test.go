package audyssey

import (
	"fmt"
	"strings"
	"testing"
)

// TestTakeSnapshot_DeepCopy tests that a snapshot is detached from the
// live settings
func TestTakeSnapshot_DeepCopy(t *testing.T) {
	s := presetSettings(newFakeTransport())

	snap := s.TakeSnapshot("before test")

	if snap.Description != "before test" {
		t.Errorf("Expected description %q, got %q", "before test", snap.Description)
	}
	if snap.Timestamp.IsZero() {
		t.Error("Expected timestamp to be set")
	}

	// Mutate the live settings afterwards
	*s.MultiEQ = MultiEQOff
	*s.DynamicEQ = false

	if snap.MultiEQ == nil || *snap.MultiEQ != MultiEQFlat {
		t.Errorf("Snapshot MultiEQ changed with live settings: %v", snap.MultiEQ)
	}
	if snap.DynamicEQ == nil || !*snap.DynamicEQ {
		t.Errorf("Snapshot DynamicEQ changed with live settings: %v", snap.DynamicEQ)
	}
}

// TestTakeSnapshot_EmptySettings tests snapshotting before any update
func TestTakeSnapshot_EmptySettings(t *testing.T) {
	s := NewSettings(newFakeTransport())

	snap := s.TakeSnapshot("fresh")

	if snap.DynamicEQ != nil || snap.RefLevelOffset != nil ||
		snap.DynamicVolume != nil || snap.MultiEQ != nil {
		t.Errorf("Expected empty snapshot, got %+v", snap)
	}
}

// TestSnapshot_Equal tests value comparison between snapshots
func TestSnapshot_Equal(t *testing.T) {
	base := func() *Snapshot {
		return &Snapshot{
			DynamicEQ:      boolPtr(true),
			RefLevelOffset: strPtr(RefLevelOffset5dB),
			DynamicVolume:  strPtr(DynamicVolumeOff),
			MultiEQ:        strPtr(MultiEQReference),
		}
	}

	tests := []struct {
		name string
		a, b *Snapshot
		want bool
	}{
		{name: "identical values", a: base(), b: base(), want: true},
		{name: "both nil", a: nil, b: nil, want: true},
		{name: "one nil", a: base(), b: nil, want: false},
		{
			name: "different curve",
			a:    base(),
			b: func() *Snapshot {
				s := base()
				s.MultiEQ = strPtr(MultiEQFlat)
				return s
			}(),
			want: false,
		},
		{
			name: "value versus unset",
			a:    base(),
			b: func() *Snapshot {
				s := base()
				s.DynamicEQ = nil
				return s
			}(),
			want: false,
		},
		{
			name: "descriptions do not matter",
			a:    &Snapshot{Description: "a"},
			b:    &Snapshot{Description: "b"},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func strPtr(v string) *string { return &v }

// TestSnapshot_RestoreSteps tests resolving snapshots into write steps
func TestSnapshot_RestoreSteps(t *testing.T) {
	tests := []struct {
		name string
		snap *Snapshot
		want []Step
	}{
		{
			name: "full snapshot restores everything in order",
			snap: &Snapshot{
				DynamicEQ:      boolPtr(true),
				RefLevelOffset: strPtr(RefLevelOffset5dB),
				DynamicVolume:  strPtr(DynamicVolumeOff),
				MultiEQ:        strPtr(MultiEQReference),
			},
			want: []Step{
				{Parameter: ParamDynamicEQ, Label: "On"},
				{Parameter: ParamRefLevelOffset, Label: RefLevelOffset5dB},
				{Parameter: ParamDynamicVolume, Label: DynamicVolumeOff},
				{Parameter: ParamMultiEQ, Label: MultiEQReference},
			},
		},
		{
			name: "not applicable offset is skipped",
			snap: &Snapshot{
				DynamicEQ:      boolPtr(false),
				RefLevelOffset: strPtr(NotApplicable),
				MultiEQ:        strPtr(MultiEQFlat),
			},
			want: []Step{
				{Parameter: ParamDynamicEQ, Label: "Off"},
				{Parameter: ParamMultiEQ, Label: MultiEQFlat},
			},
		},
		{
			name: "offset without dynamic EQ is skipped",
			snap: &Snapshot{
				RefLevelOffset: strPtr(RefLevelOffset5dB),
				DynamicVolume:  strPtr(DynamicVolumeLight),
			},
			want: []Step{
				{Parameter: ParamDynamicVolume, Label: DynamicVolumeLight},
			},
		},
		{
			name: "empty snapshot restores nothing",
			snap: &Snapshot{},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.snap.RestoreSteps()
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d steps, got %d: %v", len(tt.want), len(got), got)
			}
			for i, w := range tt.want {
				if got[i] != w {
					t.Errorf("Step %d: expected %+v, got %+v", i, w, got[i])
				}
			}
		})
	}
}

// TestRollbackManager_SaveSnapshot tests reading the receiver into a snapshot
func TestRollbackManager_SaveSnapshot(t *testing.T) {
	tr := newFakeTransport(fakeReply{body: audysseyReply("1", "1", "0", "3")})
	rm := NewRollbackManager(NewSettings(tr))

	if err := rm.SaveSnapshot("Before test change"); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	snapshot := rm.LatestSnapshot()
	if snapshot == nil {
		t.Fatal("Expected snapshot to be saved")
	}
	if snapshot.Description != "Before test change" {
		t.Errorf("Expected description 'Before test change', got %q", snapshot.Description)
	}
	if snapshot.MultiEQ == nil || *snapshot.MultiEQ != MultiEQReference {
		t.Errorf("Snapshot MultiEQ mismatch: %v", snapshot.MultiEQ)
	}
	if snapshot.RefLevelOffset == nil || *snapshot.RefLevelOffset != RefLevelOffset5dB {
		t.Errorf("Snapshot RefLevelOffset mismatch: %v", snapshot.RefLevelOffset)
	}
}

// TestRollbackManager_SaveSnapshotUnreadable tests the error when the
// receiver cannot be read
func TestRollbackManager_SaveSnapshotUnreadable(t *testing.T) {
	tr := newFakeTransport(fakeReply{body: []byte(`<rx></rx>`)})
	rm := NewRollbackManager(NewSettings(tr))

	if err := rm.SaveSnapshot("doomed"); err == nil {
		t.Fatal("Expected error for unreadable receiver")
	}
	if rm.LatestSnapshot() != nil {
		t.Error("Snapshot saved despite read failure")
	}
}

// TestRollbackManager_SnapshotLimit tests that only maxSnapshots are retained
func TestRollbackManager_SnapshotLimit(t *testing.T) {
	tr := newFakeTransport(fakeReply{body: audysseyReply("1", "0", "0", "3")})
	rm := NewRollbackManager(NewSettings(tr))

	// Save more than maxSnapshots
	for i := 0; i < 15; i++ {
		if err := rm.SaveSnapshot(fmt.Sprintf("Snapshot %d", i)); err != nil {
			t.Fatalf("SaveSnapshot %d failed: %v", i, err)
		}
	}

	snapshots := rm.Snapshots()
	if len(snapshots) != 10 {
		t.Errorf("Expected 10 snapshots, got %d", len(snapshots))
	}

	// Oldest snapshot should be "Snapshot 5" (0-4 were removed)
	if snapshots[0].Description != "Snapshot 5" {
		t.Errorf("Expected oldest snapshot to be 'Snapshot 5', got %q", snapshots[0].Description)
	}
	if snapshots[9].Description != "Snapshot 14" {
		t.Errorf("Expected newest snapshot to be 'Snapshot 14', got %q", snapshots[9].Description)
	}
}

// TestRollbackManager_ClearSnapshots tests dropping all snapshots
func TestRollbackManager_ClearSnapshots(t *testing.T) {
	tr := newFakeTransport(fakeReply{body: audysseyReply("1", "0", "0", "3")})
	rm := NewRollbackManager(NewSettings(tr))

	for i := 0; i < 3; i++ {
		if err := rm.SaveSnapshot(fmt.Sprintf("Snapshot %d", i)); err != nil {
			t.Fatalf("SaveSnapshot %d failed: %v", i, err)
		}
	}

	rm.ClearSnapshots()

	if len(rm.Snapshots()) != 0 {
		t.Errorf("Expected 0 snapshots after clear, got %d", len(rm.Snapshots()))
	}
	if rm.LatestSnapshot() != nil {
		t.Error("Expected nil latest snapshot after clear")
	}
}

// TestRollbackManager_RollbackToNilSnapshot tests the guard against a
// missing snapshot
func TestRollbackManager_RollbackToNilSnapshot(t *testing.T) {
	rm := NewRollbackManager(NewSettings(newFakeTransport()))

	result := rm.RollbackToSnapshot(nil)
	if result.Success {
		t.Fatal("Rollback to nil snapshot succeeded")
	}
	if result.Error == nil || !strings.Contains(result.Error.Error(), "snapshot is nil") {
		t.Errorf("Expected nil snapshot error, got %v", result.Error)
	}
}

// TestRollbackManager_RollbackToLatestWithoutSnapshots tests rolling
// back with an empty history
func TestRollbackManager_RollbackToLatestWithoutSnapshots(t *testing.T) {
	rm := NewRollbackManager(NewSettings(newFakeTransport()))

	result := rm.RollbackToLatest()
	if result.Success {
		t.Fatal("Rollback succeeded without snapshots")
	}
	if result.Error == nil || !strings.Contains(result.Error.Error(), "no snapshots available") {
		t.Errorf("Expected no-snapshots error, got %v", result.Error)
	}
}

// TestRollbackManager_RollbackEmptySnapshot tests rolling back a
// snapshot that holds nothing restorable
func TestRollbackManager_RollbackEmptySnapshot(t *testing.T) {
	rm := NewRollbackManager(NewSettings(newFakeTransport()))

	result := rm.RollbackToSnapshot(&Snapshot{})
	if result.Success {
		t.Fatal("Rollback of an empty snapshot succeeded")
	}
	if result.Error == nil || !strings.Contains(result.Error.Error(), "no restorable settings") {
		t.Errorf("Expected no-restorable-settings error, got %v", result.Error)
	}
}

// TestSafeApply_Success tests the snapshot-apply-verify happy path
func TestSafeApply_Success(t *testing.T) {
	tr := newFakeTransport(
		fakeReply{body: audysseyReply("1", "0", "0", "1")}, // snapshot read
		ackReply(), // multeq write
		fakeReply{body: audysseyReply("1", "0", "0", "3")}, // verify read
	)
	rm := NewRollbackManager(NewSettings(tr))

	steps := []Step{{Parameter: ParamMultiEQ, Label: MultiEQReference}}

	result := rm.SafeApply(steps, fastVerifyOpts(1), "Switch to Reference")
	if !result.Success {
		t.Fatalf("SafeApply failed: %v", result.Error)
	}
	if result.RollbackAttempted {
		t.Error("Rollback attempted on a successful change")
	}
	if !strings.Contains(result.String(), "✅ Change succeeded") {
		t.Errorf("Unexpected summary: %q", result.String())
	}

	// The pre-change snapshot is still available
	snapshot := rm.LatestSnapshot()
	if snapshot == nil || snapshot.MultiEQ == nil || *snapshot.MultiEQ != MultiEQFlat {
		t.Errorf("Expected pre-change snapshot with MultiEQ Flat, got %+v", snapshot)
	}
}

// TestSafeApply_RollbackOnRejectedWrite tests automatic rollback after a
// failed change
func TestSafeApply_RollbackOnRejectedWrite(t *testing.T) {
	before := audysseyReply("1", "1", "0", "3")
	tr := newFakeTransport(
		fakeReply{body: before}, // snapshot read
		rejectReply(),           // multeq write rejected
		ackReply(),              // rollback: dynamiceq
		ackReply(),              // rollback: reflevoffset
		ackReply(),              // rollback: dynamicvol
		ackReply(),              // rollback: multeq
		fakeReply{body: before}, // rollback verify read
	)
	rm := NewRollbackManager(NewSettings(tr))

	steps := []Step{{Parameter: ParamMultiEQ, Label: MultiEQFlat}}

	result := rm.SafeApply(steps, fastVerifyOpts(1), "Switch to Flat")
	if result.Success {
		t.Fatal("SafeApply reported success despite rejection")
	}
	if !result.RollbackAttempted {
		t.Fatal("Expected rollback to be attempted")
	}
	if !result.RollbackSucceeded {
		t.Fatalf("Expected rollback to succeed: %v", result.Error)
	}
	if result.Error == nil || !strings.Contains(result.Error.Error(), "rolled back") {
		t.Errorf("Expected rollback notice in error, got %v", result.Error)
	}
	if !strings.Contains(result.String(), "⚠️") {
		t.Errorf("Unexpected summary: %q", result.String())
	}
}

// TestSafeApply_SnapshotFailure tests aborting when the pre-change
// snapshot cannot be taken
func TestSafeApply_SnapshotFailure(t *testing.T) {
	tr := newFakeTransport(fakeReply{body: []byte(`<rx></rx>`)})
	rm := NewRollbackManager(NewSettings(tr))

	steps := []Step{{Parameter: ParamMultiEQ, Label: MultiEQFlat}}

	result := rm.SafeApply(steps, fastVerifyOpts(1), "Switch to Flat")
	if result.Success {
		t.Fatal("SafeApply succeeded without a snapshot")
	}
	if result.RollbackAttempted {
		t.Error("Rollback attempted without a snapshot")
	}
	if result.Error == nil || !strings.Contains(result.Error.Error(), "pre-change snapshot") {
		t.Errorf("Expected snapshot failure error, got %v", result.Error)
	}
	// Only the failed snapshot read touched the network
	if tr.calls != 1 {
		t.Errorf("Expected 1 transport call, got %d", tr.calls)
	}
}

// TestWarnBeforeApply tests the pre-apply warnings
func TestWarnBeforeApply(t *testing.T) {
	tests := []struct {
		name     string
		current  *Settings
		steps    []Step
		wantPart string
	}{
		{
			name:     "multeq off warns about losing correction",
			steps:    []Step{{Parameter: ParamMultiEQ, Label: MultiEQOff}},
			wantPart: "disables room correction",
		},
		{
			name: "dynamic EQ off warns about the configured offset",
			current: func() *Settings {
				s := NewSettings(newFakeTransport())
				s.RefLevelOffset = strPtr(RefLevelOffset10dB)
				return s
			}(),
			steps:    []Step{{Parameter: ParamDynamicEQ, Label: "Off"}},
			wantPart: "reference level offset inapplicable",
		},
		{
			name:     "heavy dynamic volume warns about compression",
			steps:    []Step{{Parameter: ParamDynamicVolume, Label: DynamicVolumeHeavy}},
			wantPart: "compresses dynamics",
		},
		{
			name:     "harmless changes stay silent",
			steps:    []Step{{Parameter: ParamMultiEQ, Label: MultiEQReference}},
			wantPart: "",
		},
		{
			name: "dynamic EQ off without an offset stays silent",
			current: func() *Settings {
				s := NewSettings(newFakeTransport())
				s.RefLevelOffset = strPtr(NotApplicable)
				return s
			}(),
			steps:    []Step{{Parameter: ParamDynamicEQ, Label: "Off"}},
			wantPart: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WarnBeforeApply(tt.current, tt.steps)
			if tt.wantPart == "" {
				if got != "" {
					t.Errorf("Expected no warning, got %q", got)
				}
				return
			}
			if !strings.Contains(got, tt.wantPart) {
				t.Errorf("Expected warning containing %q, got %q", tt.wantPart, got)
			}
			if !strings.Contains(got, "REVIEW THESE CHANGES") {
				t.Errorf("Expected warning header, got %q", got)
			}
		})
	}
}
