package audyssey

import (
	"fmt"
	"sync"
	"time"
)

// Snapshot is a saved copy of the Audyssey settings, taken before a
// change so the receiver can be brought back to it.
type Snapshot struct {
	DynamicEQ      *bool
	RefLevelOffset *string
	DynamicVolume  *string
	MultiEQ        *string

	// Timestamp when this snapshot was created
	Timestamp time.Time

	// Description of what operation this snapshot was taken before
	Description string
}

// TakeSnapshot copies the current in-memory settings. It does not talk
// to the receiver; call Update first for a fresh state.
func (s *Settings) TakeSnapshot(description string) *Snapshot {
	return &Snapshot{
		DynamicEQ:      cloneBool(s.DynamicEQ),
		RefLevelOffset: cloneString(s.RefLevelOffset),
		DynamicVolume:  cloneString(s.DynamicVolume),
		MultiEQ:        cloneString(s.MultiEQ),
		Timestamp:      time.Now(),
		Description:    description,
	}
}

// Equal reports whether two snapshots hold the same settings values.
// Timestamps and descriptions are not compared.
func (snap *Snapshot) Equal(other *Snapshot) bool {
	if snap == nil || other == nil {
		return snap == other
	}
	return eqBool(snap.DynamicEQ, other.DynamicEQ) &&
		eqString(snap.RefLevelOffset, other.RefLevelOffset) &&
		eqString(snap.DynamicVolume, other.DynamicVolume) &&
		eqString(snap.MultiEQ, other.MultiEQ)
}

// RestoreSteps resolves a snapshot into the writes that bring the
// receiver back to it. Values the snapshot never held are skipped, as
// is a reference level offset recorded while it was not applicable.
func (snap *Snapshot) RestoreSteps() []Step {
	var steps []Step

	if snap.DynamicEQ != nil {
		steps = append(steps, Step{Parameter: ParamDynamicEQ, Label: formatOnOff(snap.DynamicEQ)})

		if *snap.DynamicEQ && snap.RefLevelOffset != nil && *snap.RefLevelOffset != NotApplicable {
			steps = append(steps, Step{Parameter: ParamRefLevelOffset, Label: *snap.RefLevelOffset})
		}
	}

	if snap.DynamicVolume != nil {
		steps = append(steps, Step{Parameter: ParamDynamicVolume, Label: *snap.DynamicVolume})
	}

	if snap.MultiEQ != nil {
		steps = append(steps, Step{Parameter: ParamMultiEQ, Label: *snap.MultiEQ})
	}

	return steps
}

// RollbackManager manages settings snapshots for rollback support
type RollbackManager struct {
	settings *Settings

	// snapshots stores settings snapshots, oldest first.
	// Limited to the last 10 to prevent unbounded growth.
	snapshots []*Snapshot

	// maxSnapshots is the maximum number of snapshots to retain
	maxSnapshots int

	// mutex protects concurrent access to snapshots
	mutex sync.RWMutex
}

// NewRollbackManager creates a rollback manager for a settings adapter
func NewRollbackManager(settings *Settings) *RollbackManager {
	return &RollbackManager{
		settings:     settings,
		snapshots:    make([]*Snapshot, 0, 10),
		maxSnapshots: 10,
	}
}

// SaveSnapshot reads the receiver and stores its current settings as a
// snapshot. This should be called before any settings change.
func (rm *RollbackManager) SaveSnapshot(description string) error {
	if !rm.settings.Update() {
		return fmt.Errorf("could not read settings from receiver for snapshot")
	}

	snapshot := rm.settings.TakeSnapshot(description)

	rm.mutex.Lock()
	defer rm.mutex.Unlock()

	rm.snapshots = append(rm.snapshots, snapshot)

	// Limit snapshot history
	if len(rm.snapshots) > rm.maxSnapshots {
		// Remove oldest snapshot
		rm.snapshots = rm.snapshots[1:]
	}

	return nil
}

// LatestSnapshot returns the most recent snapshot, or nil if no
// snapshots exist
func (rm *RollbackManager) LatestSnapshot() *Snapshot {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()

	if len(rm.snapshots) == 0 {
		return nil
	}

	return rm.snapshots[len(rm.snapshots)-1]
}

// Snapshots returns all snapshots in chronological order (oldest first)
func (rm *RollbackManager) Snapshots() []*Snapshot {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()

	// Return a copy to prevent external modification
	result := make([]*Snapshot, len(rm.snapshots))
	copy(result, rm.snapshots)
	return result
}

// ClearSnapshots removes all saved snapshots
func (rm *RollbackManager) ClearSnapshots() {
	rm.mutex.Lock()
	defer rm.mutex.Unlock()

	rm.snapshots = make([]*Snapshot, 0, 10)
}

// RollbackToSnapshot writes a snapshot's settings back to the receiver
// and verifies them
func (rm *RollbackManager) RollbackToSnapshot(snapshot *Snapshot) *VerifyResult {
	if snapshot == nil {
		return &VerifyResult{
			Success: false,
			Error:   fmt.Errorf("snapshot is nil"),
		}
	}

	steps := snapshot.RestoreSteps()
	if len(steps) == 0 {
		return &VerifyResult{
			Success: false,
			Error:   fmt.Errorf("snapshot holds no restorable settings"),
		}
	}

	return rm.settings.ApplyAndVerify(steps, nil)
}

// RollbackToLatest restores the receiver to the most recent snapshot.
// Returns an error result if no snapshots exist.
func (rm *RollbackManager) RollbackToLatest() *VerifyResult {
	snapshot := rm.LatestSnapshot()
	if snapshot == nil {
		return &VerifyResult{
			Success: false,
			Error:   fmt.Errorf("no snapshots available for rollback"),
		}
	}

	return rm.RollbackToSnapshot(snapshot)
}

// SafeApply performs a settings change with automatic rollback on
// failure. If verification fails, the receiver is brought back to the
// pre-change snapshot.
func (rm *RollbackManager) SafeApply(steps []Step, opts *VerifyOptions, description string) *SafeApplyResult {
	result := &SafeApplyResult{
		Description: description,
	}

	// Save snapshot before applying
	if err := rm.SaveSnapshot(description); err != nil {
		result.Error = fmt.Errorf("failed to save pre-change snapshot: %w", err)
		return result
	}

	// Attempt the change with verification
	applyResult := rm.settings.ApplyAndVerify(steps, opts)
	result.ApplyResult = applyResult

	if applyResult.Success {
		result.Success = true
		return result
	}

	// Change failed - attempt rollback
	result.RollbackAttempted = true
	snapshot := rm.LatestSnapshot()

	if snapshot == nil {
		result.Error = fmt.Errorf("change failed and no snapshot available for rollback: %w", applyResult.Error)
		return result
	}

	rollbackResult := rm.RollbackToSnapshot(snapshot)
	result.RollbackResult = rollbackResult

	if rollbackResult.Success {
		result.RollbackSucceeded = true
		result.Error = fmt.Errorf("change failed (verification: %w), successfully rolled back to previous settings", applyResult.Error)
	} else {
		result.Error = fmt.Errorf("change failed (verification: %w) AND rollback failed: %w", applyResult.Error, rollbackResult.Error)
	}

	return result
}

// SafeApplyResult contains the results of a safe apply operation
type SafeApplyResult struct {
	// Success indicates whether the change succeeded
	Success bool

	// Description of the change operation
	Description string

	// ApplyResult contains the result of the apply attempt
	ApplyResult *VerifyResult

	// RollbackAttempted indicates whether rollback was attempted
	RollbackAttempted bool

	// RollbackSucceeded indicates whether rollback succeeded (only valid if RollbackAttempted is true)
	RollbackSucceeded bool

	// RollbackResult contains the result of the rollback attempt (only valid if RollbackAttempted is true)
	RollbackResult *VerifyResult

	// Error contains any error that occurred
	Error error
}

// String returns a human-readable summary of the safe apply result
func (r *SafeApplyResult) String() string {
	if r.Success {
		return fmt.Sprintf("✅ Change succeeded: %s (verified in %d attempt(s))",
			r.Description, r.ApplyResult.Attempts)
	}

	if r.RollbackAttempted {
		if r.RollbackSucceeded {
			return fmt.Sprintf("⚠️  Change failed but successfully rolled back: %s\nChange error: %v\nRollback: successful after %d attempt(s)",
				r.Description, r.ApplyResult.Error, r.RollbackResult.Attempts)
		}
		return fmt.Sprintf("❌ Change failed and rollback failed: %s\nChange error: %v\nRollback error: %v",
			r.Description, r.ApplyResult.Error, r.RollbackResult.Error)
	}

	return fmt.Sprintf("❌ Change failed: %s\nError: %v",
		r.Description, r.Error)
}

// WarnBeforeApply checks whether a step list contains changes worth a
// second look and returns a warning message. Returns empty string when
// nothing stands out.
func WarnBeforeApply(current *Settings, steps []Step) string {
	warnings := []string{}

	for _, st := range steps {
		switch st.Parameter {
		case ParamMultiEQ:
			if st.Label == MultiEQOff {
				warnings = append(warnings, "⚠️  MultEQ Off disables room correction entirely; Dynamic EQ and Dynamic Volume stop having any effect")
			}
		case ParamDynamicEQ:
			if st.Label == dynamicEQOffLabel && current != nil &&
				current.RefLevelOffset != nil && *current.RefLevelOffset != NotApplicable {
				warnings = append(warnings, "⚠️  Turning Dynamic EQ off makes the configured reference level offset inapplicable")
			}
		case ParamDynamicVolume:
			if st.Label == DynamicVolumeHeavy {
				warnings = append(warnings, "⚠️  Heavy Dynamic Volume compresses dynamics strongly; intended for late night listening")
			}
		}
	}

	if len(warnings) == 0 {
		return ""
	}

	msg := "⚠️  REVIEW THESE CHANGES BEFORE APPLYING ⚠️\n\n"
	for _, w := range warnings {
		msg += w + "\n"
	}
	msg += "\nIt is recommended to save a snapshot before proceeding.\n"
	msg += "You can roll back to the previous settings if the result sounds wrong.\n"

	return msg
}

func cloneBool(v *bool) *bool {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func eqBool(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
