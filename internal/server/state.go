package server

import (
	"fmt"
	"sync"

	"github.com/muurk/avrkit/internal/audyssey"
)

// validCodes lists the wire codes each Audyssey parameter accepts.
// Dynamic EQ is a boolean toggle; the other three are four-position
// enumerations. Codes outside these sets are rejected the way real
// firmware rejects them.
var validCodes = map[string]map[string]bool{
	audyssey.ParamDynamicEQ: {
		"0": true,
		"1": true,
	},
	audyssey.ParamRefLevelOffset: {
		"0": true,
		"1": true,
		"2": true,
		"3": true,
	},
	audyssey.ParamDynamicVolume: {
		"0": true,
		"1": true,
		"2": true,
		"3": true,
	},
	audyssey.ParamMultiEQ: {
		"0": true,
		"1": true,
		"2": true,
		"3": true,
	},
}

// replyOrder is the order parameters appear in a GetAudyssey reply when
// the request does not list any names. Matches the order real firmware
// returns them in.
var replyOrder = []string{
	audyssey.ParamDynamicEQ,
	audyssey.ParamRefLevelOffset,
	audyssey.ParamDynamicVolume,
	audyssey.ParamMultiEQ,
}

// State holds the simulated Audyssey configuration. All access is
// mutex-guarded; the HTTP handlers run concurrently.
type State struct {
	mu    sync.Mutex
	codes map[string]string
}

// NewState creates a State with the values a freshly calibrated receiver
// reports: MultEQ Reference, Dynamic EQ on, no reference level offset,
// Dynamic Volume off.
func NewState() *State {
	return &State{
		codes: map[string]string{
			audyssey.ParamDynamicEQ:      "1",
			audyssey.ParamRefLevelOffset: "0",
			audyssey.ParamDynamicVolume:  "0",
			audyssey.ParamMultiEQ:        "3",
		},
	}
}

// Get returns the current wire code for a parameter. The second return
// is false for unknown parameter names.
func (st *State) Get(name string) (string, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	code, ok := st.codes[name]
	return code, ok
}

// Set validates and applies a write. It rejects unknown parameter names,
// codes outside the parameter's range, and reference level offset writes
// while Dynamic EQ is off. Real firmware ignores offset changes in that
// state because the offset only shapes the Dynamic EQ curve; the
// simulator rejects them outright so clients notice.
func (st *State) Set(name, code string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	allowed, ok := validCodes[name]
	if !ok {
		return fmt.Errorf("unknown parameter %q", name)
	}
	if !allowed[code] {
		return fmt.Errorf("invalid code %q for parameter %q", code, name)
	}
	if name == audyssey.ParamRefLevelOffset && st.codes[audyssey.ParamDynamicEQ] == "0" {
		return fmt.Errorf("reflevoffset requires dynamiceq on")
	}

	st.codes[name] = code
	return nil
}

// Snapshot returns a copy of all parameter codes
func (st *State) Snapshot() map[string]string {
	st.mu.Lock()
	defer st.mu.Unlock()

	out := make(map[string]string, len(st.codes))
	for name, code := range st.codes {
		out[name] = code
	}
	return out
}
