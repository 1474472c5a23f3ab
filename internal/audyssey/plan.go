package audyssey

import (
	"fmt"
	"strings"
)

// Labels used for the Dynamic EQ switch in steps and formatted output
const (
	dynamicEQOnLabel  = "On"
	dynamicEQOffLabel = "Off"
)

// Step is one parameter write resolved from a Plan.
type Step struct {
	// Parameter is the wire name being written
	Parameter string

	// Label is the target value as a human-readable label
	Label string
}

// Apply performs the write through the settings adapter and reports
// whether the receiver acknowledged it.
func (st Step) Apply(s *Settings) bool {
	switch st.Parameter {
	case ParamDynamicEQ:
		if st.Label == dynamicEQOnLabel {
			return s.DynamicEQOn()
		}
		return s.DynamicEQOff()
	case ParamRefLevelOffset:
		return s.SetRefLevelOffset(st.Label)
	case ParamDynamicVolume:
		return s.SetDynamicVolume(st.Label)
	case ParamMultiEQ:
		return s.SetMultiEQ(st.Label)
	}
	return false
}

// Plan provides a fluent API for batching Audyssey changes. It tracks
// which settings were touched and validates them before resolving the
// ordered write steps.
//
// Example usage:
//
//	plan := audyssey.NewPlan(settings)
//	steps, err := plan.
//	    SetDynamicEQ(true).
//	    SetRefLevelOffset("+5dB").
//	    SetMultiEQ("Reference").
//	    Steps()
type Plan struct {
	// current holds the last known settings (baseline). May be nil when
	// the receiver has not been read yet.
	current *Settings

	dynamicEQChanged bool
	dynamicEQ        bool

	refLevelOffsetChanged bool
	refLevelOffset        string

	dynamicVolumeChanged bool
	dynamicVolume        string

	multiEQChanged bool
	multiEQ        string
}

// NewPlan creates a plan against the last known settings. Pass nil when
// no baseline is available; a reference level offset change then
// requires the plan itself to turn Dynamic EQ on.
func NewPlan(current *Settings) *Plan {
	return &Plan{current: current}
}

// SetDynamicEQ switches Dynamic EQ on or off.
func (p *Plan) SetDynamicEQ(on bool) *Plan {
	p.dynamicEQChanged = true
	p.dynamicEQ = on
	return p
}

// SetMultiEQ selects the MultEQ correction curve by label.
func (p *Plan) SetMultiEQ(label string) *Plan {
	p.multiEQChanged = true
	p.multiEQ = label
	return p
}

// SetRefLevelOffset selects the reference level offset by label.
// The offset only takes effect while Dynamic EQ is on.
func (p *Plan) SetRefLevelOffset(label string) *Plan {
	p.refLevelOffsetChanged = true
	p.refLevelOffset = label
	return p
}

// SetDynamicVolume selects the Dynamic Volume mode by label.
func (p *Plan) SetDynamicVolume(label string) *Plan {
	p.dynamicVolumeChanged = true
	p.dynamicVolume = label
	return p
}

// SetReferenceDefaults configures calibrated reference playback: the
// Reference curve with Dynamic EQ on, no offset and Dynamic Volume off.
// This is the most common configuration after a fresh calibration.
func (p *Plan) SetReferenceDefaults() *Plan {
	return p.
		SetMultiEQ(MultiEQReference).
		SetDynamicEQ(true).
		SetRefLevelOffset(RefLevelOffset0dB).
		SetDynamicVolume(DynamicVolumeOff)
}

// SetNightDefaults configures late night playback: Dynamic EQ on with
// heavy Dynamic Volume to compress loud passages.
func (p *Plan) SetNightDefaults() *Plan {
	return p.
		SetDynamicEQ(true).
		SetDynamicVolume(DynamicVolumeHeavy)
}

// HasChanges returns true if any settings have been touched.
func (p *Plan) HasChanges() bool {
	return p.dynamicEQChanged || p.refLevelOffsetChanged ||
		p.dynamicVolumeChanged || p.multiEQChanged
}

// Validate checks the planned changes against the label tables and the
// Dynamic EQ dependency. Returns an error describing the first
// violation found.
func (p *Plan) Validate() error {
	if p.multiEQChanged {
		if _, ok := multiEQByLabel[p.multiEQ]; !ok {
			return fmt.Errorf("unknown MultEQ mode %q (valid: %s)",
				p.multiEQ, strings.Join(MultiEQOptions, ", "))
		}
	}

	if p.refLevelOffsetChanged {
		if _, ok := refLevelOffsetByLabel[p.refLevelOffset]; !ok {
			return fmt.Errorf("unknown reference level offset %q (valid: %s)",
				p.refLevelOffset, strings.Join(RefLevelOffsetOptions, ", "))
		}
		// The receiver ignores offset writes while Dynamic EQ is off,
		// so the plan must leave it on.
		if p.dynamicEQChanged {
			if !p.dynamicEQ {
				return fmt.Errorf("reference level offset requires Dynamic EQ, but this plan turns it off")
			}
		} else if p.current == nil || p.current.DynamicEQ == nil || !*p.current.DynamicEQ {
			return fmt.Errorf("reference level offset requires Dynamic EQ on (add SetDynamicEQ(true) or update the receiver state first)")
		}
	}

	if p.dynamicVolumeChanged {
		if _, ok := dynamicVolumeByLabel[p.dynamicVolume]; !ok {
			return fmt.Errorf("unknown Dynamic Volume mode %q (valid: %s)",
				p.dynamicVolume, strings.Join(DynamicVolumeOptions, ", "))
		}
	}

	return nil
}

// Steps validates the plan and resolves it into write steps. Dynamic EQ
// is always written before the reference level offset so the offset
// write is not rejected by its own prerequisite.
func (p *Plan) Steps() ([]Step, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var steps []Step

	if p.dynamicEQChanged {
		label := dynamicEQOffLabel
		if p.dynamicEQ {
			label = dynamicEQOnLabel
		}
		steps = append(steps, Step{Parameter: ParamDynamicEQ, Label: label})
	}

	if p.refLevelOffsetChanged {
		steps = append(steps, Step{Parameter: ParamRefLevelOffset, Label: p.refLevelOffset})
	}

	if p.dynamicVolumeChanged {
		steps = append(steps, Step{Parameter: ParamDynamicVolume, Label: p.dynamicVolume})
	}

	if p.multiEQChanged {
		steps = append(steps, Step{Parameter: ParamMultiEQ, Label: p.multiEQ})
	}

	return steps, nil
}

// Reset clears all planned changes, keeping the baseline.
func (p *Plan) Reset() *Plan {
	p.dynamicEQChanged = false
	p.refLevelOffsetChanged = false
	p.dynamicVolumeChanged = false
	p.multiEQChanged = false

	p.dynamicEQ = false
	p.refLevelOffset = ""
	p.dynamicVolume = ""
	p.multiEQ = ""

	return p
}
