package bridge

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/avrkit/internal/audyssey"
	"github.com/muurk/avrkit/internal/logging"
)

// poll refreshes the receiver state and mirrors changes to the broker.
// A failed refresh marks the device offline until a poll succeeds
// again; the retained state topics keep their last known values in the
// meantime.
func (b *Bridge) poll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.settings.Update() {
		logging.Debug("Receiver poll failed", zap.String("device", b.name))
		b.publishIfChangedLocked(b.availabilityTopic(), payloadOffline)
		return
	}
	b.publishIfChangedLocked(b.availabilityTopic(), payloadOnline)
	b.publishStateLocked()
}

// publishStateLocked mirrors every known setting to its state topic
func (b *Bridge) publishStateLocked() {
	for _, param := range bridgedParams {
		value, known := b.stateValueLocked(param)
		if !known {
			continue
		}
		b.publishIfChangedLocked(b.stateTopic(param), value)
	}
}

// stateValueLocked renders one setting for its state topic. Settings
// the firmware reported with an unmappable value stay unpublished so a
// retained good value is not overwritten.
func (b *Bridge) stateValueLocked(param string) (string, bool) {
	switch param {
	case audyssey.ParamMultiEQ:
		if b.settings.MultiEQ != nil {
			return *b.settings.MultiEQ, true
		}
	case audyssey.ParamDynamicEQ:
		if b.settings.DynamicEQ != nil {
			if *b.settings.DynamicEQ {
				return "on", true
			}
			return "off", true
		}
	case audyssey.ParamRefLevelOffset:
		if b.settings.RefLevelOffset != nil {
			return *b.settings.RefLevelOffset, true
		}
	case audyssey.ParamDynamicVolume:
		if b.settings.DynamicVolume != nil {
			return *b.settings.DynamicVolume, true
		}
	}
	return "", false
}

// publishIfChangedLocked publishes a retained payload unless the topic
// already carries it
func (b *Bridge) publishIfChangedLocked(topic string, payload string) {
	if b.last[topic] == payload {
		return
	}
	if err := b.publish(topic, true, payload); err != nil {
		logging.Error("Publish failed",
			zap.String("topic", topic),
			zap.Error(err),
		)
		return
	}
	b.last[topic] = payload
}

// handleCommand applies one message from a set topic. Accepted writes
// republish the setting immediately; the follow-up refresh catches
// knock-on changes such as the offset flipping to N/A after Dynamic EQ
// turns off.
func (b *Bridge) handleCommand(param string, message string) {
	message = strings.TrimSpace(message)
	logging.Info("Command received",
		zap.String("parameter", param),
		zap.String("value", message),
	)

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.applyLocked(param, message); err != nil {
		logging.Warn("Command rejected",
			zap.String("parameter", param),
			zap.String("value", message),
			zap.Error(err),
		)
		return
	}

	// The setter recorded the accepted label, so the topic can be
	// brought current even if the verifying read below fails
	if value, known := b.stateValueLocked(param); known {
		b.publishIfChangedLocked(b.stateTopic(param), value)
	}
	if b.settings.Update() {
		b.publishStateLocked()
	}
}

// applyLocked validates an inbound value and writes it to the receiver.
// Planning catches unknown labels and the Dynamic EQ dependency before
// any network traffic.
func (b *Bridge) applyLocked(param string, message string) error {
	plan := audyssey.NewPlan(b.settings)

	switch param {
	case audyssey.ParamDynamicEQ:
		on, err := parseOnOff(message)
		if err != nil {
			return err
		}
		plan.SetDynamicEQ(on)
	case audyssey.ParamRefLevelOffset:
		plan.SetRefLevelOffset(message)
	case audyssey.ParamDynamicVolume:
		plan.SetDynamicVolume(message)
	case audyssey.ParamMultiEQ:
		plan.SetMultiEQ(message)
	default:
		return fmt.Errorf("no such setting %q", param)
	}

	steps, err := plan.Steps()
	if err != nil {
		return err
	}
	for _, step := range steps {
		if !step.Apply(b.settings) {
			return fmt.Errorf("receiver rejected %s", step.Parameter)
		}
	}
	return nil
}

// parseOnOff reads a dynamiceq command payload
func parseOnOff(message string) (bool, error) {
	switch strings.ToLower(message) {
	case "on", "1":
		return true, nil
	case "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("want on or off, got %q", message)
}
