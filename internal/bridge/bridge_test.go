package bridge

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/muurk/avrkit/internal/appcommand"
	"github.com/muurk/avrkit/internal/audyssey"
)

// fakeReceiver is a stateful transport answering Audyssey commands from
// a code map, like the firmware does
type fakeReceiver struct {
	codes      map[string]string
	fail       bool
	rejectNext bool
	requests   int
}

func newFakeReceiver() *fakeReceiver {
	return &fakeReceiver{
		codes: map[string]string{
			"dynamiceq":    "1",
			"reflevoffset": "0",
			"dynamicvol":   "0",
			"multeq":       "3",
		},
	}
}

func (f *fakeReceiver) SendPostCommand(endpoint string, body []byte) ([]byte, error) {
	f.requests++
	if f.fail {
		return nil, errors.New("connect: connection refused")
	}

	req, err := appcommand.ParseRequest(body)
	if err != nil {
		return nil, err
	}

	switch req.Name {
	case appcommand.CommandGetAudyssey:
		var sb strings.Builder
		sb.WriteString(`<rx><cmd id="3"><name>GetAudyssey</name><list>`)
		for _, p := range req.Params {
			code, ok := f.codes[p.Name]
			if !ok {
				continue
			}
			fmt.Fprintf(&sb, `<param name=%q control="1">%s</param>`, p.Name, code)
		}
		sb.WriteString(`</list></cmd></rx>`)
		return []byte(sb.String()), nil

	case appcommand.CommandSetAudyssey:
		if f.rejectNext {
			f.rejectNext = false
			return []byte(`<rx><cmd id="3">ER</cmd></rx>`), nil
		}
		if len(req.Params) != 1 {
			return []byte(`<rx><cmd id="3">ER</cmd></rx>`), nil
		}
		p := req.Params[0]
		if _, ok := f.codes[p.Name]; !ok || p.Value == "" {
			return []byte(`<rx><cmd id="3">ER</cmd></rx>`), nil
		}
		f.codes[p.Name] = p.Value
		return []byte(`<rx><cmd id="3">OK</cmd></rx>`), nil
	}
	return []byte(`<rx><cmd id="3">ER</cmd></rx>`), nil
}

func (f *fakeReceiver) Host() string { return "192.0.2.21" }

// brokerMessage is one recorded publish
type brokerMessage struct {
	topic    string
	payload  string
	retained bool
}

// fakeBroker records publishes and lets tests deliver inbound messages
// to registered subscriptions
type fakeBroker struct {
	mu       sync.Mutex
	messages []brokerMessage
	handlers map[string]func(message string)
	fail     bool
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{handlers: make(map[string]func(string))}
}

func (f *fakeBroker) publish(topic string, retained bool, payload string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broker unavailable")
	}
	f.messages = append(f.messages, brokerMessage{topic: topic, payload: payload, retained: retained})
	return nil
}

func (f *fakeBroker) subscribe(topic string, handler func(message string)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[topic] = handler
	return nil
}

// deliver simulates an inbound message on a subscribed topic
func (f *fakeBroker) deliver(t *testing.T, topic string, payload string) {
	t.Helper()
	f.mu.Lock()
	handler := f.handlers[topic]
	f.mu.Unlock()
	if handler == nil {
		t.Fatalf("no subscription for topic %s", topic)
	}
	handler(payload)
}

func (f *fakeBroker) all() []brokerMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]brokerMessage(nil), f.messages...)
}

// lastPayload returns the most recent payload published to a topic
func (f *fakeBroker) lastPayload(topic string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.messages) - 1; i >= 0; i-- {
		if f.messages[i].topic == topic {
			return f.messages[i].payload, true
		}
	}
	return "", false
}

func (f *fakeBroker) clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = nil
}

func newTestBridge(rec *fakeReceiver, broker *fakeBroker) *Bridge {
	b := &Bridge{
		config: &Config{
			Broker:      "tcp://127.0.0.1:1883",
			TopicPrefix: "avrkit",
			Interval:    time.Minute,
		},
		name:     "avr-x4500h",
		settings: audyssey.NewSettings(rec),
		last:     make(map[string]string),
	}
	b.publish = broker.publish
	b.subscribe = broker.subscribe
	return b
}

func TestNewDefaults(t *testing.T) {
	b, err := New(&Config{Broker: "tcp://127.0.0.1:1883"}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if !strings.HasPrefix(b.config.ClientID, "avrkit-bridge-") {
		t.Errorf("ClientID = %q, want avrkit-bridge-<hostname>", b.config.ClientID)
	}
	if b.config.TopicPrefix != DefaultTopicPrefix {
		t.Errorf("TopicPrefix = %q, want %q", b.config.TopicPrefix, DefaultTopicPrefix)
	}
	if b.config.Interval != DefaultInterval {
		t.Errorf("Interval = %v, want %v", b.config.Interval, DefaultInterval)
	}
}

func TestNewRequiresBroker(t *testing.T) {
	if _, err := New(&Config{}, nil); err == nil {
		t.Fatal("expected error for missing broker URL")
	}
}

func TestDeviceName(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"AVR-X4500H", "avr-x4500h"},
		{"Denon AVR-X1600H", "denon-avr-x1600h"},
		{"NR1510", "nr1510"},
		{"*AVR-X4500H", "avr-x4500h"},
		{"SR 7013", "sr-7013"},
		{"", "receiver"},
		{"***", "receiver"},
	}

	for _, tt := range tests {
		if got := deviceName(tt.model); got != tt.want {
			t.Errorf("deviceName(%q) = %q, want %q", tt.model, got, tt.want)
		}
	}
}

func TestTopics(t *testing.T) {
	b := newTestBridge(newFakeReceiver(), newFakeBroker())

	if got := b.stateTopic("multeq"); got != "avrkit/avr-x4500h/audyssey/multeq" {
		t.Errorf("stateTopic = %q", got)
	}
	if got := b.commandTopic("dynamiceq"); got != "avrkit/avr-x4500h/audyssey/dynamiceq/set" {
		t.Errorf("commandTopic = %q", got)
	}
	if got := b.availabilityTopic(); got != "avrkit/avr-x4500h/audyssey/available" {
		t.Errorf("availabilityTopic = %q", got)
	}
}

func TestPollPublishesState(t *testing.T) {
	rec := newFakeReceiver()
	broker := newFakeBroker()
	b := newTestBridge(rec, broker)

	b.poll()

	want := []brokerMessage{
		{topic: "avrkit/avr-x4500h/audyssey/available", payload: "online", retained: true},
		{topic: "avrkit/avr-x4500h/audyssey/multeq", payload: "Reference", retained: true},
		{topic: "avrkit/avr-x4500h/audyssey/dynamiceq", payload: "on", retained: true},
		{topic: "avrkit/avr-x4500h/audyssey/reflevoffset", payload: "0dB", retained: true},
		{topic: "avrkit/avr-x4500h/audyssey/dynamicvol", payload: "Off", retained: true},
	}

	got := broker.all()
	if len(got) != len(want) {
		t.Fatalf("published %d messages, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestPollSuppressesUnchanged(t *testing.T) {
	rec := newFakeReceiver()
	broker := newFakeBroker()
	b := newTestBridge(rec, broker)

	b.poll()
	broker.clear()

	b.poll()
	if msgs := broker.all(); len(msgs) != 0 {
		t.Errorf("second poll republished unchanged state: %+v", msgs)
	}
}

func TestPollPublishesChanges(t *testing.T) {
	rec := newFakeReceiver()
	broker := newFakeBroker()
	b := newTestBridge(rec, broker)

	b.poll()
	broker.clear()

	// Setting changed on the receiver itself, e.g. via the front panel
	rec.codes["multeq"] = "1"
	b.poll()

	msgs := broker.all()
	if len(msgs) != 1 {
		t.Fatalf("published %d messages, want 1: %+v", len(msgs), msgs)
	}
	if msgs[0].topic != "avrkit/avr-x4500h/audyssey/multeq" || msgs[0].payload != "Flat" {
		t.Errorf("message = %+v, want multeq Flat", msgs[0])
	}
}

func TestPollFailureFlipsAvailability(t *testing.T) {
	rec := newFakeReceiver()
	broker := newFakeBroker()
	b := newTestBridge(rec, broker)

	b.poll()
	if got, _ := broker.lastPayload(b.availabilityTopic()); got != "online" {
		t.Fatalf("availability = %q, want online", got)
	}
	broker.clear()

	rec.fail = true
	b.poll()
	if got, _ := broker.lastPayload(b.availabilityTopic()); got != "offline" {
		t.Fatalf("availability after failed poll = %q, want offline", got)
	}

	// Further failures stay quiet, the marker is already set
	broker.clear()
	b.poll()
	if msgs := broker.all(); len(msgs) != 0 {
		t.Errorf("repeated failure republished: %+v", msgs)
	}

	rec.fail = false
	b.poll()
	if got, _ := broker.lastPayload(b.availabilityTopic()); got != "online" {
		t.Errorf("availability after recovery = %q, want online", got)
	}
}

func TestPollFailureKeepsStateTopics(t *testing.T) {
	rec := newFakeReceiver()
	broker := newFakeBroker()
	b := newTestBridge(rec, broker)

	b.poll()
	broker.clear()

	rec.fail = true
	b.poll()

	for _, msg := range broker.all() {
		if msg.topic != b.availabilityTopic() {
			t.Errorf("failed poll touched state topic %s", msg.topic)
		}
	}
}

func TestPublishFailureRetriesNextPoll(t *testing.T) {
	rec := newFakeReceiver()
	broker := newFakeBroker()
	b := newTestBridge(rec, broker)

	broker.fail = true
	b.poll()

	// Nothing was cached, so the next poll publishes everything
	broker.fail = false
	b.poll()

	if len(broker.all()) != 5 {
		t.Errorf("published %d messages after broker recovery, want 5", len(broker.all()))
	}
}

func TestHandleCommandSetsAndRepublishes(t *testing.T) {
	rec := newFakeReceiver()
	broker := newFakeBroker()
	b := newTestBridge(rec, broker)

	b.poll()
	broker.clear()

	b.handleCommand(audyssey.ParamMultiEQ, "Flat")

	if rec.codes["multeq"] != "1" {
		t.Errorf("receiver multeq code = %q, want 1", rec.codes["multeq"])
	}
	if got, ok := broker.lastPayload("avrkit/avr-x4500h/audyssey/multeq"); !ok || got != "Flat" {
		t.Errorf("multeq topic = %q, want Flat", got)
	}
}

func TestHandleCommandTrimsPayload(t *testing.T) {
	rec := newFakeReceiver()
	broker := newFakeBroker()
	b := newTestBridge(rec, broker)

	b.poll()
	b.handleCommand(audyssey.ParamDynamicVolume, " Medium\n")

	if rec.codes["dynamicvol"] != "2" {
		t.Errorf("receiver dynamicvol code = %q, want 2", rec.codes["dynamicvol"])
	}
}

func TestHandleCommandDynamicEQOffMasksOffset(t *testing.T) {
	rec := newFakeReceiver()
	broker := newFakeBroker()
	b := newTestBridge(rec, broker)

	b.poll()
	broker.clear()

	b.handleCommand(audyssey.ParamDynamicEQ, "off")

	want := []brokerMessage{
		{topic: "avrkit/avr-x4500h/audyssey/dynamiceq", payload: "off", retained: true},
		{topic: "avrkit/avr-x4500h/audyssey/reflevoffset", payload: audyssey.NotApplicable, retained: true},
	}

	got := broker.all()
	if len(got) != len(want) {
		t.Fatalf("published %d messages, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestHandleCommandRejectsUnknownLabel(t *testing.T) {
	rec := newFakeReceiver()
	broker := newFakeBroker()
	b := newTestBridge(rec, broker)

	b.poll()
	broker.clear()
	before := rec.requests

	b.handleCommand(audyssey.ParamMultiEQ, "Ultra")

	if rec.requests != before {
		t.Errorf("unknown label reached the receiver (%d requests)", rec.requests-before)
	}
	if msgs := broker.all(); len(msgs) != 0 {
		t.Errorf("rejected command published: %+v", msgs)
	}
}

func TestHandleCommandRejectsOffsetWhileDynamicEQOff(t *testing.T) {
	rec := newFakeReceiver()
	rec.codes["dynamiceq"] = "0"
	broker := newFakeBroker()
	b := newTestBridge(rec, broker)

	b.poll()
	broker.clear()
	before := rec.requests

	b.handleCommand(audyssey.ParamRefLevelOffset, "+5dB")

	if rec.requests != before {
		t.Errorf("offset write reached the receiver while Dynamic EQ is off")
	}
	if rec.codes["reflevoffset"] != "0" {
		t.Errorf("receiver reflevoffset code = %q, want 0", rec.codes["reflevoffset"])
	}
}

func TestHandleCommandRejectsBadOnOff(t *testing.T) {
	rec := newFakeReceiver()
	broker := newFakeBroker()
	b := newTestBridge(rec, broker)

	b.poll()
	broker.clear()
	before := rec.requests

	b.handleCommand(audyssey.ParamDynamicEQ, "maybe")

	if rec.requests != before {
		t.Errorf("bad on/off payload reached the receiver")
	}
}

func TestHandleCommandReceiverRefusal(t *testing.T) {
	rec := newFakeReceiver()
	broker := newFakeBroker()
	b := newTestBridge(rec, broker)

	b.poll()
	broker.clear()

	rec.rejectNext = true
	b.handleCommand(audyssey.ParamMultiEQ, "Flat")

	if rec.codes["multeq"] != "3" {
		t.Errorf("receiver multeq code = %q, want 3", rec.codes["multeq"])
	}
	if msgs := broker.all(); len(msgs) != 0 {
		t.Errorf("refused command published: %+v", msgs)
	}
	if b.settings.MultiEQ == nil || *b.settings.MultiEQ != audyssey.MultiEQReference {
		t.Errorf("local state changed after receiver refusal")
	}
}

func TestHandleCommandUnknownParameter(t *testing.T) {
	rec := newFakeReceiver()
	broker := newFakeBroker()
	b := newTestBridge(rec, broker)

	before := rec.requests
	b.handleCommand("surround", "Auro-3D")

	if rec.requests != before {
		t.Errorf("unknown parameter reached the receiver")
	}
}

func TestSubscribeCommandsRegistersSetTopics(t *testing.T) {
	rec := newFakeReceiver()
	broker := newFakeBroker()
	b := newTestBridge(rec, broker)

	b.subscribeCommands()

	for _, param := range bridgedParams {
		topic := b.commandTopic(param)
		broker.mu.Lock()
		_, ok := broker.handlers[topic]
		broker.mu.Unlock()
		if !ok {
			t.Errorf("no subscription for %s", topic)
		}
	}
}

func TestInboundMessageDrivesReceiver(t *testing.T) {
	rec := newFakeReceiver()
	broker := newFakeBroker()
	b := newTestBridge(rec, broker)

	b.poll()
	b.subscribeCommands()

	broker.deliver(t, "avrkit/avr-x4500h/audyssey/dynamicvol/set", "Heavy")

	if rec.codes["dynamicvol"] != "3" {
		t.Errorf("receiver dynamicvol code = %q, want 3", rec.codes["dynamicvol"])
	}
	if got, ok := broker.lastPayload("avrkit/avr-x4500h/audyssey/dynamicvol"); !ok || got != "Heavy" {
		t.Errorf("dynamicvol topic = %q, want Heavy", got)
	}
}

func TestParseOnOff(t *testing.T) {
	tests := []struct {
		message string
		want    bool
		wantErr bool
	}{
		{"on", true, false},
		{"ON", true, false},
		{"1", true, false},
		{"off", false, false},
		{"Off", false, false},
		{"0", false, false},
		{"true", false, true},
		{"enabled", false, true},
		{"", false, true},
	}

	for _, tt := range tests {
		got, err := parseOnOff(tt.message)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseOnOff(%q) error = %v, wantErr %v", tt.message, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("parseOnOff(%q) = %v, want %v", tt.message, got, tt.want)
		}
	}
}
