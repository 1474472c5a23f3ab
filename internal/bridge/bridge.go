package bridge

import (
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"sync"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/muurk/avrkit/internal/audyssey"
	"github.com/muurk/avrkit/internal/logging"
	"github.com/muurk/avrkit/internal/receiver"
)

// Defaults applied by New when the corresponding Config field is zero
const (
	// DefaultTopicPrefix roots every topic the bridge publishes
	DefaultTopicPrefix = "avrkit"

	// DefaultInterval is the receiver poll period
	DefaultInterval = 30 * time.Second
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second

	// disconnectQuiesce is the milliseconds Disconnect waits for
	// in-flight messages
	disconnectQuiesce = 250
)

// Availability payloads on the available topic. The offline value is
// also the session's last-will, so the broker publishes it when the
// bridge dies without disconnecting.
const (
	payloadOnline  = "online"
	payloadOffline = "offline"
)

// bridgedParams lists the settings mirrored to state topics
var bridgedParams = []string{
	audyssey.ParamMultiEQ,
	audyssey.ParamDynamicEQ,
	audyssey.ParamRefLevelOffset,
	audyssey.ParamDynamicVolume,
}

// Config holds the broker session and polling parameters
type Config struct {
	Broker      string // Broker URL, e.g. tcp://127.0.0.1:1883
	Username    string
	Password    string
	ClientID    string        // Defaults to avrkit-bridge-<hostname>
	TopicPrefix string        // Topic root (default "avrkit")
	Interval    time.Duration // Poll period (default 30s)
}

// Bridge mirrors the Audyssey settings of one receiver onto an MQTT
// broker. State topics are retained so integrations see the last known
// values immediately after subscribing; set topics accept the same
// labels the state topics carry.
type Bridge struct {
	config   *Config
	client   mqtt.Client
	rc       *receiver.Client
	settings *audyssey.Settings

	// name is the topic-safe device identifier, resolved from the
	// receiver's model during Start
	name string

	// mu serializes settings access between the poll loop and inbound
	// command handlers, which run on broker goroutines
	mu sync.Mutex

	// last caches the payload published per topic so unchanged values
	// are not republished every poll
	last map[string]string

	// publish and subscribe default to the live broker session; tests
	// swap in recorders
	publish   func(topic string, retained bool, payload string) error
	subscribe func(topic string, handler func(message string)) error
}

// New creates a Bridge bound to a receiver connection
func New(config *Config, rc *receiver.Client) (*Bridge, error) {
	if config.Broker == "" {
		return nil, fmt.Errorf("broker URL is required")
	}
	if config.ClientID == "" {
		hostname, err := os.Hostname()
		if err != nil || hostname == "" {
			hostname = "host"
		}
		config.ClientID = "avrkit-bridge-" + hostname
	}
	if config.TopicPrefix == "" {
		config.TopicPrefix = DefaultTopicPrefix
	}
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}

	b := &Bridge{
		config:   config,
		rc:       rc,
		settings: audyssey.NewSettings(rc),
		last:     make(map[string]string),
	}
	b.publish = b.publishBroker
	b.subscribe = b.subscribeBroker
	return b, nil
}

// Start resolves the receiver identity, connects to the broker, and
// blocks polling until a shutdown signal arrives. The receiver must be
// reachable at startup since its model names the topic tree.
func (b *Bridge) Start() error {
	info, err := b.rc.FetchDeviceInfo()
	if err != nil {
		return fmt.Errorf("cannot identify receiver %s: %w", b.rc.Host(), err)
	}
	b.name = deviceName(info.Model())

	logging.Info("Starting MQTT bridge",
		zap.String("broker", b.config.Broker),
		zap.String("receiver", b.rc.Host()),
		zap.String("device", b.name),
		zap.Duration("interval", b.config.Interval),
	)

	if err := b.connect(); err != nil {
		return err
	}

	ticker := time.NewTicker(b.config.Interval)
	defer ticker.Stop()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	for {
		select {
		case <-ticker.C:
			b.poll()
		case <-sigChan:
			logging.Info("Shutdown signal received, stopping bridge...")
			b.Shutdown()
			return nil
		}
	}
}

// Shutdown marks the device offline and drops the broker session. The
// explicit publish is needed because a clean disconnect does not fire
// the last-will.
func (b *Bridge) Shutdown() {
	if b.client != nil && b.client.IsConnectionOpen() {
		if err := b.publish(b.availabilityTopic(), true, payloadOffline); err != nil {
			logging.Warn("Failed to publish offline marker", zap.Error(err))
		}
		b.client.Disconnect(disconnectQuiesce)
	}
	logging.Info("Bridge stopped")
	logging.Sync()
}

// connect opens the broker session. The initial connect fails fast so
// bad URLs and credentials surface immediately; once connected, paho
// reconnects on its own and the OnConnect handler rebuilds the session
// state each time.
func (b *Bridge) connect() error {
	opts := mqtt.NewClientOptions().
		AddBroker(b.config.Broker).
		SetClientID(b.config.ClientID).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetWill(b.availabilityTopic(), payloadOffline, 0, true)

	if b.config.Username != "" {
		opts.SetUsername(b.config.Username)
		if b.config.Password != "" {
			opts.SetPassword(b.config.Password)
		}
	}

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logging.Warn("Broker connection lost",
			zap.String("broker", b.config.Broker),
			zap.Error(err),
		)
	})
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		b.onConnect()
	})

	b.client = mqtt.NewClient(opts)
	token := b.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("broker %s: connect timed out", b.config.Broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("broker %s: %w", b.config.Broker, err)
	}
	return nil
}

// onConnect rebuilds the session after every (re)connect. Clean-session
// subscriptions do not survive a reconnect, and the broker may have
// fired the will while the bridge was away, so the publish cache is
// reset and the full state republishes.
func (b *Bridge) onConnect() {
	logging.Info("Connected to broker", zap.String("broker", b.config.Broker))
	b.subscribeCommands()

	b.mu.Lock()
	b.last = make(map[string]string)
	b.mu.Unlock()

	b.poll()
}

// subscribeCommands registers the set topics for all bridged settings
func (b *Bridge) subscribeCommands() {
	for _, param := range bridgedParams {
		param := param
		topic := b.commandTopic(param)
		if err := b.subscribe(topic, func(message string) {
			b.handleCommand(param, message)
		}); err != nil {
			logging.Error("Subscribe failed",
				zap.String("topic", topic),
				zap.Error(err),
			)
		}
	}
}

func (b *Bridge) publishBroker(topic string, retained bool, payload string) error {
	token := b.client.Publish(topic, 0, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	return token.Error()
}

func (b *Bridge) subscribeBroker(topic string, handler func(message string)) error {
	token := b.client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		handler(string(msg.Payload()))
	})
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("subscribe to %s timed out", topic)
	}
	return token.Error()
}

// stateTopic returns the retained topic carrying one setting's value
func (b *Bridge) stateTopic(param string) string {
	return fmt.Sprintf("%s/%s/audyssey/%s", b.config.TopicPrefix, b.name, param)
}

// commandTopic returns the set topic the bridge listens on for one setting
func (b *Bridge) commandTopic(param string) string {
	return b.stateTopic(param) + "/set"
}

// availabilityTopic returns the online/offline marker topic
func (b *Bridge) availabilityTopic() string {
	return b.stateTopic("available")
}

var topicSeparators = regexp.MustCompile("[^a-zA-Z0-9]+")

// deviceName flattens a model string into a topic-safe identifier,
// e.g. "AVR-X4500H" becomes "avr-x4500h"
func deviceName(model string) string {
	name := topicSeparators.ReplaceAllString(model, "-")
	name = strings.ToLower(strings.Trim(name, "-"))
	if name == "" {
		return "receiver"
	}
	return name
}
