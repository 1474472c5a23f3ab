package discovery

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/avrkit/internal/logging"
)

const (
	// ServiceType is the mDNS service type HEOS-capable receivers advertise
	ServiceType = "_heos-audio._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for receiver discovery
	DefaultScanTimeout = 10 * time.Second

	// DefaultControlPort is the HTTP port of the AppCommand API on
	// HEOS-capable receivers. Pre-HEOS models listen on port 80 instead,
	// but those do not advertise _heos-audio and have to be added by hand.
	DefaultControlPort = 8080
)

// modelPattern matches Denon and Marantz model designations inside TXT
// records and mDNS instance names (e.g. "Denon AVR-X4500H", "Marantz SR6012")
var modelPattern = regexp.MustCompile(`\b(AVR-[A-Z0-9]+|AVC-[A-Z0-9]+|SR[0-9]{4}[A-Z]*|NR[0-9]{4}[A-Z]*|AV[0-9]{4}[A-Z]*|CINEMA ?[0-9]+)\b`)

// Scanner handles mDNS receiver discovery
type Scanner struct {
	// Timeout is the maximum time to wait for receiver discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// ScanForReceivers discovers all HEOS-capable receivers on the local network
// Returns a list of discovered receivers or an error
func (s *Scanner) ScanForReceivers() ([]*Receiver, error) {
	return s.ScanForReceiversWithContext(context.Background())
}

// ScanForReceiversWithContext discovers receivers with a custom context
func (s *Scanner) ScanForReceiversWithContext(ctx context.Context) ([]*Receiver, error) {
	// Create a context with timeout
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	// Channel to receive service entries
	entries := make(chan *zeroconf.ServiceEntry)
	receivers := make([]*Receiver, 0)

	// Start the resolver
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	// Browse for services in a goroutine
	go func() {
		for entry := range entries {
			rc := s.parseServiceEntry(entry)
			if rc != nil {
				receivers = append(receivers, rc)
			}
		}
	}()

	// Start browsing for HEOS services
	err = resolver.Browse(ctx, ServiceType, ServiceDomain, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	// Wait for context to complete (timeout or cancellation)
	<-ctx.Done()

	return receivers, nil
}

// WaitForReceiver waits for a specific receiver by name or MAC address
// Returns the receiver or an error if not found within timeout
func (s *Scanner) WaitForReceiver(ref string) (*Receiver, error) {
	return s.WaitForReceiverWithContext(context.Background(), ref)
}

// WaitForReceiverWithContext waits for a specific receiver with a custom context
func (s *Scanner) WaitForReceiverWithContext(ctx context.Context, ref string) (*Receiver, error) {
	// Create a context with timeout
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	// Channel to receive service entries
	entries := make(chan *zeroconf.ServiceEntry)
	found := make(chan *Receiver, 1)

	// Start the resolver
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	// Browse for services in a goroutine
	go func() {
		for entry := range entries {
			rc := s.parseServiceEntry(entry)
			if rc != nil && rc.Matches(ref) {
				found <- rc
				cancel() // Found the receiver, cancel context
				return
			}
		}
	}()

	// Start browsing for HEOS services
	err = resolver.Browse(ctx, ServiceType, ServiceDomain, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	// Wait for receiver or timeout
	select {
	case rc := <-found:
		return rc, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("receiver %q not found within timeout", ref)
	}
}

// parseServiceEntry converts a zeroconf service entry to a Receiver
// Returns nil if the entry carries no usable address
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Receiver {
	if entry.Instance == "" {
		return nil
	}

	// Get IP address (prefer IPv4)
	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}

	// Fallback to IPv6 if no IPv4
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}

	if ip == "" {
		return nil
	}

	// Parse TXT records into metadata
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		// TXT records are in "key=value" format
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			// Key without value
			metadata[parts[0]] = ""
		}
	}

	// HEOS units carry the MAC in "mac" or, older firmware, "networkid"
	mac := metadata["mac"]
	if mac == "" {
		mac = metadata["networkid"]
	}

	rc := &Receiver{
		Name:         entry.Instance,
		Model:        extractModel(metadata["model"], entry.Instance),
		IP:           ip,
		Port:         DefaultControlPort,
		MAC:          mac,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}

	logging.LogDiscovery("receiver found",
		zap.String("name", rc.Name),
		zap.String("model", rc.Model),
		zap.String("ip", rc.IP),
	)

	return rc
}

// extractModel pulls a model designation out of the TXT model record or,
// failing that, the mDNS instance name. HEOS firmware reports generic
// strings like "HEOS AVR" in TXT while the instance name usually carries
// the real model, so both are tried. Falls back to the raw TXT value.
func extractModel(txtModel, instance string) string {
	if m := modelPattern.FindString(txtModel); m != "" {
		return m
	}
	if m := modelPattern.FindString(instance); m != "" {
		return m
	}
	return txtModel
}

// ScanForReceivers is a convenience function to scan for receivers with a custom timeout
func ScanForReceivers(timeout time.Duration) ([]*Receiver, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.ScanForReceivers()
}

// QuickScan performs a fast scan with a 3-second timeout
func QuickScan() ([]*Receiver, error) {
	scanner := NewScanner()
	scanner.Timeout = 3 * time.Second
	return scanner.ScanForReceivers()
}

// FindReceiver searches for a specific receiver by name or MAC with default timeout
func FindReceiver(ref string) (*Receiver, error) {
	scanner := NewScanner()
	return scanner.WaitForReceiver(ref)
}
