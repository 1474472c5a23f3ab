package discovery

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Receiver represents a discovered AV receiver on the network
type Receiver struct {
	// Name is the mDNS instance name (e.g., "Denon AVR-X4500H")
	Name string

	// Model is the model designation (e.g., "AVR-X4500H")
	Model string

	// IP is the IPv4 address (e.g., "192.168.1.34")
	IP string

	// Port is the HTTP port of the AppCommand control API
	Port int

	// MAC is the receiver MAC address from the TXT records
	MAC string

	// Metadata contains additional mDNS TXT record data
	// Common fields: "did", "vers", "networkid", "model"
	Metadata map[string]string

	// DiscoveredAt is when the receiver was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the receiver
func (r *Receiver) String() string {
	if r.Model != "" && r.Model != r.Name {
		return fmt.Sprintf("%s (%s) at %s:%d", r.Name, r.Model, r.IP, r.Port)
	}
	return fmt.Sprintf("%s at %s:%d", r.Name, r.IP, r.Port)
}

// BaseURL returns the HTTP base URL of the receiver's control API
func (r *Receiver) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", r.IP, r.Port)
}

// ControlAddress returns the host:port address of the control API
func (r *Receiver) ControlAddress() string {
	return net.JoinHostPort(r.IP, strconv.Itoa(r.Port))
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (r *Receiver) GetMetadata(key string) string {
	if r.Metadata == nil {
		return ""
	}
	return r.Metadata[key]
}

// Matches reports whether ref names this receiver, by instance name
// (case-insensitive) or by MAC address in any common spelling.
func (r *Receiver) Matches(ref string) bool {
	if strings.EqualFold(r.Name, ref) {
		return true
	}
	return r.MAC != "" && macKey(r.MAC) == macKey(ref)
}

// macKey reduces a MAC address spelling to bare upper-case hex digits.
func macKey(mac string) string {
	return strings.ToUpper(strings.Map(func(c rune) rune {
		switch c {
		case ':', '-', '.', ' ':
			return -1
		}
		return c
	}, mac))
}
