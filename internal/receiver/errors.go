package receiver

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
)

// Error types for receiver communication

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeNetwork indicates a generic network-level error
	ErrTypeNetwork ErrorType = iota
	// ErrTypeConnectTimeout indicates the TCP connection could not be
	// established in time. Callers treat this as transient: the receiver
	// may be in standby or still booting.
	ErrTypeConnectTimeout
	// ErrTypeTimeout indicates the connection was established but the
	// response did not arrive in time
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates the receiver refused the connection
	ErrTypeConnectionRefused
	// ErrTypeHostUnreachable indicates no route to the receiver
	ErrTypeHostUnreachable
	// ErrTypeNetworkUnreachable indicates the local network cannot reach
	// the receiver's network
	ErrTypeNetworkUnreachable
	// ErrTypeDNS indicates a hostname resolution failure
	ErrTypeDNS
	// ErrTypeHTTP indicates an HTTP-level error (non-2xx status code)
	ErrTypeHTTP
	// ErrTypeParse indicates a parsing error (malformed XML, wrong shape)
	ErrTypeParse
	// ErrTypeUnknown indicates an unknown or unexpected error
	ErrTypeUnknown
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeConnectTimeout:
		return "Connect Timeout"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeHostUnreachable:
		return "Host Unreachable"
	case ErrTypeNetworkUnreachable:
		return "Network Unreachable"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeUnknown:
		return "Unknown Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Error represents a failure while talking to a receiver
type Error struct {
	Type       ErrorType // Category of error
	Message    string    // Human-readable error message
	Host       string    // Receiver host (for context)
	Endpoint   string    // Endpoint path that was being accessed
	StatusCode int       // HTTP status code (if applicable)
	Err        error     // Underlying error (if any)
	Retryable  bool      // Whether the error is retryable
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// Classify analyzes a transport error and returns a typed receiver error.
// Connect timeouts are detected before generic timeouts: a dial operation
// that timed out means the TCP handshake never completed, which receivers
// in network standby commonly cause.
func Classify(err error, host string, endpoint string) *Error {
	if err == nil {
		return nil
	}

	// Unwrap url.Error layers added by net/http before inspecting
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Op == "dial" && opErr.Timeout() {
			return &Error{
				Type:      ErrTypeConnectTimeout,
				Message:   "Connection could not be established in time",
				Host:      host,
				Endpoint:  endpoint,
				Err:       err,
				Retryable: true,
			}
		}
		if errors.Is(opErr.Err, syscall.ECONNREFUSED) {
			return &Error{
				Type:      ErrTypeConnectionRefused,
				Message:   "Receiver refused connection",
				Host:      host,
				Endpoint:  endpoint,
				Err:       err,
				Retryable: true,
			}
		}
		if errors.Is(opErr.Err, syscall.EHOSTUNREACH) {
			return &Error{
				Type:      ErrTypeHostUnreachable,
				Message:   "Host unreachable",
				Host:      host,
				Endpoint:  endpoint,
				Err:       err,
				Retryable: true,
			}
		}
		if errors.Is(opErr.Err, syscall.ENETUNREACH) {
			return &Error{
				Type:      ErrTypeNetworkUnreachable,
				Message:   "Network unreachable",
				Host:      host,
				Endpoint:  endpoint,
				Err:       err,
				Retryable: true,
			}
		}
	}

	// DNS failures
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Error{
			Type:      ErrTypeDNS,
			Message:   fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Host:      host,
			Endpoint:  endpoint,
			Err:       err,
			Retryable: false,
		}
	}

	// Remaining timeouts are response timeouts: the connection was
	// established but the receiver did not answer in time
	if os.IsTimeout(err) {
		return &Error{
			Type:      ErrTypeTimeout,
			Message:   "Request timed out",
			Host:      host,
			Endpoint:  endpoint,
			Err:       err,
			Retryable: true,
		}
	}

	// Generic network error
	return &Error{
		Type:      ErrTypeNetwork,
		Message:   "Network error occurred",
		Host:      host,
		Endpoint:  endpoint,
		Err:       err,
		Retryable: true,
	}
}

// NewHTTPError creates an HTTP-level error
func NewHTTPError(statusCode int, host string, endpoint string) *Error {
	retryable := statusCode >= 500 // Server errors are retryable
	return &Error{
		Type:       ErrTypeHTTP,
		Message:    fmt.Sprintf("Receiver returned HTTP %d", statusCode),
		Host:       host,
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Retryable:  retryable,
	}
}

// NewParseError creates a parsing error
func NewParseError(message string, err error) *Error {
	return &Error{
		Type:      ErrTypeParse,
		Message:   message,
		Err:       err,
		Retryable: false,
	}
}

// IsConnectTimeout checks if an error is a connect timeout. The settings
// adapter swallows these silently and tries again on the next poll.
func IsConnectTimeout(err error) bool {
	var rcvErr *Error
	if errors.As(err, &rcvErr) {
		return rcvErr.Type == ErrTypeConnectTimeout
	}
	return false
}

// IsNetworkError checks if an error is a network error (including
// timeouts, connection refused, DNS, unreachable hosts)
func IsNetworkError(err error) bool {
	var rcvErr *Error
	if errors.As(err, &rcvErr) {
		switch rcvErr.Type {
		case ErrTypeNetwork, ErrTypeConnectTimeout, ErrTypeTimeout,
			ErrTypeConnectionRefused, ErrTypeHostUnreachable,
			ErrTypeNetworkUnreachable, ErrTypeDNS:
			return true
		}
	}
	return false
}

// IsHTTPError checks if an error is an HTTP error
func IsHTTPError(err error) bool {
	var rcvErr *Error
	if errors.As(err, &rcvErr) {
		return rcvErr.Type == ErrTypeHTTP
	}
	return false
}

// IsParseError checks if an error is a parse error
func IsParseError(err error) bool {
	var rcvErr *Error
	if errors.As(err, &rcvErr) {
		return rcvErr.Type == ErrTypeParse
	}
	return false
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	var rcvErr *Error
	if errors.As(err, &rcvErr) {
		return rcvErr.Retryable
	}
	// Unknown errors are not retryable by default
	return false
}

// GetTroubleshootingHint returns user-friendly troubleshooting advice for an error
func GetTroubleshootingHint(err error) string {
	var rcvErr *Error
	if !errors.As(err, &rcvErr) {
		return "An unexpected error occurred. Please try again."
	}

	switch rcvErr.Type {
	case ErrTypeConnectTimeout, ErrTypeTimeout:
		return strings.Join([]string{
			"The receiver did not respond in time.",
			"Troubleshooting:",
			"  • Check that the receiver is powered on",
			"  • Set Network Control to 'Always On' so the receiver answers in standby",
			"  • Verify you're on the same network as the receiver",
			"  • Try increasing the timeout duration",
		}, "\n")

	case ErrTypeConnectionRefused:
		return strings.Join([]string{
			"The receiver refused the connection.",
			"Troubleshooting:",
			"  • Verify the control port (80 on current models, 8080 on older ones)",
			"  • Check that no firewall blocks the connection",
			"  • The receiver's web server may be restarting - wait and retry",
		}, "\n")

	case ErrTypeDNS:
		return strings.Join([]string{
			"Could not resolve the receiver hostname.",
			"Troubleshooting:",
			"  • Use the IP address instead of the hostname",
			"  • Check your network DNS settings",
			"  • Run a scan to find the receiver's current address",
		}, "\n")

	case ErrTypeHostUnreachable, ErrTypeNetworkUnreachable:
		return strings.Join([]string{
			"The receiver is not reachable on the network.",
			"Troubleshooting:",
			"  • Verify the receiver IP address is correct",
			"  • Check that you're on the same network as the receiver",
			"  • Try pinging the receiver: ping " + rcvErr.Host,
		}, "\n")

	case ErrTypeHTTP:
		if rcvErr.StatusCode >= 500 {
			return fmt.Sprintf("The receiver returned an error (HTTP %d). Try rebooting the receiver.", rcvErr.StatusCode)
		}
		return fmt.Sprintf("The receiver returned HTTP %d. The firmware may not support this command.", rcvErr.StatusCode)

	case ErrTypeParse:
		return strings.Join([]string{
			"Failed to parse the receiver's response.",
			"This may indicate an unsupported firmware revision.",
			"Troubleshooting:",
			"  • Check the firmware version in the receiver's setup menu",
			"  • Enable debug logging (AVRKIT_LOG_LEVEL=debug) and capture the response",
		}, "\n")

	default:
		return "An error occurred. Please check the error message for details."
	}
}

// TroubleshootingLines returns the troubleshooting advice for an error
// as individual tips, for the CLI result boxes which render their own
// bullets. The "Troubleshooting:" header line is dropped.
func TroubleshootingLines(err error) []string {
	lines := []string{}
	for _, line := range strings.Split(GetTroubleshootingHint(err), "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimPrefix(line, "•"))
		if line == "" || line == "Troubleshooting:" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// GetShortErrorMessage returns a concise, user-friendly error message
func GetShortErrorMessage(err error) string {
	var rcvErr *Error
	if !errors.As(err, &rcvErr) {
		return err.Error()
	}

	switch rcvErr.Type {
	case ErrTypeConnectTimeout:
		return "Receiver not answering - possibly in standby"
	case ErrTypeTimeout:
		return "Receiver not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Connection refused - check the control port"
	case ErrTypeDNS:
		return "Cannot resolve receiver hostname"
	case ErrTypeHostUnreachable, ErrTypeNetworkUnreachable:
		return "Receiver unreachable - check network connection"
	case ErrTypeHTTP:
		return fmt.Sprintf("Receiver error (HTTP %d)", rcvErr.StatusCode)
	case ErrTypeParse:
		return "Failed to parse receiver response"
	default:
		return rcvErr.Message
	}
}
