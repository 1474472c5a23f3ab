package receiver

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const (
	// DefaultPort is the control port on current receivers
	DefaultPort = 80

	// LegacyPort is the control port on pre-2016 receivers
	LegacyPort = 8080

	// DefaultTimeout bounds a full request including the response body
	DefaultTimeout = 5 * time.Second

	// DefaultConnectTimeout bounds the TCP handshake. Kept short so a
	// receiver in network standby is detected quickly.
	DefaultConnectTimeout = 2 * time.Second
)

// Client is an HTTP client for a single Denon/Marantz receiver.
// It carries no state beyond the connection settings; all protocol
// interpretation happens in the callers.
type Client struct {
	host string
	port int

	// HTTPClient is the underlying HTTP client. Replace it before the
	// first request to customize transport behavior (tests do this).
	HTTPClient *http.Client
}

// NewClient creates a client for the receiver at host.
// host: IP address or hostname (e.g., "192.168.1.40")
// port: control port (0 selects DefaultPort)
func NewClient(host string, port int) *Client {
	if port == 0 {
		port = DefaultPort
	}
	return &Client{
		host:       host,
		port:       port,
		HTTPClient: newHTTPClient(DefaultConnectTimeout, DefaultTimeout),
	}
}

// newHTTPClient builds an HTTP client with a separate dial timeout so
// connect failures classify differently from response timeouts
func newHTTPClient(connectTimeout, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: connectTimeout,
			}).DialContext,
		},
	}
}

// Host returns the receiver host this client talks to
func (c *Client) Host() string {
	return c.host
}

// Port returns the control port in use
func (c *Client) Port() int {
	return c.port
}

// BaseURL returns the receiver's HTTP base URL
func (c *Client) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.host, c.port)
}

// SetTimeout sets the full-request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// SendPostCommand posts a command body to an endpoint path and returns
// the raw response body. Errors are typed *Error values carrying host
// and endpoint context; status codes outside 2xx count as errors.
func (c *Client) SendPostCommand(endpoint string, body []byte) ([]byte, error) {
	req, err := http.NewRequest(http.MethodPost, c.BaseURL()+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{
			Type:     ErrTypeUnknown,
			Message:  "failed to create request",
			Host:     c.host,
			Endpoint: endpoint,
			Err:      err,
		}
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, Classify(err, c.host, endpoint)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewHTTPError(resp.StatusCode, c.host, endpoint)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Classify(err, c.host, endpoint)
	}
	return data, nil
}

// get performs a GET against an endpoint path with the same error policy
// as SendPostCommand
func (c *Client) get(endpoint string) ([]byte, error) {
	resp, err := c.HTTPClient.Get(c.BaseURL() + endpoint)
	if err != nil {
		return nil, Classify(err, c.host, endpoint)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewHTTPError(resp.StatusCode, c.host, endpoint)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Classify(err, c.host, endpoint)
	}
	return data, nil
}
