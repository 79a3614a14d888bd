package wled

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultPort is the default WLED HTTP API port.
const DefaultPort = 80

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 5 * time.Second

const (
	statePath = "/json/state"
	infoPath  = "/json/info"
)

// Client is an HTTP client for communicating with WLED controllers.
type Client struct {
	Host       string
	Port       int
	HTTPClient *http.Client
	testURL    string // For testing with httptest
}

// NewClient creates a new WLED client with default settings. host may be a
// name or an address, optionally with a ":port" suffix. IPv6 addresses may
// be bare ("::1") or bracketed ("[::1]", "[::1]:8080").
func NewClient(host string) *Client {
	port := DefaultPort
	if h, p, err := net.SplitHostPort(host); err == nil {
		if n, err := strconv.Atoi(p); err == nil {
			host, port = h, n
		}
	} else if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		host = host[1 : len(host)-1]
	}
	return NewClientWithPort(host, port)
}

// NewClientWithPort creates a new WLED client with a custom port.
func NewClientWithPort(host string, port int) *Client {
	return &Client{
		Host: host,
		Port: port,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

func (c *Client) url(path string) string {
	if c.testURL != "" {
		return c.testURL + path
	}

	host := c.Host
	switch {
	case c.Port != DefaultPort && c.Port != 0:
		host = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	case strings.Contains(c.Host, ":"):
		host = "[" + c.Host + "]"
	}
	return "http://" + host + path
}

// Endpoint returns the full state API endpoint URL.
func (c *Client) Endpoint() string {
	return c.url(statePath)
}

func (c *Client) do(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return respBody, nil
}

// SendState posts a state command to the controller.
func (c *Client) SendState(ctx context.Context, cmd StateCommand) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to marshal command: %w", err)
	}
	_, err = c.do(ctx, http.MethodPost, c.Endpoint(), data)
	return err
}

// CurlCommand returns the shell command that would send cmd, for printing
// instead of sending.
func (c *Client) CurlCommand(cmd StateCommand) (string, error) {
	data, err := json.Marshal(cmd)
	if err != nil {
		return "", fmt.Errorf("failed to marshal command: %w", err)
	}
	return fmt.Sprintf(
		"curl -X POST '%s' -H 'Content-Type: application/json' -d '%s'",
		c.Endpoint(), data), nil
}

// Info is the part of GET /json/info that img2wled looks at.
type Info struct {
	Version string `json:"ver"`
	Name    string `json:"name"`
	LEDs    struct {
		Count int `json:"count"`
	} `json:"leds"`
}

// GetInfo queries the controller's info object.
func (c *Client) GetInfo(ctx context.Context) (*Info, error) {
	body, err := c.do(ctx, http.MethodGet, c.url(infoPath), nil)
	if err != nil {
		return nil, err
	}

	var info Info
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to decode info: %w", err)
	}
	if info.Version == "" {
		return nil, fmt.Errorf("response from %s is not a WLED info object", c.url(infoPath))
	}
	return &info, nil
}

// IsReachable checks if the controller answers.
func (c *Client) IsReachable(ctx context.Context) bool {
	_, err := c.GetInfo(ctx)
	return err == nil
}
