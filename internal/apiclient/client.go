// Package apiclient talks to a running paysplit server.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/theirongolddev/paysplit/internal/daemon"
)

const (
	requestTimeout = 2 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
)

// ErrUnreachable indicates no server answered at the address.
var ErrUnreachable = errors.New("apiclient: server unreachable")

// Client reads status and events from the server's HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for addr, given as host:port or a full http URL.
func New(addr string) *Client {
	addr = strings.TrimRight(strings.TrimSpace(addr), "/")
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	return &Client{
		baseURL: addr,
		http:    &http.Client{},
	}
}

// BaseURL returns the normalized server URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health reports whether the server answers /healthz.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.get(ctx, "/healthz")
	return err
}

// Status fetches the server status and budget summary.
func (c *Client) Status(ctx context.Context) (daemon.Status, error) {
	var st daemon.Status
	body, err := c.get(ctx, "/v1/status")
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(body, &st); err != nil {
		return st, fmt.Errorf("apiclient: parsing status: %w", err)
	}
	return st, nil
}

// Events fetches the buffered change events, oldest first.
func (c *Client) Events(ctx context.Context) ([]daemon.Event, error) {
	body, err := c.get(ctx, "/v1/events")
	if err != nil {
		return nil, err
	}
	var events []daemon.Event
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("apiclient: parsing events: %w", err)
	}
	return events, nil
}

// get performs a GET request and returns the response body.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("apiclient: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "paysplit-cli")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("apiclient: reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("apiclient: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
