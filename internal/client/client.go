// Package client talks to a running widgetmcp server over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/davebream/widgetmcp/internal/protocol"
	"github.com/davebream/widgetmcp/internal/server"
)

// LocalURL turns a listen address such as ":3000" into a URL reachable from
// this host.
func LocalURL(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return "http://" + listen
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}

type Client struct {
	baseURL string
	http    *http.Client
	nextID  atomic.Int64
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Health fetches the server health report.
func (c *Client) Health(ctx context.Context) (*server.Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+server.HealthPath, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("health check: unexpected status %s", resp.Status)
	}
	var h server.Health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return nil, fmt.Errorf("decode health: %w", err)
	}
	return &h, nil
}

// Call posts one JSON-RPC request to path and returns the raw response body.
// JSON-RPC errors are part of the body, not of err; err covers transport
// failures and responses that are not JSON.
func (c *Client) Call(ctx context.Context, path, method string, params json.RawMessage) (json.RawMessage, error) {
	if len(params) > 0 && !json.Valid(params) {
		return nil, fmt.Errorf("params are not valid JSON")
	}
	body, err := json.Marshal(protocol.Request{
		JSONRPC: protocol.Version,
		ID:      protocol.IntID(c.nextID.Add(1)),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("call %s: %s: %s", method, resp.Status, strings.TrimSpace(string(data)))
	}
	return data, nil
}
