// Package client is a thin convenience wrapper for CLI tools to call the
// gamemoded daemon's JSON API over a Unix domain socket. It reuses the DTOs
// from pkg/api so callers get typed results instead of generic maps.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/gamemode/gamemoded/pkg/api"
)

// Client holds an http.Client wired to a Unix socket.
type Client struct {
	hc   *http.Client
	base string // dummy scheme+host for Request.URL (http://unix)
}

// New returns a Client that dials the given Unix domain socket path.
func New(socketPath string) *Client {
	dial := func(ctx context.Context, _, _ string) (net.Conn, error) {
		return (&net.Dialer{}).DialContext(ctx, "unix", socketPath)
	}
	return &Client{
		hc:   &http.Client{Transport: &http.Transport{DialContext: dial}},
		base: "http://unix",
	}
}

// Register admits a game client by pid and executable path and returns the
// session ID.
func (c *Client) Register(ctx context.Context, pid int, path string) (string, error) {
	var out api.RegisterResponse
	err := c.post(ctx, "/v1/register", api.RegisterRequest{PID: pid, Path: path}, &out)
	return out.ID, err
}

// Unregister drops the game client for pid.
func (c *Client) Unregister(ctx context.Context, pid int) error {
	return c.post(ctx, "/v1/unregister", api.UnregisterRequest{PID: pid}, nil)
}

// Clients lists the registered game clients.
func (c *Client) Clients(ctx context.Context) ([]api.ClientInfo, error) {
	var out []api.ClientInfo
	err := c.get(ctx, "/v1/clients", &out)
	return out, err
}

// Check reports how the daemon's filter lists treat a client path.
func (c *Client) Check(ctx context.Context, clientPath string) (api.CheckResponse, error) {
	var out api.CheckResponse
	err := c.get(ctx, "/v1/check?client="+url.QueryEscape(clientPath), &out)
	return out, err
}

// Reload asks the daemon to reload gamemode.ini and returns the new config
// generation.
func (c *Client) Reload(ctx context.Context) (int64, error) {
	var out api.ReloadResponse
	err := c.post(ctx, "/v1/reload", struct{}{}, &out)
	return out.Generation, err
}

// Status retrieves the daemon status.
func (c *Client) Status(ctx context.Context) (api.StatusResponse, error) {
	var out api.StatusResponse
	err := c.get(ctx, "/v1/status", &out)
	return out, err
}

func (c *Client) post(ctx context.Context, path string, payload, v any) error {
	buf, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("daemon returned %s", resp.Status)
	}
	if v == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("daemon returned %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
