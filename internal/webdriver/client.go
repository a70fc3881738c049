package webdriver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to a WebDriver endpoint. The zero value is not usable;
// construct with New.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New creates a client for the driver at baseURL, e.g.
// "http://127.0.0.1:4444". The generous request timeout covers slow
// page loads during navigation; per-step deadlines are enforced by the
// caller's context and the wait helpers.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

// Capabilities is the alwaysMatch capability set for a new session.
type Capabilities map[string]any

// FirefoxCapabilities builds the capability set for a headless Firefox
// session, optionally reusing a profile directory. An empty profile path
// lets the browser create a temporary profile.
func FirefoxCapabilities(headless bool, profilePath string) Capabilities {
	args := []string{}
	if headless {
		args = append(args, "-headless")
	}
	if profilePath != "" {
		args = append(args, "-profile", profilePath)
	}
	return Capabilities{
		"browserName": "firefox",
		"moz:firefoxOptions": map[string]any{
			"args": args,
		},
	}
}

type newSessionRequest struct {
	Capabilities struct {
		AlwaysMatch Capabilities `json:"alwaysMatch"`
	} `json:"capabilities"`
}

type newSessionValue struct {
	SessionID string `json:"sessionId"`
}

// NewSession starts a browser session and returns its handle.
func (c *Client) NewSession(ctx context.Context, caps Capabilities) (*Session, error) {
	var req newSessionRequest
	req.Capabilities.AlwaysMatch = caps

	var value newSessionValue
	if err := c.do(ctx, http.MethodPost, "/session", req, &value); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	if value.SessionID == "" {
		return nil, fmt.Errorf("creating session: %w", ErrSession)
	}
	return &Session{client: c, id: value.SessionID}, nil
}

// Status reports whether the driver endpoint is up. Used to probe a
// freshly started local driver before creating a session.
func (c *Client) Status(ctx context.Context) error {
	var value struct {
		Ready bool `json:"ready"`
	}
	return c.do(ctx, http.MethodGet, "/status", nil, &value)
}

// wireResponse is the W3C envelope: every response nests its payload
// under "value"; errors carry an object with "error" and "message".
type wireResponse struct {
	Value json.RawMessage `json:"value"`
}

type wireError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// do performs one wire-protocol request. body and out may be nil.
// Non-2xx responses are decoded into a DriverError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		// The protocol requires a JSON body on every POST, even for
		// parameterless commands like click.
		reader = bytes.NewReader([]byte("{}"))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSession, err)
	}
	defer res.Body.Close()

	var wire wireResponse
	if err := json.NewDecoder(res.Body).Decode(&wire); err != nil {
		return fmt.Errorf("decoding driver response (status %d): %w", res.StatusCode, err)
	}

	if res.StatusCode/100 != 2 {
		var we wireError
		if err := json.Unmarshal(wire.Value, &we); err != nil || we.Error == "" {
			return &DriverError{Code: "unknown error", Message: string(wire.Value), Status: res.StatusCode}
		}
		return &DriverError{Code: we.Error, Message: we.Message, Status: res.StatusCode}
	}

	if out != nil {
		if err := json.Unmarshal(wire.Value, out); err != nil {
			return fmt.Errorf("decoding driver value: %w", err)
		}
	}
	return nil
}
