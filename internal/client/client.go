// Package client wraps the arbiter's HTTP API. All requests share one
// rate limiter so the process as a whole stays under the arbiter's
// request budget no matter which endpoints a tick touches.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"bomberbot/pkg/core"
)

// MaxRPS is the arbiter's global request budget. The limiter is
// clamped to it regardless of configuration.
const MaxRPS = 2.0

const requestTimeout = 5 * time.Second

// APIError is a non-2xx response from the arbiter.
type APIError struct {
	Status int
	Method string
	Path   string
	Body   string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("%s /%s: HTTP %d: %s", e.Method, e.Path, e.Status, body)
}

// Client is a rate-limited arbiter API client, safe for use from one
// goroutine (the tick loop owns it).
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

// New builds a client. maxRPS above the arbiter budget, zero or
// negative is clamped to MaxRPS.
func New(baseURL, token string, maxRPS float64) *Client {
	if maxRPS <= 0 || maxRPS > MaxRPS {
		maxRPS = MaxRPS
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: requestTimeout},
		limiter: rate.NewLimiter(rate.Limit(maxRPS), 1),
	}
}

// Get performs a rate-limited GET and decodes the JSON response into
// out (skipped when out is nil).
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post performs a rate-limited POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	url := c.baseURL + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Auth-Token", c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s /%s: %w", method, strings.TrimLeft(path, "/"), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s /%s: read body: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Method: method, Path: strings.TrimLeft(path, "/"), Body: string(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s /%s: decode response: %w", method, path, err)
	}
	return nil
}

// GetArena fetches and parses the current snapshot.
func (c *Client) GetArena(ctx context.Context) (*core.GameState, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, "arena", &raw); err != nil {
		return nil, err
	}
	return core.ParseState(raw)
}

// SendMove submits this tick's unit commands. The arbiter reports
// per-command problems in the response body rather than the status
// code, so the decoded response is returned even on success for the
// caller to log.
func (c *Client) SendMove(ctx context.Context, cmds []core.MoveCommand) (map[string]any, error) {
	var resp map[string]any
	err := c.Post(ctx, "move", core.MovePayload{Bombers: cmds}, &resp)
	return resp, err
}
