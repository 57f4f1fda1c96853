// Package notify tells the backend to revoke the current session. Calls are
// fire-and-forget: at most once, no retries, result discarded.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Notifier revokes the backend session identified by bearer.
type Notifier interface {
	Logout(ctx context.Context, bearer string) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, bearer string) error

func (f NotifierFunc) Logout(ctx context.Context, bearer string) error { return f(ctx, bearer) }

// Nop is used when no backend is configured.
type Nop struct{}

func (Nop) Logout(context.Context, string) error { return nil }

// Client posts to the backend's /logout route.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client whose requests are bounded by timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Logout sends POST /logout with no body. The response body is ignored;
// a non-2xx status is reported only so it can be logged.
func (c *Client) Logout(ctx context.Context, bearer string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/logout", nil)
	if err != nil {
		return fmt.Errorf("build logout request: %w", err)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("logout request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("logout request: status %d", resp.StatusCode)
	}
	return nil
}
