package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/marmos91/sfmp/pkg/session"
)

// Client queries a running server's status API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the status API at baseURL
// (e.g. "http://localhost:8080").
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Liveness calls GET /health.
func (c *Client) Liveness(ctx context.Context) (Response[Liveness], error) {
	var resp Response[Liveness]
	_, err := c.get(ctx, "/health", &resp)
	return resp, err
}

// Readiness calls GET /health/ready. A 503 is not an error; the returned
// envelope then carries the reason in Error.
func (c *Client) Readiness(ctx context.Context) (Response[Readiness], error) {
	var resp Response[Readiness]
	_, err := c.get(ctx, "/health/ready", &resp)
	return resp, err
}

// Sessions calls GET /api/v1/sessions.
func (c *Client) Sessions(ctx context.Context) ([]session.Info, error) {
	var resp Response[[]session.Info]
	code, err := c.get(ctx, "/api/v1/sessions", &resp)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, fmt.Errorf("sessions endpoint returned %d", code)
	}
	return resp.Data, nil
}

func (c *Client) get(ctx context.Context, path string, v any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return resp.StatusCode, fmt.Errorf("%s not available (status API route disabled)", path)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return resp.StatusCode, fmt.Errorf("decode %s: %w", path, err)
	}
	return resp.StatusCode, nil
}
