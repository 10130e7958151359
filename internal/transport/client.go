// Package transport implements the HTTP client used for every call to the
// banking API: a fixed base URL, default headers, and an ordered middleware
// chain applied around each round trip. Credential attachment and 401
// handling are middlewares, not hidden hooks, so each is testable on its own.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	dErrors "teller/pkg/domain-errors"
)

const userAgent = "teller/0.1.0"

// Client is the single configured HTTP client for the remote API. One
// attempt per call; no retries. Callers handle failure.
type Client struct {
	baseURL    string
	httpClient *http.Client
	transport  http.RoundTripper
	logger     *slog.Logger
}

// Option configures a Client instance.
type Option func(*Client)

// WithLogger sets the structured logger used for transport diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout bounds every request issued through the client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithMiddleware appends middlewares to the chain. The first middleware
// given is the outermost around the round trip.
func WithMiddleware(mw ...Middleware) Option {
	return func(c *Client) {
		c.transport = Chain(c.transport, mw...)
	}
}

// New creates a client rooted at baseURL. The trailing slash is trimmed so
// request paths always start with "/".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.transport == nil {
		c.transport = http.DefaultTransport
	}
	c.httpClient.Transport = c.transport
	return c
}

// Do issues a single request. A non-nil body is JSON-encoded; a non-nil out
// receives the decoded 2xx response body. Non-2xx responses become domain
// errors carrying the server's "message" field when present.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode request body")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, ErrCircuitOpen) {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "service unavailable")
		}
		c.logger.WarnContext(ctx, "request failed",
			"method", method,
			"path", path,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeNetwork, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.decodeError(resp)
	}

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to decode response body")
	}
	return nil
}

// Get issues a GET request and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with the given body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Patch issues a PATCH request with the given body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// errorPayload is the error body shape the API returns on non-2xx statuses.
type errorPayload struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) decodeError(resp *http.Response) error {
	code := dErrors.FromStatus(resp.StatusCode)

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return dErrors.New(code, "")
	}

	var payload errorPayload
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Message != "" {
			return dErrors.New(code, payload.Message)
		}
		if payload.Error != "" {
			return dErrors.New(code, payload.Error)
		}
	}
	return &dErrors.Error{
		Code: code,
		Err:  fmt.Errorf("unexpected status %d", resp.StatusCode),
	}
}
