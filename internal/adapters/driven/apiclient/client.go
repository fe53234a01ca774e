// Package apiclient sends JSON requests to remote model APIs and maps
// transport and HTTP failures onto domain errors.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/citewise/internal/core/domain"
)

// maxMessage caps how much of an error body ends up in an error string.
const maxMessage = 300

// Config describes one remote endpoint.
type Config struct {
	// Provider prefixes every error, e.g. "openai".
	Provider string

	// BaseURL is joined with request paths verbatim.
	BaseURL string

	// Timeout bounds each request, including reading the body.
	Timeout time.Duration

	// Header is sent with every request.
	Header http.Header

	// Unavailable is wrapped into transport failures and 5xx responses so
	// callers can match them with errors.Is.
	Unavailable error
}

// Client is a small JSON-over-HTTP client. It is safe for concurrent use.
type Client struct {
	http        *http.Client
	provider    string
	baseURL     string
	header      http.Header
	unavailable error
}

// New creates a client for cfg.
func New(cfg Config) *Client {
	return &Client{
		http:        &http.Client{Timeout: cfg.Timeout},
		provider:    cfg.Provider,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		header:      cfg.Header.Clone(),
		unavailable: cfg.Unavailable,
	}
}

// BaseURL returns the endpoint root requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PostJSON sends in as a JSON body to path and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", c.provider, err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(body), out)
}

// Get fetches path and decodes the response into out. A nil out discards the body.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, http.NoBody, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", c.provider, err)
	}
	for key, values := range c.header {
		req.Header[key] = values
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", c.provider, ctxErr)
		}
		return c.wrapUnavailable(fmt.Errorf("send request: %w", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.wrapUnavailable(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(resp, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.provider, err)
	}
	return nil
}

func (c *Client) wrapUnavailable(err error) error {
	if c.unavailable == nil {
		return fmt.Errorf("%s: %w", c.provider, err)
	}
	return fmt.Errorf("%s: %w: %w", c.provider, c.unavailable, err)
}

func (c *Client) statusError(resp *http.Response, body []byte) *StatusError {
	e := &StatusError{
		Provider:   c.provider,
		StatusCode: resp.StatusCode,
		Message:    errorMessage(body),
		RetryAfter: resp.Header.Get("Retry-After"),
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		e.kind = domain.ErrRateLimited
	case resp.StatusCode >= http.StatusInternalServerError:
		e.kind = c.unavailable
	}
	return e
}

// StatusError is a non-2xx response from a provider.
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string

	// RetryAfter is the raw Retry-After header, if any.
	RetryAfter string

	kind error
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s: status %d", e.Provider, e.StatusCode)
	if e.kind != nil {
		msg += ": " + e.kind.Error()
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Unwrap exposes domain.ErrRateLimited for 429 and the configured
// unavailable error for 5xx.
func (e *StatusError) Unwrap() error {
	return e.kind
}

// Temporary reports whether the same request may succeed later.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// IsTemporary reports whether err is a StatusError worth retrying.
func IsTemporary(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Temporary()
}

// errorMessage pulls a readable message out of a provider error body.
// It understands {"error":{"message":...}} and {"error":"..."} and falls
// back to the raw body.
func errorMessage(body []byte) string {
	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &nested) == nil && nested.Error.Message != "" {
		return nested.Error.Message
	}

	var flat struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &flat) == nil && flat.Error != "" {
		return flat.Error
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > maxMessage {
		msg = msg[:maxMessage] + "..."
	}
	return msg
}
