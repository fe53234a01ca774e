// Package ratelimit throttles and backs off requests to remote embedding APIs.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/citewise/internal/adapters/driven/apiclient"
	"github.com/custodia-labs/citewise/internal/logger"
)

// Config holds rate limiting configuration for an embedding endpoint.
type Config struct {
	// RequestsPerSecond is the sustained rate limit. Zero or less disables throttling.
	RequestsPerSecond float64

	// BurstSize is the maximum burst size (default: 1).
	BurstSize int
}

// Backoff bounds for retried requests.
const (
	baseDelay = 200 * time.Millisecond
	maxDelay  = 5 * time.Second
)

// RateLimiter paces requests with a token bucket and honours server
// Retry-After hints. It is safe for concurrent use.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// New creates a rate limiter with the given configuration.
func New(cfg Config) *RateLimiter {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(limit, cfg.BurstSize),
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by RecordRateLimitError.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		if err := Sleep(ctx, time.Until(retryAt)); err != nil {
			return err
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimitError pauses every caller until the server's retry hint has passed.
func (r *RateLimiter) RecordRateLimitError(retryAfter time.Duration) {
	if retryAfter <= 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if at := time.Now().Add(retryAfter); at.After(r.retryAt) {
		r.retryAt = at
	}
}

// Call runs fn once the limiter admits it. Temporary API failures (429, 5xx)
// are retried up to retries more times with exponential backoff; a 429's
// Retry-After hint also holds back every other caller sharing r.
func (r *RateLimiter) Call(ctx context.Context, label string, retries int, fn func(context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if werr := r.Wait(ctx); werr != nil {
			return fmt.Errorf("rate limit wait: %w", werr)
		}
		if err = fn(ctx); err == nil {
			return nil
		}

		var se *apiclient.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusTooManyRequests {
			r.RecordRateLimitError(ParseRetryAfter(se.RetryAfter))
		}
		if attempt >= retries || !apiclient.IsTemporary(err) {
			return err
		}

		delay := RetryDelay(attempt)
		logger.Debug("%s: retry %d/%d in %s: %v", label, attempt+1, retries, delay, err)
		if serr := Sleep(ctx, delay); serr != nil {
			return serr
		}
	}
}

// RetryDelay returns the exponential backoff for a zero-based attempt, capped at 5s.
func RetryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 8 {
		return maxDelay
	}
	d := baseDelay << attempt
	if d > maxDelay {
		d = maxDelay
	}
	return d
}

// ParseRetryAfter reads a Retry-After header given in seconds.
// It returns zero when the header is missing or not a number.
func ParseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
