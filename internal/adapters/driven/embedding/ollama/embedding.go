// Package ollama embeds text with a local Ollama server.
package ollama

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/citewise/internal/adapters/driven/apiclient"
	"github.com/custodia-labs/citewise/internal/adapters/driven/embedding/ratelimit"
	"github.com/custodia-labs/citewise/internal/core/domain"
	"github.com/custodia-labs/citewise/internal/core/ports/driven"
	"github.com/custodia-labs/citewise/internal/logger"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL     = "http://localhost:11434"
	DefaultModel       = "all-minilm"
	DefaultTimeout     = 30 * time.Second
	DefaultDimensions  = 384
	DefaultConcurrency = 4
	DefaultMaxRetries  = 2

	progressEvery = 100
)

// Config configures an EmbeddingService. The zero value targets a local
// server running all-minilm.
type Config struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Dimensions int

	// Concurrency bounds in-flight requests during EmbedBatch.
	Concurrency int

	// MaxRetries counts retries after a 429 or 5xx. Negative disables them.
	MaxRetries int

	// RateLimit caps requests per second. Zero means unlimited.
	RateLimit float64
}

// EmbeddingService implements driven.EmbeddingService against /api/embeddings.
type EmbeddingService struct {
	api         *apiclient.Client
	model       string
	dimensions  int
	concurrency int
	maxRetries  int
	limiter     *ratelimit.RateLimiter
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// NewEmbeddingService fills in defaults for any unset field of cfg.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	switch {
	case cfg.MaxRetries < 0:
		cfg.MaxRetries = 0
	case cfg.MaxRetries == 0:
		cfg.MaxRetries = DefaultMaxRetries
	}

	return &EmbeddingService{
		api: apiclient.New(apiclient.Config{
			Provider:    "ollama",
			BaseURL:     cfg.BaseURL,
			Timeout:     cfg.Timeout,
			Unavailable: domain.ErrEmbeddingUnavailable,
		}),
		model:       cfg.Model,
		dimensions:  cfg.Dimensions,
		concurrency: cfg.Concurrency,
		maxRetries:  cfg.MaxRetries,
		limiter:     ratelimit.New(ratelimit.Config{RequestsPerSecond: cfg.RateLimit}),
	}
}

// Embed embeds a single text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	var resp embedResponse
	err := s.limiter.Call(ctx, "ollama embed", s.maxRetries, func(ctx context.Context) error {
		return s.api.PostJSON(ctx, "/api/embeddings", embedRequest{Model: s.model, Prompt: text}, &resp)
	})
	if err != nil {
		return nil, err
	}
	if got := len(resp.Embedding); got != s.dimensions {
		return nil, fmt.Errorf("ollama: model %s returned %d dimensions, expected %d: %w",
			s.model, got, s.dimensions, domain.ErrInvalidDimension)
	}

	vec := make([]float32, s.dimensions)
	for i, f := range resp.Embedding {
		vec[i] = float32(f)
	}
	return vec, nil
}

// EmbedBatch fans texts out over a bounded worker group, since the endpoint
// takes one prompt per call. Output order matches input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range texts {
		g.Go(func() error {
			vec, err := s.Embed(gctx, texts[i])
			if err != nil {
				return fmt.Errorf("embed text %d: %w", i, err)
			}
			out[i] = vec
			if n := done.Add(1); n%progressEvery == 0 {
				logger.Progress("ollama embed", int(n), len(texts))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *EmbeddingService) Dimensions() int { return s.dimensions }

func (s *EmbeddingService) ModelName() string { return s.model }

// Ping lists local models, which needs no inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "/api/tags", nil)
}

func (s *EmbeddingService) Close() error { return nil }
