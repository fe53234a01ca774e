// Package openai embeds text through the OpenAI /embeddings endpoint or any
// API that speaks the same dialect.
package openai

import (
	"cmp"
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/custodia-labs/citewise/internal/adapters/driven/apiclient"
	"github.com/custodia-labs/citewise/internal/adapters/driven/embedding/ratelimit"
	"github.com/custodia-labs/citewise/internal/core/domain"
	"github.com/custodia-labs/citewise/internal/core/ports/driven"
	"github.com/custodia-labs/citewise/internal/logger"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL      = "https://api.openai.com/v1"
	DefaultModel        = "text-embedding-3-small"
	DefaultTimeout      = 60 * time.Second
	DefaultMaxBatchSize = 256
	DefaultMaxRetries   = 4

	fallbackDimensions = 1536
)

// nativeDimensions lists the output width of known models.
var nativeDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Config configures an EmbeddingService. Only APIKey is required.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration

	// Dimensions requests shortened vectors from text-embedding-3-* models.
	// For other models it must match the model's native width.
	Dimensions int

	// MaxBatchSize caps inputs per request.
	MaxBatchSize int

	// MaxRetries counts retries after a 429 or 5xx. Negative disables them.
	MaxRetries int

	// RateLimit caps requests per second. Zero means unlimited.
	RateLimit float64
}

// EmbeddingService implements driven.EmbeddingService over HTTP.
type EmbeddingService struct {
	api          *apiclient.Client
	model        string
	dimensions   int
	shortenable  bool
	maxBatchSize int
	maxRetries   int
	limiter      *ratelimit.RateLimiter
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingItem struct {
	Embedding []float64 `json:"embedding"`
	Index     int       `json:"index"`
}

type embeddingResponse struct {
	Data []embeddingItem `json:"data"`
}

// NewEmbeddingService validates cfg and fills in defaults.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	cfg.BaseURL = cmp.Or(cfg.BaseURL, DefaultBaseURL)
	cfg.Model = cmp.Or(cfg.Model, DefaultModel)
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = DefaultMaxBatchSize
	}
	switch {
	case cfg.MaxRetries < 0:
		cfg.MaxRetries = 0
	case cfg.MaxRetries == 0:
		cfg.MaxRetries = DefaultMaxRetries
	}

	dims := cfg.Dimensions
	if dims == 0 {
		dims = nativeDimensions[cfg.Model]
		if dims == 0 {
			dims = fallbackDimensions
		}
	}

	header := make(http.Header)
	header.Set("Authorization", "Bearer "+cfg.APIKey)

	return &EmbeddingService{
		api: apiclient.New(apiclient.Config{
			Provider:    "openai",
			BaseURL:     cfg.BaseURL,
			Timeout:     cfg.Timeout,
			Header:      header,
			Unavailable: domain.ErrEmbeddingUnavailable,
		}),
		model:        cfg.Model,
		dimensions:   dims,
		shortenable:  strings.HasPrefix(cfg.Model, "text-embedding-3-"),
		maxBatchSize: cfg.MaxBatchSize,
		maxRetries:   cfg.MaxRetries,
		limiter:      ratelimit.New(ratelimit.Config{RequestsPerSecond: cfg.RateLimit}),
	}, nil
}

// Embed embeds a single text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in order, sending at most MaxBatchSize per request.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for chunk := range slices.Chunk(texts, s.maxBatchSize) {
		first := len(out)
		var vecs [][]float32
		err := s.limiter.Call(ctx, "openai embed", s.maxRetries, func(ctx context.Context) error {
			var err error
			vecs, err = s.request(ctx, chunk)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("embed inputs %d-%d: %w", first, first+len(chunk)-1, err)
		}
		out = append(out, vecs...)
		if len(texts) > s.maxBatchSize {
			logger.Progress("openai embed", len(out), len(texts))
		}
	}
	return out, nil
}

// request performs one /embeddings call and returns vectors in input order.
func (s *EmbeddingService) request(ctx context.Context, texts []string) ([][]float32, error) {
	req := embeddingRequest{Model: s.model, Input: texts}
	if s.shortenable {
		req.Dimensions = s.dimensions
	}

	var resp embeddingResponse
	if err := s.api.PostJSON(ctx, "/embeddings", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai: got %d embeddings for %d inputs", len(resp.Data), len(texts))
	}

	vecs := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(vecs) || vecs[item.Index] != nil {
			return nil, fmt.Errorf("openai: bad embedding index %d", item.Index)
		}
		if len(item.Embedding) != s.dimensions {
			return nil, fmt.Errorf("openai: model %s returned %d dimensions, expected %d: %w",
				s.model, len(item.Embedding), s.dimensions, domain.ErrInvalidDimension)
		}
		vec := make([]float32, len(item.Embedding))
		for i, f := range item.Embedding {
			vec[i] = float32(f)
		}
		vecs[item.Index] = vec
	}
	return vecs, nil
}

func (s *EmbeddingService) Dimensions() int { return s.dimensions }

func (s *EmbeddingService) ModelName() string { return s.model }

// Ping lists models, which checks the key without running inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "/models", nil)
}

func (s *EmbeddingService) Close() error { return nil }
