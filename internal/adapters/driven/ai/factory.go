// Package ai turns provider settings into embedding and text-generation adapters.
package ai

import (
	"context"
	"fmt"

	hashingembed "github.com/custodia-labs/citewise/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/custodia-labs/citewise/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/citewise/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/citewise/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/citewise/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/citewise/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/citewise/internal/core/domain"
	"github.com/custodia-labs/citewise/internal/core/ports/driven"
)

// appName is sent to OpenAI-compatible gateways that attribute traffic.
const appName = "citewise"

var _ driven.LLMFactory = NewLLM

// NewEmbedder builds the embedder for settings. It returns nil, nil when
// no embedding provider is configured.
func NewEmbedder(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, nil
	}
	if settings.Provider == domain.AIProviderAnthropic {
		return nil, fmt.Errorf("%w: anthropic does not support embeddings, use hashing, ollama or openai",
			domain.ErrUnsupportedType)
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderHashing:
		return hashingembed.NewEmbeddingService(hashingembed.Config{
			Dimensions:  dimensionsFor(settings, hashingembed.DefaultDimensions),
			Concurrency: settings.Concurrency,
		}), nil

	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:     settings.BaseURL,
			Model:       settings.Model,
			Dimensions:  dimensionsFor(settings, ollamaembed.DefaultDimensions),
			Concurrency: settings.Concurrency,
			RateLimit:   settings.RateLimit,
		}), nil

	case domain.AIProviderOpenAI:
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensionsFor(settings, 0),
			RateLimit:  settings.RateLimit,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil
	}
	return nil, fmt.Errorf("%w: embedding provider %q", domain.ErrUnsupportedType, settings.Provider)
}

// ConnectEmbedder builds the embedder and pings it. Any failure, including
// a missing provider, wraps domain.ErrEmbeddingUnavailable.
func ConnectEmbedder(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := NewEmbedder(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'citewise settings show' to check",
			domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, fmt.Errorf("%w: no embedding provider configured", domain.ErrEmbeddingUnavailable)
	}

	if err := ping(ctx, svc.Ping); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: %s unreachable (%w). Run 'citewise settings show --check'",
			domain.ErrEmbeddingUnavailable, settings.Provider, err)
	}
	return svc, nil
}

// NewLLM builds the text-generation adapter for settings. The answerer calls
// it once per question with the corpus model already applied.
func NewLLM(settings domain.LLMSettings) (driven.LLMService, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: no LLM provider configured", domain.ErrLLMUnavailable)
	}

	var (
		svc driven.LLMService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	case domain.AIProviderOpenAI:
		svc, err = newOpenAILLM(settings)
	case domain.AIProviderAnthropic:
		svc, err = newAnthropicLLM(settings)
	default:
		err = fmt.Errorf("%w: LLM provider %q", domain.ErrUnsupportedType, settings.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}

func newOpenAILLM(settings domain.LLMSettings) (driven.LLMService, error) {
	svc, err := openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		AppName: appName,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func newAnthropicLLM(settings domain.LLMSettings) (driven.LLMService, error) {
	svc, err := anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// dimensionsFor resolves the vector size: explicit override, then the
// known-model table, then fallback.
func dimensionsFor(settings *domain.EmbeddingSettings, fallback int) int {
	if settings.Dimensions > 0 {
		return settings.Dimensions
	}
	if dims := domain.KnownDimensions(settings.Model); dims > 0 {
		return dims
	}
	return fallback
}
