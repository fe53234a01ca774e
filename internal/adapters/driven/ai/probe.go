package ai

import (
	"context"
	"time"

	"github.com/custodia-labs/citewise/internal/core/domain"
	"github.com/custodia-labs/citewise/internal/core/ports/driven"
)

// PingTimeout bounds a single connectivity check.
const PingTimeout = 5 * time.Second

var _ driven.ProviderProbe = Probe{}

// Probe builds a throwaway adapter for the settings and pings it.
type Probe struct{}

// ProbeEmbedding pings the embedding provider described by settings.
func (Probe) ProbeEmbedding(ctx context.Context, settings domain.EmbeddingSettings) error {
	svc, err := NewEmbedder(&settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return ping(ctx, svc.Ping)
}

// ProbeLLM pings the LLM provider described by settings.
func (Probe) ProbeLLM(ctx context.Context, settings domain.LLMSettings) error {
	if !settings.IsConfigured() {
		return nil
	}
	svc, err := NewLLM(settings)
	if err != nil {
		return err
	}
	defer svc.Close()
	return ping(ctx, svc.Ping)
}

func ping(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()
	return fn(ctx)
}
