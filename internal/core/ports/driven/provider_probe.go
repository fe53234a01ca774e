package driven

import (
	"context"

	"github.com/custodia-labs/citewise/internal/core/domain"
)

// ProviderProbe pings AI providers without doing real work.
// A provider that is not configured probes as nil.
type ProviderProbe interface {
	ProbeEmbedding(ctx context.Context, settings domain.EmbeddingSettings) error
	ProbeLLM(ctx context.Context, settings domain.LLMSettings) error
}
