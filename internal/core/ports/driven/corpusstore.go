package driven

import (
	"context"

	"github.com/custodia-labs/citewise/internal/core/domain"
)

// CorpusStore persists whole corpora. There is no append or update:
// rebuilding a corpus replaces the file in one atomic step.
type CorpusStore interface {
	// Save writes corpus to path atomically. Readers observe either the
	// previous file or the complete new one, never a partial write.
	Save(ctx context.Context, corpus *domain.Corpus, path string) error

	// Load reads the corpus at path with passages in saved order.
	// Returns domain.ErrCorpusUnavailable if the file is absent, truncated or corrupt.
	Load(ctx context.Context, path string) (*domain.Corpus, error)

	// Info reads corpus metadata without decoding embeddings.
	// Returns domain.ErrCorpusUnavailable under the same conditions as Load.
	Info(ctx context.Context, path string) (*domain.CorpusInfo, error)
}
