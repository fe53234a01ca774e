package driving

import (
	"context"

	"github.com/custodia-labs/citewise/internal/core/domain"
)

// QueryService ranks a corpus's passages against a natural-language query.
type QueryService interface {
	// Query returns at most k matches for text, best first.
	// The corpus for tag is loaded once per process and reused.
	Query(ctx context.Context, tag, text string, k int) ([]domain.Match, error)

	// Invalidate drops the cached corpus for tag so the next query reloads it.
	Invalidate(tag string)
}

// CorpusService reports on configured corpora.
type CorpusService interface {
	// List returns the settings of every configured corpus, sorted by tag.
	List(ctx context.Context) ([]domain.CorpusSettings, error)

	// Info returns the persisted metadata for tag.
	Info(ctx context.Context, tag string) (*domain.CorpusInfo, error)
}
