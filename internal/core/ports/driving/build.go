package driving

import (
	"context"

	"github.com/custodia-labs/citewise/internal/core/domain"
)

// BuildService runs the offline pipeline: read pages, segment, embed, save.
type BuildService interface {
	// Build segments and embeds source and writes the corpus to output.
	// If source cannot be read nothing is written and the error wraps
	// domain.ErrSourceUnavailable.
	Build(ctx context.Context, tag, source, output string) (*domain.CorpusInfo, error)

	// BuildTag builds the corpus configured under tag.
	BuildTag(ctx context.Context, tag string) (*domain.CorpusInfo, error)
}
