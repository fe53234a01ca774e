package driven

import "github.com/custodia-labs/citewise/internal/core/domain"

// Segmenter splits ordered pages into passages with section provenance.
// Implementations are pure: no I/O and no state retained between calls.
type Segmenter interface {
	Segment(pages []domain.Page) []domain.Passage
}

// SegmenterFactory builds the segmenter configured for a corpus.
type SegmenterFactory func(corpus domain.CorpusSettings) (Segmenter, error)
