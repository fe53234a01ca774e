package driven

import "github.com/custodia-labs/citewise/internal/core/domain"

// Retriever ranks a fixed passage set against query vectors.
// Vectors in, matches out: the scan strategy stays behind this interface
// so an approximate index could replace it without touching callers.
// Implementations must be safe for concurrent TopK calls.
type Retriever interface {
	// TopK returns at most k matches, best first, ties in corpus order.
	// Returns domain.ErrInvalidDimension on a query/corpus length mismatch
	// and domain.ErrEmptyCorpus when there are no passages.
	TopK(query []float32, k int) ([]domain.Match, error)
}

// RetrieverFactory builds a Retriever over a loaded corpus.
type RetrieverFactory func(passages []domain.EmbeddedPassage) (Retriever, error)
