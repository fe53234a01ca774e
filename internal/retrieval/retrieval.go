// Package retrieval ranks embedded passages by cosine similarity to a query.
//
// The scan is exhaustive: every query scores every passage, O(n·d).
// Passage magnitudes are computed once when the index is built.
package retrieval

import (
	"fmt"
	"math"
	"sort"

	"github.com/viant/vec/search"

	"github.com/custodia-labs/citewise/internal/core/domain"
	"github.com/custodia-labs/citewise/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.Retriever = (*Index)(nil)

// ScorePrecision is the number of decimal places scores are rounded to.
const ScorePrecision = 4

// Index is an immutable brute-force cosine index over a passage set.
type Index struct {
	passages   []domain.EmbeddedPassage
	magnitudes []float32
	dims       int
}

// NewIndex builds an index over passages. All embeddings must share one
// length; a mixed corpus fails with domain.ErrInvalidDimension.
func NewIndex(passages []domain.EmbeddedPassage) (*Index, error) {
	idx := &Index{
		passages:   passages,
		magnitudes: make([]float32, len(passages)),
	}
	if len(passages) > 0 {
		idx.dims = len(passages[0].Embedding)
	}

	for i := range passages {
		if len(passages[i].Embedding) != idx.dims {
			return nil, fmt.Errorf("%w: passage %d has %d dimensions, expected %d",
				domain.ErrInvalidDimension, i, len(passages[i].Embedding), idx.dims)
		}
		idx.magnitudes[i] = search.Float32s(passages[i].Embedding).Magnitude()
	}

	return idx, nil
}

// Factory adapts NewIndex to driven.RetrieverFactory.
func Factory(passages []domain.EmbeddedPassage) (driven.Retriever, error) {
	return NewIndex(passages)
}

// Len returns the number of indexed passages.
func (idx *Index) Len() int {
	return len(idx.passages)
}

// Dimensions returns the embedding length shared by all passages.
func (idx *Index) Dimensions() int {
	return idx.dims
}

type scored struct {
	pos   int
	score float64
}

// TopK returns the k passages most similar to query, best first.
// Equal scores keep corpus order. Scores are rounded after ranking.
func (idx *Index) TopK(query []float32, k int) ([]domain.Match, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", domain.ErrInvalidInput, k)
	}
	if len(idx.passages) == 0 {
		return nil, domain.ErrEmptyCorpus
	}
	if len(query) != idx.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, corpus has %d",
			domain.ErrInvalidDimension, len(query), idx.dims)
	}

	q := search.Float32s(query)
	qm := q.Magnitude()

	results := make([]scored, len(idx.passages))
	for i := range idx.passages {
		results[i] = scored{pos: i, score: cosine(q, qm, idx.passages[i].Embedding, idx.magnitudes[i])}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].score > results[b].score
	})

	if k > len(results) {
		k = len(results)
	}

	matches := make([]domain.Match, k)
	for i := 0; i < k; i++ {
		p := idx.passages[results[i].pos]
		matches[i] = domain.Match{
			Score:   Round(results[i].score),
			Text:    p.Text,
			Section: p.Section,
			Page:    p.Page,
		}
	}
	return matches, nil
}

// TopK ranks passages against query without keeping an index.
func TopK(query []float32, passages []domain.EmbeddedPassage, k int) ([]domain.Match, error) {
	idx, err := NewIndex(passages)
	if err != nil {
		return nil, err
	}
	return idx.TopK(query, k)
}

// Cosine returns the cosine similarity of a and b in [-1, 1].
// A zero-magnitude vector has similarity 0 with everything.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", domain.ErrInvalidDimension, len(a), len(b))
	}
	va := search.Float32s(a)
	return cosine(va, va.Magnitude(), b, search.Float32s(b).Magnitude()), nil
}

// cosine divides the dot product by precomputed magnitudes.
func cosine(q search.Float32s, qm float32, p []float32, pm float32) float64 {
	if qm == 0 || pm == 0 {
		return 0
	}
	var dot float64
	for i := range q {
		dot += float64(q[i]) * float64(p[i])
	}
	sim := dot / (float64(qm) * float64(pm))
	return math.Max(-1, math.Min(1, sim))
}

// Round rounds a score to ScorePrecision decimal places.
func Round(score float64) float64 {
	scale := math.Pow10(ScorePrecision)
	return math.Round(score*scale) / scale
}
