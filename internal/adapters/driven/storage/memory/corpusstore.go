package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/citewise/internal/core/domain"
	"github.com/custodia-labs/citewise/internal/core/ports/driven"
)

// Ensure CorpusStore implements the interface.
var _ driven.CorpusStore = (*CorpusStore)(nil)

// CorpusStore is an in-memory implementation of driven.CorpusStore keyed by path.
// Corpora are copied on the way in and out so callers cannot mutate stored state.
type CorpusStore struct {
	mu      sync.RWMutex
	corpora map[string]domain.Corpus
	loads   map[string]int
}

// NewCorpusStore creates a new in-memory corpus store.
func NewCorpusStore() *CorpusStore {
	return &CorpusStore{
		corpora: make(map[string]domain.Corpus),
		loads:   make(map[string]int),
	}
}

// Save stores a corpus at path, replacing any previous corpus.
func (s *CorpusStore) Save(ctx context.Context, corpus *domain.Corpus, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if corpus == nil {
		return fmt.Errorf("save corpus: %w: nil corpus", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.corpora[path] = copyCorpus(corpus)
	return nil
}

// Load retrieves the corpus stored at path.
func (s *CorpusStore) Load(ctx context.Context, path string) (*domain.Corpus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	corpus, ok := s.corpora[path]
	if !ok {
		return nil, fmt.Errorf("load corpus %s: %w", path, domain.ErrCorpusUnavailable)
	}
	s.loads[path]++
	c := copyCorpus(&corpus)
	return &c, nil
}

// Info summarises the corpus stored at path.
func (s *CorpusStore) Info(ctx context.Context, path string) (*domain.CorpusInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	corpus, ok := s.corpora[path]
	if !ok {
		return nil, fmt.Errorf("corpus info %s: %w", path, domain.ErrCorpusUnavailable)
	}
	info := corpus.Info(path)
	return &info, nil
}

// Loads returns how many times the corpus at path has been loaded.
func (s *CorpusStore) Loads(path string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loads[path]
}

func copyCorpus(c *domain.Corpus) domain.Corpus {
	out := *c
	out.Passages = make([]domain.EmbeddedPassage, len(c.Passages))
	for i, p := range c.Passages {
		out.Passages[i] = domain.EmbeddedPassage{
			Passage:   p.Passage,
			Embedding: append([]float32(nil), p.Embedding...),
		}
	}
	return out
}
