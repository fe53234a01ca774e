package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/citewise/internal/core/domain"
	"github.com/custodia-labs/citewise/internal/core/ports/driven"
	"github.com/custodia-labs/citewise/internal/core/ports/driving"
	"github.com/custodia-labs/citewise/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// loadedCorpus is a corpus ready for querying.
type loadedCorpus struct {
	retriever driven.Retriever
	model     string
	size      int
}

// QueryService answers retrieval queries against per-tag corpora.
//
// Each corpus is loaded at most once per process. Concurrent first queries
// for one tag share a single load. Failed loads are not cached, nor are
// loads that an invalidation overtook.
type QueryService struct {
	settings   driving.SettingsService
	store      driven.CorpusStore
	embedders  EmbedderProvider
	retrievers driven.RetrieverFactory

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]*loadedCorpus
	epoch uint64            // bumped by InvalidateAll
	gens  map[string]uint64 // bumped by Invalidate
}

// generation identifies the cache state a load started from.
type generation struct {
	epoch, tag uint64
}

// NewQueryService creates a new query service.
func NewQueryService(
	settings driving.SettingsService,
	store driven.CorpusStore,
	embedders EmbedderProvider,
	retrievers driven.RetrieverFactory,
) *QueryService {
	return &QueryService{
		settings:   settings,
		store:      store,
		embedders:  embedders,
		retrievers: retrievers,
		cache:      make(map[string]*loadedCorpus),
		gens:       make(map[string]uint64),
	}
}

// Query returns at most k matches for text, best first.
// A k of zero uses the configured search.top_k.
func (s *QueryService) Query(ctx context.Context, tag, text string, k int) ([]domain.Match, error) {
	logger.Section("Query " + tag)
	logger.Debug("Query: %q", text)

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: query text is empty", domain.ErrInvalidInput)
	}
	k, err := s.resolveK(k)
	if err != nil {
		return nil, err
	}

	corpus, err := s.load(ctx, tag)
	if err != nil {
		return nil, err
	}
	if corpus.size == 0 {
		return nil, fmt.Errorf("corpus %s: %w", tag, domain.ErrEmptyCorpus)
	}

	embedder, err := s.embedders.Embedder()
	if err != nil {
		return nil, err
	}
	if embedder.ModelName() != corpus.model {
		return nil, fmt.Errorf("%w: corpus %s was built with %q but the embedder is %q; rebuild it with 'citewise build %s'",
			domain.ErrModelMismatch, tag, corpus.model, embedder.ModelName(), tag)
	}

	vector, err := embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := corpus.retriever.TopK(vector, k)
	if err != nil {
		return nil, fmt.Errorf("corpus %s: %w", tag, err)
	}
	logger.Debug("Matches: %d (k=%d)", len(matches), k)
	return matches, nil
}

// Invalidate drops the cached corpus for tag so the next query reloads it.
func (s *QueryService) Invalidate(tag string) {
	s.mu.Lock()
	delete(s.cache, tag)
	s.gens[tag]++
	s.mu.Unlock()
	s.group.Forget(tag)
	logger.Debug("Invalidated cached corpus %s", tag)
}

// InvalidateAll drops every cached corpus. Used after the configuration
// is reloaded, since any tag may now point at a different file.
func (s *QueryService) InvalidateAll() {
	s.mu.Lock()
	tags := make([]string, 0, len(s.cache))
	for tag := range s.cache {
		tags = append(tags, tag)
	}
	s.cache = make(map[string]*loadedCorpus)
	s.epoch++
	s.mu.Unlock()
	for _, tag := range tags {
		s.group.Forget(tag)
	}
	logger.Debug("Invalidated %d cached corpora", len(tags))
}

// resolveK applies the configured default to a zero k.
func (s *QueryService) resolveK(k int) (int, error) {
	if k < 0 {
		return 0, fmt.Errorf("%w: k must be at least 1, got %d", domain.ErrInvalidInput, k)
	}
	if k > 0 {
		return k, nil
	}
	settings, err := s.settings.Get()
	if err != nil {
		return 0, err
	}
	return settings.Search.TopK, nil
}

// load returns the cached corpus for tag, loading it on first use.
// The load is shared by every caller, so it ignores any one caller's
// cancellation.
func (s *QueryService) load(ctx context.Context, tag string) (*loadedCorpus, error) {
	if corpus := s.cached(tag); corpus != nil {
		return corpus, nil
	}

	v, err, shared := s.group.Do(tag, func() (any, error) {
		if corpus := s.cached(tag); corpus != nil {
			return corpus, nil
		}
		gen := s.generation(tag)

		cs, err := s.settings.Corpus(tag)
		if err != nil {
			return nil, err
		}

		defer logger.Timed("load corpus " + tag)()
		corpus, err := s.store.Load(context.WithoutCancel(ctx), cs.Path)
		if err != nil {
			return nil, fmt.Errorf("load corpus %s: %w", tag, err)
		}

		retriever, err := s.retrievers(corpus.Passages)
		if err != nil {
			return nil, fmt.Errorf("index corpus %s: %w", tag, err)
		}

		loaded := &loadedCorpus{
			retriever: retriever,
			model:     corpus.Model,
			size:      corpus.Len(),
		}
		s.mu.Lock()
		current := generation{epoch: s.epoch, tag: s.gens[tag]}
		if current == gen {
			s.cache[tag] = loaded
		}
		s.mu.Unlock()
		if current != gen {
			logger.Debug("Corpus %s was invalidated while loading; not cached", tag)
		}

		logger.Info("Loaded corpus %s: %d passages, model %s", tag, loaded.size, loaded.model)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Debug("Shared concurrent load of %s", tag)
	}
	return v.(*loadedCorpus), nil
}

func (s *QueryService) generation(tag string) generation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return generation{epoch: s.epoch, tag: s.gens[tag]}
}

func (s *QueryService) cached(tag string) *loadedCorpus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache[tag]
}

// Ensure CorpusService implements the interface.
var _ driving.CorpusService = (*CorpusService)(nil)

// CorpusService reports on configured corpora.
type CorpusService struct {
	settings driving.SettingsService
	store    driven.CorpusStore
}

// NewCorpusService creates a new corpus service.
func NewCorpusService(settings driving.SettingsService, store driven.CorpusStore) *CorpusService {
	return &CorpusService{settings: settings, store: store}
}

// List returns the settings of every configured corpus, sorted by tag.
func (s *CorpusService) List(_ context.Context) ([]domain.CorpusSettings, error) {
	settings, err := s.settings.Get()
	if err != nil {
		return nil, err
	}
	tags := settings.CorpusTags()
	corpora := make([]domain.CorpusSettings, 0, len(tags))
	for _, tag := range tags {
		corpora = append(corpora, settings.Corpora[tag])
	}
	return corpora, nil
}

// Info returns the persisted metadata for tag.
func (s *CorpusService) Info(ctx context.Context, tag string) (*domain.CorpusInfo, error) {
	cs, err := s.settings.Corpus(tag)
	if err != nil {
		return nil, err
	}
	info, err := s.store.Info(ctx, cs.Path)
	if err != nil {
		return nil, fmt.Errorf("corpus %s: %w", tag, err)
	}
	return info, nil
}
