package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/citewise/internal/core/domain"
	"github.com/custodia-labs/citewise/internal/core/ports/driven"
	"github.com/custodia-labs/citewise/internal/core/ports/driving"
	"github.com/custodia-labs/citewise/internal/logger"
)

// Ensure BuildService implements the interface.
var _ driving.BuildService = (*BuildService)(nil)

// Invalidator drops cached state for a corpus tag.
type Invalidator interface {
	Invalidate(tag string)
}

// BuildService runs the offline pipeline for one corpus.
type BuildService struct {
	readers    driven.PageReaderRegistry
	segmenters driven.SegmenterFactory
	embedders  EmbedderProvider
	store      driven.CorpusStore
	settings   driving.SettingsService
	cache      Invalidator
	now        func() time.Time
}

// NewBuildService creates a new build service.
// The cache parameter is optional (can be nil); when set, a successful
// build invalidates the tag so queries in the same process see it.
func NewBuildService(
	readers driven.PageReaderRegistry,
	segmenters driven.SegmenterFactory,
	embedders EmbedderProvider,
	store driven.CorpusStore,
	settings driving.SettingsService,
	cache Invalidator,
) *BuildService {
	return &BuildService{
		readers:    readers,
		segmenters: segmenters,
		embedders:  embedders,
		store:      store,
		settings:   settings,
		cache:      cache,
		now:        time.Now,
	}
}

// BuildTag builds the corpus configured under tag.
func (s *BuildService) BuildTag(ctx context.Context, tag string) (*domain.CorpusInfo, error) {
	cs, err := s.settings.Corpus(tag)
	if err != nil {
		return nil, err
	}
	return s.Build(ctx, tag, cs.Source, cs.Path)
}

// Build reads source, segments it, embeds every passage in one batch and
// saves the corpus to output. Nothing is written unless every stage succeeds.
func (s *BuildService) Build(ctx context.Context, tag, source, output string) (*domain.CorpusInfo, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" || source == "" || output == "" {
		return nil, fmt.Errorf("%w: tag, source and output are required", domain.ErrInvalidInput)
	}

	logger.Section("Build " + tag)
	logger.Debug("Source: %s", source)
	logger.Debug("Output: %s", output)

	cs, err := s.corpusSettings(tag, source, output)
	if err != nil {
		return nil, err
	}

	stop := logger.Timed("read pages")
	pages, err := s.readers.ReadPages(ctx, source)
	stop()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	logger.Debug("Pages: %d", len(pages))

	segmenter, err := s.segmenters(*cs)
	if err != nil {
		return nil, err
	}
	passages := segmenter.Segment(pages)
	logger.Info("Segmented %d pages into %d passages", len(pages), len(passages))
	if len(passages) == 0 {
		logger.Warn("No passages found in %s; the corpus will be empty", source)
	}

	embedder, err := s.embedders.Embedder()
	if err != nil {
		return nil, err
	}

	vectors, err := s.embedPassages(ctx, embedder, passages)
	if err != nil {
		return nil, err
	}

	corpus := &domain.Corpus{
		Tag:        tag,
		Model:      embedder.ModelName(),
		Dimensions: embedder.Dimensions(),
		Passages:   make([]domain.EmbeddedPassage, len(passages)),
		BuiltAt:    s.now().UTC(),
	}
	for i, p := range passages {
		corpus.Passages[i] = domain.EmbeddedPassage{Passage: p, Embedding: vectors[i]}
	}

	stop = logger.Timed("save corpus")
	err = s.store.Save(ctx, corpus, output)
	stop()
	if err != nil {
		return nil, fmt.Errorf("save corpus %s: %w", tag, err)
	}

	if s.cache != nil {
		s.cache.Invalidate(tag)
	}

	info := corpus.Info(output)
	logger.Info("Built %s: %d passages, model %s", tag, info.PassageCount, info.Model)
	return &info, nil
}

// embedPassages embeds all passage texts in a single batch call.
func (s *BuildService) embedPassages(
	ctx context.Context, embedder driven.EmbeddingService, passages []domain.Passage,
) ([][]float32, error) {
	if len(passages) == 0 {
		return nil, nil
	}

	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}

	defer logger.Timed(fmt.Sprintf("embed %d passages", len(texts)))()
	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed passages: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: embedder returned %d vectors for %d passages",
			domain.ErrEmbeddingUnavailable, len(vectors), len(texts))
	}
	return vectors, nil
}

// corpusSettings resolves segmentation settings for tag. An unconfigured
// tag is built without heading recognition.
func (s *BuildService) corpusSettings(tag, source, output string) (*domain.CorpusSettings, error) {
	cs, err := s.settings.Corpus(tag)
	switch {
	case err == nil:
		resolved := *cs
		resolved.Source = source
		resolved.Path = output
		return &resolved, nil
	case errors.Is(err, domain.ErrUnknownCorpus):
		logger.Debug("Corpus %s is not configured; headings disabled", tag)
		return &domain.CorpusSettings{
			Tag:      tag,
			Source:   source,
			Path:     output,
			Headings: domain.HeadingStyleNone,
		}, nil
	default:
		return nil, err
	}
}
