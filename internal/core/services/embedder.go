package services

import (
	"errors"
	"sync"

	"github.com/custodia-labs/citewise/internal/core/ports/driven"
	"github.com/custodia-labs/citewise/internal/logger"
)

var errEmbedderClosed = errors.New("embedder closed")

// EmbedderProvider supplies the process-wide embedding service.
type EmbedderProvider interface {
	Embedder() (driven.EmbeddingService, error)
}

// LazyEmbedder creates the embedding service on first use and shares it.
// A failed creation is remembered: every later call returns the same error.
type LazyEmbedder struct {
	create func() (driven.EmbeddingService, error)

	once     sync.Once
	embedder driven.EmbeddingService
	err      error
}

// NewLazyEmbedder wraps create so it runs at most once.
func NewLazyEmbedder(create func() (driven.EmbeddingService, error)) *LazyEmbedder {
	return &LazyEmbedder{create: create}
}

// Embedder returns the shared embedding service, creating it if needed.
func (l *LazyEmbedder) Embedder() (driven.EmbeddingService, error) {
	l.once.Do(func() {
		l.embedder, l.err = l.create()
		if l.err == nil {
			logger.Debug("embedder ready: model=%s dims=%d", l.embedder.ModelName(), l.embedder.Dimensions())
		}
	})
	return l.embedder, l.err
}

// Close releases the embedder if it was created.
func (l *LazyEmbedder) Close() error {
	l.once.Do(func() { l.err = errEmbedderClosed })
	if l.embedder == nil {
		return nil
	}
	return l.embedder.Close()
}

// staticEmbedder is an EmbedderProvider for an already created service.
type staticEmbedder struct {
	embedder driven.EmbeddingService
}

// StaticEmbedder returns a provider that always yields embedder.
func StaticEmbedder(embedder driven.EmbeddingService) EmbedderProvider {
	return staticEmbedder{embedder: embedder}
}

func (s staticEmbedder) Embedder() (driven.EmbeddingService, error) {
	return s.embedder, nil
}
