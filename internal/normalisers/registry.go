package normalisers

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/citewise/internal/core/domain"
	"github.com/custodia-labs/citewise/internal/core/ports/driven"
	"github.com/custodia-labs/citewise/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.PageReaderRegistry = (*Registry)(nil)

// Registry maps file extensions to page readers.
// A later registration for the same extension replaces the earlier one.
type Registry struct {
	mu      sync.RWMutex
	readers map[string]driven.PageReader
}

// NewRegistry creates a registry holding the given readers.
func NewRegistry(readers ...driven.PageReader) *Registry {
	r := &Registry{readers: make(map[string]driven.PageReader)}
	for _, reader := range readers {
		r.Register(reader)
	}
	return r
}

// Register adds a reader for each of its extensions.
func (r *Registry) Register(reader driven.PageReader) {
	if reader == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range reader.Extensions() {
		r.readers[strings.ToLower(ext)] = reader
	}
}

// Extensions returns every registered extension in sorted order.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.readers))
	for ext := range r.readers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ReadPages reads path with the reader registered for its extension.
// Returns domain.ErrUnsupportedType when no reader handles the extension.
func (r *Registry) ReadPages(ctx context.Context, path string) ([]domain.Page, error) {
	ext := strings.ToLower(filepath.Ext(path))

	r.mu.RLock()
	reader, ok := r.readers[ext]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no page reader for %q (supported: %s)",
			domain.ErrUnsupportedType, path, strings.Join(r.Extensions(), ", "))
	}

	pages, err := reader.ReadPages(ctx, path)
	if err != nil {
		return nil, err
	}
	logger.Debug("normalisers: %s -> %d pages", filepath.Base(path), len(pages))
	return pages, nil
}
