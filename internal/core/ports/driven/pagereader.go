package driven

import (
	"context"

	"github.com/custodia-labs/citewise/internal/core/domain"
)

// PageReader extracts ordered page text from a source document.
// Each reader handles specific file extensions (e.g., ".pdf", ".txt").
type PageReader interface {
	// Extensions returns the lower-case file extensions this reader handles.
	Extensions() []string

	// ReadPages returns the document's pages in order, numbered from 1.
	// Returns domain.ErrSourceUnavailable if the file is missing or unreadable.
	ReadPages(ctx context.Context, path string) ([]domain.Page, error)
}

// PageReaderRegistry selects the page reader for a source path.
type PageReaderRegistry interface {
	// ReadPages reads path using the reader registered for its extension.
	ReadPages(ctx context.Context, path string) ([]domain.Page, error)

	// Register adds a reader to the registry.
	Register(reader PageReader)

	// Extensions returns every extension that can be read.
	Extensions() []string
}
