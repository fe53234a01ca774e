// Package plaintext reads plain text sources.
// Pages are separated by form feeds, as written by pdftotext and most
// print-to-text tools. A file without form feeds is a single page.
package plaintext

import (
	"context"

	"github.com/custodia-labs/citewise/internal/core/domain"
	"github.com/custodia-labs/citewise/internal/core/ports/driven"
	"github.com/custodia-labs/citewise/internal/normalisers"
)

// Ensure Reader implements the interface.
var _ driven.PageReader = (*Reader)(nil)

// Reader handles plain text documents.
type Reader struct{}

// New creates a new plain text reader.
func New() *Reader {
	return &Reader{}
}

// Extensions returns the file extensions this reader handles.
func (r *Reader) Extensions() []string {
	return []string{".txt", ".text"}
}

// ReadPages returns the file's form-feed separated pages.
func (r *Reader) ReadPages(ctx context.Context, path string) ([]domain.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := normalisers.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return normalisers.NumberPages(normalisers.SplitFormFeeds(normalisers.CleanText(data))), nil
}
