package normalisers

import (
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/citewise/internal/core/domain"
)

const formFeed = "\f"

// ReadFile reads a source file, mapping failures to domain.ErrSourceUnavailable.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}
	return data, nil
}

// SplitFormFeeds splits text into pages on form-feed characters.
// A trailing form feed does not start an extra page.
func SplitFormFeeds(text string) []string {
	pages := strings.Split(text, formFeed)
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return pages
}

// NumberPages numbers page texts from 1 in order.
func NumberPages(texts []string) []domain.Page {
	pages := make([]domain.Page, len(texts))
	for i, text := range texts {
		pages[i] = domain.Page{Number: i + 1, Text: text}
	}
	return pages
}

// CleanText strips a UTF-8 byte order mark and normalises line endings.
func CleanText(data []byte) string {
	text := strings.TrimPrefix(string(data), "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
