// Package markdown reads Markdown sources as plain page text.
package markdown

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/citewise/internal/core/domain"
	"github.com/custodia-labs/citewise/internal/core/ports/driven"
	"github.com/custodia-labs/citewise/internal/normalisers"
)

// Ensure Reader implements the interface.
var _ driven.PageReader = (*Reader)(nil)

// frontMatter is a leading YAML or TOML metadata block.
var frontMatter = regexp.MustCompile(`\A(?s)(---|\+\+\+)\n.*?\n(---|\+\+\+)\n`)

// rules are applied in order; fenced code goes first so its contents never
// reach the inline rules.
var rules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile("(?s)```[^`]*```"), ""},
	{regexp.MustCompile("`([^`]+)`"), "$1"},
	{regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`), ""},
	{regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`), "$1"},
	{regexp.MustCompile(`(?m)^#{1,6}\s+`), ""},
	{regexp.MustCompile(`(?m)^>\s*`), ""},
	{regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`), ""},
	{regexp.MustCompile(`(?m)^\s*[-*+]\s+`), ""},
	{regexp.MustCompile(`(\*\*|__|\*)`), ""},
	{regexp.MustCompile(`\n{3,}`), "\n\n"},
}

// Reader handles Markdown documents.
type Reader struct{}

// New creates a new Markdown reader.
func New() *Reader {
	return &Reader{}
}

// Extensions returns the file extensions this reader handles.
func (r *Reader) Extensions() []string {
	return []string{".md", ".markdown"}
}

// ReadPages returns the document's pages with Markdown syntax removed.
// Form feeds separate pages; without them the file is a single page.
func (r *Reader) ReadPages(ctx context.Context, path string) ([]domain.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := normalisers.ReadFile(path)
	if err != nil {
		return nil, err
	}

	text := frontMatter.ReplaceAllString(normalisers.CleanText(data), "")
	texts := normalisers.SplitFormFeeds(text)
	for i, text := range texts {
		texts[i] = stripMarkdown(text)
	}
	return normalisers.NumberPages(texts), nil
}

// stripMarkdown reduces Markdown to its readable text. Heading lines keep
// their text so section headings still segment.
func stripMarkdown(content string) string {
	for _, r := range rules {
		content = r.re.ReplaceAllString(content, r.repl)
	}
	return strings.TrimSpace(content)
}
