// Package segmenter splits extracted page text into passages that carry
// section and page provenance.
package segmenter

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/citewise/internal/core/domain"
	"github.com/custodia-labs/citewise/internal/core/ports/driven"
)

// Ensure Segmenter implements the interface.
var _ driven.Segmenter = (*Segmenter)(nil)

// DefaultMinBlockLength is the block length, in characters, at or below
// which a block is treated as page furniture and dropped.
const DefaultMinBlockLength = 50

// blankLine separates blocks: a newline, optional whitespace, a newline.
var blankLine = regexp.MustCompile(`\n[ \t\r\f\v]*\n`)

// Segmenter splits pages into passages.
// It holds only configuration; section state lives in a single Segment call.
type Segmenter struct {
	rule   HeadingRule
	minLen int
}

// Option configures the segmenter.
type Option func(*Segmenter)

// WithRule sets the heading rule.
func WithRule(rule HeadingRule) Option {
	return func(s *Segmenter) {
		if rule != nil {
			s.rule = rule
		}
	}
}

// WithMinBlockLength sets the minimum block length in characters.
// Blocks of this length or shorter are dropped.
func WithMinBlockLength(n int) Option {
	return func(s *Segmenter) {
		if n >= 0 {
			s.minLen = n
		}
	}
}

// New creates a segmenter. Without WithRule no headings are recognised.
func New(opts ...Option) *Segmenter {
	s := &Segmenter{
		rule:   noHeadings{},
		minLen: DefaultMinBlockLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ForCorpus builds the segmenter configured for a corpus.
// A custom heading pattern takes precedence over the named style.
func ForCorpus(cs domain.CorpusSettings) (driven.Segmenter, error) {
	registry := DefaultRegistry()

	style := cs.Headings.String()
	cfg := map[string]string{}
	if cs.HeadingPattern != "" {
		style = "pattern"
		cfg[ConfigPattern] = cs.HeadingPattern
		cfg[ConfigLabel] = cs.HeadingLabel
	}
	if style == "" {
		style = domain.HeadingStyleNone.String()
	}

	rule, err := registry.Build(style, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: corpus %s: %w", domain.ErrUnsupportedType, cs.Tag, err)
	}
	return New(WithRule(rule)), nil
}

// RuleName returns the name of the configured heading rule.
func (s *Segmenter) RuleName() string {
	return s.rule.Name()
}

// Segment returns the passages of pages in document order.
//
// Section state is carried across pages: it starts at domain.UnknownSection
// and moves to a new heading whenever a block matches the rule. A heading
// block is itself a passage labelled with its own heading.
func (s *Segmenter) Segment(pages []domain.Page) []domain.Passage {
	var passages []domain.Passage
	section := domain.UnknownSection

	for i, page := range pages {
		number := page.Number
		if number < 1 {
			number = i + 1
		}

		for _, block := range Blocks(page.Text) {
			if utf8.RuneCountInString(block) <= s.minLen {
				continue
			}
			if label, ok := s.rule.Match(block); ok {
				section = label
			}
			passages = append(passages, domain.Passage{
				Text:    block,
				Section: section,
				Page:    number,
			})
		}
	}

	return passages
}

// Blocks splits text on blank lines and trims each block.
// Empty blocks are omitted.
func Blocks(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	parts := blankLine.Split(text, -1)
	blocks := make([]string, 0, len(parts))
	for _, part := range parts {
		if block := strings.TrimSpace(part); block != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}
