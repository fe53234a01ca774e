package html

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/citewise/internal/core/domain"
	"github.com/custodia-labs/citewise/internal/core/ports/driven"
	"github.com/custodia-labs/citewise/internal/normalisers"
)

var _ driven.PageReader = (*Reader)(nil)

// Content of these elements is never text.
var skipped = map[atom.Atom]bool{
	atom.Head: true, atom.Script: true, atom.Style: true,
	atom.Noscript: true, atom.Svg: true, atom.Template: true,
}

// These elements end the current line.
var blocks = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Hr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Li: true, atom.Tr: true, atom.Blockquote: true, atom.Pre: true,
	atom.Table: true, atom.Section: true, atom.Article: true,
	atom.Dt: true, atom.Dd: true, atom.Caption: true,
}

var (
	breakBefore = regexp.MustCompile(`(?i)(?:page-)?break-before\s*:\s*(?:always|page)`)
	breakAfter  = regexp.MustCompile(`(?i)(?:page-)?break-after\s*:\s*(?:always|page)`)
	spaces      = regexp.MustCompile(`[ \t\x{00A0}]+`)
)

// Reader extracts visible text from HTML.
type Reader struct{}

// New creates an HTML reader.
func New() *Reader {
	return &Reader{}
}

// Extensions lists the handled file types.
func (r *Reader) Extensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

// ReadPages returns the visible text of each page.
func (r *Reader) ReadPages(ctx context.Context, path string) ([]domain.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := normalisers.ReadFile(path)
	if err != nil {
		return nil, err
	}

	texts := normalisers.SplitFormFeeds(extract(normalisers.CleanText(data)))
	for i, t := range texts {
		texts[i] = tidy(t)
	}
	return normalisers.NumberPages(texts), nil
}

// extract walks the token stream, writing text with newlines at block
// boundaries and form feeds at CSS page breaks.
func extract(src string) string {
	z := html.NewTokenizer(strings.NewReader(src))
	var (
		out       strings.Builder
		skipDepth int
		// pendingBreaks[tag] counts open elements whose closing tag ends a page.
		pendingBreaks = map[atom.Atom]int{}
	)

	for {
		switch z.Next() {
		case html.ErrorToken:
			return out.String()

		case html.TextToken:
			if skipDepth == 0 {
				out.Write(z.Text())
			}

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if skipped[tok.DataAtom] {
				if tok.Type != html.SelfClosingTagToken {
					skipDepth++
				}
				continue
			}
			if skipDepth > 0 {
				continue
			}
			style := attr(tok, "style")
			if breakBefore.MatchString(style) {
				out.WriteString("\f")
			}
			if breakAfter.MatchString(style) {
				pendingBreaks[tok.DataAtom]++
			}
			if blocks[tok.DataAtom] {
				out.WriteString("\n")
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if skipped[a] {
				skipDepth = max(skipDepth-1, 0)
				continue
			}
			if skipDepth > 0 {
				continue
			}
			if blocks[a] {
				out.WriteString("\n")
			}
			if pendingBreaks[a] > 0 {
				pendingBreaks[a]--
				out.WriteString("\f")
			}
		}
	}
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// tidy collapses runs of spaces and drops blank lines.
func tidy(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(spaces.ReplaceAllString(line, " ")); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
