package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	tuistyles "github.com/custodia-labs/citewise/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/citewise/internal/core/domain"
)

// styles renders command output. Colour is applied only when writing to a
// terminal so piped output and tests see plain text.
type styles struct {
	colour bool

	title   lipgloss.Style
	heading lipgloss.Style
	muted   lipgloss.Style
	score   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
}

func newStyles(colour bool) *styles {
	theme := tuistyles.DefaultStyles()
	return &styles{
		colour:  colour,
		title:   theme.Title,
		heading: theme.Subtitle,
		muted:   theme.Muted,
		score:   theme.Score,
		success: theme.Success,
		warning: theme.Warning,
		failure: theme.Error,
	}
}

// stylesFor picks coloured or plain styles for w.
func stylesFor(w io.Writer) *styles {
	f, ok := w.(*os.File)
	return newStyles(ok && term.IsTerminal(int(f.Fd())))
}

func (s *styles) render(style lipgloss.Style, text string) string {
	if !s.colour {
		return text
	}
	return style.Render(text)
}

func (s *styles) Title(text string) string   { return s.render(s.title, text) }
func (s *styles) Heading(text string) string { return s.render(s.heading, text) }
func (s *styles) Muted(text string) string   { return s.render(s.muted, text) }
func (s *styles) Score(text string) string   { return s.render(s.score, text) }
func (s *styles) Success(text string) string { return s.render(s.success, text) }
func (s *styles) Warning(text string) string { return s.render(s.warning, text) }
func (s *styles) Failure(text string) string { return s.render(s.failure, text) }

// printMatches writes ranked matches as a numbered list.
func printMatches(cmd *cobra.Command, st *styles, matches []domain.Match) {
	for i, m := range matches {
		cmd.Printf("%s %s  %s\n",
			st.Heading(fmt.Sprintf("[%d]", i+1)),
			st.Score(fmt.Sprintf("%.4f", m.Score)),
			st.Muted(fmt.Sprintf("%s, page %d", m.Section, m.Page)))
		cmd.Println(indent(m.Text, "    "))
		if i < len(matches)-1 {
			cmd.Println()
		}
	}
}

// printJSON writes v as indented JSON.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// indent prefixes every line of text.
func indent(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// emptyCorpusMessage is printed instead of an error when a corpus has no passages.
func emptyCorpusMessage(cmd *cobra.Command, st *styles, tag string) {
	cmd.Println(st.Warning(fmt.Sprintf("No passages in corpus %q.", tag)))
	cmd.Printf("Rebuild it from a longer source with 'citewise build %s'.\n", tag)
}
