// Package messages holds the tea.Msg values passed between the TUI views
// and the root model.
package messages

import "github.com/custodia-labs/citewise/internal/core/domain"

// ViewType names a screen of the TUI.
type ViewType int

const (
	ViewCorpora ViewType = iota
	ViewSearch
	ViewPassage
	ViewHelp
)

var viewNames = [...]string{
	ViewCorpora: "corpora",
	ViewSearch:  "search",
	ViewPassage: "passage",
	ViewHelp:    "help",
}

func (v ViewType) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return "unknown"
	}
	return viewNames[v]
}

// CorpusStatus pairs a configured corpus with the metadata of its built
// file. Info is nil until the corpus has been built.
type CorpusStatus struct {
	Settings domain.CorpusSettings
	Info     *domain.CorpusInfo
}

func (c CorpusStatus) Built() bool { return c.Info != nil }

// CorporaLoaded answers the picker's request for the corpus list.
type CorporaLoaded struct {
	Corpora []CorpusStatus
	Err     error
}

// CorpusSelected moves from the picker to the search view for Tag.
type CorpusSelected struct{ Tag string }

// SearchCompleted is the result of one query against Tag.
type SearchCompleted struct {
	Tag     string
	Query   string
	Matches []domain.Match
	Err     error
}

// AnswerCompleted is the result of asking the LLM about the current results.
type AnswerCompleted struct {
	Answer *domain.Answer
	Err    error
}

// PassageSelected opens result Index in the reader.
type PassageSelected struct {
	Index int
	Match domain.Match
}

// ViewChanged switches the active screen.
type ViewChanged struct{ View ViewType }

// ErrorOccurred surfaces an error in the status bar.
type ErrorOccurred struct{ Err error }

// Quit ends the program.
type Quit struct{}
