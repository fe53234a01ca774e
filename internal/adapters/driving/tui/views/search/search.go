// Package search provides the query and results view for the TUI.
package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/citewise/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/citewise/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/citewise/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/citewise/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/citewise/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/citewise/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/citewise/internal/core/domain"
	"github.com/custodia-labs/citewise/internal/core/ports/driving"
)

// View represents the search view with input, match list, answer panel and
// status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	list      *list.MatchList
	statusbar *status.Bar

	queryService  driving.QueryService
	answerService driving.AnswerService
	ctx           context.Context

	tag        string
	query      string
	answer     *domain.Answer
	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true = input mode (typing), false = results mode (navigating)
}

// NewView creates a new search view. answerService may be nil.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	queryService driving.QueryService,
	answerService driving.AnswerService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewQueryInput(s),
		list:          list.NewMatchList(s),
		statusbar:     status.NewBar(s, km),
		queryService:  queryService,
		answerService: answerService,
		ctx:           context.Background(),
		width:         80,
		height:        24,
		focusInput:    true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.AnswerCompleted:
		v.handleAnswerCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg routes keys to the input while it has focus, otherwise to
// the results list.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.focusInput {
		return v.handleQueryKey(msg)
	}
	return v.handleResultsKey(msg)
}

func (v *View) handleQueryKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	keys := v.keymap.Query
	switch {
	case key.Matches(msg, keys.Back):
		return v, toCorpora
	case key.Matches(msg, keys.Submit):
		query := v.input.Value()
		if query == "" {
			return v, nil
		}
		v.query = query
		v.answer = nil
		v.statusbar.SetMessage("")
		v.statusbar.SetState(status.StateSearching)
		v.focusInput = false
		v.input.Blur()
		return v, v.performSearch(v.tag, query)
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleResultsKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	keys := v.keymap.Results
	switch {
	case key.Matches(msg, keys.Back):
		return v, toCorpora
	case key.Matches(msg, keys.Open):
		match := v.list.SelectedMatch()
		if match == nil {
			return v, nil
		}
		selected := messages.PassageSelected{Index: v.list.Selected(), Match: *match}
		return v, func() tea.Msg { return selected }
	case key.Matches(msg, keys.Up):
		v.list.MoveUp()
	case key.Matches(msg, keys.Down):
		v.list.MoveDown()
	case key.Matches(msg, keys.NewQuery):
		v.focusInput = true
		v.input.SetValue("")
		v.answer = nil
		return v, v.input.Focus()
	case key.Matches(msg, keys.Ask):
		if v.query == "" {
			return v, nil
		}
		v.statusbar.SetMessage("")
		v.statusbar.SetState(status.StateAnswering)
		return v, v.performAsk(v.tag, v.query)
	}
	return v, nil
}

func toCorpora() tea.Msg {
	return messages.ViewChanged{View: messages.ViewCorpora}
}

// performSearch ranks passages for query in the given corpus.
func (v *View) performSearch(tag, query string) tea.Cmd {
	return func() tea.Msg {
		if v.queryService == nil {
			return messages.ErrorOccurred{Err: ErrNoQueryService}
		}
		if tag == "" {
			return messages.ErrorOccurred{Err: ErrNoCorpus}
		}

		matches, err := v.queryService.Query(v.ctx, tag, query, 0)
		return messages.SearchCompleted{Tag: tag, Query: query, Matches: matches, Err: err}
	}
}

// performAsk requests a cited answer for query.
func (v *View) performAsk(tag, query string) tea.Cmd {
	return func() tea.Msg {
		if v.answerService == nil {
			return messages.AnswerCompleted{Err: ErrNoAnswerService}
		}

		answer, err := v.answerService.Ask(v.ctx, tag, query, 0)
		return messages.AnswerCompleted{Answer: answer, Err: err}
	}
}

// handleSearchCompleted processes ranked matches. Results for a corpus other
// than the active one are stale and dropped.
func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Tag != v.tag {
		return
	}
	if msg.Err != nil {
		v.list.SetMatches(nil)
		if errors.Is(msg.Err, domain.ErrEmptyCorpus) {
			v.err = nil
			v.statusbar.SetState(status.StateReady)
			v.statusbar.SetMessage(fmt.Sprintf("No passages in corpus %q. Rebuild it with 'citewise build %s'.", v.tag, v.tag))
			return
		}
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.list.SetMatches(msg.Matches)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetMatchCount(len(msg.Matches))
	v.focusInput = false
	v.input.Blur()
}

// handleAnswerCompleted stores the generated answer for display.
func (v *View) handleAnswerCompleted(msg messages.AnswerCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.answer = msg.Answer
	v.statusbar.SetState(status.StateResults)
	if msg.Answer != nil {
		v.statusbar.SetMessage("Answered by " + msg.Answer.Model)
	}
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render("citewise"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.answer != nil {
		body := lipgloss.NewStyle().Width(max(v.width-4, 20)).Render(v.answer.Text)
		sections = append(sections,
			v.styles.Subtitle.Render("Answer"),
			v.styles.Border.Padding(0, 1).Render(body),
			"")
	}

	sections = append(sections, v.list.View(), "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetTag switches the view to a corpus and clears previous results.
func (v *View) SetTag(tag string) {
	v.tag = tag
	v.input.SetTag(tag)
	v.statusbar.SetTag(tag)
	v.Reset()
}

// Reset clears the query, results and answer and focuses the input.
func (v *View) Reset() {
	v.query = ""
	v.answer = nil
	v.err = nil
	v.focusInput = true
	v.input.SetValue("")
	v.input.Focus()
	v.list.SetMatches(nil)
	v.statusbar.Clear()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)

	// Header, input, status bar and spacing take roughly 8 lines.
	v.list.SetDimensions(width, max(height-8, 4))
}

// Tag returns the active corpus.
func (v *View) Tag() string {
	return v.tag
}

// Query returns the last submitted query.
func (v *View) Query() string {
	return v.query
}

// Matches returns the current matches.
func (v *View) Matches() []domain.Match {
	return v.list.Matches()
}

// SelectedIndex returns the selected match index.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Answer returns the last generated answer, if any.
func (v *View) Answer() *domain.Answer {
	return v.answer
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// InputFocused reports whether keys go to the query input.
func (v *View) InputFocused() bool {
	return v.focusInput
}
