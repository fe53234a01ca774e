// Package status renders the one-line bar under the search view.
package status

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/citewise/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/citewise/internal/adapters/driving/tui/styles"
)

// State is what the search view is doing.
type State int

const (
	StateReady State = iota
	StateSearching
	StateAnswering
	StateResults
	StateError
)

var busyText = map[State]string{
	StateSearching: "Searching...",
	StateAnswering: "Asking the model...",
}

// Bar shows the corpus, progress or outcome on the left and key hints on
// the right.
type Bar struct {
	styles *styles.Styles
	keys   *keymap.KeyMap
	help   help.Model

	state   State
	tag     string
	message string
	matches int
	width   int
}

// NewBar returns a bar in StateReady. Nil arguments take the defaults.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	h := help.New()
	h.Styles.ShortKey = s.Muted.Bold(true)
	h.Styles.ShortDesc = s.Muted
	h.Styles.ShortSeparator = s.Muted

	return &Bar{styles: s, keys: km, help: h, width: 80}
}

func (b *Bar) Init() tea.Cmd { return nil }

// Update is a no-op; the owning view drives the bar through its setters.
func (b *Bar) Update(tea.Msg) (*Bar, tea.Cmd) { return b, nil }

// View renders the bar at its full width.
func (b *Bar) View() string {
	left := b.status()
	right := b.hints()

	// StatusBar pads one cell on each side.
	gap := max(b.width-2-lipgloss.Width(left)-lipgloss.Width(right), 1)
	row := lipgloss.JoinHorizontal(lipgloss.Top, left, lipgloss.NewStyle().Width(gap).Render(""), right)
	return b.styles.StatusBar.Width(b.width).Render(row)
}

func (b *Bar) status() string {
	var prefix string
	if b.tag != "" {
		prefix = b.styles.Section.Render("["+b.tag+"]") + " "
	}

	var text string
	switch {
	case busyText[b.state] != "":
		text = b.styles.Muted.Render(busyText[b.state])
	case b.state == StateError && b.message != "":
		text = b.styles.Error.Render("Error: " + b.message)
	case b.state == StateError:
		text = b.styles.Error.Render("Error")
	case b.message != "":
		text = b.styles.Normal.Render(b.message)
	case b.matches > 0:
		text = b.styles.Normal.Render(fmt.Sprintf("%d passages", b.matches))
	default:
		text = b.styles.Muted.Render("Ready")
	}
	return prefix + text
}

func (b *Bar) hints() string {
	if b.state == StateResults && b.matches > 0 {
		return b.help.ShortHelpView(b.keys.Results.ShortHelp())
	}
	return b.help.ShortHelpView(b.keys.Query.ShortHelp())
}

func (b *Bar) SetState(s State)    { b.state = s }
func (b *Bar) State() State        { return b.state }
func (b *Bar) SetTag(tag string)   { b.tag = tag }
func (b *Bar) Tag() string         { return b.tag }
func (b *Bar) SetMessage(m string) { b.message = m }
func (b *Bar) Message() string     { return b.message }
func (b *Bar) SetMatchCount(n int) { b.matches = n }
func (b *Bar) MatchCount() int     { return b.matches }
func (b *Bar) SetWidth(w int)      { b.width = w }
func (b *Bar) Width() int          { return b.width }

// Clear returns to StateReady, keeping the tag.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
	b.matches = 0
}
