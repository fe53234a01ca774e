// Package passage provides the full-text passage reader for the TUI.
package passage

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/citewise/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/citewise/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/citewise/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/citewise/internal/core/domain"
)

// View shows one ranked passage in full, wrapped to the terminal width.
type View struct {
	styles *styles.Styles
	keys   keymap.Reader
	help   help.Model

	tag          string
	rank         int
	match        *domain.Match
	scrollOffset int
	width        int
	height       int
	ready        bool
}

// NewView creates a new passage view. Nil styles or keys take the defaults.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles: s,
		keys:   km.Reader,
		help:   help.New(),
		width:  80,
		height: 24,
	}
}

// SetPassage sets the passage to display. index is its zero-based rank.
func (v *View) SetPassage(tag string, index int, match domain.Match) {
	v.tag = tag
	v.rank = index + 1
	v.match = &match
	v.scrollOffset = 0
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the passage view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Up):
		v.scrollOffset = max(v.scrollOffset-1, 0)
	case key.Matches(msg, v.keys.Down):
		v.scrollOffset = min(v.scrollOffset+1, v.maxScrollOffset())
	case key.Matches(msg, v.keys.Top):
		v.scrollOffset = 0
	case key.Matches(msg, v.keys.Bottom):
		v.scrollOffset = v.maxScrollOffset()
	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewSearch}
		}
	}
	return v, nil
}

// visibleLines returns the number of body lines that fit on screen.
func (v *View) visibleLines() int {
	// Title, citation, separator, scroll indicator and help.
	return max(v.height-8, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.lines())-v.visibleLines(), 0)
}

// lines wraps the passage text to the view width.
func (v *View) lines() []string {
	if v.match == nil {
		return nil
	}
	wrapped := lipgloss.NewStyle().Width(max(v.width-6, 20)).Render(v.match.Text)
	return strings.Split(wrapped, "\n")
}

// View renders the passage.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Passage"))
	b.WriteString("\n")

	if v.match == nil {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render("No passage selected"))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	b.WriteString(v.styles.Section.Render(fmt.Sprintf("%s, p. %d", v.match.Section, v.match.Page)))
	b.WriteString("  ")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("[%d] %s  score ", v.rank, v.tag)))
	b.WriteString(v.styles.Score.Render(fmt.Sprintf("%.4f", v.match.Score)))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(max(v.width-4, 1), 60)))
	b.WriteString("\n\n")

	lines := v.lines()
	visible := v.visibleLines()
	end := min(v.scrollOffset+visible, len(lines))
	for _, line := range lines[v.scrollOffset:end] {
		b.WriteString(v.styles.Passage.Render(line))
		b.WriteString("\n")
	}

	if len(lines) > visible {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [Line %d-%d of %d]", v.scrollOffset+1, end, len(lines))))
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

func (v *View) renderHelp() string {
	return v.help.ShortHelpView(v.keys.ShortHelp())
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.scrollOffset = min(v.scrollOffset, v.maxScrollOffset())
}

// Match returns the displayed passage, or nil.
func (v *View) Match() *domain.Match {
	return v.match
}

// ScrollOffset returns the first visible line.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}
