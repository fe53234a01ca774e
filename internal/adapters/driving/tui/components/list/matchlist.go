// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/citewise/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/citewise/internal/core/domain"
)

// linesPerMatch is the rendered height of one match: header and preview.
const linesPerMatch = 2

// MatchList displays ranked passages in a navigable list.
type MatchList struct {
	matches  []domain.Match
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewMatchList creates a new match list component.
func NewMatchList(s *styles.Styles) *MatchList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &MatchList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the match list.
func (m *MatchList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (m *MatchList) Update(msg tea.Msg) (*MatchList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			m.MoveUp()
		case "down", "j":
			m.MoveDown()
		}
	}
	return m, nil
}

// View renders the match list.
func (m *MatchList) View() string {
	if len(m.matches) == 0 {
		return m.styles.Muted.Render("No passages")
	}

	lines := make([]string, 0, len(m.matches)*linesPerMatch+2)
	lines = append(lines, m.styles.Subtitle.Render(fmt.Sprintf("Passages (%d)", len(m.matches))), "")

	visible := max((m.height-2)/linesPerMatch, 1)
	start := 0
	if m.selected >= visible {
		start = m.selected - visible + 1
	}
	end := min(start+visible, len(m.matches))

	for i := start; i < end; i++ {
		lines = append(lines, m.renderMatch(i, m.matches[i]))
	}

	return strings.Join(lines, "\n")
}

// renderMatch formats one match: rank, score, section and page, then a
// one-line preview of the passage text.
func (m *MatchList) renderMatch(index int, match domain.Match) string {
	indicator := "  "
	if index == m.selected {
		indicator = "> "
	}

	citation := fmt.Sprintf("%s, p. %d", match.Section, match.Page)
	citation = Truncate(citation, max(m.width-20, 10))

	var header string
	if index == m.selected {
		header = m.styles.Selected.Render(fmt.Sprintf("%s[%d] %.4f  %s", indicator, index+1, match.Score, citation))
	} else {
		header = m.styles.Normal.Render(fmt.Sprintf("%s[%d] ", indicator, index+1)) +
			m.styles.Score.Render(fmt.Sprintf("%.4f", match.Score)) + "  " +
			m.styles.Section.Render(citation)
	}

	preview := strings.Join(strings.Fields(match.Text), " ")
	preview = Truncate(preview, max(m.width-6, 20))

	return header + "\n" + m.styles.Muted.Render("    "+preview)
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// SetMatches updates the list and resets the selection.
func (m *MatchList) SetMatches(matches []domain.Match) {
	m.matches = matches
	m.selected = 0
}

// Matches returns the current matches.
func (m *MatchList) Matches() []domain.Match {
	return m.matches
}

// Selected returns the index of the selected match.
func (m *MatchList) Selected() int {
	return m.selected
}

// SetSelected sets the selected index.
func (m *MatchList) SetSelected(index int) {
	if index >= 0 && index < len(m.matches) {
		m.selected = index
	}
}

// SelectedMatch returns the currently selected match, or nil if none.
func (m *MatchList) SelectedMatch() *domain.Match {
	if m.selected < 0 || m.selected >= len(m.matches) {
		return nil
	}
	return &m.matches[m.selected]
}

// MoveUp moves selection up.
func (m *MatchList) MoveUp() {
	if m.selected > 0 {
		m.selected--
	}
}

// MoveDown moves selection down.
func (m *MatchList) MoveDown() {
	if m.selected < len(m.matches)-1 {
		m.selected++
	}
}

// SetDimensions sets the component dimensions.
func (m *MatchList) SetDimensions(width, height int) {
	m.width = width
	m.height = height
}

// Count returns the number of matches.
func (m *MatchList) Count() int {
	return len(m.matches)
}

// IsEmpty returns whether the list is empty.
func (m *MatchList) IsEmpty() bool {
	return len(m.matches) == 0
}
