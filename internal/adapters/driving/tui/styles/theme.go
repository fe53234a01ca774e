// Package styles holds the palette and lipgloss styles shared by the TUI
// and the CLI renderer.
package styles

import "github.com/charmbracelet/lipgloss"

// Palette names colours by role. Each has a light and a dark variant;
// lipgloss picks one from the terminal background.
type Palette struct {
	Accent  lipgloss.AdaptiveColor // titles, selection
	Heading lipgloss.AdaptiveColor // section labels, citation numbers
	Text    lipgloss.AdaptiveColor
	Dim     lipgloss.AdaptiveColor // pages, hints, previews
	Good    lipgloss.AdaptiveColor // scores, built corpora
	Caution lipgloss.AdaptiveColor // missing or empty corpora
	Bad     lipgloss.AdaptiveColor
	Frame   lipgloss.AdaptiveColor
	Bar     lipgloss.AdaptiveColor
}

// DefaultPalette is a purple and cyan scheme readable on both backgrounds.
func DefaultPalette() Palette {
	return Palette{
		Accent:  lipgloss.AdaptiveColor{Light: "#6D28D9", Dark: "#A78BFA"},
		Heading: lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#22D3EE"},
		Text:    lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#E5E7EB"},
		Dim:     lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"},
		Good:    lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#86EFAC"},
		Caution: lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FDE68A"},
		Bad:     lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#FCA5A5"},
		Frame:   lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#4B5563"},
		Bar:     lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#111827"},
	}
}

// Styles are the rendered roles. Views only use these, never raw colours.
type Styles struct {
	Palette Palette

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Score    lipgloss.Style
	Section  lipgloss.Style
	Passage  lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Border     lipgloss.Style
}

// PassageIndent is the left margin of passage and answer text.
const PassageIndent = 4

// NewStyles derives every style from p.
func NewStyles(p Palette) *Styles {
	fg := func(c lipgloss.AdaptiveColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}
	framed := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Frame).
		Padding(0, 1)

	return &Styles{
		Palette:  p,
		Title:    fg(p.Accent).Bold(true),
		Subtitle: fg(p.Heading).Bold(true),
		Normal:   fg(p.Text),
		Muted:    fg(p.Dim),
		Selected: fg(p.Text).Background(p.Accent).Bold(true),
		Error:    fg(p.Bad),
		Success:  fg(p.Good),
		Warning:  fg(p.Caution),
		Score:    fg(p.Good).Bold(true),
		Section:  fg(p.Heading),
		Passage:  fg(p.Text).PaddingLeft(PassageIndent),

		InputField: framed,
		Border:     framed,
		StatusBar:  fg(p.Dim).Background(p.Bar).Padding(0, 1),
	}
}

// DefaultStyles is NewStyles(DefaultPalette()).
func DefaultStyles() *Styles {
	return NewStyles(DefaultPalette())
}
