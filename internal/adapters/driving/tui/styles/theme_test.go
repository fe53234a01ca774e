package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestDefaultPalette_EveryRoleHasBothVariants(t *testing.T) {
	p := DefaultPalette()

	for name, c := range map[string]lipgloss.AdaptiveColor{
		"accent": p.Accent, "heading": p.Heading, "text": p.Text,
		"dim": p.Dim, "good": p.Good, "caution": p.Caution,
		"bad": p.Bad, "frame": p.Frame, "bar": p.Bar,
	} {
		assert.NotEmpty(t, c.Light, name)
		assert.NotEmpty(t, c.Dark, name)
		assert.NotEqual(t, c.Light, c.Dark, name)
	}
}

func TestDefaultPalette_StatusColoursDiffer(t *testing.T) {
	p := DefaultPalette()

	assert.NotEqual(t, p.Good, p.Caution)
	assert.NotEqual(t, p.Good, p.Bad)
	assert.NotEqual(t, p.Caution, p.Bad)
	assert.NotEqual(t, p.Accent, p.Heading)
}

func TestNewStyles(t *testing.T) {
	p := DefaultPalette()
	s := NewStyles(p)

	assert.Equal(t, p, s.Palette)
	assert.True(t, s.Title.GetBold())
	assert.Equal(t, PassageIndent, s.Passage.GetPaddingLeft())
}

func TestStyles_Render(t *testing.T) {
	s := DefaultStyles()

	assert.Contains(t, s.Title.Render("citewise"), "citewise")
	assert.Contains(t, s.Score.Render("0.8123"), "0.8123")
	assert.Equal(t, "    text", s.Passage.Render("text"), "passages are indented")
}
