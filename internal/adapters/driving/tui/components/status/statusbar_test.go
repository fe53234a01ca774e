package status

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/citewise/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/citewise/internal/adapters/driving/tui/styles"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, 80, bar.Width())

	defaulted := NewBar(nil, nil)
	assert.NotNil(t, defaulted.styles)
	assert.NotNil(t, defaulted.keys)
}

func TestBar_IsPassive(t *testing.T) {
	bar := NewBar(nil, nil)

	assert.Nil(t, bar.Init())
	updated, cmd := bar.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Same(t, bar, updated)
	assert.Nil(t, cmd)
}

func TestBar_View(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*Bar)
		want    []string
		notWant []string
	}{
		{
			name:  "ready shows query hints",
			setup: func(*Bar) {},
			want:  []string{"Ready", "enter search", "esc corpora"},
		},
		{
			name:  "searching with tag",
			setup: func(b *Bar) { b.SetTag("bluebook"); b.SetState(StateSearching) },
			want:  []string{"[bluebook]", "Searching..."},
		},
		{
			name:    "busy text wins over a stale message",
			setup:   func(b *Bar) { b.SetMessage("Answered by m"); b.SetState(StateAnswering) },
			want:    []string{"Asking the model..."},
			notWant: []string{"Answered by m"},
		},
		{
			name:  "error with message",
			setup: func(b *Bar) { b.SetState(StateError); b.SetMessage("corpus unavailable") },
			want:  []string{"Error: corpus unavailable"},
		},
		{
			name:  "error without message",
			setup: func(b *Bar) { b.SetState(StateError) },
			want:  []string{"Error"},
		},
		{
			name:    "results show result hints",
			setup:   func(b *Bar) { b.SetState(StateResults); b.SetMatchCount(5) },
			want:    []string{"5 passages", "a ask llm", "enter read"},
			notWant: []string{"enter search"},
		},
		{
			name:  "message overrides count",
			setup: func(b *Bar) { b.SetState(StateResults); b.SetMatchCount(5); b.SetMessage("Answered by gpt-4o") },
			want:  []string{"Answered by gpt-4o"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(120)
			tt.setup(bar)

			view := bar.View()
			for _, w := range tt.want {
				assert.Contains(t, view, w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, view, w)
			}
		})
	}
}

func TestBar_NarrowWidth(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(5)

	assert.NotEmpty(t, bar.View())
}

func TestBar_ClearKeepsTag(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetTag("redbook")
	bar.SetState(StateError)
	bar.SetMessage("boom")
	bar.SetMatchCount(3)

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Zero(t, bar.MatchCount())
	assert.Equal(t, "redbook", bar.Tag())
}
