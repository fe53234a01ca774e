// Package corpora provides the corpus picker, the first view of the TUI.
package corpora

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/citewise/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/citewise/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/citewise/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/citewise/internal/core/domain"
	"github.com/custodia-labs/citewise/internal/core/ports/driving"
)

// ErrNoCorpusService indicates that no corpus service was provided.
var ErrNoCorpusService = errors.New("corpus service is required")

// View lists configured corpora and their build status.
type View struct {
	styles        *styles.Styles
	keys          keymap.Picker
	help          help.Model
	corpusService driving.CorpusService
	ctx           context.Context

	corpora  []messages.CorpusStatus
	selected int
	loading  bool
	notice   string
	err      error
	width    int
	height   int
	ready    bool
}

// NewView creates a new corpus picker. Nil styles or keys take the defaults.
func NewView(s *styles.Styles, km *keymap.KeyMap, corpusService driving.CorpusService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:        s,
		keys:          km.Picker,
		help:          help.New(),
		corpusService: corpusService,
		ctx:           context.Background(),
		width:         80,
		height:        24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the corpus list.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.loadCorpora()
}

// loadCorpora lists configured corpora and reads each built corpus's
// metadata. A corpus that has not been built has nil Info.
func (v *View) loadCorpora() tea.Cmd {
	return func() tea.Msg {
		if v.corpusService == nil {
			return messages.CorporaLoaded{Err: ErrNoCorpusService}
		}

		list, err := v.corpusService.List(v.ctx)
		if err != nil {
			return messages.CorporaLoaded{Err: err}
		}

		statuses := make([]messages.CorpusStatus, 0, len(list))
		for _, cs := range list {
			status := messages.CorpusStatus{Settings: cs}
			info, err := v.corpusService.Info(v.ctx, cs.Tag)
			switch {
			case err == nil:
				status.Info = info
			case errors.Is(err, domain.ErrCorpusUnavailable):
			default:
				return messages.CorporaLoaded{Err: fmt.Errorf("corpus %s: %w", cs.Tag, err)}
			}
			statuses = append(statuses, status)
		}
		return messages.CorporaLoaded{Corpora: statuses}
	}
}

// Update handles messages for the corpus picker.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.CorporaLoaded:
		v.loading = false
		v.err = msg.Err
		v.corpora = msg.Corpora
		v.selected = min(v.selected, max(len(v.corpora)-1, 0))
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Up):
		v.selected = max(v.selected-1, 0)
		v.notice = ""
	case key.Matches(msg, v.keys.Down):
		v.selected = max(min(v.selected+1, len(v.corpora)-1), 0)
		v.notice = ""
	case key.Matches(msg, v.keys.Reload):
		v.loading = true
		return v, v.loadCorpora()
	case key.Matches(msg, v.keys.Choose):
		return v, v.choose()
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	}
	return v, nil
}

// choose opens the selected corpus, or explains why it cannot be queried.
func (v *View) choose() tea.Cmd {
	if len(v.corpora) == 0 {
		return nil
	}
	c := v.corpora[v.selected]
	if !c.Built() {
		v.notice = fmt.Sprintf("Corpus %q is not built. Run 'citewise build %s'.", c.Settings.Tag, c.Settings.Tag)
		return nil
	}
	selected := messages.CorpusSelected{Tag: c.Settings.Tag}
	return func() tea.Msg { return selected }
}

// View renders the corpus picker.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder

	b.WriteString(v.styles.Title.Render("citewise"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Subtitle.Render("Style manuals"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading corpora..."))
		b.WriteString("\n")
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	case len(v.corpora) == 0:
		b.WriteString(v.styles.Muted.Render("No corpora configured. Add one with 'citewise settings set corpora.<tag>.source <file>'."))
		b.WriteString("\n")
	default:
		for i, c := range v.corpora {
			b.WriteString(v.renderCorpus(i, c))
			b.WriteString("\n")
		}
	}

	if v.notice != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Warning.Render(v.notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.help.ShortHelpView(v.keys.ShortHelp()))

	return b.String()
}

func (v *View) renderCorpus(index int, c messages.CorpusStatus) string {
	cursor := "  "
	label := v.styles.Normal.Render(c.Settings.Tag)
	if index == v.selected {
		cursor = "> "
		label = v.styles.Selected.Render(c.Settings.Tag)
	}

	var detail string
	if c.Built() {
		detail = v.styles.Success.Render(fmt.Sprintf("%d passages", c.Info.PassageCount)) +
			v.styles.Muted.Render(fmt.Sprintf("  %s, built %s", c.Info.Model, c.Info.BuiltAt.Format("2006-01-02")))
	} else {
		detail = v.styles.Warning.Render("not built")
	}

	return cursor + label + "  " + detail
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Corpora returns the loaded corpora.
func (v *View) Corpora() []messages.CorpusStatus {
	return v.corpora
}

// Selected returns the currently selected index.
func (v *View) Selected() int {
	return v.selected
}

// Notice returns the last informational notice.
func (v *View) Notice() string {
	return v.notice
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}

// Loading reports whether the corpus list is being loaded.
func (v *View) Loading() bool {
	return v.loading
}
