package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/citewise/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/citewise/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/citewise/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/citewise/internal/adapters/driving/tui/views/corpora"
	"github.com/custodia-labs/citewise/internal/adapters/driving/tui/views/passage"
	"github.com/custodia-labs/citewise/internal/adapters/driving/tui/views/search"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap
	help   help.Model

	corporaView *corpora.View
	searchView  *search.View
	passageView *passage.View

	// initialTag, when set, skips the corpus picker on start.
	initialTag string

	// currentView tracks which view is active.
	currentView messages.ViewType

	// previousView is restored when leaving help.
	previousView messages.ViewType

	// err holds the last error that occurred.
	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if ports == nil {
		return nil, fmt.Errorf("creating app: %w", ErrMissingQueryService)
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		help:        help.New(),
		corporaView: corpora.NewView(s, km, ports.Corpus),
		searchView:  search.NewView(s, km, ports.Query, ports.Answer),
		passageView: passage.NewView(s, km),
		currentView: messages.ViewCorpora,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.corporaView.WithContext(ctx)
	a.searchView.WithContext(ctx)
	return a
}

// WithTag opens the app directly on the query view for tag.
func (a *App) WithTag(tag string) *App {
	a.initialTag = tag
	if tag != "" {
		a.searchView.SetTag(tag)
		a.currentView = messages.ViewSearch
	}
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.SetWindowTitle("citewise"), a.corporaView.Init()}
	if a.initialTag != "" {
		cmds = append(cmds, a.searchView.Init())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case messages.CorporaLoaded:
		a.corporaView, cmd = a.corporaView.Update(msg)
		return a, cmd

	case messages.CorpusSelected:
		a.searchView.SetTag(msg.Tag)
		a.currentView = messages.ViewSearch
		return a, a.searchView.Init()

	case messages.SearchCompleted, messages.AnswerCompleted:
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = a.searchView.Err()
		return a, cmd

	case messages.PassageSelected:
		a.passageView.SetPassage(a.searchView.Tag(), msg.Index, msg.Match)
		a.currentView = messages.ViewPassage
		return a, nil

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewCorpora {
			return a, a.corporaView.Init()
		}
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		if a.currentView == messages.ViewSearch {
			a.searchView, cmd = a.searchView.Update(msg)
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages (cursor blink and the like) to the active view.
	if a.currentView == messages.ViewSearch {
		a.searchView, cmd = a.searchView.Update(msg)
	}
	return a, cmd
}

// handleKeyMsg routes keys to the active view.
func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keymap.ForceQuit) {
		return a, tea.Quit
	}

	typing := a.currentView == messages.ViewSearch && a.searchView.InputFocused()
	if !typing && key.Matches(msg, a.keymap.Help) && a.currentView != messages.ViewHelp {
		a.previousView = a.currentView
		a.currentView = messages.ViewHelp
		return a, nil
	}

	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewCorpora:
		a.corporaView, cmd = a.corporaView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewPassage:
		a.passageView, cmd = a.passageView.Update(msg)
	case messages.ViewHelp:
		if key.Matches(msg, a.keymap.Help, a.keymap.Reader.Back) {
			a.currentView = a.previousView
		}
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewSearch:
		return a.searchView.View()
	case messages.ViewPassage:
		return a.passageView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.corporaView.View()
	}
}

// viewHelp renders the keybinding reference.
func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + "\n\n" +
		a.help.FullHelpView(a.keymap.FullHelp()) + "\n\n" +
		a.styles.Muted.Render("[esc] back")
}

// Run starts the TUI application and blocks until it exits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on the app and every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.help.Width = width
	a.corporaView.SetDimensions(width, height)
	a.searchView.SetDimensions(width, height)
	a.passageView.SetDimensions(width, height)
}
