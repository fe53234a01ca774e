// Package keymap holds the TUI key bindings, one set per view. Each set
// satisfies help.KeyMap so hints render through bubbles/help.
package keymap

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

func bind(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

var (
	_ help.KeyMap = Picker{}
	_ help.KeyMap = Query{}
	_ help.KeyMap = Results{}
	_ help.KeyMap = Reader{}
	_ help.KeyMap = (*KeyMap)(nil)
)

// Picker drives the corpus list.
type Picker struct {
	Up, Down, Choose, Reload, Quit key.Binding
}

func (k Picker) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Choose, k.Reload, k.Quit}
}
func (k Picker) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

// Query is active while the query input has focus.
type Query struct {
	Submit, Back key.Binding
}

func (k Query) ShortHelp() []key.Binding  { return []key.Binding{k.Submit, k.Back} }
func (k Query) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

// Results navigates ranked passages.
type Results struct {
	Up, Down, Open, Ask, NewQuery, Back key.Binding
}

func (k Results) ShortHelp() []key.Binding {
	return []key.Binding{k.NewQuery, k.Ask, k.Open, k.Back}
}
func (k Results) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Open}, {k.NewQuery, k.Ask, k.Back}}
}

// Reader scrolls one passage.
type Reader struct {
	Up, Down, Top, Bottom, Back key.Binding
}

func (k Reader) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Top, k.Bottom, k.Back}
}
func (k Reader) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Top, k.Bottom, k.Back}}
}

// KeyMap is every view's bindings plus the ones that work anywhere.
type KeyMap struct {
	Help, ForceQuit key.Binding

	Picker  Picker
	Query   Query
	Results Results
	Reader  Reader
}

// DefaultKeyMap uses vim-style movement next to the arrow keys.
func DefaultKeyMap() *KeyMap {
	up := bind("↑/k", "up", "up", "k")
	down := bind("↓/j", "down", "down", "j")
	back := bind("esc", "back", "esc")

	return &KeyMap{
		Help:      bind("?", "help", "?"),
		ForceQuit: bind("ctrl+c", "quit", "ctrl+c"),
		Picker: Picker{
			Up:     up,
			Down:   down,
			Choose: bind("enter", "query", "enter"),
			Reload: bind("r", "reload", "r"),
			Quit:   bind("q", "quit", "q"),
		},
		Query: Query{
			Submit: bind("enter", "search", "enter"),
			Back:   bind("esc", "corpora", "esc"),
		},
		Results: Results{
			Up:       up,
			Down:     down,
			Open:     bind("enter", "read", "enter"),
			Ask:      bind("a", "ask llm", "a"),
			NewQuery: bind("n", "new query", "n"),
			Back:     bind("esc", "corpora", "esc"),
		},
		Reader: Reader{
			Up:     bind("↑/↓", "scroll", "up", "k"),
			Down:   down,
			Top:    bind("g", "top", "g", "home"),
			Bottom: bind("G", "bottom", "G", "end"),
			Back:   back,
		},
	}
}

// ShortHelp lists the global bindings.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.ForceQuit}
}

// FullHelp is one column per view, for the help screen.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		k.Picker.ShortHelp(),
		k.Query.ShortHelp(),
		{k.Results.Up, k.Results.Down, k.Results.Open, k.Results.Ask, k.Results.NewQuery},
		{k.Reader.Up, k.Reader.Top, k.Reader.Bottom, k.Reader.Back},
		k.ShortHelp(),
	}
}
