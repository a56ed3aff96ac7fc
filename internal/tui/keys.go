package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Search      key.Binding
	Sort        key.Binding
	Prev        key.Binding
	Next        key.Binding
	ChannelPrev key.Binding
	ChannelNext key.Binding
	Toggle      key.Binding
	Clear       key.Binding
	Reset       key.Binding
	Reload      key.Binding
	Up          key.Binding
	Down        key.Binding
	Help        key.Binding
	Quit        key.Binding

	Accept key.Binding
	Cancel key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Sort, k.Prev, k.Next, k.Toggle, k.Reset, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Search, k.Sort, k.Reset, k.Reload},
		{k.Prev, k.Next, k.Up, k.Down},
		{k.ChannelPrev, k.ChannelNext, k.Toggle, k.Clear},
		{k.Help, k.Quit},
	}
}

var keys = keyMap{
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Sort: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5", "6", "7"),
		key.WithHelp("1-7", "sort"),
	),
	Prev: key.NewBinding(
		key.WithKeys("left", "p"),
		key.WithHelp("←/p", "prev page"),
	),
	Next: key.NewBinding(
		key.WithKeys("right", "n"),
		key.WithHelp("→/n", "next page"),
	),
	ChannelPrev: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[", "prev channel"),
	),
	ChannelNext: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("]", "next channel"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "toggle channel"),
	),
	Clear: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear channels"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset"),
	),
	Reload: key.NewBinding(
		key.WithKeys("R"),
		key.WithHelp("R", "reload"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q/ctrl+c", "quit"),
	),
	Accept: key.NewBinding(key.WithKeys("enter")),
	Cancel: key.NewBinding(key.WithKeys("esc")),
}
