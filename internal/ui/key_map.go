package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	next      key.Binding
	prev      key.Binding
	search    key.Binding
	enter     key.Binding
	back      key.Binding
	play      key.Binding
	like      key.Binding
	follow    key.Binding
	timeRange key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		next:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		prev:      key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev view")),
		search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run search")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		play:      key.NewBinding(key.WithKeys("p", " "), key.WithHelp("p", "play/stop preview")),
		like:      key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "like track")),
		follow:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "follow playlist")),
		timeRange: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "time range")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.next, k.play, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.next, k.prev},
		{k.search, k.enter, k.back},
		{k.play, k.like, k.follow, k.timeRange, k.quit},
	}
}
