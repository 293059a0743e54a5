package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit         key.Binding
	Help         key.Binding
	CycleTheme   key.Binding
	ToggleGlyphs key.Binding
	Escape       key.Binding

	// Tributes
	NewFlower key.Binding
	NewLeaf   key.Binding
	Refresh   key.Binding
	Dismiss   key.Binding
	Activity  key.Binding

	// Navigation
	Next  key.Binding
	Prev  key.Binding
	First key.Binding
	Last  key.Binding

	// Input
	Confirm key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		ToggleGlyphs: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "Toggle ASCII glyphs"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel"),
		),

		NewFlower: key.NewBinding(
			key.WithKeys("n", "f"),
			key.WithHelp("n", "Leave a flower"),
		),
		NewLeaf: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Send a leaf"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh now"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Dismiss notification"),
		),
		Activity: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Recent activity"),
		),

		Next: key.NewBinding(
			key.WithKeys("j", "down", "right", "tab"),
			key.WithHelp("j/tab", "Next tribute"),
		),
		Prev: key.NewBinding(
			key.WithKeys("k", "up", "left", "shift+tab"),
			key.WithHelp("k/shift+tab", "Previous tribute"),
		),
		First: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "First tribute"),
		),
		Last: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Last tribute"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Send"),
		),
	}
}

// ShortHelp returns key bindings for the command bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NewFlower, k.NewLeaf, k.Next, k.Refresh, k.Help, k.Quit}
}

// FullHelp returns key bindings grouped for the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NewFlower, k.NewLeaf, k.Refresh, k.Dismiss},
		{k.Next, k.Prev, k.First, k.Last},
		{k.Activity, k.CycleTheme, k.ToggleGlyphs, k.Help, k.Quit},
	}
}
