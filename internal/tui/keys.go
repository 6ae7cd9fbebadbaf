package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	NextTab      key.Binding
	PrevTab      key.Binding
	Reload       key.Binding
	EditPaycheck key.Binding
	ToggleTax    key.Binding
	Apply        key.Binding
	AdoptMain    key.Binding
	AdoptSavings key.Binding
	Help         key.Binding
	Quit         key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		NextTab: key.NewBinding(
			key.WithKeys("right", "l", "tab"),
			key.WithHelp("→", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("left", "h", "shift+tab"),
			key.WithHelp("←", "prev tab"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		EditPaycheck: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit paycheck"),
		),
		ToggleTax: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "toggle tax"),
		),
		Apply: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply paycheck"),
		),
		AdoptMain: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "adopt main split"),
		),
		AdoptSavings: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "adopt savings split"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.Reload},
		{k.EditPaycheck, k.ToggleTax, k.Apply},
		{k.AdoptMain, k.AdoptSavings},
		{k.Help, k.Quit},
	}
}

// tabHelp returns the bindings that act on the given tab.
func (k keyMap) tabHelp(tab int) []key.Binding {
	switch tab {
	case tabAllocate:
		return []key.Binding{k.EditPaycheck, k.ToggleTax, k.Apply, k.Help, k.Quit}
	case tabOptimize:
		return []key.Binding{k.AdoptMain, k.AdoptSavings, k.Help, k.Quit}
	default:
		return k.ShortHelp()
	}
}
