package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap is the global key bindings shown in the help bar.
type keyMap struct {
	NextTab    key.Binding
	PrevTab    key.Binding
	Shrink     key.Binding
	Grow       key.Binding
	CycleEdge  key.Binding
	Toggle     key.Binding
	Reposition key.Binding
	Edit       key.Binding
	Save       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev tab"),
		),
		Shrink: key.NewBinding(
			key.WithKeys("left", "h", "-"),
			key.WithHelp("←/h", "thinner"),
		),
		Grow: key.NewBinding(
			key.WithKeys("right", "l", "+", "="),
			key.WithHelp("→/l", "thicker"),
		),
		CycleEdge: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "cycle edge"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "dock/float"),
		),
		Reposition: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reposition"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit settings"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Shrink, k.Grow, k.Save, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab},
		{k.Shrink, k.Grow, k.CycleEdge, k.Toggle, k.Reposition},
		{k.Edit, k.Save, k.Help, k.Quit},
	}
}
