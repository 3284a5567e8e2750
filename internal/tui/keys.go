package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the bindings of the browse mode
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Inc      key.Binding
	Dec      key.Binding
	Reset    key.Binding
	Price    key.Binding
	Proceeds key.Binding
	Scenario key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "prev phase"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next phase"),
		),
		Inc: key.NewBinding(
			key.WithKeys("+", "=", "right", "l"),
			key.WithHelp("+/→", "+1 month"),
		),
		Dec: key.NewBinding(
			key.WithKeys("-", "left", "h"),
			key.WithHelp("-/←", "-1 month"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset overrides"),
		),
		Price: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "acquisition price"),
		),
		Proceeds: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "sale proceeds"),
		),
		Scenario: key.NewBinding(
			key.WithKeys("tab", "s"),
			key.WithHelp("tab", "switch scenario"),
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

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Inc, k.Dec, k.Scenario, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Inc, k.Dec},
		{k.Reset, k.Price, k.Proceeds},
		{k.Scenario, k.Help, k.Quit},
	}
}
