package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the game screen.
type KeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding

	Laser     key.Binding
	Collector key.Binding
	Place     key.Binding
	Placing   key.Binding
	StartWave key.Binding
	Shield    key.Binding
	Focus     key.Binding
	Upgrade   key.Binding

	Help       key.Binding
	Screenshot key.Binding
	Restart    key.Binding
	Back       key.Binding
	Quit       key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Laser, k.Collector, k.Place, k.StartWave, k.Shield, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Placing, k.Place},
		{k.Laser, k.Collector, k.StartWave, k.Shield, k.Focus, k.Upgrade},
		{k.Help, k.Screenshot, k.Restart, k.Back, k.Quit},
	}
}

// DefaultKeyMap returns default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "w", "k"),
			key.WithHelp("↑/w", "cursor up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "s", "j"),
			key.WithHelp("↓/s", "cursor down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "a"),
			key.WithHelp("←/a", "cursor left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "d", "l"),
			key.WithHelp("→/d", "cursor right"),
		),
		Laser: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "laser turret"),
		),
		Collector: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "collector"),
		),
		Place: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter/click", "place"),
		),
		Placing: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "placement mode"),
		),
		StartWave: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "start wave"),
		),
		Shield: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "upgrade shield"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next defense"),
		),
		Upgrade: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "upgrade defense"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h", "help"),
		),
		Screenshot: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "screenshot"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
