package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// MenuChoice is an entry of the main menu.
type MenuChoice int

const (
	ChoiceNone MenuChoice = iota
	ChoicePlay
	ChoiceSessions
	ChoiceQuit
)

type menuItem struct {
	choice MenuChoice
	title  string
	desc   string
}

var menuItems = []menuItem{
	{ChoicePlay, "Play", "Defend the planet against endless waves"},
	{ChoiceSessions, "Past sessions", "Scores and statistics of finished games"},
	{ChoiceQuit, "Quit", "Leave the station"},
}

// MenuKeyMap defines the key bindings of the main menu.
type MenuKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Quit   key.Binding
}

// DefaultMenuKeyMap returns default key bindings.
func DefaultMenuKeyMap() MenuKeyMap {
	return MenuKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "w", "k")),
		Down:   key.NewBinding(key.WithKeys("down", "s", "j")),
		Select: key.NewBinding(key.WithKeys("enter", " ")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c")),
	}
}

// MenuModel is the Bubble Tea model of the main menu.
type MenuModel struct {
	cursor   int
	width    int
	height   int
	user     string
	best     float64
	theme    Theme
	keys     MenuKeyMap
	selected MenuChoice
}

// NewMenuModel creates a new menu model. best is shown under the title when
// positive.
func NewMenuModel(theme Theme, user string, best float64, width, height int) MenuModel {
	return MenuModel{
		width:  width,
		height: height,
		user:   user,
		best:   best,
		theme:  theme,
		keys:   DefaultMenuKeyMap(),
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.selected = ChoiceQuit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(menuItems)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Select):
			m.selected = menuItems[m.cursor].choice
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(m.theme.MenuTitle.Render(centerText("O R B I T A L   D E F E N S E", m.width)))
	b.WriteString("\n\n")

	sub := "Select an option"
	if m.user != "" {
		sub = fmt.Sprintf("Welcome, commander %s", m.user)
	}
	b.WriteString(m.theme.MenuDescription.Render(centerText(sub, m.width)))
	b.WriteString("\n")
	if m.best > 0 {
		b.WriteString(m.theme.MenuDescription.Render(centerText(fmt.Sprintf("Best score: %.0f", m.best), m.width)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, item := range menuItems {
		line := "  " + item.title
		style := m.theme.MenuItemNormal
		if i == m.cursor {
			line = "> " + item.title
			style = m.theme.MenuItemActive
		}
		b.WriteString(style.Render(centerText(line, m.width)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.MenuDescription.Render(centerText(menuItems[m.cursor].desc, m.width)))
	b.WriteString("\n\n")
	b.WriteString(m.theme.HUDHelp.Render(centerText("Up/Down: Navigate  |  Enter: Select  |  Q: Quit", m.width)))
	b.WriteString("\n")
	return b.String()
}

// Selected returns the chosen entry, ChoiceNone while the menu is open.
func (m MenuModel) Selected() MenuChoice {
	return m.selected
}
