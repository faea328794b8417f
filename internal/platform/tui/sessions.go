package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/vovakirdan/orbital-defense/internal/storage"
)

// Sessions browser layout constants
const (
	minWidthForDetail = 100 // Minimum width to show the detail pane beside the table
	detailWidth       = 34
	maxSessions       = 100
)

// SessionsKeyMap defines the key bindings for the sessions browser.
type SessionsKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Detail key.Binding
	Back   key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k SessionsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Detail, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k SessionsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Detail},
		{k.Back, k.Quit},
	}
}

// DefaultSessionsKeyMap returns default key bindings.
func DefaultSessionsKeyMap() SessionsKeyMap {
	return SessionsKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Detail: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "details"),
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

// SessionsModel is the Bubble Tea model listing finished sessions.
type SessionsModel struct {
	store      *storage.Store
	sessions   []storage.SessionSummary
	detail     string // Rendered detail of the selected session
	showDetail bool
	err        error
	table      table.Model
	help       help.Model
	keys       SessionsKeyMap
	theme      Theme
	width      int
	height     int
	quitting   bool
	goingBack  bool
}

// NewSessionsModel creates a sessions browser.
func NewSessionsModel(store *storage.Store, theme Theme, width, height int) SessionsModel {
	if theme.Palette == nil {
		theme = DefaultTheme()
	}
	m := SessionsModel{
		store:  store,
		keys:   DefaultSessionsKeyMap(),
		help:   help.New(),
		theme:  theme,
		width:  width,
		height: height,
	}
	m.table = m.createTable()
	m.load()
	return m
}

// createTable creates a new table with columns fitted to the width.
func (m *SessionsModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "#", Width: 5},
		{Title: "Played", Width: 14},
		{Title: "Score", Width: 9},
		{Title: "Waves", Width: 6},
		{Title: "Kills", Width: 6},
		{Title: "Acc", Width: 5},
		{Title: "Length", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)), // Leave room for header, help, and margins
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// load reads recent sessions from the store.
func (m *SessionsModel) load() {
	m.sessions = nil
	m.err = nil
	if m.store != nil {
		m.sessions, m.err = m.store.RecentSessions(maxSessions)
	}
	m.updateTableRows()
}

func (m *SessionsModel) updateTableRows() {
	rows := make([]table.Row, len(m.sessions))
	for i, s := range m.sessions {
		rows[i] = table.Row{
			strconv.FormatInt(s.ID, 10),
			humanize.Time(s.StartedAt),
			humanize.Comma(int64(s.Score)),
			strconv.Itoa(s.WavesCompleted),
			strconv.Itoa(s.EnemiesDefeated),
			fmt.Sprintf("%.0f%%", s.Accuracy*100),
			(time.Duration(s.DurationMs) * time.Millisecond).Truncate(time.Second).String(),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// selected returns the session under the table cursor.
func (m SessionsModel) selected() *storage.SessionSummary {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.sessions) {
		return nil
	}
	return &m.sessions[i]
}

// renderDetail loads placements and defeated enemies of the selected session.
func (m *SessionsModel) renderDetail() {
	s := m.selected()
	if s == nil || m.store == nil {
		m.detail = ""
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Session %d\n", s.ID)
	fmt.Fprintf(&b, "%s\n", s.StartedAt.Local().Format("Jan 02 2006 15:04"))
	fmt.Fprintf(&b, "Difficulty  %s\n", orDash(s.Difficulty))
	fmt.Fprintf(&b, "Seed        %d\n", s.Seed)
	fmt.Fprintf(&b, "Final wave  %d\n", s.FinalWave)
	fmt.Fprintf(&b, "Resources   %s\n", humanize.Comma(int64(s.ResourcesCollected)))
	fmt.Fprintf(&b, "Shots       %d/%d\n", s.ShotsHit, s.ShotsFired)

	placements, err := m.store.Placements(s.ID)
	if err != nil {
		m.err = err
	}
	b.WriteString("\nDefenses\n")
	for _, p := range placements {
		fmt.Fprintf(&b, "  %-18s r=%-4.0f L%d %s dmg\n", p.Kind, p.OrbitalRadius, p.UpgradeLevel,
			humanize.Comma(int64(p.DamageDealt)))
	}

	enemies, err := m.store.Enemies(s.ID)
	if err != nil {
		m.err = err
	}
	sums := map[string]int64{}
	counts := map[string]int{}
	for _, e := range enemies {
		sums[e.EnemyKind] += e.SurvivalMs
		counts[e.EnemyKind]++
	}
	b.WriteString("\nDefeated\n")
	for _, kind := range []string{"basic", "fast"} {
		if counts[kind] == 0 {
			continue
		}
		avg := time.Duration(sums[kind]/int64(counts[kind])) * time.Millisecond
		fmt.Fprintf(&b, "  %-6s %3d  avg %s\n", kind, counts[kind], avg.Truncate(100*time.Millisecond))
	}

	m.detail = b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Init initializes the sessions model.
func (m SessionsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the sessions browser.
func (m SessionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			if m.showDetail {
				m.showDetail = false
				return m, nil
			}
			m.goingBack = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Detail):
			m.showDetail = !m.showDetail
			if m.showDetail {
				m.renderDetail()
			}
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			m.table, cmd = m.table.Update(msg)
			if m.showDetail {
				m.renderDetail()
			}
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the sessions browser.
func (m SessionsModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder

	title := "PAST SESSIONS"
	if best := m.best(); best > 0 {
		title = fmt.Sprintf("PAST SESSIONS - best score %s", humanize.Comma(int64(best)))
	}
	b.WriteString(m.theme.MenuTitle.MarginBottom(1).Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	content := boxStyle.Render(m.renderTableContent())
	if m.showDetail && m.detail != "" {
		detail := boxStyle.Width(detailWidth).Render(m.detail)
		if m.width >= minWidthForDetail {
			content = lipgloss.JoinHorizontal(lipgloss.Top, content, "  ", detail)
		} else {
			content = detail
		}
	}
	b.WriteString(content)

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(m.theme.HUDWarn.Render("Error: " + m.err.Error()))
	}

	b.WriteString("\n")
	b.WriteString(m.theme.HUDHelp.Render(m.help.View(m.keys)))
	return b.String()
}

func (m SessionsModel) best() float64 {
	var best float64
	for _, s := range m.sessions {
		best = max(best, s.Score)
	}
	return best
}

// renderTableContent renders the table or empty message.
func (m SessionsModel) renderTableContent() string {
	if len(m.sessions) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		return emptyStyle.Render("No sessions recorded yet.\nPlay a game to fill this table!")
	}
	return m.table.View()
}

// IsGoingBack returns true if the user wants to go back to the menu.
func (m SessionsModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if the user wants to quit entirely.
func (m SessionsModel) IsQuitting() bool {
	return m.quitting
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	n := lipgloss.Width(text)
	if n >= width {
		return text
	}
	return strings.Repeat(" ", (width-n)/2) + text
}

// RunSessions runs the sessions browser as a standalone program.
func RunSessions(store *storage.Store, theme Theme, width, height int) error {
	p := tea.NewProgram(
		NewSessionsModel(store, theme, width, height),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
