package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/vovakirdan/orbital-defense/internal/config"
	"github.com/vovakirdan/orbital-defense/internal/core"
	"github.com/vovakirdan/orbital-defense/internal/orbital"
	"github.com/vovakirdan/orbital-defense/internal/session"
	"github.com/vovakirdan/orbital-defense/internal/storage"
)

// Rows below the play field: HUD, status line and short help.
const hudRows = 3

// Commands (placements, upgrades, wave starts) are throttled per player.
const (
	commandRate  = rate.Limit(15)
	commandBurst = 5
)

// Options configures a game screen.
type Options struct {
	Config     config.Config
	Runtime    core.RuntimeConfig
	Difficulty string
	Store      *storage.Store // Optional; finished sessions are saved here
	Logger     *log.Logger
	Theme      Theme

	// Registry, when set, tracks the live session.
	Registry *session.Registry

	// Embedded models report Back instead of ignoring the back key, so a
	// parent model can return to its menu.
	Embedded bool
}

// Model is the Bubble Tea model of the game screen.
type Model struct {
	opts    Options
	sess    *session.Session
	screen  *core.Screen
	keys    KeyMap
	help    help.Model
	limiter *rate.Limiter
	log     *log.Logger

	width  int
	height int

	cursor   core.Vec2 // World position of the placement cursor
	focus    uint64    // Defense selected for upgrades
	placing  bool
	showHelp bool
	status   string
	quitting bool
	back     bool
}

// NewModel creates a game screen with a fresh session.
func NewModel(opts Options) Model {
	if opts.Runtime.Seed == 0 {
		opts.Runtime.Seed = time.Now().UnixNano()
	}
	if opts.Theme.Palette == nil {
		opts.Theme = DefaultTheme()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	m := Model{
		opts:    opts,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		limiter: rate.NewLimiter(commandRate, commandBurst),
		log:     logger,
		width:   opts.Runtime.ScreenW,
		height:  opts.Runtime.ScreenH,
	}
	m.help.Width = m.width
	m.screen = core.NewScreen(m.width, m.fieldRows())
	m.newSession(opts.Runtime.Seed)
	return m
}

func (m *Model) newSession(seed int64) {
	m.sess = session.New(session.Options{
		Config:     m.opts.Config,
		Seed:       seed,
		Difficulty: m.opts.Difficulty,
		Logger:     m.log,
	})
	if m.opts.Registry != nil {
		m.opts.Registry.Register(m.sess)
	}

	e := m.sess.Engine
	cfg := e.Config()
	ring := (cfg.Planet.Radius + cfg.Placement.Margin + cfg.Placement.MaxOrbitalRadius) / 2
	m.cursor = e.Planet().Position.Add(core.V(0, -ring))
	m.focus = 0
	m.placing = true
	m.status = "Place defenses in the orbit ring, then press space to start wave 1"
}

func (m Model) fieldRows() int {
	return max(m.height-hudRows, 1)
}

func (m Model) viewport() core.Viewport {
	return core.NewViewport(m.sess.Engine.Bounds(), 0, 0, m.width, m.fieldRows())
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.opts.Runtime.TickRate, m.sess.ID())
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.screen.Resize(m.width, m.fieldRows())
		return m, nil

	case TickMsg:
		return m.handleTick(msg)
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	e := m.sess.Engine

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.finish()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		if m.opts.Embedded {
			m.finish()
			m.back = true
		}
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Screenshot):
		m.saveScreenshot()
		return m, nil

	case key.Matches(msg, m.keys.Restart):
		if e.GameOver() {
			m.finish()
			m.newSession(time.Now().UnixNano())
			return m, tickCmd(m.opts.Runtime.TickRate, m.sess.ID())
		}
		return m, nil

	case key.Matches(msg, m.keys.Placing):
		m.placing = !m.placing
		return m, nil

	case key.Matches(msg, m.keys.Focus):
		m.cycleFocus()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(0, -1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(0, 1)
		return m, nil
	case key.Matches(msg, m.keys.Left):
		m.moveCursor(-1, 0)
		return m, nil
	case key.Matches(msg, m.keys.Right):
		m.moveCursor(1, 0)
		return m, nil
	}

	if !m.isCommand(msg) || e.GameOver() {
		return m, nil
	}
	if !m.limiter.Allow() {
		m.status = "Too many commands, slow down"
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Laser):
		e.SelectDefenseType(orbital.DefenseLaser)
		m.status = fmt.Sprintf("Building laser turrets (%.0f)", e.Config().Defenses.Laser.Cost)

	case key.Matches(msg, m.keys.Collector):
		e.SelectDefenseType(orbital.DefenseCollector)
		m.status = fmt.Sprintf("Building resource collectors (%.0f)", e.Config().Defenses.Collector.Cost)

	case key.Matches(msg, m.keys.Place):
		m.place()

	case key.Matches(msg, m.keys.StartWave):
		if wave, ok := e.StartWave(); !ok {
			m.status = fmt.Sprintf("Wave %d is still in progress", wave)
		}

	case key.Matches(msg, m.keys.Shield):
		if e.UpgradeShield() {
			m.status = fmt.Sprintf("Shield upgraded to level %d", e.Planet().ShieldLevel)
		} else {
			m.status = "Cannot upgrade shield"
		}

	case key.Matches(msg, m.keys.Upgrade):
		m.upgradeFocused()
	}
	return m, nil
}

func (m Model) isCommand(msg tea.KeyMsg) bool {
	return key.Matches(msg, m.keys.Laser, m.keys.Collector, m.keys.Place,
		m.keys.StartWave, m.keys.Shield, m.keys.Upgrade)
}

// handleMouse places the selected defense on left click.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	v := m.viewport()
	if msg.Y >= v.Y+v.Rows || m.sess.Engine.GameOver() {
		return m, nil
	}
	m.cursor = v.ToWorld(msg.X, msg.Y)

	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		if !m.limiter.Allow() {
			m.status = "Too many commands, slow down"
			return m, nil
		}
		m.place()
	}
	return m, nil
}

// handleTick advances the simulation by one fixed step.
func (m Model) handleTick(msg TickMsg) (tea.Model, tea.Cmd) {
	if msg.Session != m.sess.ID() || m.quitting || m.back {
		return m, nil
	}

	e := m.sess.Engine
	if e.GameOver() {
		return m, nil
	}

	res := e.Step(m.opts.Runtime.TickMillis())
	m.observe(res.Events)
	if res.GameOver {
		m.finish()
		return m, nil
	}
	return m, tickCmd(m.opts.Runtime.TickRate, m.sess.ID())
}

// observe turns notable events into the status line.
func (m *Model) observe(events []orbital.Event) {
	for _, ev := range events {
		switch ev := ev.(type) {
		case orbital.WaveStarted:
			m.status = fmt.Sprintf("Wave %d: %d enemies inbound", ev.Wave, ev.Enemies)
		case orbital.WaveCompleted:
			if ev.Success {
				m.status = fmt.Sprintf("Wave %d cleared. Press space for the next wave", ev.Wave)
			}
		case orbital.GameOver:
			m.status = fmt.Sprintf("Planet destroyed on wave %d. r restarts, q quits", ev.Wave)
		}
	}
}

func (m *Model) place() {
	e := m.sess.Engine
	kind := e.Selected()
	if res := e.PlaceSelected(m.cursor); res != orbital.PlacementOK {
		m.status = "Cannot place " + kind.String() + ": " + res.String()
		return
	}
	defs := e.Defenses()
	m.focus = defs[len(defs)-1].ID
	m.status = fmt.Sprintf("Placed %s", kind)
}

func (m *Model) moveCursor(dx, dy float64) {
	b := m.sess.Engine.Bounds()
	w, h := m.viewport().CellSize()
	m.cursor = core.Vec2{
		X: core.ClampF(m.cursor.X+dx*w, b.MinX, b.MaxX),
		Y: core.ClampF(m.cursor.Y+dy*h, b.MinY, b.MaxY),
	}
}

func (m *Model) cycleFocus() {
	defs := m.sess.Engine.Defenses()
	if len(defs) == 0 {
		m.status = "No defenses placed yet"
		return
	}
	next := 0
	for i, d := range defs {
		if d.ID == m.focus {
			next = (i + 1) % len(defs)
			break
		}
	}
	d := defs[next]
	m.focus = d.ID
	m.status = fmt.Sprintf("Selected %s #%d, level %d (upgrade %.0f)", d.Kind, d.ID, d.UpgradeLevel, d.UpgradeCost())
}

func (m *Model) upgradeFocused() {
	e := m.sess.Engine
	if m.focus == 0 {
		m.status = "Press tab to select a defense first"
		return
	}
	if !e.UpgradeDefense(m.focus) {
		m.status = "Cannot upgrade: insufficient resources"
		return
	}
	for _, d := range e.Defenses() {
		if d.ID == m.focus {
			m.status = fmt.Sprintf("Upgraded %s #%d to level %d", d.Kind, d.ID, d.UpgradeLevel)
		}
	}
}

// finish saves the session once and drops it from the registry.
func (m *Model) finish() {
	if m.opts.Registry != nil {
		m.opts.Registry.Unregister(m.sess.ID())
	}
	if m.opts.Store == nil || m.sess.Engine.Tick() == 0 {
		return
	}
	if _, saved := m.sess.Saved(); saved {
		return
	}
	id, err := m.sess.Save(m.opts.Store)
	if err != nil {
		m.log.Warn("could not save session", "error", err)
		return
	}
	if m.sess.Engine.GameOver() {
		m.status += fmt.Sprintf(" (saved as session #%d)", id)
	}
}

// saveScreenshot saves the current field to a file.
func (m *Model) saveScreenshot() {
	m.screen.Clear()
	drawField(m.screen, m.viewport(), m.sess.Engine, m.fieldView())

	dir := filepath.Join(os.Getenv("HOME"), ".orbital", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.status = "Screenshot failed: " + err.Error()
		return
	}
	path := filepath.Join(dir, fmt.Sprintf("orbital_%s.txt", time.Now().Format("20060102_150405")))
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.status = "Screenshot failed: " + err.Error()
		return
	}
	m.status = "Screenshot saved to " + path
}

func (m Model) fieldView() fieldView {
	return fieldView{cursor: m.cursor, placing: m.placing, focus: m.focus}
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting || m.back {
		return ""
	}
	if m.showHelp {
		return m.helpView()
	}

	t := m.opts.Theme
	m.screen.Clear()
	drawField(m.screen, m.viewport(), m.sess.Engine, m.fieldView())

	var b strings.Builder
	b.WriteString(RenderScreen(m.screen, t.Palette))
	b.WriteString("\n")
	b.WriteString(renderHUD(t, m.sess.Engine, m.width))
	b.WriteString("\n")
	b.WriteString(t.HUDStatus.MaxWidth(m.width).Render(m.status))
	b.WriteString("\n")
	b.WriteString(t.HUDHelp.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) helpView() string {
	t := m.opts.Theme
	cfg := m.sess.Engine.Config()

	h := m.help
	h.ShowAll = true

	rules := []string{
		"Defend the planet at the center from incoming waves.",
		fmt.Sprintf("Defenses go in the ring between %.0f and %.0f from the planet center.",
			cfg.Planet.Radius+cfg.Placement.Margin, cfg.Placement.MaxOrbitalRadius),
		fmt.Sprintf("Laser turret (%.0f) fires at the nearest enemy.", cfg.Defenses.Laser.Cost),
		fmt.Sprintf("Resource collector (%.0f) gathers %.0f resources per second.",
			cfg.Defenses.Collector.Cost, cfg.Defenses.Collector.CollectionRate),
		"Defeated enemies add to your score and half their reward to your resources.",
		"Red x enemies fly straight, pink z enemies dodge.",
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		t.OverlayTitle.Render("ORBITAL DEFENSE"),
		"",
		t.OverlayText.Render(strings.Join(rules, "\n")),
		"",
		h.View(m.keys),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, t.OverlayBorder.Render(body))
}

// Session returns the session being played.
func (m Model) Session() *session.Session {
	return m.sess
}

// Status returns the status line.
func (m Model) Status() string {
	return m.status
}

// IsQuitting returns true if the player requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if the player requested to go back to the menu.
func (m Model) BackToMenu() bool {
	return m.back
}

// Run starts a standalone game screen.
func Run(opts Options) error {
	p := tea.NewProgram(
		NewModel(opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
