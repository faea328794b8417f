package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/orbital-defense/internal/config"
	"github.com/vovakirdan/orbital-defense/internal/core"
	"github.com/vovakirdan/orbital-defense/internal/stats"
	"github.com/vovakirdan/orbital-defense/internal/storage"
)

func openTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestApp(store *storage.Store) AppModel {
	return NewAppModel(Options{
		Config:  config.Default(),
		Runtime: core.RuntimeConfig{ScreenW: 120, ScreenH: 40, TickRate: 60},
		Store:   store,
	}, "tester")
}

func sendApp(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(AppModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return out, cmd
}

func TestAppMenuToGameAndBack(t *testing.T) {
	m := newTestApp(nil)
	if !strings.Contains(m.View(), "tester") {
		t.Error("menu should greet the user")
	}

	m, cmd := sendApp(t, m, keyEnter)
	if m.screen != screenGame || cmd == nil {
		t.Fatalf("screen = %v, cmd nil = %v", m.screen, cmd == nil)
	}
	if !m.game.opts.Embedded {
		t.Error("game inside the app must be embedded")
	}

	m, _ = sendApp(t, m, TickMsg{Session: m.game.Session().ID()})
	if m.game.Session().Engine.Tick() != 1 {
		t.Error("tick not routed to the game")
	}

	m, _ = sendApp(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.screen != screenMenu {
		t.Errorf("screen = %v after back, expected menu", m.screen)
	}
	if m.menu.Selected() != ChoiceNone {
		t.Error("menu should be fresh after returning")
	}
}

func TestAppSessionsBrowser(t *testing.T) {
	store := openTestStore(t)
	r := stats.Report{
		SessionID:       "s1",
		StartedAt:       time.Now().Add(-time.Hour),
		DurationMs:      90000,
		Score:           1234,
		WavesCompleted:  4,
		EnemiesDefeated: 20,
		Placements:      []stats.PlacementRecord{{Kind: "laser_turret", OrbitalRadius: 200, UpgradeLevel: 2, DamageDealt: 500}},
		Enemies:         []stats.SurvivalRecord{{EnemyKind: "basic", SurvivalMs: 3000}},
	}
	if _, err := store.SaveSession(r, nil); err != nil {
		t.Fatalf("SaveSession() failed: %v", err)
	}

	m := newTestApp(store)
	if !strings.Contains(m.View(), "1234") {
		t.Error("menu should show the best score")
	}

	m, _ = sendApp(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = sendApp(t, m, keyEnter)
	if m.screen != screenSessions {
		t.Fatalf("screen = %v, expected sessions", m.screen)
	}
	view := m.View()
	if !strings.Contains(view, "1,234") || !strings.Contains(view, "best score") {
		t.Errorf("sessions view missing row:\n%s", view)
	}

	m, _ = sendApp(t, m, keyEnter)
	if !strings.Contains(m.View(), "laser_turret") {
		t.Error("detail pane should list placements")
	}

	// First back closes the detail, second returns to the menu without
	// quitting the program.
	m, _ = sendApp(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m, cmd := sendApp(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.screen != screenMenu || cmd != nil {
		t.Errorf("screen = %v, cmd nil = %v", m.screen, cmd == nil)
	}
}

func TestAppQuitFromMenu(t *testing.T) {
	m := newTestApp(nil)
	m, cmd := sendApp(t, m, keyRunes("q"))
	if cmd == nil || m.View() != "" {
		t.Error("q should quit the program")
	}
}

func TestSessionsEmpty(t *testing.T) {
	m := NewSessionsModel(nil, Theme{}, 80, 24)
	if !strings.Contains(m.View(), "No sessions recorded yet") {
		t.Error("empty store should show the placeholder")
	}
}

func TestCenterText(t *testing.T) {
	tests := []struct {
		text     string
		width    int
		expected string
	}{
		{"ab", 6, "  ab"},
		{"abcdef", 4, "abcdef"},
		{"", 4, "  "},
	}
	for _, tc := range tests {
		if got := centerText(tc.text, tc.width); got != tc.expected {
			t.Errorf("centerText(%q, %d) = %q, expected %q", tc.text, tc.width, got, tc.expected)
		}
	}
}
