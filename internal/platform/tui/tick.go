// Package tui provides the Bubble Tea front end for the orbital defense
// simulation: the game screen, past-session browser, menu and SSH server.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// TickMsg is sent to trigger a simulation step of one session. Ticks of a
// session that has since been replaced are dropped.
type TickMsg struct {
	Session uuid.UUID
	At      time.Time
}

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(tickRate int, id uuid.UUID) tea.Cmd {
	if tickRate <= 0 {
		tickRate = 60
	}
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Session: id, At: t}
	})
}
