package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/vovakirdan/orbital-defense/internal/core"
	"github.com/vovakirdan/orbital-defense/internal/orbital"
)

// Glyphs of the play field.
const (
	glyphPlanet     = '█'
	glyphOrbit      = '·'
	glyphLaser      = 'T'
	glyphCollector  = '$'
	glyphEnemyBasic = 'x'
	glyphEnemyFast  = 'z'
	glyphProjectile = '•'
	glyphCursor     = '+'
)

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen, palette map[core.Color]lipgloss.Style) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			color := s.Get(x, y).Color

			var run strings.Builder
			for x < s.Width() {
				cell := s.Get(x, y)
				if cell.Color != color {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := palette[color]
			if !ok {
				style = palette[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// fieldView is what the play field shows besides the engine state.
type fieldView struct {
	cursor  core.Vec2
	placing bool
	focus   uint64 // Defense highlighted for upgrades, 0 for none
}

// drawField renders the engine state into s through v.
func drawField(s *core.Screen, v core.Viewport, e *orbital.Engine, fv fieldView) {
	planet := e.Planet()
	cfg := e.Config()

	if fv.placing {
		v.Circle(s, planet.Position, planet.Radius+cfg.Placement.Margin, glyphOrbit, core.ColorOrbit)
		v.Circle(s, planet.Position, cfg.Placement.MaxOrbitalRadius, glyphOrbit, core.ColorOrbit)
	}

	planetColor := core.ColorPlanet
	if planet.Health < cfg.Planet.Health*0.3 {
		planetColor = core.ColorPlanetHurt
	}
	v.Disc(s, planet.Position, planet.Radius, glyphPlanet, planetColor)

	for _, d := range e.Defenses() {
		glyph, color := glyphLaser, core.ColorLaser
		if d.Kind == orbital.DefenseCollector {
			glyph, color = glyphCollector, core.ColorCollector
		}
		if d.ID == fv.focus {
			color = core.ColorCursor
		}
		v.Plot(s, d.Position, glyph, color)
	}

	for _, p := range e.Projectiles() {
		v.Plot(s, p.Position, glyphProjectile, core.ColorProjectile)
	}

	for _, en := range e.Enemies() {
		glyph, color := glyphEnemyBasic, core.ColorEnemyBasic
		if en.Kind == orbital.EnemyFast {
			glyph, color = glyphEnemyFast, core.ColorEnemyFast
		}
		v.Plot(s, en.Position, glyph, color)
	}

	if fv.placing {
		color := core.ColorCursorBad
		if e.InOrbit(fv.cursor) {
			color = core.ColorCursor
		}
		v.Plot(s, fv.cursor, glyphCursor, color)
	}

	if e.GameOver() {
		mid := v.Y + v.Rows/2
		s.DrawTextCentered(mid-1, " PLANET DESTROYED ", core.ColorWarn)
		s.DrawTextCentered(mid+1, fmt.Sprintf(" Wave %d  Score %s ", e.Waves().CurrentWave,
			humanize.Comma(int64(e.Score()))), core.ColorText)
	}
}

// renderHUD renders the status line below the field.
func renderHUD(t Theme, e *orbital.Engine, width int) string {
	planet := e.Planet()
	cfg := e.Config()
	waves := e.Waves()

	sep := t.HUDSeparator.Render(" │ ")
	item := func(label, value string) string {
		return t.HUDLabel.Render(label+" ") + t.HUDValue.Render(value)
	}

	health := item("HP", fmt.Sprintf("%.0f/%.0f", max(planet.Health, 0), cfg.Planet.Health))
	if planet.Health < cfg.Planet.Health*0.3 {
		health = t.HUDLabel.Render("HP ") + t.HUDWarn.Render(fmt.Sprintf("%.0f", max(planet.Health, 0)))
	}

	wave := fmt.Sprintf("%d", waves.CurrentWave)
	if e.WaveInProgress() {
		wave = fmt.Sprintf("%d (%d left)", waves.CurrentWave, waves.Remaining()+len(e.Enemies()))
	}

	selected := e.Selected()
	cost := cfg.Defenses.Laser.Cost
	if selected == orbital.DefenseCollector {
		cost = cfg.Defenses.Collector.Cost
	}

	parts := []string{
		health,
		item("Res", humanize.Comma(int64(planet.Resources))),
		item("Score", humanize.Comma(int64(e.Score()))),
		item("Wave", wave),
		item("Shield", fmt.Sprintf("%d/%d", planet.ShieldLevel, cfg.Planet.Shield.MaxLevel)),
		item("Build", fmt.Sprintf("%s (%.0f)", selected, cost)),
	}
	line := strings.Join(parts, sep)
	return lipgloss.NewStyle().MaxWidth(width).Render(line)
}
