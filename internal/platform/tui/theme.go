package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/orbital-defense/internal/core"
)

// Theme contains the visual styles of the game screen, the HUD and the
// menus.
type Theme struct {
	// Palette maps screen cell colors to styles.
	Palette map[core.Color]lipgloss.Style

	// HUD styles
	HUDLabel     lipgloss.Style
	HUDValue     lipgloss.Style
	HUDWarn      lipgloss.Style
	HUDSeparator lipgloss.Style
	HUDStatus    lipgloss.Style
	HUDHelp      lipgloss.Style

	// Overlay styles
	OverlayBorder lipgloss.Style
	OverlayTitle  lipgloss.Style
	OverlayText   lipgloss.Style

	// Menu styles
	MenuTitle       lipgloss.Style
	MenuItemNormal  lipgloss.Style
	MenuItemActive  lipgloss.Style
	MenuDescription lipgloss.Style
}

func fg(c string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
}

// DefaultTheme returns the default visual theme.
func DefaultTheme() Theme {
	return Theme{
		Palette: map[core.Color]lipgloss.Style{
			core.ColorDefault:    lipgloss.NewStyle(),
			core.ColorPlanet:     fg("33"),  // Ocean blue
			core.ColorPlanetHurt: fg("160"), // Deep red
			core.ColorOrbit:      fg("238"),
			core.ColorLaser:      fg("51").Bold(true),
			core.ColorCollector:  fg("220").Bold(true),
			core.ColorEnemyBasic: fg("196"),
			core.ColorEnemyFast:  fg("207"),
			core.ColorProjectile: fg("46"),
			core.ColorCursor:     fg("255").Bold(true),
			core.ColorCursorBad:  fg("88"),
			core.ColorText:       fg("252"),
			core.ColorDim:        fg("241"),
			core.ColorWarn:       fg("226").Bold(true),
		},

		HUDLabel:     fg("245"),
		HUDValue:     fg("255").Bold(true),
		HUDWarn:      fg("196").Bold(true),
		HUDSeparator: fg("240"),
		HUDStatus:    fg("229"),
		HUDHelp:      fg("241"),

		OverlayBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 3),
		OverlayTitle: fg("226").Bold(true),
		OverlayText:  fg("252"),

		MenuTitle:       fg("51").Bold(true),
		MenuItemNormal:  fg("252"),
		MenuItemActive:  fg("226").Bold(true),
		MenuDescription: fg("245"),
	}
}

// MonochromeTheme returns a grayscale theme for terminals without color.
func MonochromeTheme() Theme {
	t := DefaultTheme()
	for c := range t.Palette {
		t.Palette[c] = lipgloss.NewStyle()
	}
	t.Palette[core.ColorOrbit] = fg("240")
	t.Palette[core.ColorDim] = fg("240")
	return t
}

// ThemeByName returns the named theme, falling back to the default.
func ThemeByName(name string) Theme {
	if name == "mono" {
		return MonochromeTheme()
	}
	return DefaultTheme()
}
