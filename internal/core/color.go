package core

// Color is the palette slot of a screen cell. The platform layer maps each
// slot to a terminal style.
type Color uint8

const (
	ColorDefault Color = iota
	ColorPlanet
	ColorPlanetHurt
	ColorOrbit
	ColorLaser
	ColorCollector
	ColorEnemyBasic
	ColorEnemyFast
	ColorProjectile
	ColorCursor
	ColorCursorBad
	ColorText
	ColorDim
	ColorWarn
)
