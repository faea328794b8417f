package core

import (
	"math"
	"strings"
)

// Cell is one character position of a Screen.
type Cell struct {
	Rune  rune
	Color Color
}

var blank = Cell{Rune: ' '}

// Screen is a 2D buffer of colored cells. Presentation draws the world into
// it and the platform turns it into terminal output.
type Screen struct {
	width  int
	height int
	cells  [][]Cell
}

// NewScreen creates a blank screen of the given size.
func NewScreen(width, height int) *Screen {
	s := &Screen{}
	s.Resize(width, height)
	return s
}

// Width returns the screen width in cells.
func (s *Screen) Width() int {
	return s.width
}

// Height returns the screen height in cells.
func (s *Screen) Height() int {
	return s.height
}

// Resize reallocates the buffer. Content is discarded.
func (s *Screen) Resize(width, height int) {
	s.width = max(width, 0)
	s.height = max(height, 0)
	s.cells = make([][]Cell, s.height)
	for y := range s.cells {
		s.cells[y] = make([]Cell, s.width)
	}
	s.Clear()
}

// Clear blanks every cell.
func (s *Screen) Clear() {
	for y := range s.cells {
		for x := range s.cells[y] {
			s.cells[y][x] = blank
		}
	}
}

// Set places a rune at (x, y). Out-of-bounds coordinates are ignored.
func (s *Screen) Set(x, y int, r rune, c Color) {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return
	}
	s.cells[y][x] = Cell{Rune: r, Color: c}
}

// Get returns the cell at (x, y), blank when out of bounds.
func (s *Screen) Get(x, y int) Cell {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return blank
	}
	return s.cells[y][x]
}

// DrawText writes text horizontally starting at (x, y), clipped to the
// screen.
func (s *Screen) DrawText(x, y int, text string, c Color) {
	i := 0
	for _, r := range text {
		s.Set(x+i, y, r, c)
		i++
	}
}

// DrawTextCentered draws text centered horizontally on row y.
func (s *Screen) DrawTextCentered(y int, text string, c Color) {
	n := len([]rune(text))
	s.DrawText((s.width-n)/2, y, text, c)
}

// String returns the runes of the buffer, rows joined by newlines.
func (s *Screen) String() string {
	var sb strings.Builder
	sb.Grow(s.width*s.height + s.height)
	for y := range s.height {
		if y > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(s.Row(y))
	}
	return sb.String()
}

// Row returns the runes of row y.
func (s *Screen) Row(y int) string {
	if y < 0 || y >= s.height {
		return strings.Repeat(" ", s.width)
	}
	rs := make([]rune, s.width)
	for x, c := range s.cells[y] {
		rs[x] = c.Rune
	}
	return string(rs)
}

// Viewport maps world coordinates onto a rectangle of screen cells,
// preserving the world aspect ratio. Terminal cells are about twice as
// tall as they are wide, so the vertical scale is halved.
type Viewport struct {
	World  Bounds
	X, Y   int // Top-left cell
	Cols   int
	Rows   int
	scaleX float64
	scaleY float64
	offX   float64
	offY   float64
}

// CellAspect is the height/width ratio of a terminal cell.
const CellAspect = 2.0

// NewViewport fits world into a cols x rows area whose top-left cell is
// (x, y). The world is centered in the area.
func NewViewport(world Bounds, x, y, cols, rows int) Viewport {
	v := Viewport{World: world, X: x, Y: y, Cols: max(cols, 1), Rows: max(rows, 1)}

	// World units per cell column, with rows covering CellAspect times more.
	perCol := math.Max(world.Width()/float64(v.Cols), world.Height()/(float64(v.Rows)*CellAspect))
	if perCol <= 0 {
		perCol = 1
	}
	v.scaleX = 1 / perCol
	v.scaleY = 1 / (perCol * CellAspect)
	v.offX = (float64(v.Cols) - world.Width()*v.scaleX) / 2
	v.offY = (float64(v.Rows) - world.Height()*v.scaleY) / 2
	return v
}

// ToCell converts a world position to a screen cell.
func (v Viewport) ToCell(p Vec2) (int, int) {
	cx := (p.X-v.World.MinX)*v.scaleX + v.offX
	cy := (p.Y-v.World.MinY)*v.scaleY + v.offY
	return v.X + int(math.Floor(cx)), v.Y + int(math.Floor(cy))
}

// ToWorld converts a screen cell to the world position of its center.
func (v Viewport) ToWorld(x, y int) Vec2 {
	cx := float64(x-v.X) + 0.5
	cy := float64(y-v.Y) + 0.5
	return Vec2{
		X: (cx-v.offX)/v.scaleX + v.World.MinX,
		Y: (cy-v.offY)/v.scaleY + v.World.MinY,
	}
}

// CellSize returns the world size of one cell column and one cell row.
func (v Viewport) CellSize() (float64, float64) {
	return 1 / v.scaleX, 1 / v.scaleY
}

// Plot draws r at the cell covering world position p.
func (v Viewport) Plot(s *Screen, p Vec2, r rune, c Color) {
	x, y := v.ToCell(p)
	if x < v.X || x >= v.X+v.Cols || y < v.Y || y >= v.Y+v.Rows {
		return
	}
	s.Set(x, y, r, c)
}

// Circle draws the outline of a world-space circle.
func (v Viewport) Circle(s *Screen, center Vec2, radius float64, r rune, c Color) {
	colW, _ := v.CellSize()
	steps := max(int(2*math.Pi*radius/colW*2), 12)
	for i := range steps {
		a := 2 * math.Pi * float64(i) / float64(steps)
		v.Plot(s, center.Add(FromAngle(a, radius)), r, c)
	}
}

// Disc fills a world-space circle.
func (v Viewport) Disc(s *Screen, center Vec2, radius float64, r rune, c Color) {
	x0, y0 := v.ToCell(center.Sub(Vec2{X: radius, Y: radius}))
	x1, y1 := v.ToCell(center.Add(Vec2{X: radius, Y: radius}))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if v.ToWorld(x, y).Dist(center) <= radius {
				if x >= v.X && x < v.X+v.Cols && y >= v.Y && y < v.Y+v.Rows {
					s.Set(x, y, r, c)
				}
			}
		}
	}
}
