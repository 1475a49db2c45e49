// Package playfield holds the grid of settled blocks.
package playfield

// Playfield dimensions in cells.
const (
	Width  = 10
	Height = 20
)

// Color is the display attribute of a cell. The values match the ANSI color
// numbers used by the renderer; Empty marks a free cell.
type Color uint8

const (
	Empty Color = iota
	Red
	Green
	Yellow
	Blue
	Fuchsia
	Cyan
	White
)

// NumColors is the number of non-empty colors.
const NumColors = 7

// OutOfBounds is returned by CellColor for coordinates outside the grid.
// It is never stored in a row.
const OutOfBounds Color = 0xff

// Filled reports whether the color denotes an occupied cell.
func (c Color) Filled() bool {
	return c != Empty
}

// Cell is an absolute playfield coordinate.
type Cell struct {
	X, Y int
}

// Row is one horizontal line of the playfield, indexed by column.
type Row [Width]Color

// Complete reports whether every column of the row is occupied.
func (r Row) Complete() bool {
	for _, c := range r {
		if c == Empty {
			return false
		}
	}
	return true
}

// Playfield is a fixed grid of rows, row 0 at the top.
// The zero value is an empty playfield.
type Playfield struct {
	rows [Height]Row
}

// New creates an empty playfield.
func New() *Playfield {
	return &Playfield{}
}

// InBounds reports whether (x, y) lies inside the grid.
func InBounds(x, y int) bool {
	return x >= 0 && x < Width && y >= 0 && y < Height
}

// CellColor returns the color at (x, y), or OutOfBounds for coordinates
// outside the grid.
func (p *Playfield) CellColor(x, y int) Color {
	if !InBounds(x, y) {
		return OutOfBounds
	}
	return p.rows[y][x]
}

// Row returns a copy of row y. Out of range rows read as empty.
func (p *Playfield) Row(y int) Row {
	if y < 0 || y >= Height {
		return Row{}
	}
	return p.rows[y]
}

// IsRowComplete reports whether every column in row y is occupied.
func (p *Playfield) IsRowComplete(y int) bool {
	if y < 0 || y >= Height {
		return false
	}
	return p.rows[y].Complete()
}

// ClearRowAndShift removes row y, moves every row above it down by one and
// inserts an empty row at the top.
func (p *Playfield) ClearRowAndShift(y int) {
	if y < 0 || y >= Height {
		return
	}
	copy(p.rows[1:y+1], p.rows[:y])
	p.rows[0] = Row{}
}

// Merge paints each cell with color. Callers only pass in-bounds cells that
// passed a collision check; anything else is ignored.
func (p *Playfield) Merge(cells []Cell, color Color) {
	for _, c := range cells {
		if InBounds(c.X, c.Y) {
			p.rows[c.Y][c.X] = color
		}
	}
}
