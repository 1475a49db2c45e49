package game

import (
	"github.com/tomz197/tetris/internal/piece"
	"github.com/tomz197/tetris/internal/playfield"
)

// IsPoseLegal reports whether kind k fits at the given pose: every cell inside
// the playfield and on an empty cell.
func IsPoseLegal(k piece.Kind, x, y, orientation int, field *playfield.Playfield) bool {
	for _, c := range piece.Place(k, x, y, orientation) {
		if field.CellColor(c.X, c.Y) != playfield.Empty {
			return false
		}
	}
	return true
}

// move applies the translation/rotation if the resulting pose is legal and
// repaints the piece. It reports whether the piece moved.
func (g *Game) move(dx, dy, dz int) bool {
	p := g.current
	x, y := p.X+dx, p.Y+dy
	o := (p.Orientation + dz) % p.Symmetry
	if !IsPoseLegal(p.Kind, x, y, o, g.field) {
		return false
	}
	g.display.PaintPiece(p, SlotField, false)
	g.current.X, g.current.Y, g.current.Orientation = x, y, o
	g.display.PaintPiece(g.current, SlotField, true)
	return true
}

// Left shifts the current piece one column left. Blocked moves are ignored.
func (g *Game) Left() error {
	if g.over {
		return ErrGameOver
	}
	g.move(-1, 0, 0)
	return nil
}

// Right shifts the current piece one column right. Blocked moves are ignored.
func (g *Game) Right() error {
	if g.over {
		return ErrGameOver
	}
	g.move(1, 0, 0)
	return nil
}

// Rotate advances the current piece to its next orientation. There are no
// wall kicks: a blocked rotation is ignored.
func (g *Game) Rotate() error {
	if g.over {
		return ErrGameOver
	}
	g.move(0, 0, 1)
	return nil
}

// Down moves the current piece one row down. When it cannot move, the piece
// lands: it is merged, complete rows are cleared and the next piece spawns.
// landed reports whether that happened. ErrGameOver is returned when the next
// piece cannot spawn.
func (g *Game) Down() (landed bool, err error) {
	if g.over {
		return false, ErrGameOver
	}
	if g.move(0, 1, 0) {
		return false, nil
	}
	return true, g.land()
}

// Drop moves the current piece down until it lands.
func (g *Game) Drop() error {
	for {
		landed, err := g.Down()
		if err != nil || landed {
			return err
		}
	}
}
