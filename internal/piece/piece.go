// Package piece defines the seven falling piece shapes and piece instances.
package piece

import (
	"fmt"

	"github.com/tomz197/tetris/internal/playfield"
)

// Kind identifies one of the seven piece shapes.
type Kind int

const (
	O Kind = iota
	I
	S
	Z
	L
	J
	T
)

// NumKinds is the number of piece shapes.
const NumKinds = 7

var kindNames = [NumKinds]string{"O", "I", "S", "Z", "L", "J", "T"}

func (k Kind) String() string {
	if k < 0 || int(k) >= NumKinds {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Offset is a cell position relative to the top-left corner of a piece's
// 4x4 bounding box.
type Offset struct {
	DX, DY int
}

// Orientation is one rotational variant of a shape.
type Orientation [4]Offset

// shapes lists the orientations of each kind in rotation order.
// Rotating moves forward through the list.
var shapes = [NumKinds][]Orientation{
	O: {
		{{1, 0}, {2, 0}, {1, 1}, {2, 1}},
	},
	I: {
		{{1, 0}, {1, 1}, {1, 2}, {1, 3}},
		{{0, 1}, {1, 1}, {2, 1}, {3, 1}},
	},
	S: {
		{{1, 0}, {2, 0}, {0, 1}, {1, 1}},
		{{0, 0}, {0, 1}, {1, 1}, {1, 2}},
	},
	Z: {
		{{0, 0}, {1, 0}, {1, 1}, {2, 1}},
		{{1, 0}, {0, 1}, {1, 1}, {0, 2}},
	},
	L: {
		{{1, 0}, {1, 1}, {1, 2}, {2, 2}},
		{{0, 1}, {1, 1}, {2, 1}, {0, 2}},
		{{0, 0}, {1, 0}, {1, 1}, {1, 2}},
		{{2, 0}, {0, 1}, {1, 1}, {2, 1}},
	},
	J: {
		{{1, 0}, {1, 1}, {0, 2}, {1, 2}},
		{{0, 0}, {0, 1}, {1, 1}, {2, 1}},
		{{1, 0}, {2, 0}, {1, 1}, {1, 2}},
		{{0, 1}, {1, 1}, {2, 1}, {2, 2}},
	},
	T: {
		{{1, 0}, {0, 1}, {1, 1}, {2, 1}},
		{{1, 0}, {1, 1}, {2, 1}, {1, 2}},
		{{0, 1}, {1, 1}, {2, 1}, {1, 2}},
		{{1, 0}, {0, 1}, {1, 1}, {1, 2}},
	},
}

// Symmetry returns the number of distinct orientations of the kind.
func (k Kind) Symmetry() int {
	return len(shapes[k])
}

// Cells returns the four offsets of the kind in the given orientation.
// Callers keep orientation within [0, Symmetry()).
func Cells(k Kind, orientation int) Orientation {
	return shapes[k][orientation]
}

// Piece is a piece instance: a shape with a color and a pose.
type Piece struct {
	Kind        Kind
	Color       playfield.Color
	X, Y        int // top-left of the 4x4 box in playfield coordinates
	Orientation int
	Symmetry    int
}

// New creates a piece of kind k at pose (0, 0).
func New(k Kind, color playfield.Color, orientation int) Piece {
	return Piece{
		Kind:        k,
		Color:       color,
		Orientation: orientation,
		Symmetry:    k.Symmetry(),
	}
}

// Cells returns the absolute cells occupied at the piece's current pose.
func (p Piece) Cells() [4]playfield.Cell {
	return p.CellsAt(p.X, p.Y, p.Orientation)
}

// CellsAt returns the absolute cells the piece would occupy at the given pose.
func (p Piece) CellsAt(x, y, orientation int) [4]playfield.Cell {
	return Place(p.Kind, x, y, orientation)
}

// Place returns the absolute cells of kind k at the given pose.
func Place(k Kind, x, y, orientation int) [4]playfield.Cell {
	var cells [4]playfield.Cell
	for i, off := range Cells(k, orientation) {
		cells[i] = playfield.Cell{X: x + off.DX, Y: y + off.DY}
	}
	return cells
}

// NextOrientation returns the orientation reached by one forward rotation.
func (p Piece) NextOrientation() int {
	return (p.Orientation + 1) % p.Symmetry
}
