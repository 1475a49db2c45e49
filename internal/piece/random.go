package piece

import (
	"math/rand"
	"time"

	"github.com/tomz197/tetris/internal/playfield"
)

// Randomizer is the random source used to generate next pieces.
// Implementations must pick uniformly.
type Randomizer interface {
	Kind() Kind
	Color() playfield.Color
	Orientation(symmetry int) int
}

// Uniform picks kinds, colors and orientations uniformly from a seeded source.
// It is not safe for concurrent use; every game owns its own.
type Uniform struct {
	rng *rand.Rand
}

// NewUniform creates a Uniform randomizer. A zero seed seeds from the clock.
func NewUniform(seed int64) *Uniform {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Uniform{rng: rand.New(rand.NewSource(seed))}
}

// Kind returns a random piece kind.
func (u *Uniform) Kind() Kind {
	return Kind(u.rng.Intn(NumKinds))
}

// Color returns a random non-empty color.
func (u *Uniform) Color() playfield.Color {
	return playfield.Color(u.rng.Intn(playfield.NumColors) + 1)
}

// Orientation returns a random orientation in [0, symmetry).
func (u *Uniform) Orientation(symmetry int) int {
	return u.rng.Intn(symmetry)
}

// Next creates a fresh piece at pose (0, 0) with a random kind, color and
// orientation.
func Next(r Randomizer) Piece {
	k := r.Kind()
	color := r.Color()
	return New(k, color, r.Orientation(k.Symmetry()))
}
