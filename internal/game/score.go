package game

import (
	"errors"
	"time"

	"github.com/tomz197/tetris/internal/playfield"
)

// Default rules.
const (
	DefaultInitialDelay = time.Second
	DefaultDelayFactor  = 0.8
	DefaultLevelUp      = 20

	// MinGravityInterval is the floor the gravity interval never drops below.
	MinGravityInterval = time.Millisecond
)

// Rules holds the tunable scoring and speed parameters.
type Rules struct {
	InitialDelay time.Duration // gravity interval at level 1
	DelayFactor  float64       // interval multiplier applied on each level-up, in (0, 1)
	LevelUp      int           // points per level threshold
}

// DefaultRules returns the standard rules.
func DefaultRules() Rules {
	return Rules{
		InitialDelay: DefaultInitialDelay,
		DelayFactor:  DefaultDelayFactor,
		LevelUp:      DefaultLevelUp,
	}
}

// Validate checks that the rules describe a game that speeds up.
func (r Rules) Validate() error {
	if r.InitialDelay <= 0 {
		return errors.New("initial delay must be positive")
	}
	if r.DelayFactor <= 0 || r.DelayFactor >= 1 {
		return errors.New("delay factor must be between 0 and 1")
	}
	if r.LevelUp <= 0 {
		return errors.New("level up threshold must be positive")
	}
	return nil
}

// Score is the scoring state of a session.
type Score struct {
	Lines           int
	Points          int
	Level           int
	GravityInterval time.Duration
}

// NewScore returns the score at the start of a game.
func NewScore(rules Rules) Score {
	return Score{
		Level:           1,
		GravityInterval: rules.InitialDelay,
	}
}

// Apply accounts for n rows cleared by one landing. Clearing n rows at once is
// worth n² points. Crossing Level*LevelUp points raises the level by one and
// shortens the gravity interval, down to MinGravityInterval. leveledUp
// reports the level change.
func (s Score) Apply(n int, rules Rules) (next Score, leveledUp bool) {
	if n <= 0 {
		return s, false
	}
	s.Lines += n
	s.Points += n * n
	if s.Points > s.Level*rules.LevelUp {
		s.Level++
		s.GravityInterval = max(time.Duration(float64(s.GravityInterval)*rules.DelayFactor), MinGravityInterval)
		leveledUp = true
	}
	return s, leveledUp
}

// ClearCompleteRows clears every complete row, scanning top to bottom, and
// returns how many were removed.
func ClearCompleteRows(field *playfield.Playfield) int {
	n := 0
	for y := 0; y < playfield.Height; y++ {
		if field.IsRowComplete(y) {
			field.ClearRowAndShift(y)
			n++
		}
	}
	return n
}
