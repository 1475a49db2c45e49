package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/tetris/internal/piece"
	"github.com/tomz197/tetris/internal/playfield"
)

// scripted hands out a fixed sequence of pieces, repeating the last one.
type scripted struct {
	pieces []piece.Piece
	i      int
}

func newScripted(pieces ...piece.Piece) *scripted {
	return &scripted{pieces: pieces}
}

func (s *scripted) peek() piece.Piece {
	if s.i < len(s.pieces) {
		return s.pieces[s.i]
	}
	return s.pieces[len(s.pieces)-1]
}

func (s *scripted) Kind() piece.Kind { return s.peek().Kind }

func (s *scripted) Color() playfield.Color { return s.peek().Color }

func (s *scripted) Orientation(int) int {
	o := s.peek().Orientation
	s.i++
	return o
}

type paintCall struct {
	slot    Slot
	piece   piece.Piece
	visible bool
}

type recorder struct {
	cells    int
	pieces   []paintCall
	scores   [][3]int
	messages []string
}

func (r *recorder) PaintCell(int, int, playfield.Color) { r.cells++ }

func (r *recorder) PaintPiece(p piece.Piece, slot Slot, visible bool) {
	r.pieces = append(r.pieces, paintCall{slot: slot, piece: p, visible: visible})
}

func (r *recorder) PaintScore(lines, level, score int) {
	r.scores = append(r.scores, [3]int{lines, level, score})
}

func (r *recorder) PaintMessage(text string) { r.messages = append(r.messages, text) }

func horizontalI(color playfield.Color) piece.Piece { return piece.New(piece.I, color, 1) }

func square(color playfield.Color) piece.Piece { return piece.New(piece.O, color, 0) }

func startGame(t *testing.T, pieces ...piece.Piece) (*Game, *recorder) {
	t.Helper()
	rec := &recorder{}
	g := New(DefaultRules(), newScripted(pieces...), rec)
	require.NoError(t, g.Start())
	return g, rec
}

func fillRow(f *playfield.Playfield, y int, color playfield.Color, skip ...int) {
	var cells []playfield.Cell
	for x := 0; x < playfield.Width; x++ {
		keep := true
		for _, s := range skip {
			if s == x {
				keep = false
			}
		}
		if keep {
			cells = append(cells, playfield.Cell{X: x, Y: y})
		}
	}
	f.Merge(cells, color)
}

func TestIsPoseLegalOutOfBounds(t *testing.T) {
	field := playfield.New()
	for k := piece.Kind(0); k < piece.NumKinds; k++ {
		for o := 0; o < k.Symmetry(); o++ {
			for _, off := range piece.Cells(k, o) {
				// Push exactly this cell one step past each edge.
				assert.False(t, IsPoseLegal(k, -1-off.DX, 0, o, field), "%s/%d left", k, o)
				assert.False(t, IsPoseLegal(k, playfield.Width-off.DX, 0, o, field), "%s/%d right", k, o)
				assert.False(t, IsPoseLegal(k, 0, -1-off.DY, o, field), "%s/%d top", k, o)
				assert.False(t, IsPoseLegal(k, 0, playfield.Height-off.DY, o, field), "%s/%d bottom", k, o)
			}
		}
	}
}

func TestIsPoseLegalAgainstSettledBlocks(t *testing.T) {
	field := playfield.New()
	// Checkerboard in the bottom half.
	for y := playfield.Height / 2; y < playfield.Height; y++ {
		for x := (y % 2); x < playfield.Width; x += 2 {
			field.Merge([]playfield.Cell{{X: x, Y: y}}, playfield.Blue)
		}
	}

	for k := piece.Kind(0); k < piece.NumKinds; k++ {
		for o := 0; o < k.Symmetry(); o++ {
			for y := -1; y <= playfield.Height; y++ {
				for x := -1; x <= playfield.Width; x++ {
					want := true
					for _, c := range piece.Place(k, x, y, o) {
						if !playfield.InBounds(c.X, c.Y) || field.CellColor(c.X, c.Y) != playfield.Empty {
							want = false
						}
					}
					assert.Equal(t, want, IsPoseLegal(k, x, y, o, field), "%s/%d at (%d,%d)", k, o, x, y)
				}
			}
		}
	}
}

func TestStartSpawnsAtSpawnPose(t *testing.T) {
	g, rec := startGame(t, horizontalI(playfield.Red), square(playfield.Green))

	cur := g.Current()
	assert.Equal(t, piece.I, cur.Kind)
	assert.Equal(t, SpawnX, cur.X)
	assert.Equal(t, SpawnY, cur.Y)
	assert.Equal(t, 1, cur.Orientation)
	assert.Equal(t, piece.O, g.Next().Kind)
	assert.Equal(t, PhaseFalling, g.Phase())

	last := rec.pieces[len(rec.pieces)-1]
	assert.Equal(t, SlotPreview, last.slot)
	assert.True(t, last.visible)
}

func TestHorizontalAndRotationFailuresAreNoOps(t *testing.T) {
	g, _ := startGame(t, horizontalI(playfield.Red))

	for i := 0; i < 10; i++ {
		require.NoError(t, g.Left())
	}
	assert.Equal(t, 0, g.Current().X, "horizontal I stops at the left wall")

	// Vertical I at x=0 occupies column 1, so rotation is legal there.
	require.NoError(t, g.Rotate())
	assert.Equal(t, 0, g.Current().Orientation)

	for i := 0; i < 10; i++ {
		require.NoError(t, g.Right())
	}
	assert.Equal(t, playfield.Width-2, g.Current().X)

	// Rotating back to horizontal would put cells past the right wall.
	before := g.Current()
	require.NoError(t, g.Rotate())
	assert.Equal(t, before, g.Current())
}

func TestRotationCyclesForward(t *testing.T) {
	g, _ := startGame(t, piece.New(piece.T, playfield.Red, 0))
	_, err := g.Down()
	require.NoError(t, err)
	for want := 1; want <= 4; want++ {
		require.NoError(t, g.Rotate())
		assert.Equal(t, want%4, g.Current().Orientation)
	}
}

func TestLandingPromotesNextPiece(t *testing.T) {
	g, _ := startGame(t, horizontalI(playfield.Red), square(playfield.Green), horizontalI(playfield.Blue))
	assert.Equal(t, 3, g.Current().X)
	assert.Equal(t, 0, g.Current().Y)

	for i := 0; i < 18; i++ {
		landed, err := g.Down()
		require.NoError(t, err)
		require.False(t, landed, "step %d", i)
	}
	assert.Equal(t, 18, g.Current().Y)

	landed, err := g.Down()
	require.NoError(t, err)
	require.True(t, landed)

	for x := 3; x <= 6; x++ {
		assert.Equal(t, playfield.Red, g.Field().CellColor(x, 19))
	}
	cur := g.Current()
	assert.Equal(t, piece.O, cur.Kind)
	assert.Equal(t, playfield.Green, cur.Color)
	assert.Equal(t, 3, cur.X)
	assert.Equal(t, 0, cur.Y)
	assert.Equal(t, piece.I, g.Next().Kind)
	assert.Equal(t, 0, g.LastLanding().Cleared)
	assert.Equal(t, 0, g.Score().Points)
	assert.Equal(t, []Phase{PhaseLanded, PhaseMerged, PhaseScored, PhaseSpawnNext, PhaseFalling}, g.LastLanding().Phases)
	assert.Equal(t, PhaseFalling, g.Phase())
}

func TestSingleLineClear(t *testing.T) {
	g, rec := startGame(t, piece.New(piece.I, playfield.Yellow, 0), square(playfield.Green))
	// Bottom row full except column 4, which the vertical I (column x+1) fills.
	fillRow(g.field, playfield.Height-1, playfield.Red, 4)

	require.NoError(t, g.Drop())

	landing := g.LastLanding()
	assert.Equal(t, 1, landing.Cleared)
	assert.Equal(t, []Phase{PhaseLanded, PhaseMerged, PhaseClearing, PhaseScored, PhaseSpawnNext, PhaseFalling}, landing.Phases)
	assert.Equal(t, 1, g.Score().Lines)
	assert.Equal(t, 1, g.Score().Points)
	require.Len(t, rec.scores, 1)
	assert.Equal(t, [3]int{1, 1, 1}, rec.scores[0])

	// The I's remaining three cells shifted down one row.
	assert.False(t, g.Field().IsRowComplete(playfield.Height-1))
	for y := playfield.Height - 3; y < playfield.Height; y++ {
		assert.Equal(t, playfield.Yellow, g.Field().CellColor(4, y))
	}
	assert.Equal(t, playfield.Empty, g.Field().CellColor(0, playfield.Height-1))
}

func TestFourLineClearScoresSixteen(t *testing.T) {
	g, _ := startGame(t, piece.New(piece.I, playfield.Cyan, 0), square(playfield.Green))
	for y := playfield.Height - 4; y < playfield.Height; y++ {
		fillRow(g.field, y, playfield.Red, 4)
	}

	require.NoError(t, g.Drop())

	assert.Equal(t, 4, g.LastLanding().Cleared)
	assert.Equal(t, 16, g.Score().Points)
	assert.Equal(t, 4, g.Score().Lines)
	for y := 0; y < playfield.Height; y++ {
		assert.Equal(t, playfield.Row{}, g.Field().Row(y))
	}
}

func TestScoreApply(t *testing.T) {
	rules := DefaultRules()
	s := NewScore(rules)
	assert.Equal(t, Score{Level: 1, GravityInterval: time.Second}, s)

	s, up := s.Apply(0, rules)
	assert.False(t, up)
	assert.Equal(t, 0, s.Points)

	s, _ = s.Apply(1, rules)
	assert.Equal(t, 1, s.Points)
	s, _ = s.Apply(4, rules)
	assert.Equal(t, 17, s.Points)
	assert.Equal(t, 5, s.Lines)
}

func TestLevelUp(t *testing.T) {
	rules := DefaultRules()
	s := NewScore(rules)

	s, up := s.Apply(4, rules) // 16
	assert.False(t, up)
	s, up = s.Apply(2, rules) // 20, not above threshold
	assert.False(t, up)
	assert.Equal(t, 1, s.Level)

	prev := s.GravityInterval
	s, up = s.Apply(1, rules) // 21 > 20
	assert.True(t, up)
	assert.Equal(t, 2, s.Level)
	assert.Less(t, s.GravityInterval, prev)
	assert.Equal(t, 800*time.Millisecond, s.GravityInterval)

	// Next threshold is 40; staying below it keeps the level.
	prev = s.GravityInterval
	s, up = s.Apply(4, rules) // 37
	assert.False(t, up)
	assert.Equal(t, 2, s.Level)
	assert.Equal(t, prev, s.GravityInterval)

	s, up = s.Apply(2, rules) // 41
	assert.True(t, up)
	assert.Equal(t, 3, s.Level)
	assert.Less(t, s.GravityInterval, prev)
}

func TestGravityIntervalFloor(t *testing.T) {
	rules := Rules{InitialDelay: time.Second, DelayFactor: 0.5, LevelUp: 1}
	s := NewScore(rules)

	for i := 0; i < 100; i++ {
		prev := s.GravityInterval
		var up bool
		s, up = s.Apply(4, rules)
		require.True(t, up, "step %d", i)
		require.GreaterOrEqual(t, s.GravityInterval, MinGravityInterval, "step %d", i)
		if prev > MinGravityInterval {
			require.Less(t, s.GravityInterval, prev, "step %d", i)
		}
	}
	assert.Equal(t, MinGravityInterval, s.GravityInterval)
	assert.Equal(t, 101, s.Level)
}

func TestSpawnCollisionEndsGame(t *testing.T) {
	g, rec := startGame(t, horizontalI(playfield.Red), square(playfield.Green))
	// The I sits on row 1 and cannot move down onto row 2.
	g.field.Merge([]playfield.Cell{{X: 4, Y: 2}, {X: 5, Y: 2}}, playfield.White)

	landed, err := g.Down()
	require.True(t, landed)
	require.ErrorIs(t, err, ErrGameOver)
	assert.True(t, g.Over())
	assert.Equal(t, PhaseGameOver, g.Phase())
	assert.Equal(t, []Phase{PhaseLanded, PhaseMerged, PhaseScored, PhaseSpawnNext, PhaseGameOver}, g.LastLanding().Phases)

	// The merged I covers (4,1), one of the square's spawn cells.
	for x := 3; x <= 6; x++ {
		assert.Equal(t, playfield.Red, g.Field().CellColor(x, 1))
	}

	painted := len(rec.pieces)
	field := *g.Field()
	current := g.Current()

	_, err = g.Down()
	assert.ErrorIs(t, err, ErrGameOver)
	assert.ErrorIs(t, g.Left(), ErrGameOver)
	assert.ErrorIs(t, g.Right(), ErrGameOver)
	assert.ErrorIs(t, g.Rotate(), ErrGameOver)
	assert.ErrorIs(t, g.Drop(), ErrGameOver)

	assert.Equal(t, painted, len(rec.pieces))
	assert.Equal(t, field, *g.Field())
	assert.Equal(t, current, g.Current())
}

func TestRulesValidate(t *testing.T) {
	assert.NoError(t, DefaultRules().Validate())
	assert.Error(t, Rules{InitialDelay: 0, DelayFactor: 0.5, LevelUp: 1}.Validate())
	assert.Error(t, Rules{InitialDelay: time.Second, DelayFactor: 1, LevelUp: 1}.Validate())
	assert.Error(t, Rules{InitialDelay: time.Second, DelayFactor: 0.5, LevelUp: 0}.Validate())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "spawn-next", PhaseSpawnNext.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
