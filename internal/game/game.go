// Package game implements the falling-piece rules: collision checks, player
// transforms, landing, line clears, scoring and the current/next piece
// lifecycle.
package game

import (
	"errors"

	"github.com/tomz197/tetris/internal/piece"
	"github.com/tomz197/tetris/internal/playfield"
)

// ErrGameOver is returned once a new piece cannot be placed at the spawn pose.
// The game does not change after that.
var ErrGameOver = errors.New("game over")

// Spawn pose of every new current piece.
const (
	SpawnX = (playfield.Width - 4) / 2
	SpawnY = 0
)

// Slot tells the display where a piece is shown.
type Slot int

const (
	SlotField   Slot = iota // the falling piece inside the playfield
	SlotPreview             // the next-piece box
)

// Phase is the lifecycle stage of the current piece.
type Phase int

const (
	PhaseFalling Phase = iota
	PhaseLanded
	PhaseMerged
	PhaseClearing
	PhaseScored
	PhaseSpawnNext
	PhaseGameOver
)

var phaseNames = [...]string{"falling", "landed", "merged", "clearing", "scored", "spawn-next", "game-over"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// Display is the rendering boundary. The game calls it after every visible
// change and never reads it back.
type Display interface {
	PaintCell(x, y int, color playfield.Color)
	PaintPiece(p piece.Piece, slot Slot, visible bool)
	PaintScore(lines, level, score int)
	PaintMessage(text string)
}

// Landing describes what happened when the last piece came to rest.
type Landing struct {
	Piece     piece.Piece // the piece as merged
	Cleared   int         // rows removed
	LeveledUp bool
	Score     Score   // score after the landing
	Phases    []Phase // phases passed through, ending in Falling or GameOver
}

// Game is one single-player session. It is owned by a single goroutine.
type Game struct {
	field   *playfield.Playfield
	current piece.Piece
	next    piece.Piece
	score   Score
	rules   Rules
	rnd     piece.Randomizer
	display Display
	phase   Phase
	trace   []Phase // phases entered since the piece landed, nil while falling
	last    Landing
	started bool
	over    bool
}

// New creates a game with an empty playfield. Call Start before any move.
func New(rules Rules, rnd piece.Randomizer, display Display) *Game {
	return &Game{
		field:   playfield.New(),
		score:   NewScore(rules),
		rules:   rules,
		rnd:     rnd,
		display: display,
	}
}

// Start generates the first piece, promotes it and generates the next one.
func (g *Game) Start() error {
	if g.started {
		return nil
	}
	g.started = true
	g.next = piece.Next(g.rnd)
	return g.spawn()
}

// enter moves to phase p, recording it while a landing is in progress.
func (g *Game) enter(p Phase) {
	g.phase = p
	if g.trace != nil {
		g.trace = append(g.trace, p)
	}
}

// land runs the landing state machine for the current piece. Clearing is
// entered only when the merge completed a row.
func (g *Game) land() error {
	p := g.current
	g.trace = make([]Phase, 0, 6)
	g.enter(PhaseLanded)

	cells := p.Cells()
	g.field.Merge(cells[:], p.Color)
	g.enter(PhaseMerged)

	n := 0
	for y := 0; y < playfield.Height; y++ {
		if g.field.IsRowComplete(y) {
			g.enter(PhaseClearing)
			n = ClearCompleteRows(g.field)
			break
		}
	}

	g.enter(PhaseScored)
	var leveledUp bool
	g.score, leveledUp = g.score.Apply(n, g.rules)
	if n > 0 {
		g.display.PaintScore(g.score.Lines, g.score.Level, g.score.Points)
		g.paintField()
	}

	err := g.spawn()
	g.last = Landing{Piece: p, Cleared: n, LeveledUp: leveledUp, Score: g.score, Phases: g.trace}
	g.trace = nil
	return err
}

// spawn promotes the next piece to current and generates a new next piece.
func (g *Game) spawn() error {
	g.enter(PhaseSpawnNext)
	cur := g.next
	cur.X, cur.Y = SpawnX, SpawnY
	if !IsPoseLegal(cur.Kind, cur.X, cur.Y, cur.Orientation, g.field) {
		g.over = true
		g.enter(PhaseGameOver)
		return ErrGameOver
	}
	g.display.PaintPiece(g.next, SlotPreview, false)
	g.current = cur
	g.display.PaintPiece(g.current, SlotField, true)

	g.next = piece.Next(g.rnd)
	g.display.PaintPiece(g.next, SlotPreview, true)
	g.enter(PhaseFalling)
	return nil
}

func (g *Game) paintField() {
	for y := 0; y < playfield.Height; y++ {
		row := g.field.Row(y)
		for x, c := range row {
			g.display.PaintCell(x, y, c)
		}
	}
}

// Repaint paints the whole state: playfield, score, current and next piece.
func (g *Game) Repaint() {
	g.paintField()
	g.display.PaintScore(g.score.Lines, g.score.Level, g.score.Points)
	if g.started {
		g.display.PaintPiece(g.next, SlotPreview, true)
		if !g.over {
			g.display.PaintPiece(g.current, SlotField, true)
		}
	}
}

// Field returns the playfield. Callers must not modify it.
func (g *Game) Field() *playfield.Playfield { return g.field }

// Current returns the falling piece.
func (g *Game) Current() piece.Piece { return g.current }

// Next returns the piece that spawns after the current one lands.
func (g *Game) Next() piece.Piece { return g.next }

// Score returns the current score state.
func (g *Game) Score() Score { return g.score }

// Phase returns the lifecycle stage of the current piece. Between moves it is
// Falling or GameOver; LastLanding().Phases shows the stages of a landing.
func (g *Game) Phase() Phase { return g.phase }

// LastLanding describes the most recent landing.
func (g *Game) LastLanding() Landing { return g.last }

// Over reports whether the game has ended.
func (g *Game) Over() bool { return g.over }
