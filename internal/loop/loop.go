// Package loop provides the game loop: it waits for a key or the next gravity
// tick, dispatches commands and ends the session.
package loop

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/tetris/internal/game"
	"github.com/tomz197/tetris/internal/input"
	"github.com/tomz197/tetris/internal/piece"
)

// ErrDisconnected is the cancel cause a caller uses when the player's
// connection went away, so the session ends as a disconnect rather than a
// shutdown.
var ErrDisconnected = errors.New("loop: player disconnected")

// KeySource delivers key bytes. ReadKey blocks for at most timeout; ok is
// false when it expired. io.EOF means the player is gone.
type KeySource interface {
	ReadKey(ctx context.Context, timeout time.Duration) (b byte, ok bool, err error)
}

// Screen is everything the loop needs from the display.
type Screen interface {
	game.Display

	Begin()
	DrawFrame()
	SetShowHelp(on bool)
	ShowHelp() bool
	SetShowNext(on bool)
	ShowNext() bool
	SetColor(on bool)
	Color() bool
	Resize(width, height int)
	Flush() error
	Terminate(message string) error
}

// Size is a terminal size in columns and rows.
type Size struct {
	Width, Height int
}

// Options configures a session.
type Options struct {
	Rules      game.Rules
	Randomizer piece.Randomizer
	Now        func() time.Time // defaults to time.Now
	Logger     *log.Logger      // defaults to a discarding logger

	// Resize delivers terminal size changes. The screen is re-laid out and
	// redrawn after the next key or tick. Nil means the size never changes.
	Resize <-chan Size
}

func (o *Options) setDefaults() {
	if o.Rules == (game.Rules{}) {
		o.Rules = game.DefaultRules()
	}
	if o.Randomizer == nil {
		o.Randomizer = piece.NewUniform(0)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// session is the state owned by one Run call.
type session struct {
	game     *game.Game
	screen   Screen
	keys     KeySource
	decoder  input.Decoder
	now      func() time.Time
	logger   *log.Logger
	resize   <-chan Size
	lastTick time.Time
}

// Run plays one game until the player quits, the game is over, the key source
// is exhausted or ctx is cancelled. The screen is terminated exactly once.
func Run(ctx context.Context, keys KeySource, screen Screen, opts Options) (Result, error) {
	opts.setDefaults()
	if err := opts.Rules.Validate(); err != nil {
		return Result{}, fmt.Errorf("loop: %w", err)
	}

	s := &session{
		game:   game.New(opts.Rules, opts.Randomizer, screen),
		screen: screen,
		keys:   keys,
		now:    opts.Now,
		logger: opts.Logger,
		resize: opts.Resize,
	}

	screen.Begin()
	screen.DrawFrame()
	if err := s.game.Start(); err != nil {
		return s.finish(ReasonGameOver)
	}
	s.game.Repaint()
	if err := screen.Flush(); err != nil {
		return Result{}, fmt.Errorf("loop: flush: %w", err)
	}
	s.logger.Debug("game started", "current", s.game.Current().Kind, "next", s.game.Next().Kind)

	s.lastTick = s.now()
	for {
		wait := s.lastTick.Add(s.game.Score().GravityInterval).Sub(s.now())
		b, ok, err := s.keys.ReadKey(ctx, wait)
		switch {
		case errors.Is(err, io.EOF):
			return s.finish(ReasonDisconnect)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			if errors.Is(context.Cause(ctx), ErrDisconnected) {
				return s.finish(ReasonDisconnect)
			}
			return s.finish(ReasonShutdown)
		case err != nil:
			return Result{}, fmt.Errorf("loop: read key: %w", err)
		}

		var reason Reason
		if ok {
			reason, err = s.handleKey(b)
		} else {
			reason, err = s.tick()
		}
		if errors.Is(err, game.ErrGameOver) {
			return s.finish(ReasonGameOver)
		}
		if reason == ReasonQuit {
			return s.finish(ReasonQuit)
		}
		s.applyResize()

		if err := s.screen.Flush(); err != nil {
			return Result{}, fmt.Errorf("loop: flush: %w", err)
		}
	}
}

// tick performs one gravity step and re-arms the timer from the moment of
// the tick.
func (s *session) tick() (Reason, error) {
	s.lastTick = s.now()
	landed, err := s.game.Down()
	if landed {
		s.logLanding()
	}
	return ReasonNone, err
}

func (s *session) handleKey(b byte) (Reason, error) {
	cmd := s.decoder.Feed(b)
	if cmd == input.None {
		return ReasonNone, nil
	}
	s.logger.Debug("command", "cmd", cmd)

	switch cmd {
	case input.Quit:
		return ReasonQuit, nil
	case input.Left:
		return ReasonNone, s.game.Left()
	case input.Right:
		return ReasonNone, s.game.Right()
	case input.Rotate:
		return ReasonNone, s.game.Rotate()
	case input.Down:
		landed, err := s.game.Down()
		if landed {
			s.logLanding()
		}
		return ReasonNone, err
	case input.Drop:
		err := s.game.Drop()
		s.logLanding()
		return ReasonNone, err
	case input.ToggleHelp:
		s.screen.SetShowHelp(!s.screen.ShowHelp())
	case input.ToggleNext:
		s.screen.SetShowNext(!s.screen.ShowNext())
		s.screen.PaintPiece(s.game.Next(), game.SlotPreview, true)
	case input.ToggleColor:
		s.screen.SetColor(!s.screen.Color())
		s.redraw()
	}
	return ReasonNone, nil
}

// applyResize takes the latest pending size change, if any.
func (s *session) applyResize() {
	var size Size
	changed := false
drain:
	for {
		select {
		case sz, ok := <-s.resize:
			if !ok {
				s.resize = nil
				break drain
			}
			size, changed = sz, true
		default:
			break drain
		}
	}
	if !changed {
		return
	}
	s.logger.Debug("terminal resized", "width", size.Width, "height", size.Height)
	s.screen.Resize(size.Width, size.Height)
	s.redraw()
}

func (s *session) redraw() {
	s.screen.DrawFrame()
	s.game.Repaint()
}

func (s *session) logLanding() {
	l := s.game.LastLanding()
	s.logger.Debug("piece landed", "kind", l.Piece.Kind, "x", l.Piece.X, "y", l.Piece.Y, "cleared", l.Cleared, "phases", l.Phases)
	if l.Cleared > 0 {
		s.logger.Info("rows cleared", "rows", l.Cleared, "lines", l.Score.Lines, "score", l.Score.Points)
	}
	if l.LeveledUp {
		s.logger.Info("level up", "level", l.Score.Level, "interval", l.Score.GravityInterval)
	}
}

// finish terminates the screen and reports the outcome.
func (s *session) finish(reason Reason) (Result, error) {
	res := Result{Reason: reason, Score: s.game.Score()}
	s.logger.Info("game ended", "reason", reason, "score", res.Score.Points, "lines", res.Score.Lines, "level", res.Score.Level)

	err := s.screen.Terminate(reason.Message())
	if err != nil && reason != ReasonDisconnect {
		return res, fmt.Errorf("loop: terminate: %w", err)
	}
	return res, nil
}
