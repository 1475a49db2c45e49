package draw

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/tomz197/tetris/internal/game"
	"github.com/tomz197/tetris/internal/piece"
	"github.com/tomz197/tetris/internal/playfield"
)

// Layout, in 1-based terminal columns and rows. Every playfield cell is two
// columns wide.
const (
	FieldCol = 30
	FieldRow = 1

	ScoreCol = 1
	ScoreRow = 2

	NextCol = 14
	NextRow = 11

	HelpCol = 58
	HelpRow = 1

	MessageCol = 1
	MessageRow = FieldRow + playfield.Height + 2

	MinWidth  = HelpCol + helpWidth - 1
	MinHeight = MessageRow + 1
)

const (
	filledCell     = "[]"
	fieldEmptyCell = " ."
	nextEmptyCell  = "  "
)

var helpText = []string{
	"  Use cursor keys",
	"       or",
	"    s: rotate",
	"a: left,  d: right",
	"    space: drop",
	"      q: quit",
	"  c: toggle color",
	"n: toggle show next",
	"h: toggle this help",
}

const helpWidth = 19

// Screen paints the game onto an ANSI terminal. All output is buffered in a
// ChunkWriter until Flush. Styling goes through a lipgloss renderer whose
// color profile follows the color toggle.
type Screen struct {
	cw       *ChunkWriter
	renderer *lipgloss.Renderer

	cells  [playfield.NumColors + 1]lipgloss.Style
	score  lipgloss.Style
	help   lipgloss.Style
	border lipgloss.Style
	title  lipgloss.Style

	showHelp bool
	showNext bool
	color    bool
}

// ScreenOptions configures the initial toggles.
type ScreenOptions struct {
	ShowHelp bool
	ShowNext bool
	Color    bool
}

// NewScreen creates a Screen writing to w.
func NewScreen(w io.Writer, opts ScreenOptions) *Screen {
	r := lipgloss.NewRenderer(w)
	s := &Screen{
		cw:       NewChunkWriter(w),
		renderer: r,
		showHelp: opts.ShowHelp,
		showNext: opts.ShowNext,
	}
	for c := playfield.Red; c <= playfield.White; c++ {
		ansi := lipgloss.ANSIColor(uint(c))
		s.cells[c] = r.NewStyle().Foreground(ansi).Background(ansi)
	}
	s.score = r.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(uint(playfield.Green)))
	s.help = r.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(uint(playfield.Cyan)))
	s.border = r.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(uint(playfield.Yellow)))
	s.title = r.NewStyle().Bold(true)
	s.SetColor(opts.Color)
	return s
}

// SetColor switches colored output on or off. Callers redraw afterwards.
func (s *Screen) SetColor(on bool) {
	s.color = on
	if on {
		s.renderer.SetColorProfile(termenv.ANSI)
	} else {
		s.renderer.SetColorProfile(termenv.Ascii)
	}
}

// Color reports whether colored output is on.
func (s *Screen) Color() bool { return s.color }

// SetShowHelp shows or hides the help panel.
func (s *Screen) SetShowHelp(on bool) {
	s.showHelp = on
	s.paintHelp()
}

// ShowHelp reports whether the help panel is visible.
func (s *Screen) ShowHelp() bool { return s.showHelp }

// SetShowNext shows or hides the next-piece preview. Callers repaint the
// preview piece afterwards.
func (s *Screen) SetShowNext(on bool) {
	s.showNext = on
}

// ShowNext reports whether the next-piece preview is visible.
func (s *Screen) ShowNext() bool { return s.showNext }

// Resize centers the layout in a width x height terminal. Callers redraw
// afterwards.
func (s *Screen) Resize(width, height int) {
	s.cw.SetOffset(CenterOffset(width, height))
}

// Begin hides the cursor and clears the terminal.
func (s *Screen) Begin() {
	HideCursor(s.cw)
	ClearScreen(s.cw)
}

// DrawFrame clears the terminal and paints the static parts: help and border.
func (s *Screen) DrawFrame() {
	ClearScreen(s.cw)
	s.paintHelp()
	s.paintBorder()
}

func (s *Screen) paintHelp() {
	blank := strings.Repeat(" ", helpWidth)
	for i, line := range helpText {
		if s.showHelp {
			s.cw.WriteAt(HelpCol, HelpRow+i, s.help.Render(line))
		} else {
			s.cw.WriteAt(HelpCol, HelpRow+i, blank)
		}
	}
}

func (s *Screen) paintBorder() {
	left := FieldCol - 2
	right := FieldCol + playfield.Width*2
	for i := 0; i <= playfield.Height; i++ {
		s.cw.WriteAt(left, FieldRow+i, s.border.Render("<|"))
		s.cw.WriteAt(right, FieldRow+i, s.border.Render("|>"))
	}
	bottom := FieldRow + playfield.Height
	for x := 0; x < playfield.Width; x++ {
		col := FieldCol + x*2
		s.cw.WriteAt(col, bottom, s.border.Render("=="))
		s.cw.WriteAt(col, bottom+1, s.border.Render(`\/`))
	}
}

// PaintCell paints one settled playfield cell.
func (s *Screen) PaintCell(x, y int, color playfield.Color) {
	s.cw.WriteAt(FieldCol+x*2, FieldRow+y, s.cellText(color, fieldEmptyCell))
}

func (s *Screen) cellText(color playfield.Color, empty string) string {
	if color == playfield.Empty || int(color) >= len(s.cells) {
		return empty
	}
	return s.cells[color].Render(filledCell)
}

// PaintPiece shows or erases a piece in the playfield or in the preview box.
// The preview stays blank while it is toggled off.
func (s *Screen) PaintPiece(p piece.Piece, slot game.Slot, visible bool) {
	col, row, empty := FieldCol, FieldRow, fieldEmptyCell
	if slot == game.SlotPreview {
		col, row, empty = NextCol, NextRow, nextEmptyCell
		visible = visible && s.showNext
	}
	color := playfield.Empty
	if visible {
		color = p.Color
	}
	for _, off := range piece.Cells(p.Kind, p.Orientation) {
		// The preview ignores the pose; field pieces are drawn at it.
		x, y := off.DX, off.DY
		if slot == game.SlotField {
			x += p.X
			y += p.Y
		}
		s.cw.WriteAt(col+x*2, row+y, s.cellText(color, empty))
	}
}

// PaintScore paints the score panel.
func (s *Screen) PaintScore(lines, level, score int) {
	s.cw.WriteAt(ScoreCol, ScoreRow, s.score.Render(fmt.Sprintf("Lines completed: %d", lines)))
	s.cw.WriteAt(ScoreCol, ScoreRow+1, s.score.Render(fmt.Sprintf("Level:           %d", level)))
	s.cw.WriteAt(ScoreCol, ScoreRow+2, s.score.Render(fmt.Sprintf("Score:           %d", score)))
}

// PaintMessage paints a one-line message below the playfield.
func (s *Screen) PaintMessage(text string) {
	s.cw.WriteAt(MessageCol, MessageRow, "\033[2K"+s.title.Render(text))
}

// Flush writes everything painted so far.
func (s *Screen) Flush() error {
	return s.cw.Flush()
}

// Terminate prints the final message, leaves the cursor on the line below it
// and shows it again.
func (s *Screen) Terminate(message string) error {
	s.PaintMessage(message)
	s.cw.MoveCursor(MessageCol, MessageRow+1)
	ShowCursor(s.cw)
	return s.cw.Flush()
}
