package draw

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// maxChunkSize bounds a single write to the underlying writer.
const maxChunkSize = 4096

// ChunkWriter collects one frame of cursor moves and text and sends it to the
// terminal in bounded chunks on Flush. Positions passed to it are relative to
// the layout origin, which SetOffset moves to center the layout.
type ChunkWriter struct {
	frame  strings.Builder
	out    *bufio.Writer
	num    [20]byte
	origin struct{ col, row int }
}

// NewChunkWriter creates a ChunkWriter for w with the origin at the top-left
// corner.
func NewChunkWriter(w io.Writer) *ChunkWriter {
	return &ChunkWriter{out: bufio.NewWriterSize(w, 2*maxChunkSize)}
}

// SetOffset moves the layout origin by col columns and row rows.
func (cw *ChunkWriter) SetOffset(col, row int) {
	cw.origin.col, cw.origin.row = col, row
}

// MoveCursor appends a cursor position sequence for the 1-based layout
// position (col, row).
func (cw *ChunkWriter) MoveCursor(col, row int) {
	cw.frame.WriteString("\033[")
	cw.frame.Write(strconv.AppendInt(cw.num[:0], int64(row+cw.origin.row), 10))
	cw.frame.WriteByte(';')
	cw.frame.Write(strconv.AppendInt(cw.num[:0], int64(col+cw.origin.col), 10))
	cw.frame.WriteByte('H')
}

func (cw *ChunkWriter) Write(p []byte) (int, error) {
	return cw.frame.Write(p)
}

func (cw *ChunkWriter) WriteString(s string) {
	cw.frame.WriteString(s)
}

// WriteAt moves the cursor to (col, row) and appends s.
func (cw *ChunkWriter) WriteAt(col, row int, s string) {
	cw.MoveCursor(col, row)
	cw.frame.WriteString(s)
}

var _ io.Writer = (*ChunkWriter)(nil)

// Flush sends the collected frame and starts a new one.
func (cw *ChunkWriter) Flush() error {
	data := cw.frame.String()
	cw.frame.Reset()
	for start := 0; start < len(data); start += maxChunkSize {
		end := min(start+maxChunkSize, len(data))
		if _, err := cw.out.WriteString(data[start:end]); err != nil {
			return err
		}
	}
	return cw.out.Flush()
}

// TermSizeFunc reports the terminal size in columns and rows.
type TermSizeFunc func() (width, height int, err error)

// DefaultTermSizeFunc reads the size of the terminal on stdout.
var DefaultTermSizeFunc TermSizeFunc = func() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// CheckSize returns an error when the terminal reported by sizeFunc is too
// small for the layout.
func CheckSize(sizeFunc TermSizeFunc) error {
	width, height, err := sizeFunc()
	if err != nil {
		return fmt.Errorf("draw: terminal size: %w", err)
	}
	if width < MinWidth || height < MinHeight {
		return fmt.Errorf("draw: terminal is %dx%d, need at least %dx%d", width, height, MinWidth, MinHeight)
	}
	return nil
}

// CenterOffset returns the offset that centers the MinWidth x MinHeight
// layout in a width x height terminal. Terminals smaller than the layout get
// no offset.
func CenterOffset(width, height int) (col, row int) {
	return max(0, (width-MinWidth)/2), max(0, (height-MinHeight)/2)
}

// ClearScreen clears the terminal and homes the cursor.
func ClearScreen(w io.Writer) {
	fmt.Fprint(w, "\033[H\033[2J")
}

// HideCursor hides the terminal cursor.
func HideCursor(w io.Writer) {
	fmt.Fprint(w, "\033[?25l")
}

// ShowCursor shows the terminal cursor.
func ShowCursor(w io.Writer) {
	fmt.Fprint(w, "\033[?25h")
}
