package draw

import (
	"io"
	"os"
	"strconv"

	"golang.org/x/term"
)

// maxChunkSize keeps each write under a typical MTU so frames stream smoothly over SSH.
const maxChunkSize = 1400

const (
	seqClear        = "\033[H\033[2J"
	seqHideCursor   = "\033[?25l"
	seqShowCursor   = "\033[?25h"
	seqMouseOn      = "\033[?1000h\033[?1006h" // Button presses, SGR encoding (no coordinate limit)
	seqMouseOff     = "\033[?1006l\033[?1000l"
	seqPlainDisplay = ColorReset
)

// ChunkWriter collects one frame of terminal output and sends it in
// MTU-sized writes on Flush. Cursor positions given to it are relative to the
// render area; the area's offset inside the terminal is added on the way out.
type ChunkWriter struct {
	w      io.Writer
	buf    []byte
	offCol int
	offRow int
}

// NewChunkWriter creates a ChunkWriter for w with the render area starting
// offsetCol columns and offsetRow rows into the terminal.
func NewChunkWriter(w io.Writer, offsetCol, offsetRow int) *ChunkWriter {
	return &ChunkWriter{
		w:      w,
		buf:    make([]byte, 0, 8192),
		offCol: offsetCol,
		offRow: offsetRow,
	}
}

// SetOffset moves the render area, e.g. after the terminal was resized.
func (cw *ChunkWriter) SetOffset(offsetCol, offsetRow int) {
	cw.offCol = offsetCol
	cw.offRow = offsetRow
}

// MoveCursor queues a cursor move to the 1-based render area cell (col, row).
func (cw *ChunkWriter) MoveCursor(col, row int) {
	cw.buf = append(cw.buf, "\033["...)
	cw.buf = strconv.AppendInt(cw.buf, int64(row+cw.offRow), 10)
	cw.buf = append(cw.buf, ';')
	cw.buf = strconv.AppendInt(cw.buf, int64(col+cw.offCol), 10)
	cw.buf = append(cw.buf, 'H')
}

// Write queues p. Canvas.Render writes absolute positions through it.
func (cw *ChunkWriter) Write(p []byte) (int, error) {
	cw.buf = append(cw.buf, p...)
	return len(p), nil
}

// WriteString queues s as is.
func (cw *ChunkWriter) WriteString(s string) {
	cw.buf = append(cw.buf, s...)
}

// WriteAt queues s starting at the render area cell (col, row).
func (cw *ChunkWriter) WriteAt(col, row int, s string) {
	cw.MoveCursor(col, row)
	cw.buf = append(cw.buf, s...)
}

// ClearScreen queues a full terminal clear.
func (cw *ChunkWriter) ClearScreen() {
	cw.WriteString(seqClear)
}

// Pending returns the number of queued bytes.
func (cw *ChunkWriter) Pending() int { return len(cw.buf) }

var _ io.Writer = (*ChunkWriter)(nil)

// Flush sends everything queued and empties the queue. The queue is dropped
// even when a write fails; a broken connection will not recover mid-frame.
func (cw *ChunkWriter) Flush() error {
	data := cw.buf
	cw.buf = cw.buf[:0]
	for len(data) > 0 {
		n := min(len(data), maxChunkSize)
		if _, err := cw.w.Write(data[:n]); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// TermSizeFunc reports the terminal dimensions in cells.
type TermSizeFunc func() (width, height int, err error)

// DefaultTermSizeFunc reads the size of the local terminal on stdout.
var DefaultTermSizeFunc TermSizeFunc = func() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// ClearScreen clears the terminal and moves the cursor home.
func ClearScreen(w io.Writer) {
	io.WriteString(w, seqClear)
}

// EnterScreen prepares the terminal for drawing: cursor hidden, mouse
// presses reported, screen cleared.
func EnterScreen(w io.Writer) {
	io.WriteString(w, seqHideCursor+seqMouseOn+seqClear)
}

// LeaveScreen undoes EnterScreen.
func LeaveScreen(w io.Writer) {
	io.WriteString(w, seqPlainDisplay+seqMouseOff+seqClear+seqShowCursor)
}
