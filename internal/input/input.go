// Package input turns a raw terminal byte stream into per-frame key and
// pointer events.
package input

import (
	"bufio"
	"bytes"
	"strconv"
)

// Press is a left mouse button press at a 1-based terminal cell.
type Press struct {
	Col int
	Row int
}

// Input represents the current frame's input state.
type Input struct {
	Quit    bool // q, Ctrl+C or end of stream
	Pause   bool // Space
	Reset   bool // r
	Step    bool // n, advances one frame while paused
	Cancel  bool // Esc
	Presses []Press
	Pressed []byte // Raw bytes seen this frame
}

// Active reports whether the user did anything this frame.
func (in Input) Active() bool {
	return len(in.Pressed) > 0
}

// Stream delivers input bytes via a channel and keeps incomplete escape
// sequences between frames.
type Stream struct {
	ch      chan byte
	pending []byte
	closed  bool
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{
		ch: make(chan byte, 256),
	}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ReadInput drains all available bytes from the stream (non-blocking) and
// parses them together with any sequence left over from the previous frame.
//
// A lone ESC ending the buffer may be the first byte of a mouse report that
// has not fully arrived, so it is held back. It becomes Cancel when the next
// frame brings no further bytes or the stream has ended.
func ReadInput(s *Stream) Input {
	buf := s.pending
	s.pending = nil
	fresh := 0

drain:
	for !s.closed {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
			fresh++
		default:
			break drain
		}
	}

	in, rest := Parse(buf)
	if isLoneEsc(rest) && (fresh == 0 || s.closed) {
		in.Cancel = true
		in.Pressed = buf
		rest = nil
	}
	if len(rest) > 0 {
		s.pending = append([]byte(nil), rest...)
	}
	if s.closed {
		in.Quit = true
	}
	return in
}

func isLoneEsc(b []byte) bool {
	return len(b) == 1 && b[0] == '\x1b'
}

// sgrPrefix starts an SGR mouse report: ESC [ < b ; col ; row (M|m).
var sgrPrefix = []byte("\x1b[<")

// SGR button bits
const (
	buttonMask   = 0b11
	buttonMotion = 32
	buttonWheel  = 64
)

// Parse interprets buf and returns the resulting input plus a trailing
// incomplete escape sequence, if any, which should be prepended to the next
// chunk of bytes. An ESC as the very last byte counts as incomplete.
func Parse(buf []byte) (Input, []byte) {
	in := Input{Pressed: buf}

	for i := 0; i < len(buf); i++ {
		b := buf[i]

		if b == '\x1b' && i+1 < len(buf) && buf[i+1] == '[' {
			if bytes.HasPrefix(buf[i:], sgrPrefix) {
				n, press, ok, complete := parseSGR(buf[i+len(sgrPrefix):])
				if !complete {
					in.Pressed = buf[:i]
					return in, buf[i:]
				}
				if ok {
					in.Presses = append(in.Presses, press)
				}
				i += len(sgrPrefix) + n - 1
				continue
			}
			// Other CSI sequences (arrows etc.) are skipped up to their final byte.
			j := i + 2
			for j < len(buf) && (buf[j] < 0x40 || buf[j] > 0x7e) {
				j++
			}
			if j == len(buf) {
				in.Pressed = buf[:i]
				return in, buf[i:]
			}
			i = j
			continue
		}

		switch b {
		case 'q', 'Q', 0x03:
			in.Quit = true
		case ' ':
			in.Pause = true
		case 'r', 'R':
			in.Reset = true
		case 'n', 'N':
			in.Step = true
		case '\x1b':
			if i == len(buf)-1 {
				in.Pressed = buf[:i]
				return in, buf[i:]
			}
			in.Cancel = true
		}
	}
	return in, nil
}

// parseSGR parses "b;col;row" followed by M or m. It returns the number of bytes
// consumed, the press, whether the report is a left button press, and whether
// the report was complete.
func parseSGR(buf []byte) (n int, press Press, ok, complete bool) {
	end := 0
	for end < len(buf) && (buf[end] == ';' || (buf[end] >= '0' && buf[end] <= '9')) {
		end++
	}
	if end == len(buf) {
		return 0, Press{}, false, false
	}
	if buf[end] != 'M' && buf[end] != 'm' {
		// Not a mouse report; resume parsing at the unexpected byte.
		return end, Press{}, false, true
	}

	fields := bytes.Split(buf[:end], []byte{';'})
	if len(fields) != 3 {
		return end + 1, Press{}, false, true
	}
	var vals [3]int
	for k, f := range fields {
		v, err := strconv.Atoi(string(f))
		if err != nil {
			return end + 1, Press{}, false, true
		}
		vals[k] = v
	}

	button := vals[0]
	isPress := buf[end] == 'M'
	isLeft := button&buttonMask == 0 && button&(buttonMotion|buttonWheel) == 0
	return end + 1, Press{Col: vals[1], Row: vals[2]}, isPress && isLeft, true
}
