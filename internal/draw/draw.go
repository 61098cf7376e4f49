// Package draw renders to ANSI terminals: a colored half-block canvas, text
// placement and terminal control sequences.
package draw

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Point represents a 2D coordinate.
type Point struct {
	X, Y float64
}

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockEmpty     = ' '
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// ANSI attributes used around text overlays.
const (
	ColorReset = "\033[0m"
	ColorDim   = "\033[2m"
	ColorBold  = "\033[1m"
)

// Foreground returns the truecolor SGR sequence that sets c as foreground color.
func Foreground(c colorful.Color) string {
	r, g, b := c.Clamped().RGB255()
	return fmt.Sprintf("\033[38;2;%d;%d;%dm", r, g, b)
}

// Background returns the truecolor SGR sequence that sets c as background color.
func Background(c colorful.Color) string {
	r, g, b := c.Clamped().RGB255()
	return fmt.Sprintf("\033[48;2;%d;%d;%dm", r, g, b)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
