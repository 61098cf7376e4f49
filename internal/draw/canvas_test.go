package draw

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

var red = colorful.Color{R: 1}

func countSet(c *Canvas) int {
	n := 0
	for y := 0; y < c.subPixelHeight; y++ {
		for x := 0; x < c.termWidth; x++ {
			if _, ok := c.At(x, y); ok {
				n++
			}
		}
	}
	return n
}

func TestCanvas_FillCircle(t *testing.T) {
	c := NewCanvas(40, 20) // 40x40 sub-pixels, 1:1

	c.FillCircle(Point{X: 20, Y: 20}, 5, red)

	if col, ok := c.At(20, 20); !ok || col != red {
		t.Errorf("center pixel = %v, %v", col, ok)
	}
	if _, ok := c.At(20, 10); ok {
		t.Error("pixel outside the radius is set")
	}
	// Area of a radius 5 circle is about 78.5 pixels.
	if n := countSet(c); n < 70 || n > 90 {
		t.Errorf("filled %d pixels, want about 78", n)
	}
}

func TestCanvas_FillCircleTinyStillVisible(t *testing.T) {
	c := NewScaledCanvas(10, 5, 1000, 800)
	c.FillCircle(Point{X: 500, Y: 400}, 1, red)
	if countSet(c) != 1 {
		t.Errorf("tiny circle set %d pixels, want 1", countSet(c))
	}
}

func TestCanvas_StrokeCircleLeavesCenterEmpty(t *testing.T) {
	c := NewCanvas(40, 20)
	c.StrokeCircle(Point{X: 20, Y: 20}, 8, red)

	if _, ok := c.At(20, 20); ok {
		t.Error("outline filled the center")
	}
	for _, p := range [][2]int{{28, 20}, {12, 20}, {20, 28}, {20, 12}} {
		if _, ok := c.At(p[0], p[1]); !ok {
			t.Errorf("outline misses %v", p)
		}
	}
}

func TestCanvas_DrawLine(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawLine(Point{X: 0, Y: 0}, Point{X: 9, Y: 9}, red)
	for i := 0; i < 10; i++ {
		if _, ok := c.At(i, i); !ok {
			t.Errorf("diagonal pixel %d not set", i)
		}
	}
}

func TestCanvas_TerminalLogicalRoundTrip(t *testing.T) {
	c := NewScaledCanvas(100, 40, 1000, 800)
	for _, pos := range [][2]int{{1, 1}, {50, 20}, {100, 40}, {37, 9}} {
		x, y, ok := c.TerminalToLogical(pos[0], pos[1])
		if !ok {
			t.Fatalf("TerminalToLogical(%v) not ok", pos)
		}
		col, row := c.LogicalToTerminal(x, y)
		if col != pos[0] || row != pos[1] {
			t.Errorf("round trip %v -> (%v, %v) -> (%d, %d)", pos, x, y, col, row)
		}
	}
}

func TestCanvas_TerminalToLogicalHonorsOffset(t *testing.T) {
	c := NewScaledCanvas(100, 40, 1000, 800)
	c.SetOffset(10, 5)

	if _, _, ok := c.TerminalToLogical(10, 20); ok {
		t.Error("press left of the canvas accepted")
	}
	if _, _, ok := c.TerminalToLogical(50, 46); ok {
		t.Error("press below the canvas accepted")
	}
	x, y, ok := c.TerminalToLogical(11, 6)
	if !ok || x != 0 || y > 20 {
		t.Errorf("top-left cell -> (%v, %v, %v)", x, y, ok)
	}
}

func TestCanvas_RenderOnlyWritesChanges(t *testing.T) {
	c := NewCanvas(4, 2)
	var out bytes.Buffer

	c.Render(&out)
	if out.Len() == 0 {
		t.Fatal("first render wrote nothing")
	}

	out.Reset()
	c.Render(&out)
	if out.Len() != 0 {
		t.Errorf("unchanged render wrote %q", out.String())
	}

	c.setPixel(1, 0, red)
	c.Render(&out)
	if got := strings.Count(out.String(), "H"); got != 1 {
		t.Errorf("render wrote %d cells, want 1: %q", got, out.String())
	}
	if !strings.Contains(out.String(), string(BlockUpperHalf)) {
		t.Errorf("render = %q, want upper half block", out.String())
	}

	out.Reset()
	c.MarkTextDirty(1, 1, 2)
	c.Render(&out)
	if got := strings.Count(out.String(), "H"); got != 2 {
		t.Errorf("dirty render wrote %d cells, want 2", got)
	}
}

func TestWriteCell(t *testing.T) {
	blue := colorful.Color{B: 1}
	tests := []struct {
		name string
		cell cell
		want rune
	}{
		{"empty", cell{}, BlockEmpty},
		{"top", cell{top: pixel{red, true}}, BlockUpperHalf},
		{"bottom", cell{bottom: pixel{red, true}}, BlockLowerHalf},
		{"same color", cell{pixel{red, true}, pixel{red, true}}, BlockFull},
		{"two colors", cell{pixel{red, true}, pixel{blue, true}}, BlockUpperHalf},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b strings.Builder
			writeCell(&b, tt.cell)
			if !strings.HasSuffix(b.String(), string(tt.want)) {
				t.Errorf("writeCell() = %q, want glyph %q", b.String(), tt.want)
			}
		})
	}
}

func TestChunkWriter_AppliesOffset(t *testing.T) {
	var out bytes.Buffer
	cw := NewChunkWriter(&out, 3, 2)
	cw.WriteAt(1, 1, "hi")
	if err := cw.Flush(); err != nil {
		t.Fatal(err)
	}
	if got, want := out.String(), "\033[3;4Hhi"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
