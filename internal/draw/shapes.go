package draw

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// DrawLine draws a line on the canvas using Bresenham's algorithm.
// Coordinates are in logical space and get scaled to pixels.
func (c *Canvas) DrawLine(p1, p2 Point, col colorful.Color) {
	x1 := int(math.Round(p1.X * c.scaleX))
	y1 := int(math.Round(p1.Y * c.scaleY))
	x2 := int(math.Round(p2.X * c.scaleX))
	y2 := int(math.Round(p2.Y * c.scaleY))

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		c.setPixel(x1, y1, col)

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// FillCircle fills a circle given in logical coordinates. Non-uniform scaling
// turns it into an ellipse in pixel space. A circle smaller than a pixel still
// sets the pixel under its center.
func (c *Canvas) FillCircle(center Point, radius float64, col colorful.Color) {
	cx := center.X * c.scaleX
	cy := center.Y * c.scaleY
	rx := radius * c.scaleX
	ry := radius * c.scaleY

	c.setPixel(int(math.Round(cx)), int(math.Round(cy)), col)
	if rx <= 0 || ry <= 0 {
		return
	}

	yStart := int(math.Floor(cy - ry))
	yEnd := int(math.Ceil(cy + ry))
	for y := yStart; y <= yEnd; y++ {
		// Sample at pixel center
		ny := (float64(y) + 0.5 - cy) / ry
		if ny < -1 || ny > 1 {
			continue
		}
		half := rx * math.Sqrt(1-ny*ny)
		xStart := int(math.Ceil(cx - half - 0.5))
		xEnd := int(math.Floor(cx + half - 0.5))
		for x := xStart; x <= xEnd; x++ {
			c.setPixel(x, y, col)
		}
	}
}

// StrokeCircle draws the outline of a circle given in logical coordinates.
func (c *Canvas) StrokeCircle(center Point, radius float64, col colorful.Color) {
	// Enough segments that neighbouring vertices are about a pixel apart.
	circumference := 2 * math.Pi * radius * math.Max(c.scaleX, c.scaleY)
	segments := max(12, int(math.Ceil(circumference)))

	prev := Point{X: center.X + radius, Y: center.Y}
	for i := 1; i <= segments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(segments)
		next := Point{
			X: center.X + radius*math.Cos(angle),
			Y: center.Y + radius*math.Sin(angle),
		}
		c.DrawLine(prev, next, col)
		prev = next
	}
}
