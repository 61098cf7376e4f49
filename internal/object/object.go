// Package object adapts simulation state to drawables for the terminal canvas.
package object

import (
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tomz197/circles/internal/draw"
	"github.com/tomz197/circles/internal/simulation"
)

// DrawContext provides drawing resources for objects.
type DrawContext struct {
	Canvas *draw.Canvas      // High-resolution canvas (2x vertical)
	Writer *draw.ChunkWriter // Text overlays, drawn after the canvas
}

// Object is anything that can be drawn on a frame.
type Object interface {
	// Draw draws the object. Use ctx.Canvas for shapes, ctx.Writer for text.
	Draw(ctx DrawContext) error
}

// Highlight outlines the body selected for dragging and the pending placement.
var Highlight = colorful.Color{R: 1, G: 0.84, B: 0.2}

func point(v r2.Vec) draw.Point {
	return draw.Point{X: v.X, Y: v.Y}
}

// Disc draws one body.
type Disc struct {
	Body simulation.BodyView
}

// Draw implements Object.
func (d Disc) Draw(ctx DrawContext) error {
	center := point(d.Body.Position)
	ctx.Canvas.FillCircle(center, d.Body.Radius, d.Body.Color)
	if d.Body.Selected {
		ctx.Canvas.StrokeCircle(center, d.Body.Radius+2, Highlight)
	}
	return nil
}

// Label prints a body's tag over it when the body is wide enough on screen.
// Labels are text, so they must be drawn after the canvas is rendered.
type Label struct {
	Body simulation.BodyView
}

// Draw implements Object.
func (l Label) Draw(ctx DrawContext) error {
	p, r := l.Body.Position, l.Body.Radius
	left, _ := ctx.Canvas.LogicalToTerminal(p.X-r, p.Y)
	right, _ := ctx.Canvas.LogicalToTerminal(p.X+r, p.Y)
	if len(l.Body.Tag) >= right-left {
		return nil
	}
	col, row := ctx.Canvas.LogicalToTerminal(p.X, p.Y)
	return Text{X: col - len(l.Body.Tag)/2, Y: row, Value: l.Body.Tag}.Draw(ctx)
}

// Marker draws the origin of a body waiting to be placed.
type Marker struct {
	Origin r2.Vec
	Radius float64
}

// Draw implements Object.
func (m Marker) Draw(ctx DrawContext) error {
	center := point(m.Origin)
	ctx.Canvas.StrokeCircle(center, m.Radius, Highlight)
	ctx.Canvas.DrawLine(
		draw.Point{X: center.X - m.Radius/2, Y: center.Y},
		draw.Point{X: center.X + m.Radius/2, Y: center.Y},
		Highlight,
	)
	ctx.Canvas.DrawLine(
		draw.Point{X: center.X, Y: center.Y - m.Radius/2},
		draw.Point{X: center.X, Y: center.Y + m.Radius/2},
		Highlight,
	)
	return nil
}

// Scene builds the canvas drawables for one frame into dst[:0]: every body,
// then the placement marker if a body is pending.
func Scene(dst []Object, bodies []simulation.BodyView, mode simulation.Mode, markerRadius float64) []Object {
	dst = dst[:0]
	for _, b := range bodies {
		dst = append(dst, Disc{Body: b})
	}
	if mode.Kind == simulation.ModePlacing {
		dst = append(dst, Marker{Origin: mode.Origin, Radius: markerRadius})
	}
	return dst
}

// Labels builds a Label for every body into dst[:0].
func Labels(dst []Object, bodies []simulation.BodyView) []Object {
	dst = dst[:0]
	for _, b := range bodies {
		dst = append(dst, Label{Body: b})
	}
	return dst
}
