package object

// Text is a simple drawable text object.
// Coordinates are 1-based canvas positions.
type Text struct {
	X     int
	Y     int
	Value string
}

// Draw writes the text at its position and marks the cells it covers so the
// canvas repaints them next frame.
func (t Text) Draw(ctx DrawContext) error {
	if t.Value == "" || ctx.Writer == nil {
		return nil
	}
	x := max(t.X, 1)
	y := max(t.Y, 1)
	ctx.Writer.WriteAt(x, y, t.Value)
	if ctx.Canvas != nil {
		ctx.Canvas.MarkTextDirty(x, y, len(t.Value))
	}
	return nil
}
