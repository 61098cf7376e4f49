package physics

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrInvariantViolation marks a body whose state escaped physically sane bounds.
// It signals a bug in integration or collision math and is not meant to be retried.
var ErrInvariantViolation = errors.New("physics invariant violated")

// InvariantKind identifies which sanity check failed.
type InvariantKind int

const (
	InvariantSpeed    InvariantKind = iota // A velocity component exceeds the bounds
	InvariantPosition                      // The center drifted more than two radii outside
)

func (k InvariantKind) String() string {
	switch k {
	case InvariantSpeed:
		return "speed"
	case InvariantPosition:
		return "position"
	default:
		return fmt.Sprintf("InvariantKind(%d)", int(k))
	}
}

// InvariantError describes a failed sanity check on a single body.
type InvariantError struct {
	Tag      string
	Kind     InvariantKind
	Position r2.Vec
	Velocity r2.Vec
	Bounds   r2.Vec
}

func (e *InvariantError) Error() string {
	switch e.Kind {
	case InvariantSpeed:
		return fmt.Sprintf("speed of body %q is too high: velocity (%g, %g) exceeds bounds (%g, %g)",
			e.Tag, e.Velocity.X, e.Velocity.Y, e.Bounds.X, e.Bounds.Y)
	default:
		return fmt.Sprintf("position of body %q is out of bounds: (%g, %g) outside (%g, %g)",
			e.Tag, e.Position.X, e.Position.Y, e.Bounds.X, e.Bounds.Y)
	}
}

// Unwrap lets errors.Is match ErrInvariantViolation.
func (e *InvariantError) Unwrap() error {
	return ErrInvariantViolation
}
