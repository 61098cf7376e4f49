package simulation

import "gonum.org/v1/gonum/spatial/r2"

// ModeKind is the interaction state of a Simulation.
type ModeKind int

const (
	ModeIdle     ModeKind = iota // Waiting for a press
	ModePlacing                  // A new body's origin is pending
	ModeDragging                 // A body is selected for an impulse
)

func (k ModeKind) String() string {
	switch k {
	case ModeIdle:
		return "idle"
	case ModePlacing:
		return "placing"
	case ModeDragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// Mode is the active interaction mode. Origin is only meaningful while placing,
// Selected only while dragging.
type Mode struct {
	Kind     ModeKind
	Origin   r2.Vec
	Selected Handle
}
