package server

import (
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tomz197/circles/internal/simulation"
)

// WorldSnapshot is an immutable snapshot of the simulation for rendering.
// Clients must not modify it.
type WorldSnapshot struct {
	Bodies     []simulation.BodyView
	Mode       simulation.Mode // Interaction mode, including a pending placement origin
	Bounds     r2.Vec          // Simulation area
	Radius     float64         // Radius given to placed bodies
	Clients    int
	Delta      time.Duration // Frame time of the last step
	Paused     bool
	Frame      uint64
	Collisions int // Overlaps resolved during the last step
	Resets     int // Resets caused by invariant violations since start
}

// Command is a control request from a client.
type Command int

const (
	CommandPress  Command = iota // Pointer press at (X, Y)
	CommandReset                 // Rebuild the initial layout
	CommandPause                 // Toggle pause
	CommandStep                  // Advance one frame while paused
	CommandCancel                // Abandon a pending placement or drag
)

func (c Command) String() string {
	switch c {
	case CommandPress:
		return "press"
	case CommandReset:
		return "reset"
	case CommandPause:
		return "pause"
	case CommandStep:
		return "step"
	case CommandCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// ClientInput is a command from a specific client. X and Y are only used by
// CommandPress and are simulation coordinates.
type ClientInput struct {
	ClientID int
	Command  Command
	X, Y     float64
}
