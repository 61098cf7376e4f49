package physics

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is returned by Config.Validate for unusable parameters.
var ErrInvalidConfig = errors.New("invalid physics config")

// Reference values for the default configuration.
const (
	DefaultDensity    = 5.514 // Mass per unit area
	DefaultFriction   = 0.996 // Velocity kept per frame
	DefaultSpeedScale = 100.0 // Position units per velocity unit per second
	DefaultDragScale  = 50.0  // Screen distance per unit of launch velocity
	DefaultRadius     = 15.0
)

// Config holds the tunable constants of the simulation.
// Bodies never keep a reference to it: constructors and Integrate take it explicitly.
type Config struct {
	Density       float64
	Friction      float64 // Per-frame linear damping factor in (0, 1]
	SpeedScale    float64
	DragScale     float64
	DefaultRadius float64
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		Density:       DefaultDensity,
		Friction:      DefaultFriction,
		SpeedScale:    DefaultSpeedScale,
		DragScale:     DefaultDragScale,
		DefaultRadius: DefaultRadius,
	}
}

// Validate reports the first unusable field.
func (c Config) Validate() error {
	switch {
	case !(c.Density > 0):
		return fmt.Errorf("%w: density %v must be positive", ErrInvalidConfig, c.Density)
	case !(c.Friction > 0 && c.Friction <= 1):
		return fmt.Errorf("%w: friction %v must be in (0, 1]", ErrInvalidConfig, c.Friction)
	case !(c.SpeedScale > 0):
		return fmt.Errorf("%w: speed scale %v must be positive", ErrInvalidConfig, c.SpeedScale)
	case !(c.DragScale > 0):
		return fmt.Errorf("%w: drag scale %v must be positive", ErrInvalidConfig, c.DragScale)
	case !(c.DefaultRadius > 0):
		return fmt.Errorf("%w: default radius %v must be positive", ErrInvalidConfig, c.DefaultRadius)
	}
	return nil
}

// MassFor returns the mass of a circle of the given radius.
func (c Config) MassFor(radius float64) float64 {
	return c.Density * math.Pi * radius * radius
}
