// Package config centralizes all tunable host parameters.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r2"

	envconfig "github.com/tomz197/circles/internal/config"
	"github.com/tomz197/circles/internal/physics"
	"github.com/tomz197/circles/internal/simulation"
)

// World dimensions - the simulation area in logical units.
// Terminal hosts scale it to fit; the window host draws it 1:1.
const (
	WorldWidth  = 1000
	WorldHeight = 800
)

// Terminal render limits. Larger terminals get a centered, bordered canvas.
const (
	MaxTermWidth  = 200
	MaxTermHeight = 60
)

// Sessions
const (
	MaxUsernameLength = 16 // Maximum display length for usernames
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS
)

// Server tick rate
const (
	ServerTickRate = 60
	ServerTickTime = time.Second / ServerTickRate
	MaxTickDelta   = 100 * time.Millisecond // Longer stalls are simulated as this
)

// Layout defaults
const (
	DefaultLayout      = "pyramid"
	DefaultCount       = 30
	DefaultPyramidSize = 6
	DefaultSeed        = 1
)

// ErrUnknownLayout is returned by FromEnv for an unrecognized CIRCLES_LAYOUT.
var ErrUnknownLayout = errors.New("unknown layout")

// Settings is everything a host needs to build a simulation.
type Settings struct {
	Physics      physics.Config
	Layout       simulation.Layout
	AllowPlacing bool
	LogLevel     log.Level
}

// Bounds returns the simulation area.
func (s Settings) Bounds() r2.Vec {
	return r2.Vec{X: WorldWidth, Y: WorldHeight}
}

// Options returns the simulation options for these settings.
func (s Settings) Options(logger *log.Logger) simulation.Options {
	return simulation.Options{
		Config:       s.Physics,
		AllowPlacing: s.AllowPlacing,
		Logger:       logger,
	}
}

// Default returns the settings used when no environment overrides are present.
func Default() Settings {
	return Settings{
		Physics:      physics.DefaultConfig(),
		Layout:       simulation.Pyramid{Size: DefaultPyramidSize, Seed: DefaultSeed},
		AllowPlacing: true,
		LogLevel:     log.InfoLevel,
	}
}

// FromEnv builds Settings from CIRCLES_* environment variables on top of Default.
// All malformed variables are reported together.
func FromEnv() (Settings, error) {
	s := Default()
	var errs []error

	floatVar := func(key string, dst *float64) {
		v, err := envconfig.GetEnvFloat(key, *dst)
		if err != nil {
			errs = append(errs, err)
			return
		}
		*dst = v
	}
	intVar := func(key string, dst *int) {
		v, err := envconfig.GetEnvInt(key, *dst)
		if err != nil {
			errs = append(errs, err)
			return
		}
		*dst = v
	}

	floatVar("CIRCLES_DENSITY", &s.Physics.Density)
	floatVar("CIRCLES_FRICTION", &s.Physics.Friction)
	floatVar("CIRCLES_SPEED_SCALE", &s.Physics.SpeedScale)
	floatVar("CIRCLES_DRAG_SCALE", &s.Physics.DragScale)
	floatVar("CIRCLES_RADIUS", &s.Physics.DefaultRadius)
	if err := s.Physics.Validate(); err != nil {
		errs = append(errs, err)
	}

	count, size, seed := DefaultCount, DefaultPyramidSize, DefaultSeed
	intVar("CIRCLES_COUNT", &count)
	intVar("CIRCLES_PYRAMID_SIZE", &size)
	intVar("CIRCLES_SEED", &seed)

	switch name := strings.ToLower(envconfig.GetEnv("CIRCLES_LAYOUT", DefaultLayout)); name {
	case "empty":
		s.Layout = simulation.Empty{}
	case "scatter":
		s.Layout = simulation.RandomScatter{Count: count, Seed: int64(seed)}
	case "pyramid":
		s.Layout = simulation.Pyramid{Size: size, Seed: int64(seed)}
	default:
		errs = append(errs, fmt.Errorf("CIRCLES_LAYOUT: %w %q", ErrUnknownLayout, name))
	}

	allow, err := envconfig.GetEnvBool("CIRCLES_ALLOW_PLACING", s.AllowPlacing)
	if err != nil {
		errs = append(errs, err)
	}
	s.AllowPlacing = allow

	if lvl := envconfig.GetEnv("CIRCLES_LOG_LEVEL", ""); lvl != "" {
		level, err := log.ParseLevel(lvl)
		if err != nil {
			errs = append(errs, fmt.Errorf("CIRCLES_LOG_LEVEL: %w", err))
		} else {
			s.LogLevel = level
		}
	}

	return s, errors.Join(errs...)
}
