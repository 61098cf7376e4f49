// Package simulation runs a set of circular bodies inside a rectangular area:
// pairwise collision resolution, integration with edge reflection, and the
// pointer-driven placing/dragging interaction.
//
// A Simulation is not safe for concurrent use. Hosts that receive input
// asynchronously must queue it and deliver it between calls to Step.
package simulation

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tomz197/circles/internal/physics"
)

var (
	// ErrInvalidBounds is returned by New for a non-positive simulation area.
	ErrInvalidBounds = errors.New("simulation bounds must be positive")

	// ErrNegativeDelta is returned by Step for a negative frame time.
	ErrNegativeDelta = errors.New("negative frame time")
)

// Options configures a Simulation.
type Options struct {
	Config       physics.Config // Zero value means physics.DefaultConfig()
	AllowPlacing bool           // Whether presses on empty space start placing a body
	Logger       *log.Logger    // Debug events; nil disables logging
}

// DefaultOptions returns the reference configuration with placing enabled.
func DefaultOptions() Options {
	return Options{
		Config:       physics.DefaultConfig(),
		AllowPlacing: true,
	}
}

// Stats describes the most recent frame.
type Stats struct {
	Frame      uint64 // Completed steps
	Bodies     int
	Collisions int // Overlaps resolved during the last step
}

// BodyView is a read-only copy of the data a renderer needs for one body.
type BodyView struct {
	Handle   Handle
	Position r2.Vec
	Velocity r2.Vec
	Radius   float64
	Color    colorful.Color
	Tag      string
	Selected bool // The body is selected for dragging
}

// Simulation owns all live bodies and the interaction mode.
type Simulation struct {
	cfg          physics.Config
	bounds       r2.Vec
	allowPlacing bool
	logger       *log.Logger

	store bodyStore
	mode  Mode
	stats Stats

	// Reused every step to avoid per-frame allocations
	frameBodies []*physics.Body
}

// New creates a simulation of the given size populated by layout.
// A nil layout starts empty.
func New(bounds r2.Vec, layout Layout, opts Options) (*Simulation, error) {
	if !(bounds.X > 0 && bounds.Y > 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBounds, bounds)
	}

	cfg := opts.Config
	if cfg == (physics.Config{}) {
		cfg = physics.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Simulation{
		cfg:          cfg,
		bounds:       bounds,
		allowPlacing: opts.AllowPlacing,
		logger:       opts.Logger,
	}
	s.Reset(layout)
	return s, nil
}

// Reset replaces every body with a fresh set built by layout and returns to idle.
// Handles obtained before the reset no longer resolve.
func (s *Simulation) Reset(layout Layout) {
	if layout == nil {
		layout = Empty{}
	}
	s.store.clear()
	for _, b := range layout.Bodies(s.cfg, s.bounds) {
		s.store.insert(b)
	}
	s.mode = Mode{}
	s.stats.Bodies = s.store.len()
	s.debug("reset", "bodies", s.store.len())
}

// Step advances the simulation by one frame.
//
// Every overlapping pair (i, j) with i < j in collection order is resolved
// sequentially, so later pairs see the effect of earlier ones. Only then is every
// body integrated. Invariant violations from integration are joined and returned;
// the frame is still completed for the remaining bodies.
func (s *Simulation) Step(dt time.Duration) error {
	if dt < 0 {
		return fmt.Errorf("%w: %v", ErrNegativeDelta, dt)
	}

	bodies := s.frameBodies[:0]
	for i := 0; i < s.store.len(); i++ {
		bodies = append(bodies, s.store.bodyAt(i))
	}
	s.frameBodies = bodies

	collisions := 0
	for i := 0; i < len(bodies); i++ {
		a := bodies[i]
		for j := i + 1; j < len(bodies); j++ {
			b := bodies[j]
			if a.IsCollidingWith(b) {
				a.CollideWith(b)
				collisions++
			}
		}
	}

	var errs []error
	for _, b := range bodies {
		edges, err := b.Integrate(s.cfg, s.bounds, dt)
		if err != nil {
			errs = append(errs, err)
		}
		if edges != 0 {
			s.debug("reflected", "tag", b.Tag(), "edges", edges)
		}
	}

	s.stats.Frame++
	s.stats.Bodies = len(bodies)
	s.stats.Collisions = collisions

	return errors.Join(errs...)
}

// OnPointerPress feeds a pointer press at (x, y) into the interaction state machine.
//
// While placing, the press launches a new body from the pending origin. While
// dragging, it kicks the selected body towards the press. When idle, a press on a
// body selects it for dragging and a press on empty space starts placing, if
// placing is allowed.
func (s *Simulation) OnPointerPress(x, y float64) {
	press := r2.Vec{X: x, Y: y}

	switch s.mode.Kind {
	case ModePlacing:
		origin := s.mode.Origin
		velocity := s.dragVelocity(origin, press)
		tag := strconv.Itoa(s.store.len() + 1)
		body := physics.NewBodyFromData(s.cfg, origin, velocity, s.cfg.DefaultRadius, physics.White, tag)
		h := s.store.insert(body)
		s.stats.Bodies = s.store.len()
		s.mode = Mode{}
		s.debug("placed body", "tag", tag, "handle", h, "velocity", velocity)

	case ModeDragging:
		if body, ok := s.store.get(s.mode.Selected); ok {
			impulse := s.dragVelocity(body.Position(), press)
			body.ApplyImpulse(impulse)
			s.debug("applied impulse", "tag", body.Tag(), "impulse", impulse)
		} else {
			s.debug("selected body is gone", "handle", s.mode.Selected)
		}
		s.mode = Mode{}

	default:
		if h, ok := s.HitTest(press); ok {
			s.mode = Mode{Kind: ModeDragging, Selected: h}
			s.debug("selected body", "handle", h)
			return
		}
		if s.allowPlacing {
			s.mode = Mode{Kind: ModePlacing, Origin: press}
		}
	}
}

// dragVelocity converts the screen distance from -> to into a velocity.
func (s *Simulation) dragVelocity(from, to r2.Vec) r2.Vec {
	d := r2.Sub(to, from)
	return r2.Vec{X: d.X / s.cfg.DragScale, Y: d.Y / s.cfg.DragScale}
}

// Cancel abandons a pending placement or selection.
func (s *Simulation) Cancel() {
	s.mode = Mode{}
}

// HitTest returns the first body in collection order containing p.
func (s *Simulation) HitTest(p r2.Vec) (Handle, bool) {
	for i := 0; i < s.store.len(); i++ {
		if s.store.bodyAt(i).IsTouchingPoint(p) {
			return s.store.handleAt(i), true
		}
	}
	return Handle{}, false
}

// Add appends a body to the collection.
func (s *Simulation) Add(b *physics.Body) Handle {
	h := s.store.insert(b)
	s.stats.Bodies = s.store.len()
	return h
}

// Remove deletes a body. A pending drag of that body is dropped on the next press.
func (s *Simulation) Remove(h Handle) bool {
	ok := s.store.remove(h)
	s.stats.Bodies = s.store.len()
	return ok
}

// Body resolves a handle to its live body.
func (s *Simulation) Body(h Handle) (*physics.Body, bool) {
	return s.store.get(h)
}

// All iterates over live bodies in collection order.
// The collection must not be modified during iteration.
func (s *Simulation) All() iter.Seq2[Handle, *physics.Body] {
	return func(yield func(Handle, *physics.Body) bool) {
		for i := 0; i < s.store.len(); i++ {
			if !yield(s.store.handleAt(i), s.store.bodyAt(i)) {
				return
			}
		}
	}
}

// Snapshot appends a view of every live body to dst[:0] and returns it.
func (s *Simulation) Snapshot(dst []BodyView) []BodyView {
	dst = dst[:0]
	for h, b := range s.All() {
		dst = append(dst, BodyView{
			Handle:   h,
			Position: b.Position(),
			Velocity: b.Velocity(),
			Radius:   b.Radius(),
			Color:    b.Color(),
			Tag:      b.Tag(),
			Selected: s.mode.Kind == ModeDragging && s.mode.Selected == h,
		})
	}
	return dst
}

// Len returns the number of live bodies.
func (s *Simulation) Len() int { return s.store.len() }

// Mode returns the current interaction mode.
func (s *Simulation) Mode() Mode { return s.mode }

// Bounds returns the size of the simulation area.
func (s *Simulation) Bounds() r2.Vec { return s.bounds }

// Config returns the physics configuration in use.
func (s *Simulation) Config() physics.Config { return s.cfg }

// AllowPlacing reports whether presses on empty space start placing a body.
func (s *Simulation) AllowPlacing() bool { return s.allowPlacing }

// Stats returns counters for the most recent step.
func (s *Simulation) Stats() Stats { return s.stats }

func (s *Simulation) debug(msg string, keyvals ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, keyvals...)
	}
}
