package physics

import (
	"math"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultTag is the tag of bodies created without one.
const DefaultTag = "not set"

// White is the default body color.
var White = colorful.Color{R: 1, G: 1, B: 1}

// Edge is a set of simulation-area walls a body was reflected from.
type Edge uint8

const (
	EdgeLeft Edge = 1 << iota
	EdgeRight
	EdgeTop
	EdgeBottom
)

func (e Edge) String() string {
	if e == 0 {
		return "none"
	}
	var names []string
	for _, n := range []struct {
		edge Edge
		name string
	}{{EdgeLeft, "left"}, {EdgeRight, "right"}, {EdgeTop, "top"}, {EdgeBottom, "bottom"}} {
		if e&n.edge != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

// Body is a circular rigid body. Radius and mass are fixed at construction;
// position and velocity change every frame.
type Body struct {
	position r2.Vec
	velocity r2.Vec // Displacement per unit time
	radius   float64
	mass     float64 // Derived once from radius and density
	color    colorful.Color
	tag      string
}

// NewBody creates a body with the default radius, color and tag.
func NewBody(cfg Config, position, velocity r2.Vec) *Body {
	return NewBodyFromData(cfg, position, velocity, cfg.DefaultRadius, White, DefaultTag)
}

// NewBodyFromData creates a body with caller-supplied radius, color and tag.
// The radius is not validated: a non-positive radius yields a meaningless mass.
func NewBodyFromData(cfg Config, position, velocity r2.Vec, radius float64, color colorful.Color, tag string) *Body {
	return &Body{
		position: position,
		velocity: velocity,
		radius:   radius,
		mass:     cfg.MassFor(radius),
		color:    color,
		tag:      tag,
	}
}

// Position returns the center of the body.
func (b *Body) Position() r2.Vec { return b.position }

// Velocity returns the current velocity.
func (b *Body) Velocity() r2.Vec { return b.velocity }

// Radius returns the collision radius.
func (b *Body) Radius() float64 { return b.radius }

// Mass returns the mass derived at construction.
func (b *Body) Mass() float64 { return b.mass }

// Color returns the display color.
func (b *Body) Color() colorful.Color { return b.color }

// Tag returns the display tag.
func (b *Body) Tag() string { return b.tag }

// SetColor changes the display color.
func (b *Body) SetColor(c colorful.Color) { b.color = c }

// SetTag changes the display tag.
func (b *Body) SetTag(tag string) { b.tag = tag }

// Integrate moves the body by its velocity over dt, applies friction and
// reflects it from the walls of an area of size bounds.
// It reports the walls hit and an *InvariantError if the resulting state is insane.
// A zero dt leaves the body untouched.
func (b *Body) Integrate(cfg Config, bounds r2.Vec, dt time.Duration) (Edge, error) {
	if dt <= 0 {
		return 0, nil
	}

	b.position = r2.Add(b.position, r2.Scale(dt.Seconds()*cfg.SpeedScale, b.velocity))
	b.velocity = r2.Scale(cfg.Friction, b.velocity)

	edges := b.reflectFromEdges(bounds)
	return edges, b.checkInvariants(bounds)
}

// reflectFromEdges negates the velocity component of every axis whose wall the
// body crossed and clamps the position back inside.
func (b *Body) reflectFromEdges(bounds r2.Vec) Edge {
	var edges Edge
	r := b.radius

	if b.position.X > bounds.X-r || b.position.X < r {
		if b.position.X < r {
			edges |= EdgeLeft
		} else {
			edges |= EdgeRight
		}
		b.velocity.X = -b.velocity.X
		b.position.X = clamp(b.position.X, r, bounds.X-r)
	}

	if b.position.Y > bounds.Y-r || b.position.Y < r {
		if b.position.Y < r {
			edges |= EdgeTop
		} else {
			edges |= EdgeBottom
		}
		b.velocity.Y = -b.velocity.Y
		b.position.Y = clamp(b.position.Y, r, bounds.Y-r)
	}

	return edges
}

// checkInvariants returns an *InvariantError when the speed on an axis exceeds
// the bounds or the center lies more than two radii outside them.
func (b *Body) checkInvariants(bounds r2.Vec) error {
	if math.Abs(b.velocity.X) > bounds.X || math.Abs(b.velocity.Y) > bounds.Y {
		return b.invariantError(InvariantSpeed, bounds)
	}

	margin := b.radius * 2
	p := b.position
	if p.X > bounds.X+margin || p.Y > bounds.Y+margin || p.X < -margin || p.Y < -margin {
		return b.invariantError(InvariantPosition, bounds)
	}
	return nil
}

func (b *Body) invariantError(kind InvariantKind, bounds r2.Vec) *InvariantError {
	return &InvariantError{
		Tag:      b.tag,
		Kind:     kind,
		Position: b.position,
		Velocity: b.velocity,
		Bounds:   bounds,
	}
}

// IsCollidingWith reports whether the two bodies overlap. Touching is not colliding.
func (b *Body) IsCollidingWith(other *Body) bool {
	return CirclesOverlap(b.position, b.radius, other.position, other.radius)
}

// CollideWith resolves an overlap between b and other.
//
// Both bodies are first pushed apart by half the overlap each along the line of
// centers, regardless of mass. Velocities are then exchanged with the two-body
// elastic impulse projected onto the line of impact, which conserves momentum;
// tangential components are left alone.
//
// Coincident centers have no line of impact: the bodies are separated along +x
// by their radius sum and their velocities are kept.
func (b *Body) CollideWith(other *Body) {
	impact := r2.Sub(other.position, b.position)
	dist := r2.Norm(impact)

	if dist == 0 {
		shift := r2.Vec{X: (b.radius + other.radius) / 2}
		b.position = r2.Sub(b.position, shift)
		other.position = r2.Add(other.position, shift)
		return
	}

	normal := r2.Scale(1/dist, impact)
	overlap := dist - (b.radius + other.radius) // Negative while overlapping
	correction := r2.Scale(overlap/2, normal)
	b.position = r2.Add(b.position, correction)
	other.position = r2.Sub(other.position, correction)

	relVel := r2.Sub(other.velocity, b.velocity)
	massSum := b.mass + other.mass
	numerator := 2 * r2.Dot(relVel, impact)
	denominator := massSum * dist * dist

	b.velocity = r2.Add(b.velocity, r2.Scale(other.mass*numerator/denominator, impact))
	other.velocity = r2.Add(other.velocity, r2.Scale(-b.mass*numerator/denominator, impact))
}

// IsTouchingPoint reports whether p lies strictly inside the body.
func (b *Body) IsTouchingPoint(p r2.Vec) bool {
	return PointInCircle(p, b.position, b.radius)
}

// ApplyImpulse adds dv to the velocity.
func (b *Body) ApplyImpulse(dv r2.Vec) {
	b.velocity = r2.Add(b.velocity, dv)
}
