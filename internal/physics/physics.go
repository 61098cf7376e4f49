// Package physics implements circular rigid bodies: integration, edge reflection,
// overlap tests and elastic collision response.
package physics

import "gonum.org/v1/gonum/spatial/r2"

// Distance calculates the Euclidean distance between two points.
func Distance(a, b r2.Vec) float64 {
	return r2.Norm(r2.Sub(b, a))
}

// DistanceSquared calculates the squared distance between two points.
// Use this when comparing distances to avoid the sqrt cost.
func DistanceSquared(a, b r2.Vec) float64 {
	return r2.Norm2(r2.Sub(b, a))
}

// PointInCircle checks if a point lies strictly inside a circle.
// A point on the circumference is not inside.
func PointInCircle(p, center r2.Vec, radius float64) bool {
	return DistanceSquared(p, center) < radius*radius
}

// CirclesOverlap checks if two circles overlap. Tangent circles do not overlap.
func CirclesOverlap(c1 r2.Vec, rad1 float64, c2 r2.Vec, rad2 float64) bool {
	minDist := rad1 + rad2
	return DistanceSquared(c1, c2) < minDist*minDist
}

// clamp limits v to [lo, hi]. When the range is empty, lo wins.
func clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
