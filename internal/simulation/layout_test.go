package simulation

import (
	"math"
	"strconv"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tomz197/circles/internal/physics"
)

// =============================================================================
// Pyramid
// =============================================================================

func TestPyramid_Rows(t *testing.T) {
	cfg := physics.DefaultConfig()
	bodies := Pyramid{Size: 4, Seed: 1}.Bodies(cfg, testBounds)

	if len(bodies) != 10 {
		t.Fatalf("len = %d, want 10", len(bodies))
	}

	// Bottom row first: 4, 3, 2, 1 bodies sharing a y coordinate.
	i := 0
	prevY := math.Inf(1)
	for _, n := range []int{4, 3, 2, 1} {
		y := bodies[i].Position().Y
		if y >= prevY {
			t.Errorf("row of %d at y=%v is not above previous row at %v", n, y, prevY)
		}
		for k := 0; k < n; k++ {
			if got := bodies[i+k].Position().Y; got != y {
				t.Errorf("body %d y = %v, want %v", i+k, got, y)
			}
		}
		prevY = y
		i += n
	}

	for i, b := range bodies {
		if b.Tag() != strconv.Itoa(i+1) {
			t.Errorf("body %d tag = %q", i, b.Tag())
		}
		if b.Velocity() != (r2.Vec{}) {
			t.Errorf("body %d is moving: %v", i, b.Velocity())
		}
	}
}

func TestPyramid_DefaultApexRestsOnBottomWall(t *testing.T) {
	cfg := physics.DefaultConfig()
	bodies := Pyramid{Size: 3}.Bodies(cfg, testBounds)

	bottom := bodies[0].Position().Y + cfg.DefaultRadius
	if bottom > testBounds.Y || testBounds.Y-bottom > 2*DefaultPyramidGap {
		t.Errorf("bottom row ends at %v, want just above %v", bottom, testBounds.Y)
	}

	apex := bodies[len(bodies)-1].Position()
	if math.Abs(apex.X-testBounds.X/2) > 1e-9 {
		t.Errorf("apex x = %v, want centered", apex.X)
	}
}

func TestPyramid_ExplicitApex(t *testing.T) {
	tests := []struct {
		name string
		apex r2.Vec
	}{
		{"inside", r2.Vec{X: 300, Y: 200}},
		{"origin", r2.Vec{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apex := tt.apex
			bodies := Pyramid{Size: 2, Apex: &apex}.Bodies(physics.DefaultConfig(), testBounds)
			if got := bodies[len(bodies)-1].Position(); got != tt.apex {
				t.Errorf("apex = %v, want %v", got, tt.apex)
			}
		})
	}
}

func TestPyramid_NoOverlap(t *testing.T) {
	bodies := Pyramid{Size: 6}.Bodies(physics.DefaultConfig(), testBounds)
	for i := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			if bodies[i].IsCollidingWith(bodies[j]) {
				t.Errorf("bodies %d and %d overlap", i, j)
			}
		}
	}
}

func TestPyramid_ColorsFollowSeed(t *testing.T) {
	cfg := physics.DefaultConfig()
	a := Pyramid{Size: 3, Seed: 9}.Bodies(cfg, testBounds)
	b := Pyramid{Size: 3, Seed: 9}.Bodies(cfg, testBounds)
	for i := range a {
		if a[i].Color() != b[i].Color() {
			t.Errorf("body %d color differs for the same seed", i)
		}
	}
}

func TestPyramid_Empty(t *testing.T) {
	if got := (Pyramid{}).Bodies(physics.DefaultConfig(), testBounds); len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

// =============================================================================
// RandomScatter
// =============================================================================

func TestRandomScatter_InsideBounds(t *testing.T) {
	cfg := physics.DefaultConfig()
	bodies := RandomScatter{Count: 25, Seed: 4, MaxSpeed: 2}.Bodies(cfg, testBounds)

	if len(bodies) != 25 {
		t.Fatalf("len = %d, want 25", len(bodies))
	}
	for i, b := range bodies {
		p, r := b.Position(), b.Radius()
		if p.X < r || p.X > testBounds.X-r || p.Y < r || p.Y > testBounds.Y-r {
			t.Errorf("body %d at %v is outside the area", i, p)
		}
		if speed := r2.Norm(b.Velocity()); speed > 2 {
			t.Errorf("body %d speed %v exceeds max", i, speed)
		}
	}
}

func TestRandomScatter_AvoidsOverlapWhenRoomy(t *testing.T) {
	bodies := RandomScatter{Count: 10, Seed: 11}.Bodies(physics.DefaultConfig(), testBounds)
	for i := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			if bodies[i].IsCollidingWith(bodies[j]) {
				t.Errorf("bodies %d and %d overlap", i, j)
			}
		}
	}
}

func TestRandomScatter_Deterministic(t *testing.T) {
	cfg := physics.DefaultConfig()
	a := RandomScatter{Count: 5, Seed: 5}.Bodies(cfg, testBounds)
	b := RandomScatter{Count: 5, Seed: 5}.Bodies(cfg, testBounds)
	for i := range a {
		if a[i].Position() != b[i].Position() || a[i].Velocity() != b[i].Velocity() {
			t.Errorf("body %d differs for the same seed", i)
		}
	}
}
