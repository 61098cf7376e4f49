package simulation

import (
	"errors"
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tomz197/circles/internal/physics"
)

var testBounds = r2.Vec{X: 1000, Y: 800}

func newTestSim(t *testing.T, layout Layout, allowPlacing bool) *Simulation {
	t.Helper()
	opts := DefaultOptions()
	opts.AllowPlacing = allowPlacing
	s, err := New(testBounds, layout, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

// =============================================================================
// Construction
// =============================================================================

func TestNew_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		bounds  r2.Vec
		cfg     physics.Config
		wantErr error
	}{
		{"zero bounds", r2.Vec{}, physics.DefaultConfig(), ErrInvalidBounds},
		{"negative height", r2.Vec{X: 100, Y: -1}, physics.DefaultConfig(), ErrInvalidBounds},
		{"bad friction", r2.Vec{X: 100, Y: 100}, physics.Config{Density: 1, Friction: 2, SpeedScale: 1, DragScale: 1, DefaultRadius: 1}, physics.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.bounds, Empty{}, Options{Config: tt.cfg})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_ZeroConfigUsesDefaults(t *testing.T) {
	s, err := New(testBounds, nil, Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if s.Config() != physics.DefaultConfig() {
		t.Errorf("Config() = %+v, want defaults", s.Config())
	}
	if s.Len() != 0 || s.Mode().Kind != ModeIdle {
		t.Errorf("new simulation: len=%d mode=%v", s.Len(), s.Mode().Kind)
	}
}

// =============================================================================
// Step
// =============================================================================

func TestStep_NegativeDeltaRejected(t *testing.T) {
	s := newTestSim(t, RandomScatter{Count: 5, Seed: 1}, true)
	before := s.Snapshot(nil)

	err := s.Step(-time.Millisecond)
	if !errors.Is(err, ErrNegativeDelta) {
		t.Fatalf("Step() error = %v, want ErrNegativeDelta", err)
	}

	after := s.Snapshot(nil)
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("body %d changed on rejected step", i)
		}
	}
	if s.Stats().Frame != 0 {
		t.Errorf("Frame = %d, want 0", s.Stats().Frame)
	}
}

func TestStep_ResolvesPairsSequentiallyInAscendingOrder(t *testing.T) {
	cfg := physics.DefaultConfig()
	makeRow := func() []*physics.Body {
		return []*physics.Body{
			physics.NewBodyFromData(cfg, r2.Vec{X: 100, Y: 100}, r2.Vec{X: 1}, 15, physics.White, "1"),
			physics.NewBodyFromData(cfg, r2.Vec{X: 120, Y: 104}, r2.Vec{X: -0.5}, 15, physics.White, "2"),
			physics.NewBodyFromData(cfg, r2.Vec{X: 135, Y: 95}, r2.Vec{Y: 0.25}, 12, physics.White, "3"),
		}
	}

	s := newTestSim(t, Empty{}, true)
	for _, b := range makeRow() {
		s.Add(b)
	}

	want := makeRow()
	for i := 0; i < len(want); i++ {
		for j := i + 1; j < len(want); j++ {
			if want[i].IsCollidingWith(want[j]) {
				want[i].CollideWith(want[j])
			}
		}
	}

	// Zero dt isolates the collision pass.
	if err := s.Step(0); err != nil {
		t.Fatalf("Step() error = %v", err)
	}

	i := 0
	for _, got := range s.All() {
		if got.Position() != want[i].Position() || got.Velocity() != want[i].Velocity() {
			t.Errorf("body %d: got pos=%v vel=%v, want pos=%v vel=%v",
				i, got.Position(), got.Velocity(), want[i].Position(), want[i].Velocity())
		}
		i++
	}
	if s.Stats().Collisions == 0 {
		t.Error("expected collisions to be counted")
	}
}

func TestStep_IntegratesAfterCollisions(t *testing.T) {
	s := newTestSim(t, Empty{}, true)
	cfg := s.Config()
	a := physics.NewBodyFromData(cfg, r2.Vec{X: 100, Y: 100}, r2.Vec{}, 15, physics.White, "a")
	b := physics.NewBodyFromData(cfg, r2.Vec{X: 120, Y: 100}, r2.Vec{X: -1}, 15, physics.White, "b")
	s.Add(a)
	s.Add(b)

	if err := s.Step(10 * time.Millisecond); err != nil {
		t.Fatalf("Step() error = %v", err)
	}

	// After the swap a moves left at friction-scaled speed from its corrected position.
	wantX := 95 - 1.0*0.01*cfg.SpeedScale
	if math.Abs(a.Position().X-wantX) > 1e-9 {
		t.Errorf("a.Position().X = %v, want %v", a.Position().X, wantX)
	}
	if math.Abs(a.Velocity().X+cfg.Friction) > 1e-9 {
		t.Errorf("a.Velocity().X = %v, want %v", a.Velocity().X, -cfg.Friction)
	}
}

func TestStep_DeterministicAcrossRuns(t *testing.T) {
	run := func() []BodyView {
		s := newTestSim(t, RandomScatter{Count: 40, Seed: 7, MaxSpeed: 3}, true)
		for i := range 500 {
			if err := s.Step(time.Duration(10+i%7) * time.Millisecond); err != nil {
				t.Fatalf("Step() error = %v", err)
			}
		}
		return s.Snapshot(nil)
	}

	first, second := run(), run()
	if len(first) != len(second) {
		t.Fatalf("body counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Position != second[i].Position || first[i].Velocity != second[i].Velocity {
			t.Fatalf("body %d diverged: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestStep_ReturnsInvariantViolations(t *testing.T) {
	s := newTestSim(t, Empty{}, true)
	cfg := s.Config()
	s.Add(physics.NewBodyFromData(cfg, r2.Vec{X: 100, Y: 100}, r2.Vec{X: 2000}, 15, physics.White, "rocket"))
	s.Add(physics.NewBodyFromData(cfg, r2.Vec{X: 500, Y: 500}, r2.Vec{}, 15, physics.White, "calm"))

	err := s.Step(time.Microsecond)
	if !errors.Is(err, physics.ErrInvariantViolation) {
		t.Fatalf("Step() error = %v, want ErrInvariantViolation", err)
	}
	var inv *physics.InvariantError
	if !errors.As(err, &inv) || inv.Tag != "rocket" {
		t.Errorf("want InvariantError for rocket, got %v", err)
	}
	if s.Stats().Frame != 1 {
		t.Errorf("Frame = %d, want 1", s.Stats().Frame)
	}
}

// =============================================================================
// Pointer interaction
// =============================================================================

func TestOnPointerPress_PlaceBody(t *testing.T) {
	s := newTestSim(t, Empty{}, true)

	s.OnPointerPress(200, 300)
	mode := s.Mode()
	if mode.Kind != ModePlacing || mode.Origin != (r2.Vec{X: 200, Y: 300}) {
		t.Fatalf("Mode() = %+v, want placing at (200, 300)", mode)
	}
	if s.Len() != 0 {
		t.Fatalf("body placed too early")
	}

	s.OnPointerPress(300, 250)
	if s.Mode().Kind != ModeIdle {
		t.Errorf("Mode() = %v, want idle", s.Mode().Kind)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}

	views := s.Snapshot(nil)
	v := views[0]
	if v.Position != (r2.Vec{X: 200, Y: 300}) {
		t.Errorf("Position = %v, want origin", v.Position)
	}
	if v.Velocity != (r2.Vec{X: 2, Y: -1}) {
		t.Errorf("Velocity = %v, want (2, -1)", v.Velocity)
	}
	if v.Tag != "1" || v.Radius != physics.DefaultRadius {
		t.Errorf("tag=%q radius=%v, want 1/%v", v.Tag, v.Radius, physics.DefaultRadius)
	}
}

func TestOnPointerPress_TagIsPostAppendSize(t *testing.T) {
	s := newTestSim(t, Pyramid{Size: 2, Seed: 3}, true)

	s.OnPointerPress(50, 50)
	s.OnPointerPress(60, 60)

	views := s.Snapshot(nil)
	if got := views[len(views)-1].Tag; got != "4" {
		t.Errorf("placed tag = %q, want 4", got)
	}
}

func TestOnPointerPress_PlacingDisabled(t *testing.T) {
	s := newTestSim(t, Empty{}, false)

	s.OnPointerPress(200, 300)
	if s.Mode().Kind != ModeIdle {
		t.Errorf("Mode() = %v, want idle", s.Mode().Kind)
	}
	s.OnPointerPress(250, 300)
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestOnPointerPress_DragAppliesImpulse(t *testing.T) {
	for _, allow := range []bool{true, false} {
		s := newTestSim(t, Empty{}, allow)
		h := s.Add(physics.NewBody(s.Config(), r2.Vec{X: 400, Y: 400}, r2.Vec{X: 1}))

		s.OnPointerPress(405, 398)
		mode := s.Mode()
		if mode.Kind != ModeDragging || mode.Selected != h {
			t.Fatalf("Mode() = %+v, want dragging %v", mode, h)
		}
		if views := s.Snapshot(nil); !views[0].Selected {
			t.Error("snapshot does not mark the dragged body")
		}

		s.OnPointerPress(500, 350)
		if s.Mode().Kind != ModeIdle {
			t.Errorf("Mode() = %v, want idle", s.Mode().Kind)
		}
		b, _ := s.Body(h)
		if b.Velocity() != (r2.Vec{X: 3, Y: -1}) {
			t.Errorf("Velocity() = %v, want (3, -1)", b.Velocity())
		}
		if views := s.Snapshot(nil); views[0].Selected {
			t.Error("body still marked selected after impulse")
		}
	}
}

func TestOnPointerPress_HitTestPrefersCollectionOrder(t *testing.T) {
	s := newTestSim(t, Empty{}, true)
	cfg := s.Config()
	first := s.Add(physics.NewBodyFromData(cfg, r2.Vec{X: 100, Y: 100}, r2.Vec{}, 15, physics.White, "first"))
	s.Add(physics.NewBodyFromData(cfg, r2.Vec{X: 110, Y: 100}, r2.Vec{}, 15, physics.White, "second"))

	s.OnPointerPress(106, 100)
	if s.Mode().Selected != first {
		t.Errorf("selected %v, want %v", s.Mode().Selected, first)
	}
}

func TestOnPointerPress_RemovedSelectionReturnsToIdle(t *testing.T) {
	s := newTestSim(t, Empty{}, true)
	h := s.Add(physics.NewBody(s.Config(), r2.Vec{X: 400, Y: 400}, r2.Vec{}))
	other := s.Add(physics.NewBody(s.Config(), r2.Vec{X: 600, Y: 400}, r2.Vec{}))

	s.OnPointerPress(400, 400)
	if !s.Remove(h) {
		t.Fatal("Remove() = false")
	}
	// The freed slot is reused with a new generation.
	reused := s.Add(physics.NewBody(s.Config(), r2.Vec{X: 400, Y: 400}, r2.Vec{}))

	s.OnPointerPress(900, 400)
	if s.Mode().Kind != ModeIdle {
		t.Errorf("Mode() = %v, want idle", s.Mode().Kind)
	}
	for _, handle := range []Handle{reused, other} {
		b, ok := s.Body(handle)
		if !ok {
			t.Fatalf("handle %v does not resolve", handle)
		}
		if b.Velocity() != (r2.Vec{}) {
			t.Errorf("stale drag moved body %v: %v", handle, b.Velocity())
		}
	}
}

func TestCancel(t *testing.T) {
	s := newTestSim(t, Empty{}, true)
	s.OnPointerPress(10, 10)
	s.Cancel()
	if s.Mode().Kind != ModeIdle {
		t.Errorf("Mode() = %v, want idle", s.Mode().Kind)
	}
	s.OnPointerPress(30, 30)
	if s.Len() != 0 {
		t.Errorf("cancelled placement still created a body")
	}
}

func TestReset_InvalidatesHandles(t *testing.T) {
	s := newTestSim(t, RandomScatter{Count: 3, Seed: 2}, true)
	h, _ := s.HitTest(s.Snapshot(nil)[0].Position)

	s.Reset(Pyramid{Size: 3})

	if _, ok := s.Body(h); ok {
		t.Error("handle survived Reset")
	}
	if s.Len() != 6 {
		t.Errorf("Len() = %d, want 6", s.Len())
	}
}
