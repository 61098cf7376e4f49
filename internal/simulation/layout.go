package simulation

import (
	"math"
	"math/rand"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tomz197/circles/internal/physics"
)

// Palette is the fixed set of colors layouts draw from.
var Palette = []colorful.Color{
	mustHex("#e63946"),
	mustHex("#f1a208"),
	mustHex("#2a9d8f"),
	mustHex("#457b9d"),
	mustHex("#8ecae6"),
	mustHex("#b5179e"),
	mustHex("#90be6d"),
	mustHex("#f4f1de"),
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Layout builds the initial set of bodies of a simulation.
type Layout interface {
	Bodies(cfg physics.Config, bounds r2.Vec) []*physics.Body
}

// Empty starts a simulation with no bodies.
type Empty struct{}

// Bodies implements Layout.
func (Empty) Bodies(physics.Config, r2.Vec) []*physics.Body {
	return nil
}

// maxPlacementAttempts bounds the search for a free spot in RandomScatter.
const maxPlacementAttempts = 100

// RandomScatter places Count bodies of the default radius at random spots.
// Bodies avoid overlapping each other when a free spot is found within a bounded
// number of attempts; otherwise the last candidate is used.
type RandomScatter struct {
	Count    int
	Seed     int64
	MaxSpeed float64 // Upper bound of the initial speed, 1 if zero
}

// Bodies implements Layout.
func (l RandomScatter) Bodies(cfg physics.Config, bounds r2.Vec) []*physics.Body {
	if l.Count <= 0 {
		return nil
	}

	maxSpeed := l.MaxSpeed
	if maxSpeed <= 0 {
		maxSpeed = 1
	}

	rng := rand.New(rand.NewSource(l.Seed))
	r := cfg.DefaultRadius
	bodies := make([]*physics.Body, 0, l.Count)

	for i := 0; i < l.Count; i++ {
		var pos r2.Vec
		for attempt := 0; attempt < maxPlacementAttempts; attempt++ {
			pos = r2.Vec{
				X: r + rng.Float64()*math.Max(0, bounds.X-2*r),
				Y: r + rng.Float64()*math.Max(0, bounds.Y-2*r),
			}
			if !overlapsAny(pos, r, bodies) {
				break
			}
		}

		angle := rng.Float64() * 2 * math.Pi
		speed := rng.Float64() * maxSpeed
		vel := r2.Vec{X: math.Cos(angle) * speed, Y: math.Sin(angle) * speed}
		color := Palette[rng.Intn(len(Palette))]

		bodies = append(bodies, physics.NewBodyFromData(cfg, pos, vel, r, color, strconv.Itoa(i+1)))
	}
	return bodies
}

func overlapsAny(pos r2.Vec, radius float64, bodies []*physics.Body) bool {
	for _, b := range bodies {
		if physics.CirclesOverlap(pos, radius, b.Position(), b.Radius()) {
			return true
		}
	}
	return false
}

// DefaultPyramidGap is the distance left between neighboring circles of a pyramid.
const DefaultPyramidGap = 1.0

// Pyramid stacks Size rows of resting circles under an apex: the top row holds one
// body and every row below holds one more. Colors come from the palette shuffled
// with Seed and are handed out from the bottom row up.
//
// A nil Apex centers the pyramid horizontally with its bottom row just above the
// bottom wall.
type Pyramid struct {
	Size int
	Apex *r2.Vec // Center of the top body
	Seed int64
	Gap  float64 // Spacing between neighbors, DefaultPyramidGap if zero
}

// Bodies implements Layout. Bodies are returned bottom row first, left to right.
func (l Pyramid) Bodies(cfg physics.Config, bounds r2.Vec) []*physics.Body {
	if l.Size <= 0 {
		return nil
	}

	gap := l.Gap
	if gap <= 0 {
		gap = DefaultPyramidGap
	}
	r := cfg.DefaultRadius
	spacing := 2*r + gap
	rowHeight := spacing * math.Sqrt(3) / 2

	var apex r2.Vec
	if l.Apex != nil {
		apex = *l.Apex
	} else {
		apex = r2.Vec{
			X: bounds.X / 2,
			Y: bounds.Y - r - gap - float64(l.Size-1)*rowHeight,
		}
	}

	shuffled := append([]colorful.Color(nil), Palette...)
	rng := rand.New(rand.NewSource(l.Seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	total := l.Size * (l.Size + 1) / 2
	colors := make([]colorful.Color, total)
	for i := range colors {
		colors[i] = shuffled[i%len(shuffled)]
	}

	bodies := make([]*physics.Body, 0, total)
	for row := l.Size - 1; row >= 0; row-- {
		y := apex.Y + float64(row)*rowHeight
		for col := 0; col <= row; col++ {
			x := apex.X + (float64(col)-float64(row)/2)*spacing

			color := colors[len(colors)-1]
			colors = colors[:len(colors)-1]

			tag := strconv.Itoa(len(bodies) + 1)
			bodies = append(bodies, physics.NewBodyFromData(cfg, r2.Vec{X: x, Y: y}, r2.Vec{}, r, color, tag))
		}
	}
	return bodies
}
