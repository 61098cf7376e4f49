package main

import (
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lucasb-eyer/go-colorful"

	loopconfig "github.com/tomz197/circles/internal/loop/config"
	"github.com/tomz197/circles/internal/simulation"
)

const tps = 60

var (
	background = color.RGBA{R: 12, G: 12, B: 20, A: 255}
	highlight  = color.RGBA{R: 255, G: 215, B: 0, A: 255}
)

// Game drives a Simulation from ebiten's update loop.
type Game struct {
	sim      *simulation.Simulation
	layout   simulation.Layout
	logger   *log.Logger
	paused   bool
	stepOnce bool
	bodies   []simulation.BodyView
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.sim.Cancel()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.sim.Reset(g.layout)
		g.logger.Info("world reset")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) && g.paused {
		g.stepOnce = true
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		g.sim.OnPointerPress(float64(mx), float64(my))
	}

	if g.paused && !g.stepOnce {
		return nil
	}
	g.stepOnce = false

	if err := g.sim.Step(time.Second / tps); err != nil {
		g.logger.Error("simulation step failed", "frame", g.sim.Stats().Frame, "err", err)
		return err
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)

	g.bodies = g.sim.Snapshot(g.bodies)
	for _, b := range g.bodies {
		x, y, r := float32(b.Position.X), float32(b.Position.Y), float32(b.Radius)
		vector.DrawFilledCircle(screen, x, y, r, toRGBA(b.Color), true)
		if b.Selected {
			vector.StrokeCircle(screen, x, y, r+3, 2, highlight, true)
		}
		if len(b.Tag)*6 < int(2*b.Radius) {
			ebitenutil.DebugPrintAt(screen, b.Tag, int(b.Position.X)-len(b.Tag)*3, int(b.Position.Y)-8)
		}
	}

	mode := g.sim.Mode()
	if mode.Kind == simulation.ModePlacing {
		ox, oy := float32(mode.Origin.X), float32(mode.Origin.Y)
		r := float32(g.sim.Config().DefaultRadius)
		vector.StrokeCircle(screen, ox, oy, r, 1, highlight, true)
		if mx, my := ebiten.CursorPosition(); mx != int(ox) || my != int(oy) {
			vector.StrokeLine(screen, ox, oy, float32(mx), float32(my), 1, highlight, true)
		}
	}

	stats := g.sim.Stats()
	hud := fmt.Sprintf("bodies %d  frame %d  collisions %d  mode %s", stats.Bodies, stats.Frame, stats.Collisions, mode.Kind)
	if g.paused {
		hud += "  PAUSED"
	}
	ebitenutil.DebugPrint(screen, hud+"\nclick: select / place  space: pause  n: step  r: reset  esc: cancel  q: quit")
}

func (g *Game) Layout(_, _ int) (int, int) {
	b := g.sim.Bounds()
	return int(b.X), int(b.Y)
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "circles",
	})

	settings, err := loopconfig.FromEnv()
	if err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}
	logger.SetLevel(settings.LogLevel)

	sim, err := simulation.New(settings.Bounds(), settings.Layout, settings.Options(logger.WithPrefix("sim")))
	if err != nil {
		logger.Fatal("failed to create simulation", "err", err)
	}
	logger.Info("simulation ready", "bodies", sim.Len(), "placing", sim.AllowPlacing(), "radius", sim.Config().DefaultRadius, "density", sim.Config().Density)

	g := &Game{sim: sim, layout: settings.Layout, logger: logger}

	ebiten.SetWindowSize(loopconfig.WorldWidth, loopconfig.WorldHeight)
	ebiten.SetWindowTitle("Circles")
	ebiten.SetTPS(tps)

	if err := ebiten.RunGame(g); err != nil {
		logger.Fatal("game stopped", "err", err)
	}
}
