// Package level ties a grid, a sea and the controls into a game, and keeps
// the catalogue of levels that can generate one.
package level

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"voxelsea.ai/internal/sim/control"
	"voxelsea.ai/internal/sim/grid"
	"voxelsea.ai/internal/sim/sea"
	"voxelsea.ai/internal/sim/tuning"
)

// Level implements the mechanics of one game.
type Level interface {
	// Generate builds the grid and the initial sprites.
	Generate(g *Game)
	BeforeStep(g *Game)
	AfterStep(g *Game)
}

// Game is the state a level plays on.
type Game struct {
	Name     string
	Seed     int64
	GridSize int

	Grid     *grid.Grid
	Sea      *sea.Sea
	Controls *control.Controls

	level Level
}

// SeaConfig maps the tuning file onto base, which supplies the physics
// engine.
func SeaConfig(t tuning.Tuning, base sea.Config) sea.Config {
	cfg := base
	cfg.TicksPerFrame = t.TicksPerFrame
	cfg.TickSize = t.TickSize
	cfg.Gravity = mgl64.Vec3{t.Gravity[0], t.Gravity[1], t.Gravity[2]}
	cfg.VoxelOverlap = t.VoxelOverlap
	cfg.ContactMu = t.ContactMu
	cfg.EffectFrames = t.EffectFrames
	cfg.SyncProbeSteps = t.SyncProbeSteps
	return cfg
}

// New generates the named level.
func New(name string, t tuning.Tuning, cfg sea.Config) (*Game, error) {
	e, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown level %q", name)
	}
	g := &Game{
		Name:     e.Name,
		Seed:     t.Seed,
		GridSize: t.GridSize,
		Sea:      sea.New(SeaConfig(t, cfg)),
		Controls: control.New(),
		level:    e.Factory(),
	}
	g.level.Generate(g)
	if g.Grid == nil {
		panic(fmt.Sprintf("level: %s generated no grid", e.Name))
	}
	return g, nil
}

func (g *Game) Level() Level { return g.level }

// Step runs one frame.
func (g *Game) Step() sea.FrameStats {
	g.level.BeforeStep(g)
	st := g.Sea.Step(g.Grid)
	g.level.AfterStep(g)
	return st
}
