// Package sea simulates sprites against the grid. Sprites are grouped into
// islands, each with its own physics world and a table of voxels mirroring
// the grid tiles its sprites can reach.
package sea

import (
	"github.com/go-gl/mathgl/mgl64"

	"voxelsea.ai/internal/sim/geom"
	"voxelsea.ai/internal/sim/grid"
	"voxelsea.ai/internal/sim/physics"
)

type Config struct {
	TicksPerFrame int
	// TickSize is the physics step in seconds.
	TickSize       float64
	Gravity        mgl64.Vec3
	VoxelOverlap   float64
	ContactMu      float64
	EffectFrames   int
	SyncProbeSteps int

	// NewWorld makes the physics world of a new island.
	NewWorld func() physics.World
}

func DefaultConfig() Config {
	return Config{
		TicksPerFrame:  10,
		TickSize:       1. / 60 / 10,
		Gravity:        mgl64.Vec3{0, -10, 0},
		VoxelOverlap:   .01,
		ContactMu:      .5,
		EffectFrames:   20,
		SyncProbeSteps: 3,
	}
}

// FrameStats summarises one Sea.Step.
type FrameStats struct {
	Frame     int       `json:"frame"`
	Islands   int       `json:"islands"`
	Sprites   int       `json:"sprites"`
	Sync      SyncStats `json:"sync"`
	Ticks     TickStats `json:"ticks"`
	Destroyed int       `json:"destroyed"`
	Effects   int       `json:"effects"`
}

// Sea owns every island. Accessed only from the simulation loop goroutine.
type Sea struct {
	cfg     Config
	arena   arena
	islands []*Island
	effects *Effects
	frame   int
}

func New(cfg Config) *Sea {
	if cfg.NewWorld == nil {
		panic("sea: Config.NewWorld is nil")
	}
	return &Sea{cfg: cfg, effects: NewEffects(cfg.EffectFrames)}
}

func (s *Sea) Config() Config     { return s.cfg }
func (s *Sea) Islands() []*Island { return s.islands }
func (s *Sea) Effects() *Effects  { return s.effects }
func (s *Sea) Frame() int         { return s.frame }
func (s *Sea) Len() int           { return s.arena.live }

// Sprite resolves an id; nil once the sprite is gone.
func (s *Sea) Sprite(id SpriteID) *Sprite { return s.arena.get(id) }

// Insert activates a dormant sprite. The first sprite founds an island
// around its own bound.
func (s *Sea) Insert(sp *Sprite) {
	if len(s.islands) == 0 {
		s.islands = append(s.islands, newIsland(s, sp.Bound()))
	}
	s.islands[len(s.islands)-1].Insert(sp)
}

func (s *Sea) Create(b Behavior, loc geom.DLoc) *Sprite {
	sp := NewSprite(b, loc)
	s.Insert(sp)
	return sp
}

// Step runs one frame: sync every island with g, tick them all, then age the
// effects.
func (s *Sea) Step(g *grid.Grid) FrameStats {
	st := FrameStats{Frame: s.frame}
	for _, isl := range s.islands {
		st.Sync.add(isl.Sync(g))
	}
	for i := 0; i < s.cfg.TicksPerFrame; i++ {
		for _, isl := range s.islands {
			st.Ticks.add(isl.Tick(g, s.effects))
		}
	}
	s.effects.Step()
	s.frame++

	st.Islands = len(s.islands)
	st.Sprites = s.arena.live
	st.Destroyed = len(st.Ticks.Destroyed)
	st.Effects = s.effects.Len()
	return st
}

// Render asks every sprite to draw itself.
func (s *Sea) Render(out *SpriteStream) {
	for _, isl := range s.islands {
		for _, sp := range isl.Sprites() {
			sp.behavior.Render(sp, out)
		}
	}
}
