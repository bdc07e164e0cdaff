// Package levels registers the playable levels with the level catalogue.
package levels

import (
	"github.com/go-gl/mathgl/mgl64"

	"voxelsea.ai/internal/sim/geom"
	"voxelsea.ai/internal/sim/grid"
	"voxelsea.ai/internal/sim/level"
	"voxelsea.ai/internal/sim/sea"
	"voxelsea.ai/internal/sim/sprites"
	"voxelsea.ai/internal/sim/terrain/paint"
	"voxelsea.ai/internal/sim/tile"
)

var (
	GroundColor = geom.V(15, 10, 0)
	HillColor   = geom.V(0, 24, 15)
)

func init() {
	level.Register(100, "Demo", func() level.Level { return &Demo{} })
}

// Demo is a lower half of ground under rolling hills and trees, with the
// player's craft above the centre.
type Demo struct {
	Craft      *sprites.Craft
	craftState *sea.Sprite
}

func (d *Demo) Generate(g *level.Game) {
	g.Grid = grid.New(g.GridSize)
	v := grid.Whole(g.Grid)
	v.Fill(tile.New().WithColor(GroundColor))

	v = v.Center().ClipUp()
	v.Cut()
	hills := v.Translate(geom.V(0, 7, 0)).Rotate(geom.FlipY()).ClipUp().Rotate(geom.FlipY()).Base()
	paint.RollingHillsSmooth(hills, g.Seed, tile.New().WithColor(HillColor))
	paint.Trees(v, g.Seed)

	d.Craft = sprites.NewCraft()
	d.craftState = g.Sea.Create(d.Craft, v.Location(geom.DAt(mgl64.Vec3{0, 10, 3})))
	d.Craft.InitControls(g.Controls)
}

// CraftSprite is the sprite of the player's craft; it stays valid while the
// craft lives.
func (d *Demo) CraftSprite() *sea.Sprite { return d.craftState }

func (d *Demo) BeforeStep(g *level.Game) {
	if d.craftState.Active() {
		d.Craft.Input(d.craftState, g.Controls)
	}
}

func (d *Demo) AfterStep(*level.Game) {}
