package sea

import (
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"voxelsea.ai/internal/sim/geom"
	"voxelsea.ai/internal/sim/physics"
	"voxelsea.ai/internal/sim/tile"
)

// Island is a group of sprites simulated in their own physics world, with
// the voxels of the grid region they occupy.
type Island struct {
	sea   *Sea
	world physics.World

	spriteSpace physics.SpaceID
	voxelSpace  physics.SpaceID

	sprites []SpriteID
	byBody  map[physics.BodyID]SpriteID
	voxels  voxelTable

	bound geom.Box
	// grid position = physics position + origin
	origin geom.Vec3i
}

func newIsland(s *Sea, bound geom.Box) *Island {
	w := s.cfg.NewWorld()
	w.SetGravity(s.cfg.Gravity)
	return &Island{
		sea:         s,
		world:       w,
		spriteSpace: w.NewSpace(),
		voxelSpace:  w.NewSpace(),
		byBody:      map[physics.BodyID]SpriteID{},
		voxels:      newVoxelTable(),
		bound:       bound,
		origin:      bound.Center(),
	}
}

func (isl *Island) World() physics.World         { return isl.world }
func (isl *Island) SpriteSpace() physics.SpaceID { return isl.spriteSpace }
func (isl *Island) VoxelSpace() physics.SpaceID  { return isl.voxelSpace }
func (isl *Island) Bound() geom.Box              { return isl.bound }
func (isl *Island) Origin() geom.Vec3i           { return isl.origin }
func (isl *Island) Len() int                     { return len(isl.sprites) }
func (isl *Island) Config() Config               { return isl.sea.cfg }

// Sprites returns the live sprites in insertion order.
func (isl *Island) Sprites() []*Sprite {
	out := make([]*Sprite, 0, len(isl.sprites))
	for _, id := range isl.sprites {
		out = append(out, isl.sea.arena.get(id))
	}
	return out
}

// Voxels returns the voxel table in canonical order.
func (isl *Island) Voxels() []Voxel {
	out := make([]Voxel, len(isl.voxels.entries))
	for i, v := range isl.voxels.entries {
		out[i] = *v
	}
	return out
}

// Voxel returns the voxel whose region starts at key.
func (isl *Island) Voxel(key geom.Vec3i) (Voxel, bool) {
	v, ok := isl.voxels.byKey[key]
	if !ok {
		return Voxel{}, false
	}
	return *v, true
}

// ToWorld maps a grid-space point into the island's physics space.
func (isl *Island) ToWorld(p mgl64.Vec3) mgl64.Vec3 { return p.Sub(isl.origin.Float()) }

// Insert activates a dormant sprite in this island.
func (isl *Island) Insert(s *Sprite) {
	if s.island != nil {
		panic(fmt.Sprintf("sea: %v is already active", s.id))
	}
	if !s.id.IsZero() {
		panic(fmt.Sprintf("sea: %v was retired and cannot be inserted again", s.id))
	}
	s.id = isl.sea.arena.add(s)
	loc := s.dormant
	body := isl.world.NewBody()
	isl.world.SetBodyLocation(body, loc.Translate(isl.origin.Float().Mul(-1)))
	s.island = isl
	s.body = body
	s.dormant = geom.DLoc{}
	isl.sprites = append(isl.sprites, s.id)
	isl.byBody[body] = s.id
	s.behavior.Placed(s)
}

// Create makes a sprite at grid location loc and inserts it here.
func (isl *Island) Create(b Behavior, loc geom.DLoc) *Sprite {
	s := NewSprite(b, loc)
	isl.Insert(s)
	return s
}

func (isl *Island) spriteOf(body physics.BodyID) *Sprite {
	id, ok := isl.byBody[body]
	if !ok {
		return nil
	}
	return isl.sea.arena.get(id)
}

func (isl *Island) spriteOfShape(sh physics.ShapeID) *Sprite {
	body, ok := isl.world.ShapeBody(sh)
	if !ok {
		return nil
	}
	return isl.spriteOf(body)
}

// remove destroys an active sprite and its body.
func (isl *Island) remove(id SpriteID) {
	s := isl.sea.arena.get(id)
	if s == nil || s.island != isl {
		panic(fmt.Sprintf("sea: %v is not in this island", id))
	}
	s.behavior.Removing(s)
	isl.world.DestroyBody(s.body)
	delete(isl.byBody, s.body)
	isl.sprites = slices.DeleteFunc(isl.sprites, func(x SpriteID) bool { return x == id })
	isl.sea.arena.remove(id)
	s.island = nil
	s.body = 0
}

// newVoxelShape builds the collision shape of a region: the shape mesh for a
// shaped unit cell, otherwise a box slightly larger than the region so that
// neighbouring boxes leave no seams.
func (isl *Island) newVoxelShape(s geom.SBox, t tile.Tile) physics.ShapeID {
	if t.Shaped() {
		if s.Size() != 1 {
			panic(fmt.Sprintf("sea: shaped tile %v spans %v", t, s))
		}
		loc := geom.DAt(s.P0().Sub(isl.origin).Float()).Mul(t.ShapeLoc())
		return isl.world.NewTriMesh(isl.voxelSpace, t.ShapeMesh(), loc)
	}
	o := isl.sea.cfg.VoxelOverlap
	d := float64(s.Size()) + 2*o
	return isl.world.NewBox(isl.voxelSpace, mgl64.Vec3{d, d, d}, geom.DAt(isl.ToWorld(s.CenterF())))
}
