package sea

import (
	"voxelsea.ai/internal/sim/geom"
	"voxelsea.ai/internal/sim/grid"
	"voxelsea.ai/internal/sim/physics"
)

// SyncStats counts voxel table changes of one sync.
type SyncStats struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Deleted  int `json:"deleted"`
	Voxels   int `json:"voxels"`
}

func (s *SyncStats) add(o SyncStats) {
	s.Inserted += o.Inserted
	s.Updated += o.Updated
	s.Deleted += o.Deleted
	s.Voxels += o.Voxels
}

// occupied is the union of the sprites' bounds; empty without sprites.
func (isl *Island) occupied() geom.Box {
	var b geom.Box
	first := true
	for _, s := range isl.Sprites() {
		if first {
			b, first = s.Bound(), false
			continue
		}
		b = b.Combination(s.Bound())
	}
	return b
}

// Sync recomputes the island bound and reconciles the voxel table with the
// grid tiles inside it. Regions arrive in the table's own order, so one
// forward cursor finds each key; unchanged regions cost a comparison.
func (isl *Island) Sync(g *grid.Grid) SyncStats {
	var st SyncStats
	isl.bound = isl.occupied()
	t := &isl.voxels
	probes := isl.sea.cfg.SyncProbeSteps

	// every entry before i sorts before the current region
	i := 0
	for s, tl := range g.Tiles(isl.bound) {
		key := s.P0()
		for n := 0; ; {
			if i == len(t.entries) || grid.CoordLess(key, t.entries[i].Key()) {
				t.insertAt(i, &Voxel{Shape: isl.newVoxelShape(s, tl), Box: s, Tile: tl, seen: true})
				st.Inserted++
				break
			}
			if v := t.entries[i]; v.Key() == key {
				if v.Box != s || v.Tile != tl {
					isl.world.DestroyShape(v.Shape)
					t.reshape(v, isl.newVoxelShape(s, tl))
					v.Box = s
					v.Tile = tl
					st.Updated++
				}
				v.seen = true
				break
			}
			if n < probes {
				i++
				n++
			} else {
				i = t.search(key)
			}
		}
		i++
	}

	st.Deleted = t.sweep(func(v *Voxel) { isl.world.DestroyShape(v.Shape) })
	st.Voxels = t.Len()

	for _, s := range isl.Sprites() {
		s.behavior.AfterSync(s)
	}
	return st
}

// dropVoxel removes a voxel whose tile was emptied during a tick.
func (isl *Island) dropVoxel(key geom.Vec3i) bool {
	v := isl.voxels.remove(key)
	if v == nil {
		return false
	}
	isl.world.DestroyShape(v.Shape)
	return true
}

// rebuildVoxel replaces the shape of a voxel whose tile changed shape
// during a tick. Voxels emptied later in the same tick are already gone.
func (isl *Island) rebuildVoxel(key geom.Vec3i) {
	v := isl.voxels.byKey[key]
	if v == nil || v.Tile.Empty() {
		return
	}
	isl.world.DestroyShape(v.Shape)
	isl.voxels.reshape(v, isl.newVoxelShape(v.Box, v.Tile))
}

// voxelOf resolves a contact's voxel shape.
func (isl *Island) voxelOf(sh physics.ShapeID) *Voxel { return isl.voxels.byShape[sh] }
