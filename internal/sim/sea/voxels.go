package sea

import (
	"fmt"
	"slices"
	"sort"

	"voxelsea.ai/internal/sim/geom"
	"voxelsea.ai/internal/sim/grid"
	"voxelsea.ai/internal/sim/physics"
	"voxelsea.ai/internal/sim/tile"
)

// Voxel is the physics counterpart of one uniform tile region.
type Voxel struct {
	Shape physics.ShapeID
	Box   geom.SBox
	// Tile is kept current so collisions need no grid lookup for unit
	// voxels.
	Tile tile.Tile

	seen bool
}

func (v *Voxel) Key() geom.Vec3i { return v.Box.P0() }

// voxelTable keeps voxels sorted by grid.CoordLess of their origin, the
// order in which grid.Tiles visits regions.
type voxelTable struct {
	entries []*Voxel
	byKey   map[geom.Vec3i]*Voxel
	byShape map[physics.ShapeID]*Voxel
}

func newVoxelTable() voxelTable {
	return voxelTable{byKey: map[geom.Vec3i]*Voxel{}, byShape: map[physics.ShapeID]*Voxel{}}
}

func (t *voxelTable) Len() int { return len(t.entries) }

// search returns the index of the first entry not before key.
func (t *voxelTable) search(key geom.Vec3i) int {
	return sort.Search(len(t.entries), func(i int) bool {
		return !grid.CoordLess(t.entries[i].Key(), key)
	})
}

func (t *voxelTable) insertAt(i int, v *Voxel) {
	k := v.Key()
	if _, dup := t.byKey[k]; dup {
		panic(fmt.Sprintf("sea: voxel %v inserted twice", k))
	}
	t.entries = slices.Insert(t.entries, i, v)
	t.byKey[k] = v
	t.byShape[v.Shape] = v
}

func (t *voxelTable) reshape(v *Voxel, sh physics.ShapeID) {
	delete(t.byShape, v.Shape)
	v.Shape = sh
	t.byShape[sh] = v
}

// remove deletes the voxel at key and returns it, or nil.
func (t *voxelTable) remove(key geom.Vec3i) *Voxel {
	v, ok := t.byKey[key]
	if !ok {
		return nil
	}
	i := t.search(key)
	t.entries = slices.Delete(t.entries, i, i+1)
	delete(t.byKey, key)
	delete(t.byShape, v.Shape)
	return v
}

// sweep deletes every voxel not seen since the last sweep, calling drop for
// each, and clears the seen marks.
func (t *voxelTable) sweep(drop func(*Voxel)) int {
	n := 0
	t.entries = slices.DeleteFunc(t.entries, func(v *Voxel) bool {
		if v.seen {
			v.seen = false
			return false
		}
		delete(t.byKey, v.Key())
		delete(t.byShape, v.Shape)
		drop(v)
		n++
		return true
	})
	return n
}
