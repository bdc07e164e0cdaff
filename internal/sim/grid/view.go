package grid

import (
	"iter"

	"voxelsea.ai/internal/sim/geom"
	"voxelsea.ai/internal/sim/tile"
)

// View is a window onto a Grid: a model-space box and the rigid transform
// taking model coordinates to grid coordinates. Painters work in model space
// and never see where the view sits in the grid.
type View struct {
	g     *Grid
	model geom.Box
	loc   geom.Loc
}

// NewView places a model box of b's size with its origin at b's origin.
func NewView(g *Grid, b geom.Box) View {
	return View{g: g, model: geom.Sized(b.Size()), loc: geom.Translation(b.P0())}
}

// Whole views the entire grid.
func Whole(g *Grid) View { return NewView(g, g.Bounds()) }

func (v View) Grid() *Grid        { return v.g }
func (v View) ModelBox() geom.Box { return v.model }
func (v View) Loc() geom.Loc      { return v.loc }
func (v View) GridBox() geom.Box  { return v.model.Transform(v.loc) }
func (v View) Size() geom.Vec3i   { return v.model.Size() }

// Translate moves the model origin to model point p. The window stays put.
func (v View) Translate(p geom.Vec3i) View {
	return View{g: v.g, model: v.model.Sub(p), loc: v.loc.Mul(geom.Translation(p))}
}

// Base moves the model origin to the low corner of the model box.
func (v View) Base() View { return v.Translate(v.model.P0()) }

// Center moves the model origin to the centre of the model box.
func (v View) Center() View { return v.Translate(v.model.Center()) }

// Rotate turns model space by r. The window stays put.
func (v View) Rotate(r geom.Rot) View {
	return View{g: v.g, model: v.model.Rotate(r), loc: v.loc.Mul(geom.Rotation(r.Inverse()))}
}

// Clip narrows the model box to its intersection with b.
func (v View) Clip(b geom.Box) View {
	v.model = v.model.Intersection(b)
	return v
}

// ClipUp keeps the part of the window at or above model y = 0.
func (v View) ClipUp() View {
	p0, p1 := v.model.P0(), v.model.P1()
	return v.Clip(geom.Ranged(geom.V(p0.X, max(p0.Y, 0), p0.Z), p1.Max(geom.V(p0.X, 0, p0.Z))))
}

// At is the unit view at model point p.
func (v View) At(p geom.Vec3i) View {
	return v.Clip(geom.BoxAt(p, geom.Splat(1))).Base()
}

// Fill paints the whole window. Shaped tiles are turned with the view.
func (v View) Fill(t tile.Tile) {
	if v.model.Empty() {
		return
	}
	v.g.Fill(v.GridBox(), t.Rotate(v.loc.R))
}

func (v View) Cut() { v.Fill(tile.Empty) }

// Tile returns the tile at model point p.
func (v View) Tile(p geom.Vec3i) tile.Tile {
	if !v.model.ContainsPoint(p) {
		return tile.Empty
	}
	cell := geom.BoxAt(p, geom.Splat(1)).Transform(v.loc)
	return v.g.At(cell.P0()).Rotate(v.loc.R.Inverse())
}

// Tiles yields the non-empty regions under the window in model coordinates,
// clipped to the model box.
func (v View) Tiles() iter.Seq2[geom.Box, tile.Tile] {
	inv := v.loc.Inverse()
	gb := v.GridBox()
	return func(yield func(geom.Box, tile.Tile) bool) {
		for s, t := range v.g.Tiles(gb) {
			m := s.Box().Intersection(gb).Transform(inv)
			if !yield(m, t.Rotate(inv.R)) {
				return
			}
		}
	}
}

func (v View) EachTile(fn func(geom.Box, tile.Tile)) {
	for b, t := range v.Tiles() {
		fn(b, t)
	}
}

// Location maps a model-space float location into grid space.
func (v View) Location(d geom.DLoc) geom.DLoc { return v.loc.DLoc().Mul(d) }
