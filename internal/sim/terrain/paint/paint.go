// Package paint holds procedural painters. Each works in the model space of
// the View it is given, so a painter draws the same thing wherever and
// however the view sits in the grid.
package paint

import (
	"fmt"

	"voxelsea.ai/internal/sim/geom"
	"voxelsea.ai/internal/sim/grid"
	"voxelsea.ai/internal/sim/terrain/gen"
	"voxelsea.ai/internal/sim/tile"
)

var (
	TrunkColor = geom.V(22, 16, 5)
	CrownColor = geom.V(3, 19, 0)
)

// TreeDice is the mean number of columns per tree.
const TreeDice = 1000

func cubic(v grid.View) (grid.View, int) {
	v = v.Base()
	size := v.Size()
	d := size.CompMin()
	if size != geom.Splat(d) {
		panic(fmt.Sprintf("paint: view %v is not cubic", v.ModelBox()))
	}
	return v, d
}

func dist2XZ(a, b geom.Vec3i) int {
	dx, dz := a.X-b.X, a.Z-b.Z
	return dx*dx + dz*dz
}

// Sphere fills the cells whose centres lie inside the inscribed sphere of a
// cubic view.
func Sphere(v grid.View, t tile.Tile) {
	v, d := cubic(v)
	size := v.Size()
	for u := range v.ModelBox().Cells() {
		// doubled coordinates: centre is size, cell centre is 2u+1
		if size.Dist2(u.Scale(2).AddScalar(1)) < d*d {
			v.At(u).Fill(t)
		}
	}
}

// SphereSmooth shapes each cell to the corners that lie inside a slightly
// enlarged inscribed sphere.
func SphereSmooth(v grid.View, t tile.Tile) {
	v, d := cubic(v)
	size := v.Size()
	d++
	for u := range v.ModelBox().Cells() {
		var c geom.Corners
		for _, o := range geom.AllOcts {
			if size.Dist2(u.Add(o.Vec()).Scale(2)) <= d*d {
				c = c.With(o)
			}
		}
		if s := t.WithCorners(c); !s.Empty() {
			v.At(u).Fill(s)
		}
	}
}

// Cylinder fills a vertical cylinder inscribed in a view with a square
// footprint.
func Cylinder(v grid.View, t tile.Tile) {
	v = v.Base()
	size := v.Size()
	d := min(size.X, size.Z)
	if size.X != size.Z {
		panic(fmt.Sprintf("paint: cylinder footprint %v is not square", size))
	}
	for u := range v.ModelBox().BoxesY() {
		if dist2XZ(size, u.P0().Scale(2).AddScalar(1)) < d*d {
			v.Clip(u).Fill(t)
		}
	}
}

// Tree paints a crown sphere as wide as the view on top of a trunk a fifth
// as wide. The view must be taller than it is wide.
func Tree(v grid.View) {
	b := v.ModelBox()
	size := b.Size()
	if size.X != size.Z || size.X >= size.Y {
		panic(fmt.Sprintf("paint: tree box %v", b))
	}
	v = v.Translate(b.P1().Sub(geom.V(0, size.X, 0)))

	SphereSmooth(v.ClipUp(), tile.New().WithColor(CrownColor))

	trunk := v.Rotate(geom.FlipY()).ClipUp().Base()
	trim := trunk.Size().Mul(geom.V(1, 0, 1)).Scale(2).Div(geom.Splat(5))
	Cylinder(trunk.Clip(trunk.ModelBox().Trim(trim, trim)), tile.New().WithColor(TrunkColor))
}

// Heightmap fills each column up to its height. h covers the view's
// footprint.
func Heightmap(v grid.View, h gen.Heightmap, t tile.Tile) {
	v = v.Base()
	size := v.Size()
	if h.W != size.X || h.D != size.Z {
		panic(fmt.Sprintf("paint: heightmap %dx%d for footprint %v", h.W, h.D, size))
	}
	for u := range v.ModelBox().BoxesY() {
		p := u.P0()
		v.Clip(geom.BoxAt(p, geom.V(1, h.At(p.X, p.Z), 1))).Fill(t)
	}
}

// HeightmapSmooth treats h as corner heights, one larger than the footprint
// on x and z, and shapes the top two cells of each column into ramps and
// corners.
func HeightmapSmooth(v grid.View, h gen.Heightmap, t tile.Tile) {
	v = v.Base()
	size := v.Size()
	if h.W != size.X+1 || h.D != size.Z+1 {
		panic(fmt.Sprintf("paint: heightmap %dx%d for footprint %v", h.W, h.D, size))
	}
	for u := range v.ModelBox().BoxesY() {
		p := u.P0()
		var l [4]int
		for i := range l {
			l[i] = h.At(p.X+i%2, p.Z+i/2)
		}
		m := min(l[0], l[1], l[2], l[3])
		v.Clip(geom.BoxAt(p, geom.V(1, m, 1))).Fill(t)
		for i := 0; i < 2; i++ {
			var f [4]bool
			raised := 0
			for j := range l {
				f[j] = l[j] > m+i
				if f[j] {
					raised++
				}
			}
			var top geom.Corners
			for j := range l {
				// a lone raised corner leaves the opposite low corner out
				if !(raised == 1 && f[j^3]) {
					top = top.With(geom.OctOf(j%2 == 1, false, j/2 == 1))
				}
				if f[j] {
					top = top.With(geom.OctOf(j%2 == 1, true, j/2 == 1))
				}
			}
			if s := t.WithCorners(top); !s.Empty() {
				v.At(p.Add(geom.V(0, m+i, 0))).Fill(s)
			}
		}
	}
}

func RollingHills(v grid.View, seed int64, t tile.Tile) {
	size := v.Size()
	Heightmap(v, gen.RollingHills(seed, size.X, size.Z, size.Y), t)
}

func RollingHillsSmooth(v grid.View, seed int64, t tile.Tile) {
	size := v.Size()
	HeightmapSmooth(v, gen.RollingHills(seed, size.X+1, size.Z+1, size.Y), t)
}

// Trees scatters 5x11x5 trees on top of the highest unshaped tile of
// randomly chosen columns, keeping clear of the view's edges.
func Trees(v grid.View, seed int64) {
	v = v.Base()
	edge := geom.V(2, 0, 2)
	for u := range v.ModelBox().Trim(edge, edge).BoxesY() {
		p := u.P0()
		if !gen.TreeAt(seed, p.X, p.Z, TreeDice) {
			continue
		}
		h := 0
		for b, t := range v.Clip(u).Tiles() {
			if !t.Shaped() {
				h = max(h, b.P1().Y)
			}
		}
		Tree(v.Clip(geom.BoxAt(geom.V(p.X-2, h, p.Z-2), geom.V(5, 11, 5))))
	}
}
