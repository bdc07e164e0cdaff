package geom

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// SBox is a cubic Box. Octree node extents are SBoxes with power-of-two sizes.
type SBox struct {
	p Vec3i
	d int
}

func Cube(d int) SBox { return SBoxAt(Vec3i{}, d) }

func SBoxAt(p Vec3i, d int) SBox {
	if d < 0 {
		panic(fmt.Sprintf("geom: negative cube size %d", d))
	}
	return SBox{p: p, d: d}
}

func (s SBox) P0() Vec3i { return s.p }
func (s SBox) P1() Vec3i { return s.p.AddScalar(s.d) }
func (s SBox) Size() int { return s.d }

func (s SBox) Box() Box { return Box{p: s.p, d: Splat(s.d)} }

func (s SBox) Intersects(b Box) bool { return s.Box().Intersects(b) }
func (s SBox) Contains(b Box) bool   { return s.Box().Contains(b) }

func (s SBox) Add(v Vec3i) SBox { return SBox{p: s.p.Add(v), d: s.d} }
func (s SBox) Sub(v Vec3i) SBox { return SBox{p: s.p.Sub(v), d: s.d} }

// Leaf returns the half-size sub-cube in octant o.
func (s SBox) Leaf(o Oct) SBox {
	h := s.d / 2
	return SBox{p: s.p.Add(o.Vec().Scale(h)), d: h}
}

func (s SBox) Center() Vec3i { return s.p.AddScalar(s.d / 2) }

func (s SBox) CenterF() mgl64.Vec3 {
	return s.p.Float().Add(mgl64.Vec3{.5, .5, .5}.Mul(float64(s.d)))
}

func (s SBox) String() string {
	return fmt.Sprintf("SBox{%d, %d, %d : %d}", s.p.X, s.p.Y, s.p.Z, s.d)
}
