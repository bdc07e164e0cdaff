package geom

import (
	"fmt"
	"iter"

	"github.com/go-gl/mathgl/mgl64"

	"voxelsea.ai/internal/sim/mathx"
)

// Box is an axis-aligned integer box occupying [p, p+d) on every axis. A box
// with any zero size component is empty.
type Box struct {
	p Vec3i
	d Vec3i
}

// Sized returns a box of size d at the origin.
func Sized(d Vec3i) Box {
	if d.CompMin() < 0 {
		panic(fmt.Sprintf("geom: negative box size %v", d))
	}
	return Box{d: d}
}

// BoxAt returns a box of size d at p.
func BoxAt(p, d Vec3i) Box { return Sized(d).Add(p) }

// Ranged returns the box from p0 (inclusive) to p1 (exclusive).
func Ranged(p0, p1 Vec3i) Box { return BoxAt(p0, p1.Sub(p0)) }

// Spanning is like Ranged but accepts any two opposite corners.
func Spanning(p0, p1 Vec3i) Box { return Ranged(p0.Min(p1), p0.Max(p1)) }

func (b Box) P0() Vec3i   { return b.p }
func (b Box) P1() Vec3i   { return b.p.Add(b.d) }
func (b Box) Size() Vec3i { return b.d }

func (b Box) Empty() bool { return b.d.X == 0 || b.d.Y == 0 || b.d.Z == 0 }

// Volume is the number of unit cells in b.
func (b Box) Volume() int { return b.d.X * b.d.Y * b.d.Z }

func (b Box) Add(v Vec3i) Box { return Box{p: b.p.Add(v), d: b.d} }
func (b Box) Sub(v Vec3i) Box { return Box{p: b.p.Sub(v), d: b.d} }

func (b Box) Center() Vec3i { return b.p.Add(b.d.Div(Splat(2))) }

func (b Box) CenterF() mgl64.Vec3 { return b.p.Float().Add(b.d.Float().Mul(.5)) }

func (b Box) Intersects(o Box) bool {
	p1, q1 := b.P1(), o.P1()
	return p1.X > o.p.X && b.p.X < q1.X &&
		p1.Y > o.p.Y && b.p.Y < q1.Y &&
		p1.Z > o.p.Z && b.p.Z < q1.Z
}

func (b Box) Contains(o Box) bool {
	p1, q1 := b.P1(), o.P1()
	return b.p.X <= o.p.X && p1.X >= q1.X &&
		b.p.Y <= o.p.Y && p1.Y >= q1.Y &&
		b.p.Z <= o.p.Z && p1.Z >= q1.Z
}

// ContainsPoint reports whether the unit cell at v lies inside b.
func (b Box) ContainsPoint(v Vec3i) bool {
	p1 := b.P1()
	return v.X >= b.p.X && v.X < p1.X &&
		v.Y >= b.p.Y && v.Y < p1.Y &&
		v.Z >= b.p.Z && v.Z < p1.Z
}

// Intersection clamps to an empty box when b and o are disjoint.
func (b Box) Intersection(o Box) Box {
	v0 := b.p.Max(o.p)
	v1 := b.P1().Min(o.P1())
	return Ranged(v0, v0.Max(v1))
}

// Combination is the smallest box containing both b and o.
func (b Box) Combination(o Box) Box {
	return Ranged(b.p.Min(o.p), b.P1().Max(o.P1()))
}

// Trim shrinks the low edges by t0 and the high edges by t1. Over-trimmed
// axes collapse to zero size.
func (b Box) Trim(t0, t1 Vec3i) Box {
	p0 := b.p.Add(t0)
	p1 := b.P1().Sub(t1)
	return Ranged(p0, p0.Max(p1))
}

// Rotate maps b through r about the origin.
func (b Box) Rotate(r Rot) Box { return Spanning(r.Apply(b.p), r.Apply(b.P1())) }

// Transform maps b through l.
func (b Box) Transform(l Loc) Box { return Spanning(l.Apply(b.p), l.Apply(b.P1())) }

// SBox converts a cubic box. It panics on a non-cubic box.
func (b Box) SBox() SBox {
	if b.d.X != b.d.Y || b.d.Y != b.d.Z {
		panic(fmt.Sprintf("geom: box %v is not cubic", b))
	}
	return SBoxAt(b.p, b.d.X)
}

// Cells yields every unit cell in b, x fastest, then y, then z. An empty box
// yields nothing.
func (b Box) Cells() iter.Seq[Vec3i] {
	return func(yield func(Vec3i) bool) {
		if b.Empty() {
			return
		}
		p1 := b.P1()
		for z := b.p.Z; z < p1.Z; z++ {
			for y := b.p.Y; y < p1.Y; y++ {
				for x := b.p.X; x < p1.X; x++ {
					if !yield(Vec3i{x, y, z}) {
						return
					}
				}
			}
		}
	}
}

// Boxes partitions b into sub-boxes of step's size, aligned so that one
// sub-box boundary falls on step's origin on each axis. Sub-boxes at the
// edges are clipped to b.
func (b Box) Boxes(step Box) iter.Seq[Box] {
	s := step.d
	if s.CompMin() <= 0 {
		panic(fmt.Sprintf("geom: sub-box step %v must be positive", s))
	}
	// base is in (-(s-1), 0] on each axis, relative to b.p
	off := step.p.Sub(b.p).Add(s).AddScalar(-1)
	base := Vec3i{
		mathx.Mod(off.X, s.X) - (s.X - 1),
		mathx.Mod(off.Y, s.Y) - (s.Y - 1),
		mathx.Mod(off.Z, s.Z) - (s.Z - 1),
	}
	return func(yield func(Box) bool) {
		if b.Empty() {
			return
		}
		local := Sized(b.d)
		for z := base.Z; z < b.d.Z; z += s.Z {
			for y := base.Y; y < b.d.Y; y += s.Y {
				for x := base.X; x < b.d.X; x += s.X {
					sub := local.Intersection(BoxAt(Vec3i{x, y, z}, s))
					if !yield(sub.Add(b.p)) {
						return
					}
				}
			}
		}
	}
}

// BoxesY yields the vertical unit columns of b.
func (b Box) BoxesY() iter.Seq[Box] {
	h := b.d.Y
	if h == 0 {
		h = 1
	}
	return b.Boxes(BoxAt(b.p, Vec3i{1, h, 1}))
}

func (b Box) String() string {
	p1 := b.P1()
	return fmt.Sprintf("Box{%d:%d, %d:%d, %d:%d}", b.p.X, p1.X, b.p.Y, p1.Y, b.p.Z, p1.Z)
}
