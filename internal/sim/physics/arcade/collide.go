package arcade

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"voxelsea.ai/internal/sim/geom"
	"voxelsea.ai/internal/sim/physics"
)

// volume is the collision proxy of a shape: a ball for spheres and capsules,
// an axis-aligned box for everything else. min and max are set for both.
type volume struct {
	round    bool
	center   mgl64.Vec3
	radius   float64
	min, max mgl64.Vec3
}

func (w *World) volume(s *shape) volume {
	pose := w.pose(s)
	switch s.kind {
	case physics.ShapeSphere, physics.ShapeCapsule:
		r := s.radius + s.length/2
		c := pose.P
		e := mgl64.Vec3{r, r, r}
		return volume{round: true, center: c, radius: r, min: c.Sub(e), max: c.Add(e)}
	case physics.ShapeBox:
		return aabb(pose, s.half.Mul(-1), s.half)
	default:
		return aabb(pose, mgl64.Vec3{}, mgl64.Vec3{1, 1, 1})
	}
}

// aabb bounds the box [lo, hi] placed at pose.
func aabb(pose geom.DLoc, lo, hi mgl64.Vec3) volume {
	inf := math.Inf(1)
	v := volume{min: mgl64.Vec3{inf, inf, inf}, max: mgl64.Vec3{-inf, -inf, -inf}}
	for _, o := range geom.AllOcts {
		var p mgl64.Vec3
		for i := 0; i < 3; i++ {
			if o&(1<<i) != 0 {
				p[i] = hi[i]
			} else {
				p[i] = lo[i]
			}
		}
		p = pose.Apply(p)
		for i := 0; i < 3; i++ {
			v.min[i] = math.Min(v.min[i], p[i])
			v.max[i] = math.Max(v.max[i], p[i])
		}
	}
	v.center = v.min.Add(v.max).Mul(.5)
	return v
}

func overlaps(a, b volume) bool {
	for i := 0; i < 3; i++ {
		if a.max[i] <= b.min[i] || b.max[i] <= a.min[i] {
			return false
		}
	}
	return true
}

// contact finds the deepest point of a in b. The normal pushes a out of b.
func contact(a, b volume) (physics.Contact, bool) {
	if !overlaps(a, b) {
		return physics.Contact{}, false
	}
	switch {
	case a.round && b.round:
		return ballBall(a, b)
	case a.round:
		return ballBox(a, b)
	case b.round:
		c, ok := ballBox(b, a)
		c.Normal = c.Normal.Mul(-1)
		return c, ok
	}
	return boxBox(a, b)
}

func ballBall(a, b volume) (physics.Contact, bool) {
	d := a.center.Sub(b.center)
	dist := d.Len()
	if dist >= a.radius+b.radius {
		return physics.Contact{}, false
	}
	n := mgl64.Vec3{0, 1, 0}
	if dist > 1e-9 {
		n = d.Mul(1 / dist)
	}
	return physics.Contact{
		Position: b.center.Add(n.Mul(b.radius)),
		Normal:   n,
		Depth:    a.radius + b.radius - dist,
	}, true
}

func ballBox(a, b volume) (physics.Contact, bool) {
	c := a.center
	var q mgl64.Vec3
	for i := 0; i < 3; i++ {
		q[i] = mgl64.Clamp(c[i], b.min[i], b.max[i])
	}
	d := c.Sub(q)
	dist := d.Len()
	if dist >= a.radius {
		return physics.Contact{}, false
	}
	if dist > 1e-9 {
		return physics.Contact{Position: q, Normal: d.Mul(1 / dist), Depth: a.radius - dist}, true
	}
	// centre inside the box: leave through the nearest face
	best, axis, sign := math.Inf(1), 0, 1.0
	for i := 0; i < 3; i++ {
		if lo := c[i] - b.min[i]; lo < best {
			best, axis, sign = lo, i, -1
		}
		if hi := b.max[i] - c[i]; hi < best {
			best, axis, sign = hi, i, 1
		}
	}
	var n mgl64.Vec3
	n[axis] = sign
	return physics.Contact{Position: c, Normal: n, Depth: a.radius + best}, true
}

func boxBox(a, b volume) (physics.Contact, bool) {
	best, axis := math.Inf(1), 0
	var lo, hi mgl64.Vec3
	for i := 0; i < 3; i++ {
		lo[i] = math.Max(a.min[i], b.min[i])
		hi[i] = math.Min(a.max[i], b.max[i])
		if o := hi[i] - lo[i]; o < best {
			best, axis = o, i
		}
	}
	var n mgl64.Vec3
	n[axis] = 1
	if a.center[axis] < b.center[axis] {
		n[axis] = -1
	}
	return physics.Contact{Position: lo.Add(hi).Mul(.5), Normal: n, Depth: best}, true
}

// collidable skips pairs on the same body and pairs of two static shapes.
func (w *World) collidable(a, b *shape) bool {
	if a.body == 0 && b.body == 0 {
		return false
	}
	return a.body != b.body
}

func (w *World) Collide(a, b physics.SpaceID, fn func(sa, sb physics.ShapeID, c physics.Contact)) {
	as, bs := w.Shapes(a), w.Shapes(b)
	bv := make([]volume, len(bs))
	for i, id := range bs {
		bv[i] = w.volume(w.shapes[id])
	}
	for _, ia := range as {
		sa := w.shapes[ia]
		va := w.volume(sa)
		for i, ib := range bs {
			if !w.collidable(sa, w.shapes[ib]) {
				continue
			}
			if c, ok := contact(va, bv[i]); ok {
				fn(ia, ib, c)
			}
		}
	}
}

func (w *World) CollideWithin(sp physics.SpaceID, fn func(sa, sb physics.ShapeID, c physics.Contact)) {
	ids := w.Shapes(sp)
	vs := make([]volume, len(ids))
	for i, id := range ids {
		vs[i] = w.volume(w.shapes[id])
	}
	for i := range ids {
		for j := i + 1; j < len(ids); j++ {
			if !w.collidable(w.shapes[ids[i]], w.shapes[ids[j]]) {
				continue
			}
			if c, ok := contact(vs[i], vs[j]); ok {
				fn(ids[i], ids[j], c)
			}
		}
	}
}

func (w *World) RayCast(sp physics.SpaceID, from, dir mgl64.Vec3, length float64) (float64, bool) {
	if l := dir.Len(); l > 0 {
		dir = dir.Mul(1 / l)
	}
	best, hit := length, false
	for _, id := range w.spaces[sp] {
		v := w.volume(w.shapes[id])
		var t float64
		var ok bool
		if v.round {
			t, ok = raySphere(from, dir, v.center, v.radius)
		} else {
			t, ok = rayBox(from, dir, v.min, v.max)
		}
		if ok && t <= best {
			best, hit = t, true
		}
	}
	return best, hit
}

func raySphere(o, d, c mgl64.Vec3, r float64) (float64, bool) {
	m := o.Sub(c)
	b := m.Dot(d)
	k := m.Dot(m) - r*r
	if k > 0 && b > 0 {
		return 0, false
	}
	disc := b*b - k
	if disc < 0 {
		return 0, false
	}
	return math.Max(0, -b-math.Sqrt(disc)), true
}

func rayBox(o, d, lo, hi mgl64.Vec3) (float64, bool) {
	tmin, tmax := 0.0, math.Inf(1)
	for i := 0; i < 3; i++ {
		if math.Abs(d[i]) < 1e-12 {
			if o[i] < lo[i] || o[i] > hi[i] {
				return 0, false
			}
			continue
		}
		t1 := (lo[i] - o[i]) / d[i]
		t2 := (hi[i] - o[i]) / d[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}
