// Package arcade is a small rigid body engine behind physics.World: spheres,
// capsules (as spheres) and axis-aligned bounds of boxes and meshes, explicit
// Euler integration and impulse-based contact response. It is deterministic
// and good enough for the headless runner and tests.
package arcade

import (
	"fmt"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"voxelsea.ai/internal/sim/geom"
	"voxelsea.ai/internal/sim/physics"
)

const (
	// penetration left uncorrected to avoid jitter
	slop = 0.005
	// fraction of the remaining penetration removed per step
	correction = 0.8
)

type body struct {
	loc           geom.DLoc
	vel, ang      mgl64.Vec3
	force, torque mgl64.Vec3
	mass          float64
	kinematic     bool
}

type shape struct {
	space  physics.SpaceID
	kind   physics.ShapeKind
	half   mgl64.Vec3
	radius float64
	length float64
	mesh   int
	loc    geom.DLoc
	body   physics.BodyID
}

type joint struct {
	c    physics.Contact
	p    physics.ContactParams
	a, b physics.BodyID
}

// World is an arcade physics world. Not safe for concurrent use.
type World struct {
	gravity mgl64.Vec3
	bodies  map[physics.BodyID]*body
	shapes  map[physics.ShapeID]*shape
	spaces  map[physics.SpaceID][]physics.ShapeID
	joints  []joint

	nextBody  physics.BodyID
	nextShape physics.ShapeID
	nextSpace physics.SpaceID
}

var _ physics.World = (*World)(nil)

func New() *World {
	return &World{
		bodies: map[physics.BodyID]*body{},
		shapes: map[physics.ShapeID]*shape{},
		spaces: map[physics.SpaceID][]physics.ShapeID{},
	}
}

func (w *World) SetGravity(g mgl64.Vec3) { w.gravity = g }

func (w *World) mustBody(b physics.BodyID) *body {
	bd, ok := w.bodies[b]
	if !ok {
		panic(fmt.Sprintf("arcade: unknown body %d", b))
	}
	return bd
}

func (w *World) mustShape(sh physics.ShapeID) *shape {
	s, ok := w.shapes[sh]
	if !ok {
		panic(fmt.Sprintf("arcade: unknown shape %d", sh))
	}
	return s
}

func (w *World) NewBody() physics.BodyID {
	w.nextBody++
	w.bodies[w.nextBody] = &body{loc: geom.DIdent(), mass: 1}
	return w.nextBody
}

func (w *World) DestroyBody(b physics.BodyID) {
	w.mustBody(b)
	var owned []physics.ShapeID
	for id, s := range w.shapes {
		if s.body == b {
			owned = append(owned, id)
		}
	}
	for _, id := range owned {
		w.DestroyShape(id)
	}
	delete(w.bodies, b)
}

func (w *World) SetKinematic(b physics.BodyID) { w.mustBody(b).kinematic = true }

func (w *World) SetMass(b physics.BodyID, total float64) {
	if total <= 0 {
		panic(fmt.Sprintf("arcade: mass %v must be positive", total))
	}
	w.mustBody(b).mass = total
}

func (w *World) BodyLocation(b physics.BodyID) geom.DLoc { return w.mustBody(b).loc }

func (w *World) SetBodyLocation(b physics.BodyID, l geom.DLoc) { w.mustBody(b).loc = l }

func (w *World) LinearVelocity(b physics.BodyID) mgl64.Vec3 { return w.mustBody(b).vel }

func (w *World) SetLinearVelocity(b physics.BodyID, v mgl64.Vec3) { w.mustBody(b).vel = v }

func (w *World) AngularVelocity(b physics.BodyID) mgl64.Vec3 { return w.mustBody(b).ang }

func (w *World) SetAngularVelocity(b physics.BodyID, v mgl64.Vec3) { w.mustBody(b).ang = v }

func (w *World) AddForce(b physics.BodyID, f mgl64.Vec3) {
	bd := w.mustBody(b)
	bd.force = bd.force.Add(f)
}

func (w *World) AddTorque(b physics.BodyID, t mgl64.Vec3) {
	bd := w.mustBody(b)
	bd.torque = bd.torque.Add(t)
}

func (w *World) NewSpace() physics.SpaceID {
	w.nextSpace++
	w.spaces[w.nextSpace] = nil
	return w.nextSpace
}

func (w *World) addShape(s *shape) physics.ShapeID {
	if _, ok := w.spaces[s.space]; !ok {
		panic(fmt.Sprintf("arcade: unknown space %d", s.space))
	}
	w.nextShape++
	w.shapes[w.nextShape] = s
	w.spaces[s.space] = append(w.spaces[s.space], w.nextShape)
	return w.nextShape
}

func (w *World) NewBox(sp physics.SpaceID, size mgl64.Vec3, loc geom.DLoc) physics.ShapeID {
	return w.addShape(&shape{space: sp, kind: physics.ShapeBox, half: size.Mul(.5), loc: loc})
}

func (w *World) NewSphere(sp physics.SpaceID, radius float64) physics.ShapeID {
	return w.addShape(&shape{space: sp, kind: physics.ShapeSphere, radius: radius, loc: geom.DIdent()})
}

func (w *World) NewCapsule(sp physics.SpaceID, radius, length float64) physics.ShapeID {
	return w.addShape(&shape{space: sp, kind: physics.ShapeCapsule, radius: radius, length: length, loc: geom.DIdent()})
}

func (w *World) NewTriMesh(sp physics.SpaceID, mesh int, loc geom.DLoc) physics.ShapeID {
	return w.addShape(&shape{space: sp, kind: physics.ShapeTriMesh, mesh: mesh, loc: loc})
}

func (w *World) Attach(sh physics.ShapeID, b physics.BodyID) {
	w.mustBody(b)
	w.mustShape(sh).body = b
}

func (w *World) ShapeBody(sh physics.ShapeID) (physics.BodyID, bool) {
	b := w.mustShape(sh).body
	return b, b != 0
}

func (w *World) ShapeKind(sh physics.ShapeID) physics.ShapeKind { return w.mustShape(sh).kind }

func (w *World) DestroyShape(sh physics.ShapeID) {
	s := w.mustShape(sh)
	ids := w.spaces[s.space]
	if i := slices.Index(ids, sh); i >= 0 {
		w.spaces[s.space] = slices.Delete(ids, i, i+1)
	}
	delete(w.shapes, sh)
}

// Shapes lists the shapes of a space in creation order.
func (w *World) Shapes(sp physics.SpaceID) []physics.ShapeID {
	return slices.Clone(w.spaces[sp])
}

func (w *World) pose(s *shape) geom.DLoc {
	if s.body == 0 {
		return s.loc
	}
	return w.bodies[s.body].loc.Mul(s.loc)
}

// Bounds returns the world-space axis-aligned bounds of a shape.
func (w *World) Bounds(sh physics.ShapeID) (lo, hi mgl64.Vec3) {
	v := w.volume(w.mustShape(sh))
	return v.min, v.max
}

func (w *World) AddContact(c physics.Contact, p physics.ContactParams, a, b physics.BodyID) {
	w.joints = append(w.joints, joint{c: c, p: p, a: a, b: b})
}

// Contacts returns the number of pending contact joints.
func (w *World) Contacts() int { return len(w.joints) }

func (w *World) dynamic(b physics.BodyID) *body {
	if b == 0 {
		return nil
	}
	bd, ok := w.bodies[b]
	if !ok || bd.kinematic {
		return nil
	}
	return bd
}

func invMass(b *body) float64 {
	if b == nil {
		return 0
	}
	return 1 / b.mass
}

func (w *World) Step(dt float64) {
	ids := make([]physics.BodyID, 0, len(w.bodies))
	for id := range w.bodies {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		b := w.bodies[id]
		if b.kinematic {
			continue
		}
		acc := w.gravity.Add(b.force.Mul(1 / b.mass))
		b.vel = b.vel.Add(acc.Mul(dt))
		b.ang = b.ang.Add(b.torque.Mul(dt / b.mass))
	}

	for _, j := range w.joints {
		w.resolve(j)
	}

	for _, id := range ids {
		b := w.bodies[id]
		b.loc.P = b.loc.P.Add(b.vel.Mul(dt))
		if b.ang.Len() > 0 {
			spin := mgl64.Quat{V: b.ang}.Mul(b.loc.Q).Scale(dt / 2)
			b.loc.Q = b.loc.Q.Add(spin).Normalize()
		}
		b.force = mgl64.Vec3{}
		b.torque = mgl64.Vec3{}
	}
	w.joints = w.joints[:0]
}

func (w *World) resolve(j joint) {
	a, b := w.dynamic(j.a), w.dynamic(j.b)
	ia, ib := invMass(a), invMass(b)
	inv := ia + ib
	if inv == 0 {
		return
	}
	var va, vb mgl64.Vec3
	if a != nil {
		va = a.vel
	}
	if b != nil {
		vb = b.vel
	}
	n := j.c.Normal
	vr := va.Sub(vb)
	vn := vr.Dot(n)
	if vn < 0 {
		jn := -(1 + j.p.Bounce) * vn / inv
		imp := n.Mul(jn)
		vt := vr.Sub(n.Mul(vn))
		if l := vt.Len(); l > 1e-12 {
			jt := math.Min(j.p.Mu*jn, l/inv)
			imp = imp.Sub(vt.Mul(jt / l))
		}
		if a != nil {
			a.vel = a.vel.Add(imp.Mul(ia))
		}
		if b != nil {
			b.vel = b.vel.Sub(imp.Mul(ib))
		}
	}
	if d := j.c.Depth - slop; d > 0 {
		push := n.Mul(d * correction / inv)
		if a != nil {
			a.loc.P = a.loc.P.Add(push.Mul(ia))
		}
		if b != nil {
			b.loc.P = b.loc.P.Sub(push.Mul(ib))
		}
	}
}
