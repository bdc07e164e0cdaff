// Package physics is the boundary to the rigid body engine. The simulation
// only talks to a World through opaque handles, so any engine that can
// produce contacts and integrate bodies can sit behind it.
package physics

import (
	"github.com/go-gl/mathgl/mgl64"

	"voxelsea.ai/internal/sim/geom"
)

// Handles are non-zero; the zero value means none.
type (
	BodyID  uint32
	ShapeID uint32
	SpaceID uint32
)

// Contact is one contact point. Normal points out of the second shape of the
// pair, so moving the first shape along it separates them.
type Contact struct {
	Position mgl64.Vec3
	Normal   mgl64.Vec3
	Depth    float64
}

// ContactParams tunes the response of one contact joint.
type ContactParams struct {
	Mu     float64
	Bounce float64
}

// ShapeKind identifies a collision primitive.
type ShapeKind uint8

const (
	ShapeBox ShapeKind = iota + 1
	ShapeSphere
	ShapeCapsule
	ShapeTriMesh
)

type World interface {
	SetGravity(g mgl64.Vec3)

	NewBody() BodyID
	// DestroyBody also destroys the shapes attached to b.
	DestroyBody(b BodyID)
	// SetKinematic makes b ignore gravity, forces and contacts; it keeps its
	// velocity.
	SetKinematic(b BodyID)
	SetMass(b BodyID, total float64)
	BodyLocation(b BodyID) geom.DLoc
	SetBodyLocation(b BodyID, l geom.DLoc)
	LinearVelocity(b BodyID) mgl64.Vec3
	SetLinearVelocity(b BodyID, v mgl64.Vec3)
	AngularVelocity(b BodyID) mgl64.Vec3
	SetAngularVelocity(b BodyID, w mgl64.Vec3)
	// AddForce and AddTorque accumulate world-frame values until the next
	// Step.
	AddForce(b BodyID, f mgl64.Vec3)
	AddTorque(b BodyID, t mgl64.Vec3)

	NewSpace() SpaceID
	// NewBox creates a box of full extents size. Detached shapes are placed
	// at loc in world space; attached shapes at loc relative to their body.
	NewBox(s SpaceID, size mgl64.Vec3, loc geom.DLoc) ShapeID
	NewSphere(s SpaceID, radius float64) ShapeID
	NewCapsule(s SpaceID, radius, length float64) ShapeID
	// NewTriMesh places mesh (a tile shape mesh id, spanning the unit cube)
	// at loc.
	NewTriMesh(s SpaceID, mesh int, loc geom.DLoc) ShapeID
	Attach(sh ShapeID, b BodyID)
	ShapeBody(sh ShapeID) (BodyID, bool)
	ShapeKind(sh ShapeID) ShapeKind
	DestroyShape(sh ShapeID)

	// Collide runs the narrow phase between every shape of a and every shape
	// of b, calling fn once per contact point. fn must not create or destroy
	// shapes.
	Collide(a, b SpaceID, fn func(sa, sb ShapeID, c Contact))
	// CollideWithin does the same for every pair inside one space.
	CollideWithin(s SpaceID, fn func(sa, sb ShapeID, c Contact))
	// RayCast returns the distance to the nearest shape of s along dir, or
	// false if nothing is hit within length.
	RayCast(s SpaceID, from, dir mgl64.Vec3, length float64) (float64, bool)

	// AddContact joins a and b for the next Step. b may be zero for the
	// static environment.
	AddContact(c Contact, p ContactParams, a, b BodyID)
	// Step integrates dt seconds and then drops all contact joints.
	Step(dt float64)
}
