package tile

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"voxelsea.ai/internal/sim/geom"
)

// Shape meshes. Ramps have six corners set and are symmetric along one
// principal axis; corner1 is a filled corner tetrahedron; corner2 is a cube
// with one corner tetrahedron cut out.
const (
	MeshCube = iota
	MeshRamp
	MeshCorner1
	MeshCorner2

	NumShapes = 29
)

const (
	rampCorners    geom.Corners = 0x3f // corners 6 and 7 unset: edge along x
	corner1Corners geom.Corners = 0x17 // corner 0 and its neighbours
	corner2Corners geom.Corners = 0x7f // all but corner 7
)

type shapeTable struct {
	cornersToShape [256]int8
	mesh           [NumShapes]int
	quat           [NumShapes]mgl64.Quat
}

var shapes = newShapeTable()

func newShapeTable() *shapeTable {
	st := &shapeTable{}
	for i := range st.cornersToShape {
		st.cornersToShape[i] = -1
	}

	s := 0
	emit := func(mesh int, model geom.Corners, r geom.Rot) {
		c := r.ApplyCorners(model)
		if st.cornersToShape[c] >= 0 {
			panic(fmt.Sprintf("tile: corner mask %08b emitted twice", c))
		}
		st.cornersToShape[c] = int8(s)
		st.mesh[s] = mesh
		st.quat[s] = r.Quat()
		s++
	}

	emit(MeshCube, geom.AllCorners, geom.Identity)
	for xyz := 0; xyz < 3; xyz++ {
		for x := 0; x < 4; x++ {
			emit(MeshRamp, rampCorners, geom.RotateXYZ(xyz).Mul(geom.RotateX(x)))
		}
	}
	for _, o := range geom.AllOcts {
		emit(MeshCorner1, corner1Corners, geom.Face(o))
	}
	for _, o := range geom.AllOcts {
		emit(MeshCorner2, corner2Corners, geom.Face(o))
	}

	if s != NumShapes {
		panic(fmt.Sprintf("tile: shape table has %d entries", s))
	}
	return st
}

func (t Tile) shapeIndex() int {
	s := t.Shape()
	if s >= NumShapes {
		panic(fmt.Sprintf("tile: shape %d not in catalogue", s))
	}
	return s
}

// ShapeMesh returns the mesh id of the tile's shape.
func (t Tile) ShapeMesh() int { return shapes.mesh[t.shapeIndex()] }

// ShapeQuat returns the orientation of the shape's mesh.
func (t Tile) ShapeQuat() mgl64.Quat { return shapes.quat[t.shapeIndex()] }

// ShapeLoc places the shape mesh within a unit cell at the origin, rotating
// about the cell centre.
func (t Tile) ShapeLoc() geom.DLoc {
	half := mgl64.Vec3{.5, .5, .5}
	return geom.DLoc{P: half, Q: t.ShapeQuat()}.Mul(geom.DAt(half.Mul(-1)))
}

// WithCorners shapes the tile to cover the given cube corners. Masks outside
// the catalogue give the empty tile.
func (t Tile) WithCorners(c geom.Corners) Tile {
	s := shapes.cornersToShape[c]
	if s < 0 {
		return Empty
	}
	return t.set(shapeShift, shapeBits, int(s))
}

// ShapeCorners returns the corner mask of a shape index.
func ShapeCorners(shape int) (geom.Corners, bool) {
	for c, s := range shapes.cornersToShape {
		if int(s) == shape {
			return geom.Corners(c), true
		}
	}
	return 0, false
}

// Corners returns the cube corners the tile covers.
func (t Tile) Corners() geom.Corners {
	switch {
	case t.Empty():
		return geom.NoCorners
	case !t.Shaped():
		return geom.AllCorners
	}
	c, _ := ShapeCorners(t.shapeIndex())
	return c
}

// Rotate turns the tile's shape by r about the cell centre.
func (t Tile) Rotate(r geom.Rot) Tile {
	if !t.Shaped() {
		return t
	}
	return t.WithCorners(r.ApplyCorners(t.Corners()))
}
