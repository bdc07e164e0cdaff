package geom

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Rot is a signed axis permutation: a rotation in 90-degree increments,
// possibly combined with a reflection. Rows act on column vectors.
type Rot [3][3]int

var Identity = Rot{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

var (
	quarterX = Rot{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}}
	quarterY = Rot{{0, 0, 1}, {0, 1, 0}, {-1, 0, 0}}
	quarterZ = Rot{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}}
	cycleXYZ = Rot{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}} // x->y, y->z, z->x
)

// NormalizeQuarterTurns converts a rotation value into a quarter-turn count in
// [0,3]. It accepts either quarter-turns or degrees (multiples of 90).
func NormalizeQuarterTurns(r int) int {
	if r%90 == 0 && (r > 3 || r < -3) {
		r = r / 90
	}
	r %= 4
	if r < 0 {
		r += 4
	}
	return r
}

func (r Rot) pow(n int) Rot {
	out := Identity
	for i := 0; i < n; i++ {
		out = out.Mul(r)
	}
	return out
}

// RotateX turns n quarter-turns counterclockwise about the x axis.
func RotateX(n int) Rot { return quarterX.pow(NormalizeQuarterTurns(n)) }
func RotateY(n int) Rot { return quarterY.pow(NormalizeQuarterTurns(n)) }
func RotateZ(n int) Rot { return quarterZ.pow(NormalizeQuarterTurns(n)) }

// RotateXYZ cycles the axes n times (x to y, y to z, z to x).
func RotateXYZ(n int) Rot {
	n %= 3
	if n < 0 {
		n += 3
	}
	return cycleXYZ.pow(n)
}

func FlipX() Rot { return Rot{{-1, 0, 0}, {0, 1, 0}, {0, 0, 1}} }
func FlipY() Rot { return Rot{{1, 0, 0}, {0, -1, 0}, {0, 0, 1}} }
func FlipZ() Rot { return Rot{{1, 0, 0}, {0, 1, 0}, {0, 0, -1}} }

func (r Rot) Mul(o Rot) Rot {
	var out Rot
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				out[i][j] += r[i][k] * o[k][j]
			}
		}
	}
	return out
}

// Inverse is the transpose, since r is orthogonal.
func (r Rot) Inverse() Rot {
	var out Rot
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = r[j][i]
		}
	}
	return out
}

func (r Rot) Apply(v Vec3i) Vec3i {
	return Vec3i{
		r[0][0]*v.X + r[0][1]*v.Y + r[0][2]*v.Z,
		r[1][0]*v.X + r[1][1]*v.Y + r[1][2]*v.Z,
		r[2][0]*v.X + r[2][1]*v.Y + r[2][2]*v.Z,
	}
}

func (r Rot) Det() int {
	return r[0][0]*(r[1][1]*r[2][2]-r[1][2]*r[2][1]) -
		r[0][1]*(r[1][0]*r[2][2]-r[1][2]*r[2][0]) +
		r[0][2]*(r[1][0]*r[2][1]-r[1][1]*r[2][0])
}

// ApplyOct maps a cube corner through r, rotating about the cube centre.
func (r Rot) ApplyOct(o Oct) Oct {
	v := r.Apply(o.Vec().Scale(2).AddScalar(-1))
	return OctOf(v.X > 0, v.Y > 0, v.Z > 0)
}

// ApplyCorners maps every corner in c through r.
func (r Rot) ApplyCorners(c Corners) Corners {
	var out Corners
	for _, o := range AllOcts {
		if c.Has(o) {
			out = out.With(r.ApplyOct(o))
		}
	}
	return out
}

// Quat converts a proper rotation to a quaternion.
func (r Rot) Quat() mgl64.Quat {
	if r.Det() != 1 {
		panic(fmt.Sprintf("geom: quaternion of improper rotation %v", r))
	}
	m := mgl64.Mat3{
		float64(r[0][0]), float64(r[1][0]), float64(r[2][0]),
		float64(r[0][1]), float64(r[1][1]), float64(r[2][1]),
		float64(r[0][2]), float64(r[1][2]), float64(r[2][2]),
	}
	return mgl64.Mat4ToQuat(m.Mat4()).Normalize()
}

var properRotations = func() []Rot {
	perms := [6][3]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}
	var out []Rot
	for _, p := range perms {
		for signs := 0; signs < 8; signs++ {
			var r Rot
			for row := 0; row < 3; row++ {
				s := 1
				if signs&(1<<row) != 0 {
					s = -1
				}
				r[row][p[row]] = s
			}
			if r.Det() == 1 {
				out = append(out, r)
			}
		}
	}
	return out
}()

// Face returns the proper rotation taking corner 0 to corner o. The choice
// among the three such rotations is fixed.
func Face(o Oct) Rot {
	for _, r := range properRotations {
		if r.ApplyOct(0) == o {
			return r
		}
	}
	panic("geom: no rotation for corner")
}
