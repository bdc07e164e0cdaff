package geom

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3i is an integer grid coordinate or extent.
type Vec3i struct{ X, Y, Z int }

func V(x, y, z int) Vec3i { return Vec3i{X: x, Y: y, Z: z} }

// Splat returns a vector with all components set to n.
func Splat(n int) Vec3i { return Vec3i{X: n, Y: n, Z: n} }

func (a Vec3i) Add(b Vec3i) Vec3i { return Vec3i{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3i) Sub(b Vec3i) Vec3i { return Vec3i{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3i) Neg() Vec3i        { return Vec3i{-a.X, -a.Y, -a.Z} }
func (a Vec3i) Scale(n int) Vec3i { return Vec3i{a.X * n, a.Y * n, a.Z * n} }

// Mul multiplies componentwise.
func (a Vec3i) Mul(b Vec3i) Vec3i { return Vec3i{a.X * b.X, a.Y * b.Y, a.Z * b.Z} }

// Div divides componentwise, truncating toward zero.
func (a Vec3i) Div(b Vec3i) Vec3i { return Vec3i{a.X / b.X, a.Y / b.Y, a.Z / b.Z} }

func (a Vec3i) AddScalar(n int) Vec3i { return Vec3i{a.X + n, a.Y + n, a.Z + n} }

func (a Vec3i) Min(b Vec3i) Vec3i {
	return Vec3i{min(a.X, b.X), min(a.Y, b.Y), min(a.Z, b.Z)}
}

func (a Vec3i) Max(b Vec3i) Vec3i {
	return Vec3i{max(a.X, b.X), max(a.Y, b.Y), max(a.Z, b.Z)}
}

// Clamp limits each component to [lo, hi].
func (a Vec3i) Clamp(lo, hi Vec3i) Vec3i { return a.Max(lo).Min(hi) }

func (a Vec3i) CompMin() int { return min(a.X, a.Y, a.Z) }
func (a Vec3i) CompMax() int { return max(a.X, a.Y, a.Z) }

// Dist2 is the squared euclidean distance between a and b.
func (a Vec3i) Dist2(b Vec3i) int {
	d := a.Sub(b)
	return d.X*d.X + d.Y*d.Y + d.Z*d.Z
}

func (a Vec3i) Float() mgl64.Vec3 {
	return mgl64.Vec3{float64(a.X), float64(a.Y), float64(a.Z)}
}

// Floor rounds a float vector down to the containing integer cell.
func Floor(v mgl64.Vec3) Vec3i {
	return Vec3i{int(math.Floor(v[0])), int(math.Floor(v[1])), int(math.Floor(v[2]))}
}

// Ceil rounds a float vector up.
func Ceil(v mgl64.Vec3) Vec3i {
	return Vec3i{int(math.Ceil(v[0])), int(math.Ceil(v[1])), int(math.Ceil(v[2]))}
}

func (a Vec3i) component(i int) int {
	switch i {
	case 0:
		return a.X
	case 1:
		return a.Y
	default:
		return a.Z
	}
}

func (a Vec3i) String() string { return fmt.Sprintf("(%d,%d,%d)", a.X, a.Y, a.Z) }
