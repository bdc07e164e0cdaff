package gen

import "voxelsea.ai/internal/sim/mathx"

// Heightmap holds one column height per (x, z).
type Heightmap struct {
	W, D int
	h    []int
}

func NewHeightmap(w, d int) Heightmap {
	return Heightmap{W: w, D: d, h: make([]int, w*d)}
}

// Make evaluates fn for every column.
func Make(w, d int, fn func(x, z int) int) Heightmap {
	m := NewHeightmap(w, d)
	for z := 0; z < d; z++ {
		for x := 0; x < w; x++ {
			m.Set(x, z, fn(x, z))
		}
	}
	return m
}

func (m Heightmap) index(x, z int) int {
	// x fastest, then z
	return x + z*m.W
}

func (m Heightmap) At(x, z int) int { return m.h[m.index(x, z)] }

func (m Heightmap) Set(x, z, v int) { m.h[m.index(x, z)] = v }

// HillsPeriod is the lattice spacing of RollingHills in cells.
const HillsPeriod = 24

// RollingHills maps hashed value noise into heights in [0, hmax].
func RollingHills(seed int64, w, d, hmax int) Heightmap {
	return Make(w, d, func(x, z int) int {
		n := mathx.ValueNoise2(seed, float64(x), float64(z), HillsPeriod)
		return mathx.ClampInt(int((.5*n+.5)*float64(hmax)), 0, hmax)
	})
}

// TreeAt reports whether a tree is rooted at column (x, z), on average one
// column in n.
func TreeAt(seed int64, x, z, n int) bool {
	return mathx.Dice(seed^0x7472656573, x, z, n)
}

// WithinClearing reports whether (x, z) lies within radius of the origin.
func WithinClearing(x, z, radius int) bool {
	if radius <= 0 {
		return false
	}
	r := int64(radius)
	dx := int64(x)
	dz := int64(z)
	return dx*dx+dz*dz <= r*r
}
