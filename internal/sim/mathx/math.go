package mathx

import "math"

func FloorDiv(a, b int) int {
	// b > 0
	q := a / b
	r := a % b
	if r < 0 {
		q--
	}
	return q
}

func Mod(a, b int) int {
	// b > 0
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func AbsInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func Hash2(seed int64, x, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uz := uint64(uint32(int32(z)))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uz * 0xbf58476d1ce4e5b9)
	return mix64(v)
}

func Hash3(seed int64, x, y, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uy := uint64(uint32(int32(y)))
	uz := uint64(uint32(int32(z)))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uy * 0xc2b2ae3d27d4eb4f) ^ (uz * 0xbf58476d1ce4e5b9)
	return mix64(v)
}

// Dice reports whether a hashed roll at (x, z) lands on 0 out of n.
func Dice(seed int64, x, z, n int) bool {
	if n <= 1 {
		return true
	}
	return Hash2(seed, x, z)%uint64(n) == 0
}

// unit maps a hash to [-1, 1].
func unit(h uint64) float64 {
	return float64(h>>11)/float64(1<<53)*2 - 1
}

func smooth(t float64) float64 {
	return t * t * (3 - 2*t)
}

// ValueNoise2 is smoothly interpolated lattice noise in [-1, 1]. period is the
// lattice spacing in cells.
func ValueNoise2(seed int64, x, z float64, period float64) float64 {
	if period <= 0 {
		period = 1
	}
	x /= period
	z /= period
	x0 := math.Floor(x)
	z0 := math.Floor(z)
	tx := smooth(x - x0)
	tz := smooth(z - z0)
	ix, iz := int(x0), int(z0)

	v00 := unit(Hash2(seed, ix, iz))
	v10 := unit(Hash2(seed, ix+1, iz))
	v01 := unit(Hash2(seed, ix, iz+1))
	v11 := unit(Hash2(seed, ix+1, iz+1))

	a := v00 + (v10-v00)*tx
	b := v01 + (v11-v01)*tx
	return a + (b-a)*tz
}
