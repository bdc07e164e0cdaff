package grid

import (
	"fmt"
	"math/bits"

	"voxelsea.ai/internal/sim/geom"
)

// CoordLess orders non-negative grid points the way Tiles visits regions:
// the octant codes at the most significant differing bit decide.
func CoordLess(a, b geom.Vec3i) bool {
	if a.CompMin() < 0 || b.CompMin() < 0 {
		panic(fmt.Sprintf("grid: CoordLess on negative point %v, %v", a, b))
	}
	diff := uint(a.X^b.X) | uint(a.Y^b.Y) | uint(a.Z^b.Z)
	if diff == 0 {
		return false
	}
	bit := uint(bits.Len(diff) - 1)
	return octAt(a, bit) < octAt(b, bit)
}

func octAt(p geom.Vec3i, bit uint) int {
	return int(uint(p.X)>>bit&1) | int(uint(p.Y)>>bit&1)<<1 | int(uint(p.Z)>>bit&1)<<2
}
