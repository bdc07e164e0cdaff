package geom

// Oct names one of the eight octants of a cube: bit 0 selects the upper x
// half, bit 1 the upper y half, bit 2 the upper z half.
type Oct uint8

func OctOf(x, y, z bool) Oct {
	var o Oct
	if x {
		o |= 1
	}
	if y {
		o |= 2
	}
	if z {
		o |= 4
	}
	return o
}

// OctGE selects the octant of p relative to origin, upper where p >= origin.
func OctGE(p, origin Vec3i) Oct {
	return OctOf(p.X >= origin.X, p.Y >= origin.Y, p.Z >= origin.Z)
}

func (o Oct) X() bool { return o&1 != 0 }
func (o Oct) Y() bool { return o&2 != 0 }
func (o Oct) Z() bool { return o&4 != 0 }

// Vec returns the octant as a 0/1 corner vector.
func (o Oct) Vec() Vec3i {
	return Vec3i{int(o & 1), int(o >> 1 & 1), int(o >> 2 & 1)}
}

// AllOcts lists octants in traversal order.
var AllOcts = [8]Oct{0, 1, 2, 3, 4, 5, 6, 7}

// Corners is a set of cube corners, one bit per Oct.
type Corners uint8

const (
	NoCorners  Corners = 0
	AllCorners Corners = 0xff
)

func (c Corners) Has(o Oct) bool { return c&(1<<o) != 0 }

func (c Corners) With(o Oct) Corners { return c | 1<<o }

func (c Corners) Without(o Oct) Corners { return c &^ (1 << o) }

func (c Corners) Count() int {
	n := 0
	for ; c != 0; c &= c - 1 {
		n++
	}
	return n
}
