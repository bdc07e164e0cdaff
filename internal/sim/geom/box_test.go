package geom

import "testing"

func sampleBoxes() []Box {
	return []Box{
		Sized(V(0, 0, 0)),
		Sized(V(3, 4, 1)).Add(V(1, 1, 0)),
		Sized(V(6, 6, 1)).Add(V(-3, -3, 0)),
		Sized(V(3, 1, 1)).Add(V(-5, 0, 0)),
		Sized(V(5, 1, 2)).Add(V(-4, 2, -1)),
		Sized(V(2, 2, 2)),
		Sized(V(4, 0, 4)).Add(V(1, 1, 1)),
	}
}

func TestBox_IntersectionContainsIffBoth(t *testing.T) {
	boxes := sampleBoxes()
	box := Ranged(V(-7, -5, -3), V(8, 7, 3))
	for _, a := range boxes {
		for _, b := range boxes {
			ab := a.Intersection(b)
			for p := range box.Cells() {
				got := ab.ContainsPoint(p)
				want := a.ContainsPoint(p) && b.ContainsPoint(p)
				if got != want {
					t.Fatalf("%v ∩ %v contains %v = %v want %v", a, b, p, got, want)
				}
			}
		}
	}
}

func TestBox_CombinationIsSmallestEnclosing(t *testing.T) {
	boxes := sampleBoxes()
	for _, a := range boxes {
		for _, b := range boxes {
			c := a.Combination(b)
			if !c.Contains(a) || !c.Contains(b) {
				t.Fatalf("%v | %v = %v does not contain both", a, b, c)
			}
			if c.P0() != a.P0().Min(b.P0()) || c.P1() != a.P1().Max(b.P1()) {
				t.Fatalf("%v | %v = %v is not tight", a, b, c)
			}
		}
	}
}

func TestBox_IntersectsHalfOpen(t *testing.T) {
	a := Sized(V(2, 2, 2))
	touching := Sized(V(2, 2, 2)).Add(V(2, 0, 0))
	if a.Intersects(touching) {
		t.Fatalf("%v should not intersect %v", a, touching)
	}
	overlapping := touching.Sub(V(1, 0, 0))
	if !a.Intersects(overlapping) {
		t.Fatalf("%v should intersect %v", a, overlapping)
	}
	if a.Intersects(Sized(V(0, 1, 1))) {
		t.Fatalf("empty box should not intersect")
	}
}

func TestBox_CellsCountDistinctContained(t *testing.T) {
	cases := []Box{
		BoxAt(V(1, 2, 3), V(2, 3, 4)),
		BoxAt(V(-2, 0, 5), V(1, 1, 1)),
		BoxAt(V(0, 0, 0), V(5, 0, 3)),
		BoxAt(V(4, 4, 4), V(0, 0, 0)),
	}
	for _, b := range cases {
		seen := map[Vec3i]bool{}
		for p := range b.Cells() {
			if !b.ContainsPoint(p) {
				t.Fatalf("%v yielded %v outside", b, p)
			}
			if seen[p] {
				t.Fatalf("%v yielded %v twice", b, p)
			}
			seen[p] = true
		}
		if len(seen) != b.Volume() {
			t.Fatalf("%v yielded %d cells want %d", b, len(seen), b.Volume())
		}
	}
}

func TestBox_CellsRestartable(t *testing.T) {
	seq := BoxAt(V(1, 1, 1), V(2, 2, 2)).Cells()
	n1, n2 := 0, 0
	for range seq {
		n1++
	}
	for range seq {
		n2++
	}
	if n1 != 8 || n2 != 8 {
		t.Fatalf("counts=%d,%d want 8,8", n1, n2)
	}
}

func TestBox_BoxesPartitionAligned(t *testing.T) {
	b := BoxAt(V(1, 2, 3), V(4, 5, 6))
	step := Sized(V(3, 3, 3))
	covered := map[Vec3i]int{}
	for sub := range b.Boxes(step) {
		if sub.Empty() {
			t.Fatalf("empty sub-box %v", sub)
		}
		if !b.Contains(sub) {
			t.Fatalf("sub-box %v escapes %v", sub, b)
		}
		// every sub-box lies within one aligned step cell
		p0 := sub.P0()
		cell := V(p0.X-((p0.X%3)+3)%3, p0.Y-((p0.Y%3)+3)%3, p0.Z-((p0.Z%3)+3)%3)
		if !BoxAt(cell, V(3, 3, 3)).Contains(sub) {
			t.Fatalf("sub-box %v not aligned to step", sub)
		}
		for p := range sub.Cells() {
			covered[p]++
		}
	}
	if len(covered) != b.Volume() {
		t.Fatalf("covered %d cells want %d", len(covered), b.Volume())
	}
	for p, n := range covered {
		if n != 1 {
			t.Fatalf("cell %v covered %d times", p, n)
		}
	}
}

func TestBox_BoxesFirstBoundaryFollowsReference(t *testing.T) {
	b := Sized(V(10, 1, 1))
	var starts []int
	for sub := range b.Boxes(BoxAt(V(1, 0, 0), V(4, 1, 1))) {
		starts = append(starts, sub.P0().X)
	}
	want := []int{0, 1, 5, 9}
	if len(starts) != len(want) {
		t.Fatalf("starts=%v want %v", starts, want)
	}
	for i := range want {
		if starts[i] != want[i] {
			t.Fatalf("starts=%v want %v", starts, want)
		}
	}
}

func TestBox_BoxesYColumns(t *testing.T) {
	b := BoxAt(V(2, 1, 2), V(3, 4, 2))
	n := 0
	for col := range b.BoxesY() {
		if col.Size() != V(1, 4, 1) {
			t.Fatalf("column %v has wrong size", col)
		}
		n++
	}
	if n != 6 {
		t.Fatalf("columns=%d want 6", n)
	}
}

func TestBox_TrimAndCenter(t *testing.T) {
	b := Sized(V(10, 10, 10))
	tr := b.Trim(V(2, 0, 2), V(2, 0, 2))
	if tr.P0() != V(2, 0, 2) || tr.Size() != V(6, 10, 6) {
		t.Fatalf("trim=%v", tr)
	}
	over := b.Trim(V(6, 0, 0), V(6, 0, 0))
	if !over.Empty() {
		t.Fatalf("over-trim=%v want empty", over)
	}
	if c := BoxAt(V(-2, 0, 0), V(4, 4, 4)).Center(); c != V(0, 2, 2) {
		t.Fatalf("center=%v", c)
	}
}

func TestBox_RotateKeepsPositiveSize(t *testing.T) {
	b := BoxAt(V(1, 2, 3), V(2, 3, 4))
	for n := 0; n < 4; n++ {
		for _, r := range []Rot{RotateX(n), RotateY(n), RotateZ(n), FlipX()} {
			rb := b.Rotate(r)
			if rb.Size().CompMin() <= 0 || rb.Volume() != b.Volume() {
				t.Fatalf("rotate %v -> %v", b, rb)
			}
			cells := 0
			for p := range b.Cells() {
				// the image of each unit cell is a unit cell inside rb
				img := Sized(Splat(1)).Add(p).Rotate(r)
				if !rb.Contains(img) {
					t.Fatalf("cell %v maps to %v outside %v", p, img, rb)
				}
				cells++
			}
			if cells != rb.Volume() {
				t.Fatalf("volume mismatch")
			}
		}
	}
}

func TestSBox_LeafAndCenter(t *testing.T) {
	s := SBoxAt(V(4, 8, 0), 4)
	if c := s.Center(); c != V(6, 10, 2) {
		t.Fatalf("center=%v", c)
	}
	l := s.Leaf(OctOf(true, false, true))
	if l.P0() != V(6, 8, 2) || l.Size() != 2 {
		t.Fatalf("leaf=%v", l)
	}
	for _, o := range AllOcts {
		if OctGE(s.Leaf(o).P0(), s.Center()) != o {
			t.Fatalf("leaf %d not selected by OctGE", o)
		}
	}
}

func TestBox_SBoxPanicsOnNonCube(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	_ = Sized(V(1, 2, 1)).SBox()
}
