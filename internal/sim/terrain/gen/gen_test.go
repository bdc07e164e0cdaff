package gen

import "testing"

func TestRollingHills_BoundedAndDeterministic(t *testing.T) {
	a := RollingHills(7, 40, 30, 12)
	b := RollingHills(7, 40, 30, 12)
	varied := false
	for z := 0; z < 30; z++ {
		for x := 0; x < 40; x++ {
			h := a.At(x, z)
			if h < 0 || h > 12 {
				t.Fatalf("height(%d,%d)=%d out of [0,12]", x, z, h)
			}
			if h != b.At(x, z) {
				t.Fatalf("height(%d,%d) differs between runs", x, z)
			}
			if h != a.At(0, 0) {
				varied = true
			}
		}
	}
	if !varied {
		t.Fatalf("heightmap is flat")
	}
}

func TestWithinClearing(t *testing.T) {
	cases := []struct {
		x, z, r int
		want    bool
	}{
		{x: 0, z: 0, r: 0, want: false},
		{x: 3, z: 4, r: 5, want: true},
		{x: 4, z: 4, r: 5, want: false},
		{x: -5, z: 0, r: 5, want: true},
	}
	for _, c := range cases {
		if got := WithinClearing(c.x, c.z, c.r); got != c.want {
			t.Fatalf("WithinClearing(%d,%d,%d)=%v want %v", c.x, c.z, c.r, got, c.want)
		}
	}
}
