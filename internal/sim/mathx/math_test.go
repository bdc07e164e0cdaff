package mathx

import "testing"

func TestFloorDivMod(t *testing.T) {
	cases := []struct {
		a, b, q, m int
	}{
		{a: 7, b: 3, q: 2, m: 1},
		{a: -7, b: 3, q: -3, m: 2},
		{a: -3, b: 3, q: -1, m: 0},
		{a: 0, b: 4, q: 0, m: 0},
	}
	for _, c := range cases {
		if got := FloorDiv(c.a, c.b); got != c.q {
			t.Fatalf("FloorDiv(%d,%d)=%d want %d", c.a, c.b, got, c.q)
		}
		if got := Mod(c.a, c.b); got != c.m {
			t.Fatalf("Mod(%d,%d)=%d want %d", c.a, c.b, got, c.m)
		}
	}
}

func TestValueNoise2_RangeAndDeterminism(t *testing.T) {
	for x := 0; x < 64; x++ {
		for z := 0; z < 64; z++ {
			v := ValueNoise2(42, float64(x), float64(z), 10)
			if v < -1 || v > 1 {
				t.Fatalf("noise(%d,%d)=%v out of range", x, z, v)
			}
			if w := ValueNoise2(42, float64(x), float64(z), 10); w != v {
				t.Fatalf("noise not deterministic at (%d,%d)", x, z)
			}
		}
	}
}

func TestValueNoise2_MatchesLatticeAtIntegerPoints(t *testing.T) {
	got := ValueNoise2(7, 20, 30, 10)
	want := unit(Hash2(7, 2, 3))
	if got != want {
		t.Fatalf("lattice value=%v want %v", got, want)
	}
}
