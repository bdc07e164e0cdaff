package paint

import (
	"testing"

	"voxelsea.ai/internal/sim/geom"
	"voxelsea.ai/internal/sim/grid"
	"voxelsea.ai/internal/sim/terrain/gen"
	"voxelsea.ai/internal/sim/tile"
)

func count(v grid.View) (full, shaped int) {
	for b, t := range v.Tiles() {
		if t.Shaped() {
			shaped += b.Volume()
		} else {
			full += b.Volume()
		}
	}
	return
}

func TestSphere(t *testing.T) {
	g := grid.New(16)
	v := grid.NewView(g, geom.BoxAt(geom.V(3, 3, 3), geom.Splat(4)))
	Sphere(v, tile.New())
	// a 4-cube sphere keeps the cells with at most one coordinate on the rim
	if full, _ := count(v); full != 32 {
		t.Fatalf("sphere cells=%d want 32", full)
	}
	if v.Tile(geom.V(0, 0, 0)) != tile.Empty || v.Tile(geom.V(0, 1, 1)) == tile.Empty {
		t.Fatalf("sphere corners wrong")
	}
}

func TestSphereSmooth_ShapesRim(t *testing.T) {
	g := grid.New(16)
	v := grid.NewView(g, geom.BoxAt(geom.V(0, 0, 0), geom.Splat(6)))
	SphereSmooth(v, tile.New())
	full, shaped := count(v)
	if full == 0 || shaped == 0 {
		t.Fatalf("full=%d shaped=%d", full, shaped)
	}
	if v.Tile(geom.V(2, 2, 2)).Shaped() {
		t.Fatalf("interior cell should be a full cube")
	}
}

func TestCylinder(t *testing.T) {
	g := grid.New(16)
	v := grid.NewView(g, geom.BoxAt(geom.V(1, 1, 1), geom.V(4, 3, 4)))
	Cylinder(v, tile.New())
	if full, _ := count(v); full != 12*3 {
		t.Fatalf("cylinder cells=%d want 36", full)
	}
}

func TestHeightmap(t *testing.T) {
	g := grid.New(16)
	v := grid.NewView(g, geom.BoxAt(geom.V(2, 0, 2), geom.V(4, 8, 3)))
	h := gen.Make(4, 3, func(x, z int) int { return x + z })
	Heightmap(v, h, tile.New())
	for u := range v.ModelBox().Cells() {
		want := u.Y < u.X+u.Z
		if got := !v.Tile(u).Empty(); got != want {
			t.Fatalf("cell %v filled=%v want %v", u, got, want)
		}
	}
}

func TestHeightmapSmooth_RampsOnSlope(t *testing.T) {
	g := grid.New(16)
	v := grid.NewView(g, geom.BoxAt(geom.V(0, 0, 0), geom.V(4, 10, 4)))
	h := gen.Make(5, 5, func(x, z int) int { return 2 + x })
	HeightmapSmooth(v, h, tile.New())
	// rising along x: low corners plus the two high corners on the x+ side
	ramp := geom.Corners(0xbb)
	for x := 0; x < 4; x++ {
		for z := 0; z < 4; z++ {
			if got := v.Tile(geom.V(x, 1+x, z)); got.Empty() || got.Shaped() {
				t.Fatalf("cell below slope at (%d,%d)=%v", x, z, got)
			}
			if got := v.Tile(geom.V(x, 2+x, z)); got.Corners() != ramp {
				t.Fatalf("slope cell at (%d,%d) corners=%08b want %08b", x, z, got.Corners(), ramp)
			}
			if got := v.Tile(geom.V(x, 3+x, z)); !got.Empty() {
				t.Fatalf("cell above slope at (%d,%d)=%v", x, z, got)
			}
		}
	}
}

func TestHeightmapSmooth_FlatHasNoShapes(t *testing.T) {
	g := grid.New(8)
	v := grid.Whole(g)
	HeightmapSmooth(v, gen.Make(9, 9, func(int, int) int { return 3 }), tile.New())
	full, shaped := count(v)
	if shaped != 0 || full != 8*8*3 {
		t.Fatalf("full=%d shaped=%d", full, shaped)
	}
}

func TestTree(t *testing.T) {
	g := grid.New(32)
	v := grid.NewView(g, geom.BoxAt(geom.V(10, 0, 10), geom.V(5, 11, 5)))
	Tree(v)
	trunk := tile.New().WithColor(TrunkColor)
	for y := 0; y < 6; y++ {
		if got := v.Tile(geom.V(2, y, 2)); got != trunk {
			t.Fatalf("trunk at y=%d is %v", y, got)
		}
		if got := v.Tile(geom.V(0, y, 0)); !got.Empty() {
			t.Fatalf("beside trunk at y=%d is %v", y, got)
		}
	}
	if got := v.Tile(geom.V(2, 8, 2)); got.Color() != CrownColor {
		t.Fatalf("crown centre=%v", got)
	}
}

func TestTrees_Deterministic(t *testing.T) {
	paintOnce := func() string {
		g := grid.New(64)
		v := grid.Whole(g)
		v.Clip(geom.BoxAt(geom.V(0, 0, 0), geom.V(64, 4, 64))).Fill(tile.New())
		Trees(v, 99)
		full, shaped := count(v)
		return geom.V(full, shaped, 0).String()
	}
	if a, b := paintOnce(), paintOnce(); a != b {
		t.Fatalf("trees differ between runs: %s vs %s", a, b)
	}
}
