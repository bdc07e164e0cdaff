package sea

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"voxelsea.ai/internal/sim/geom"
	"voxelsea.ai/internal/sim/grid"
	"voxelsea.ai/internal/sim/physics"
	"voxelsea.ai/internal/sim/physics/arcade"
	"voxelsea.ai/internal/sim/tile"
)

// recWorld logs the calls whose ordering matters.
type recWorld struct {
	*arcade.World
	log *[]string
}

func (w recWorld) Step(dt float64) {
	*w.log = append(*w.log, "step")
	w.World.Step(dt)
}

func (w recWorld) DestroyBody(b physics.BodyID) {
	*w.log = append(*w.log, "destroy")
	w.World.DestroyBody(b)
}

func (w recWorld) AddContact(c physics.Contact, p physics.ContactParams, a, b physics.BodyID) {
	*w.log = append(*w.log, "contact")
	w.World.AddContact(c, p, a, b)
}

// scripted is a sphere sprite with scripted collision policies.
type scripted struct {
	Base
	radius    float64
	reach     float64
	kinematic bool
	onTile    Interaction
	edit      func(tile.Tile) tile.Tile
	onSprite  Interaction
	log       *[]string
}

func (p *scripted) Placed(s *Sprite) {
	w := s.World()
	s.Attach(w.NewSphere(s.Island().SpriteSpace(), p.radius))
	if p.kinematic {
		w.SetKinematic(s.Body())
	}
}

func (p *scripted) Removing(s *Sprite) {
	if p.log != nil {
		*p.log = append(*p.log, "removing")
	}
}

func (p *scripted) Radius() float64 { return p.reach }

func (p *scripted) CollideTile(_ *Sprite, t tile.Tile) (Interaction, tile.Tile) {
	if p.edit != nil {
		t = p.edit(t)
	}
	return p.onTile, t
}

func (p *scripted) CollideSprite(_, _ *Sprite) Interaction { return p.onSprite }

func newSea(log *[]string) *Sea {
	cfg := DefaultConfig()
	cfg.NewWorld = func() physics.World {
		if log == nil {
			return arcade.New()
		}
		return recWorld{World: arcade.New(), log: log}
	}
	return New(cfg)
}

func cell(x, y, z int) geom.Box { return geom.BoxAt(geom.V(x, y, z), geom.Splat(1)) }

func at(x, y, z float64) geom.DLoc { return geom.DAt(mgl64.Vec3{x, y, z}) }

func checkSorted(t *testing.T, isl *Island) {
	t.Helper()
	vs := isl.Voxels()
	for i := 1; i < len(vs); i++ {
		if !grid.CoordLess(vs[i-1].Key(), vs[i].Key()) {
			t.Fatalf("voxel table out of order at %v, %v", vs[i-1].Key(), vs[i].Key())
		}
	}
}

func TestSync_TwoCells(t *testing.T) {
	g := grid.New(16)
	red := tile.New().WithColor(geom.V(31, 0, 0))
	blue := tile.New().WithColor(geom.V(0, 0, 31))
	g.Fill(cell(5, 5, 5), red)
	g.Fill(cell(6, 5, 5), blue)

	s := newSea(nil)
	s.Create(&scripted{radius: .5, reach: 1, kinematic: true, onTile: Hit}, at(6, 6.5, 5.5))
	isl := s.Islands()[0]

	st := isl.Sync(g)
	if st.Inserted != 2 || st.Updated != 0 || st.Deleted != 0 || st.Voxels != 2 {
		t.Fatalf("first sync=%+v want two inserts", st)
	}
	vs := isl.Voxels()
	if vs[0].Box != geom.SBoxAt(geom.V(5, 5, 5), 1) || vs[0].Tile != red {
		t.Fatalf("voxel 0=%+v", vs[0])
	}
	if vs[1].Box != geom.SBoxAt(geom.V(6, 5, 5), 1) || vs[1].Tile != blue {
		t.Fatalf("voxel 1=%+v", vs[1])
	}

	g.Cut(cell(6, 5, 5))
	st = isl.Sync(g)
	if st.Inserted != 0 || st.Updated != 0 || st.Deleted != 1 || st.Voxels != 1 {
		t.Fatalf("second sync=%+v want one delete", st)
	}
	v, ok := isl.Voxel(geom.V(5, 5, 5))
	if !ok || v.Shape != vs[0].Shape || v.Tile != red {
		t.Fatalf("surviving voxel=%+v ok=%v want unchanged %+v", v, ok, vs[0])
	}
	if _, ok := isl.Voxel(geom.V(6, 5, 5)); ok {
		t.Fatalf("cut voxel still present")
	}
}

func TestSync_Idempotent(t *testing.T) {
	g := grid.New(32)
	paintFloor(g)
	s := newSea(nil)
	s.Create(&scripted{radius: .5, reach: 6, kinematic: true}, at(16, 8, 16))
	isl := s.Islands()[0]

	first := isl.Sync(g)
	if first.Inserted == 0 {
		t.Fatalf("first sync inserted nothing")
	}
	second := isl.Sync(g)
	if second.Inserted != 0 || second.Updated != 0 || second.Deleted != 0 || second.Voxels != first.Voxels {
		t.Fatalf("second sync=%+v after %+v", second, first)
	}
	checkSorted(t, isl)
}

// paintFloor fills a layer with a checkerboard of two colours plus a merged
// 2-cube, so syncs see many distinct regions.
func paintFloor(g *grid.Grid) {
	a := tile.New().WithColor(geom.V(10, 10, 10))
	b := tile.New().WithColor(geom.V(20, 20, 20))
	for p := range geom.BoxAt(geom.V(8, 4, 8), geom.V(16, 1, 16)).Cells() {
		if (p.X+p.Z)%2 == 0 {
			g.Fill(cell(p.X, p.Y, p.Z), a)
		} else {
			g.Fill(cell(p.X, p.Y, p.Z), b)
		}
	}
	g.Fill(geom.BoxAt(geom.V(14, 6, 14), geom.Splat(2)), a)
}

func TestSync_TracksEdits(t *testing.T) {
	g := grid.New(32)
	paintFloor(g)
	s := newSea(nil)
	s.Create(&scripted{radius: .5, reach: 6, kinematic: true}, at(16, 8, 16))
	isl := s.Islands()[0]
	isl.Sync(g)

	big, ok := isl.Voxel(geom.V(14, 6, 14))
	if !ok || big.Box.Size() != 2 {
		t.Fatalf("merged region voxel=%+v ok=%v", big, ok)
	}

	// splitting the 2-cube rekeys its origin and adds six cells; removing a
	// run of floor cells forces the cursor past stale entries
	g.Cut(cell(15, 7, 15))
	g.Cut(geom.BoxAt(geom.V(11, 4, 11), geom.V(8, 1, 1)))
	recolor := tile.New().WithColor(geom.V(1, 2, 3))
	g.Fill(cell(20, 4, 20), recolor)

	st := isl.Sync(g)
	if st.Updated != 2 || st.Inserted != 6 || st.Deleted != 8 {
		t.Fatalf("sync=%+v want 2 updated, 6 inserted, 8 deleted", st)
	}
	if v, _ := isl.Voxel(geom.V(14, 6, 14)); v.Box.Size() != 1 || v.Shape == big.Shape {
		t.Fatalf("split voxel=%+v", v)
	}
	if v, _ := isl.Voxel(geom.V(20, 4, 20)); v.Tile != recolor {
		t.Fatalf("recoloured voxel=%+v", v)
	}
	checkSorted(t, isl)
	if again := isl.Sync(g); again.Inserted+again.Updated+again.Deleted != 0 {
		t.Fatalf("resync=%+v", again)
	}
}

func TestSync_ShapedCellGetsMesh(t *testing.T) {
	g := grid.New(16)
	ramp := tile.New().WithCorners(0x3f)
	g.Fill(cell(4, 4, 4), ramp)
	g.Fill(cell(5, 4, 4), tile.New())
	s := newSea(nil)
	s.Create(&scripted{radius: .5, reach: 2, kinematic: true}, at(5, 5, 4.5))
	isl := s.Islands()[0]
	isl.Sync(g)

	v, _ := isl.Voxel(geom.V(4, 4, 4))
	if k := isl.World().ShapeKind(v.Shape); k != physics.ShapeTriMesh {
		t.Fatalf("shaped voxel kind=%v want trimesh", k)
	}
	v, _ = isl.Voxel(geom.V(5, 4, 4))
	if k := isl.World().ShapeKind(v.Shape); k != physics.ShapeBox {
		t.Fatalf("cube voxel kind=%v want box", k)
	}
	lo, hi := isl.World().(*arcade.World).Bounds(v.Shape)
	want := geom.V(5, 4, 4).Sub(isl.Origin()).Float()
	if !lo.ApproxEqualThreshold(want.Sub(mgl64.Vec3{.01, .01, .01}), 1e-9) ||
		!hi.ApproxEqualThreshold(want.Add(mgl64.Vec3{1.01, 1.01, 1.01}), 1e-9) {
		t.Fatalf("box bounds=%v..%v around %v", lo, hi, want)
	}
}

func TestStep_DestroyedOnContact(t *testing.T) {
	g := grid.New(16)
	g.Fill(cell(8, 4, 8), tile.New())
	s := newSea(nil)
	bomb := s.Create(&scripted{radius: .5, reach: 1.5, onTile: Destroyed, edit: tile.Tile.Hit}, at(8.5, 5.4, 8.5))
	isl := s.Islands()[0]

	st := s.Step(g)
	if st.Sync.Inserted != 1 {
		t.Fatalf("sync=%+v", st.Sync)
	}
	if st.Destroyed != 1 || len(st.Ticks.Edits) != 1 {
		t.Fatalf("frame=%+v want one destroyed sprite and one edit", st)
	}
	e := st.Ticks.Edits[0]
	if e.Cell != geom.V(8, 4, 8) || e.From != tile.New() || e.To != tile.Empty {
		t.Fatalf("edit=%+v", e)
	}
	if isl.Len() != 0 || s.Len() != 0 || s.Sprite(bomb.ID()) != nil {
		t.Fatalf("sprite still present")
	}
	if g.At(geom.V(8, 4, 8)) != tile.Empty {
		t.Fatalf("tile not emptied")
	}
	if s.Effects().Len() != 1 || s.Effects().All()[0].Box != geom.SBoxAt(geom.V(8, 4, 8), 1) {
		t.Fatalf("effects=%+v", s.Effects().All())
	}

	s.Step(g)
	if _, ok := isl.Voxel(geom.V(8, 4, 8)); ok || len(isl.Voxels()) != 0 {
		t.Fatalf("voxels after next sync=%+v", isl.Voxels())
	}
}

func TestTick_DestroysAfterStep(t *testing.T) {
	var log []string
	g := grid.New(16)
	g.Fill(cell(8, 4, 8), tile.New().WithHP(3))
	g.Fill(cell(9, 4, 8), tile.New().WithHP(3))
	s := newSea(&log)
	s.Create(&scripted{radius: .6, reach: 2, onTile: Destroyed, edit: tile.Tile.Hit, log: &log}, at(9, 5.3, 8.5))
	isl := s.Islands()[0]
	isl.Sync(g)

	fx := NewEffects(20)
	st := isl.Tick(g, fx)
	if st.Contacts != 2 {
		t.Fatalf("contacts=%d want 2", st.Contacts)
	}
	// the first contact destroys the sprite, so the second is skipped
	if len(st.Edits) != 1 || fx.Len() != 1 {
		t.Fatalf("edits=%+v effects=%d want one", st.Edits, fx.Len())
	}
	want := []string{"step", "removing", "destroy"}
	if len(log) != len(want) {
		t.Fatalf("calls=%v want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("calls=%v want %v", log, want)
		}
	}
}

func TestTick_HitAddsContactAndKeepsSprite(t *testing.T) {
	g := grid.New(16)
	floor := geom.BoxAt(geom.V(0, 0, 0), geom.V(16, 4, 16))
	g.Fill(floor, tile.New())
	s := newSea(nil)
	ball := s.Create(&scripted{radius: .5, reach: 2, onTile: Hit}, at(8.5, 6, 8.5))

	for i := 0; i < 60; i++ {
		s.Step(g)
	}
	p := ball.Location().P
	if p.Y() < 4.3 || p.Y() > 4.7 {
		t.Fatalf("ball height=%v want resting near 4.5", p.Y())
	}
	if !ball.Active() || s.Len() != 1 {
		t.Fatalf("ball should survive hits")
	}
	if g.At(geom.V(8, 3, 8)) != tile.New() {
		t.Fatalf("hit must not edit the floor")
	}
}

func TestTick_MultiCellVoxelEditsOneCell(t *testing.T) {
	g := grid.New(16)
	g.Fill(geom.BoxAt(geom.V(8, 0, 8), geom.Splat(4)), tile.New().WithHP(2))
	s := newSea(nil)
	s.Create(&scripted{radius: .5, reach: 2, kinematic: true, onTile: Hit, edit: tile.Tile.Hit}, at(9.5, 4.3, 9.5))
	isl := s.Islands()[0]
	isl.Sync(g)

	st := isl.Tick(g, NewEffects(20))
	if len(st.Edits) != 1 || st.Edits[0].Cell != geom.V(9, 3, 9) {
		t.Fatalf("edits=%+v want cell (9,3,9)", st.Edits)
	}
	if g.At(geom.V(9, 3, 9)).HP() != 1 || g.At(geom.V(10, 3, 9)).HP() != 2 {
		t.Fatalf("edit spread beyond the contact cell")
	}
	if v, ok := isl.Voxel(geom.V(8, 0, 8)); !ok || v.Box.Size() != 4 {
		t.Fatalf("region voxel should stay until the next sync")
	}
}

func TestTick_SpritePolicies(t *testing.T) {
	cases := []struct {
		a, b     Interaction
		contacts int
		left     int
	}{
		{a: Hit, b: Hit, contacts: 1, left: 2},
		{a: Hit, b: Ignore, contacts: 0, left: 2},
		{a: Destroyed, b: Hit, contacts: 1, left: 1},
		{a: Ignore, b: Destroyed, contacts: 0, left: 1},
	}
	for _, c := range cases {
		var log []string
		g := grid.New(16)
		s := newSea(&log)
		s.Create(&scripted{radius: .5, reach: 1, kinematic: true, onSprite: c.a}, at(8, 8, 8))
		s.Create(&scripted{radius: .5, reach: 1, kinematic: true, onSprite: c.b}, at(8.8, 8, 8))
		isl := s.Islands()[0]
		isl.Sync(g)
		isl.Tick(g, NewEffects(20))

		n := 0
		for _, l := range log {
			if l == "contact" {
				n++
			}
		}
		if n != c.contacts || isl.Len() != c.left {
			t.Fatalf("%v/%v: contacts=%d sprites=%d want %d/%d", c.a, c.b, n, isl.Len(), c.contacts, c.left)
		}
	}
}

func TestSea_InsertActivatesAtOrigin(t *testing.T) {
	s := newSea(nil)
	loc := geom.DLoc{P: mgl64.Vec3{100.25, 40, 7.5}, Q: geom.RotateY(1).Quat()}
	sp := NewSprite(&scripted{radius: .5, reach: 3, kinematic: true}, loc)
	if sp.Active() || sp.Location() != loc {
		t.Fatalf("new sprite should be dormant at %v", loc)
	}
	s.Insert(sp)
	isl := s.Islands()[0]
	if !sp.Active() || sp.Island() != isl {
		t.Fatalf("sprite not active")
	}
	if isl.Origin() != geom.V(100, 40, 7) {
		t.Fatalf("origin=%v want bound centre", isl.Origin())
	}
	got := sp.Location()
	if !got.P.ApproxEqualThreshold(loc.P, 1e-9) || !got.Q.ApproxEqual(loc.Q) {
		t.Fatalf("location=%+v want %+v", got, loc)
	}
	body := isl.World().BodyLocation(sp.Body()).P
	if !body.ApproxEqualThreshold(mgl64.Vec3{.25, 0, .5}, 1e-9) {
		t.Fatalf("physics position=%v want relative to origin", body)
	}
}

func TestArena_StaleIDs(t *testing.T) {
	var a arena
	x := &Sprite{}
	id := a.add(x)
	a.remove(id)
	y := &Sprite{}
	id2 := a.add(y)
	if id2.index != id.index || a.get(id) != nil || a.get(id2) != y {
		t.Fatalf("slot reuse broke generation check: %v %v", id, id2)
	}
	if a.get(SpriteID{}) != nil {
		t.Fatalf("zero id resolved")
	}
}

func TestEffects_Expire(t *testing.T) {
	fx := NewEffects(20)
	fx.Add(geom.SBoxAt(geom.V(1, 2, 3), 1))
	for i := 0; i < 19; i++ {
		fx.Step()
	}
	if fx.Len() != 1 || fx.All()[0].Age != 19 {
		t.Fatalf("effects=%+v after 19 frames", fx.All())
	}
	fx.Step()
	if fx.Len() != 0 {
		t.Fatalf("effect should expire after 20 frames")
	}
}

func TestTick_ExpiredSpriteRetired(t *testing.T) {
	g := grid.New(16)
	s := newSea(nil)
	a := s.Create(&scripted{radius: .5, reach: 1, kinematic: true}, at(4, 4, 4))
	b := s.Create(&scripted{radius: .5, reach: 1, kinematic: true}, at(12, 4, 4))
	a.Expire()
	st := s.Step(g)
	if st.Destroyed != 1 || s.Sprite(a.ID()) != nil || s.Sprite(b.ID()) != b {
		t.Fatalf("frame=%+v want only the expired sprite retired", st)
	}
}

func TestTick_ShapeEditRebuildsVoxel(t *testing.T) {
	g := grid.New(16)
	g.Fill(cell(8, 4, 8), tile.New())
	s := newSea(nil)
	ramp := func(tl tile.Tile) tile.Tile { return tl.WithCorners(0x3f) }
	s.Create(&scripted{radius: .5, reach: 1.5, kinematic: true, onTile: Hit, edit: ramp}, at(8.5, 5.4, 8.5))
	isl := s.Islands()[0]
	isl.Sync(g)
	before, _ := isl.Voxel(geom.V(8, 4, 8))
	if k := isl.World().ShapeKind(before.Shape); k != physics.ShapeBox {
		t.Fatalf("kind=%v want box before the edit", k)
	}
	old := before.Shape

	st := isl.Tick(g, NewEffects(20))
	if len(st.Edits) != 1 || st.Edits[0].To.Shape() == 0 {
		t.Fatalf("edits=%+v want one shape edit", st.Edits)
	}
	v, ok := isl.Voxel(geom.V(8, 4, 8))
	if !ok || v.Tile != g.At(geom.V(8, 4, 8)) {
		t.Fatalf("voxel=%+v ok=%v want tile %v", v, ok, g.At(geom.V(8, 4, 8)))
	}
	if v.Shape == old {
		t.Fatalf("voxel kept its cube shape after a shape edit")
	}
	if k := isl.World().ShapeKind(v.Shape); k != physics.ShapeTriMesh {
		t.Fatalf("kind=%v want trimesh after the edit", k)
	}
	if vp := isl.voxelOf(v.Shape); vp == nil || *vp != v || isl.voxelOf(old) != nil {
		t.Fatalf("shape index not moved to the rebuilt shape")
	}
	if again := isl.Sync(g); again.Updated != 0 || again.Inserted != 0 {
		t.Fatalf("sync after rebuild=%+v want no changes", again)
	}
}

func TestSea_InsertRetiredSpritePanics(t *testing.T) {
	s := newSea(nil)
	sp := s.Create(&scripted{radius: .5, reach: 1, kinematic: true}, at(8, 8, 8))
	id := sp.ID()
	s.Islands()[0].remove(id)
	defer func() {
		if recover() == nil {
			t.Fatalf("Insert of retired %v did not panic", id)
		}
		if s.Len() != 0 || s.Sprite(id) != nil {
			t.Fatalf("retired sprite came back")
		}
	}()
	s.Insert(sp)
}
