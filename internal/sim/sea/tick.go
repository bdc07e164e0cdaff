package sea

import (
	"voxelsea.ai/internal/sim/geom"
	"voxelsea.ai/internal/sim/grid"
	"voxelsea.ai/internal/sim/physics"
	"voxelsea.ai/internal/sim/tile"
)

// TileEdit records a tile changed by a collision.
type TileEdit struct {
	Cell geom.Vec3i `json:"cell"`
	From tile.Tile  `json:"from"`
	To   tile.Tile  `json:"to"`
}

// TickStats describes one physics tick of an island.
type TickStats struct {
	Contacts  int        `json:"contacts"`
	Hits      int        `json:"hits"`
	Edits     []TileEdit `json:"edits,omitempty"`
	Destroyed []SpriteID `json:"-"`
}

func (s *TickStats) add(o TickStats) {
	s.Contacts += o.Contacts
	s.Hits += o.Hits
	s.Edits = append(s.Edits, o.Edits...)
	s.Destroyed = append(s.Destroyed, o.Destroyed...)
}

// pending is the set of sprites to retire after the physics step.
type pending struct {
	order []SpriteID
	set   map[SpriteID]bool
}

func (p *pending) add(id SpriteID) {
	if p.set[id] {
		return
	}
	if p.set == nil {
		p.set = map[SpriteID]bool{}
	}
	p.set[id] = true
	p.order = append(p.order, id)
}

func (p *pending) has(id SpriteID) bool { return p.set[id] }

// Tick advances the island by one physics step. Collisions with voxels may
// edit g; edited cells get an effect in fx.
func (isl *Island) Tick(g *grid.Grid, fx *Effects) TickStats {
	var st TickStats
	cfg := isl.sea.cfg

	// sprites created here are ticked from the next tick on
	ids := append([]SpriteID(nil), isl.sprites...)
	for _, id := range ids {
		if s := isl.sea.arena.get(id); s != nil {
			s.behavior.BeforeTick(s)
		}
	}

	var dead pending
	var emptied, reshaped []geom.Vec3i
	for _, id := range isl.sprites {
		if s := isl.sea.arena.get(id); s.expired {
			dead.add(id)
		}
	}

	// Only collect in the callbacks; the spaces must not change while the
	// engine walks them.
	isl.world.Collide(isl.spriteSpace, isl.voxelSpace, func(ss, vs physics.ShapeID, c physics.Contact) {
		st.Contacts++
		s := isl.spriteOfShape(ss)
		if s == nil || dead.has(s.id) {
			return
		}
		v := isl.voxelOf(vs)
		if v == nil || v.Tile.Empty() {
			return
		}
		// Contact points sit on the overlapping shell of the voxel, so they
		// are clamped back into its region.
		cell := geom.Floor(c.Position).Add(isl.origin).Clamp(v.Box.P0(), v.Box.P1().AddScalar(-1))
		last := v.Tile
		if v.Box.Size() > 1 {
			last = g.At(cell)
			if last.Empty() {
				return
			}
		}

		verdict, next := s.behavior.CollideTile(s, last)
		switch verdict {
		case Hit:
			params := physics.ContactParams{Mu: cfg.ContactMu, Bounce: .5 * (s.behavior.Bounciness() + .5)}
			isl.world.AddContact(c, params, s.body, 0)
			st.Hits++
		case Destroyed:
			dead.add(s.id)
		}

		if next != last {
			cellBox := geom.SBoxAt(cell, 1)
			g.Fill(cellBox.Box(), next)
			fx.Add(cellBox)
			st.Edits = append(st.Edits, TileEdit{Cell: cell, From: last, To: next})
			if v.Box.Size() == 1 {
				v.Tile = next
				switch {
				case next.Empty():
					emptied = append(emptied, v.Key())
				case next.Shape() != last.Shape():
					reshaped = append(reshaped, v.Key())
				}
			}
		}
	})
	for _, k := range emptied {
		isl.dropVoxel(k)
	}
	for _, k := range reshaped {
		isl.rebuildVoxel(k)
	}

	isl.world.CollideWithin(isl.spriteSpace, func(sa, sb physics.ShapeID, c physics.Contact) {
		st.Contacts++
		s1, s2 := isl.spriteOfShape(sa), isl.spriteOfShape(sb)
		if s1 == nil || s2 == nil || s1 == s2 || dead.has(s1.id) || dead.has(s2.id) {
			return
		}
		i1 := s1.behavior.CollideSprite(s1, s2)
		i2 := s2.behavior.CollideSprite(s2, s1)
		if i1 != Ignore && i2 != Ignore {
			params := physics.ContactParams{Mu: cfg.ContactMu, Bounce: .5 * (s1.behavior.Bounciness() + s2.behavior.Bounciness())}
			isl.world.AddContact(c, params, s1.body, s2.body)
			st.Hits++
		}
		if i1 == Destroyed {
			dead.add(s1.id)
		}
		if i2 == Destroyed {
			dead.add(s2.id)
		}
	})

	isl.world.Step(cfg.TickSize)

	// Contact joints may reference destroyed sprites until the step is done.
	for _, id := range dead.order {
		isl.remove(id)
	}
	st.Destroyed = dead.order
	return st
}
