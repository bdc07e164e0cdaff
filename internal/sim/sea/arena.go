package sea

import "fmt"

// SpriteID names a sprite for as long as it lives. A stale id never resolves
// to a later sprite that reuses the slot.
type SpriteID struct {
	index uint32
	gen   uint32
}

func (id SpriteID) IsZero() bool { return id.gen == 0 }

func (id SpriteID) String() string { return fmt.Sprintf("sprite#%d.%d", id.index, id.gen) }

type slot struct {
	sprite *Sprite
	gen    uint32
}

type arena struct {
	slots []slot
	free  []uint32
	live  int
}

func (a *arena) add(s *Sprite) SpriteID {
	var i uint32
	if n := len(a.free); n > 0 {
		i = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		i = uint32(len(a.slots))
		a.slots = append(a.slots, slot{})
	}
	a.slots[i].gen++
	a.slots[i].sprite = s
	a.live++
	return SpriteID{index: i, gen: a.slots[i].gen}
}

func (a *arena) get(id SpriteID) *Sprite {
	if id.IsZero() || int(id.index) >= len(a.slots) {
		return nil
	}
	sl := a.slots[id.index]
	if sl.gen != id.gen {
		return nil
	}
	return sl.sprite
}

func (a *arena) remove(id SpriteID) {
	if a.get(id) == nil {
		panic(fmt.Sprintf("sea: remove of unknown %v", id))
	}
	a.slots[id.index].sprite = nil
	a.free = append(a.free, id.index)
	a.live--
}
