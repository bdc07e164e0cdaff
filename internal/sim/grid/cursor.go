package grid

import (
	"fmt"
	"io"
	"iter"
	"strings"

	"voxelsea.ai/internal/sim/geom"
	"voxelsea.ai/internal/sim/tile"
)

// Cursor addresses the node covering a known cube. It does not own the node
// and is invalidated by any edit that collapses or releases an ancestor.
type Cursor struct {
	g    *Grid
	node *Node
	s    geom.SBox
}

func (c Cursor) Box() geom.SBox { return c.s }

func (c Cursor) IsNull() bool   { return c.node.kind == kindNull }
func (c Cursor) IsTile() bool   { return c.node.kind == kindTile }
func (c Cursor) IsBranch() bool { return c.node.kind == kindBranch }

func (c Cursor) Tile() tile.Tile {
	if c.node.kind != kindTile {
		panic(fmt.Sprintf("grid: %v is not a tile node", c.s))
	}
	return c.node.tile
}

func (c Cursor) Child(o geom.Oct) Cursor {
	if c.node.kind != kindBranch {
		panic(fmt.Sprintf("grid: %v is not a branch", c.s))
	}
	return Cursor{g: c.g, node: &c.node.branch.child[o], s: c.s.Leaf(o)}
}

func (c Cursor) octOf(p geom.Vec3i) geom.Oct { return geom.OctGE(p, c.s.Center()) }

// Find descends to the node whose extent is exactly b. The tree must already
// be subdivided down to b's size.
func (c Cursor) Find(b geom.SBox) Cursor {
	for b.Size() < c.s.Size() {
		c = c.Child(c.octOf(b.P0()))
	}
	if c.s != b {
		panic(fmt.Sprintf("grid: find %v reached %v", b, c.s))
	}
	return c
}

// FindSmallest descends toward b while branches exist, stopping at the first
// leaf.
func (c Cursor) FindSmallest(b geom.SBox) Cursor {
	if !c.s.Contains(b.Box()) {
		panic(fmt.Sprintf("grid: %v outside %v", b, c.s))
	}
	for b.Size() < c.s.Size() && c.IsBranch() {
		c = c.Child(c.octOf(b.P0()))
	}
	return c
}

// Fill sets every cell of b to t, collapsing uniform branches afterwards.
// Shaped tiles may only be written one cell at a time.
func (c Cursor) Fill(b geom.Box, t tile.Tile) { c.fill(b, t) }

func (c Cursor) Cut(b geom.Box) { c.fill(b, tile.Empty) }

// fill reports whether the node ends up as a tile equal to t.
func (c Cursor) fill(b geom.Box, t tile.Tile) bool {
	sb := c.s.Box()
	switch {
	case b.Contains(sb):
		if t.Shaped() && c.s.Size() > 1 {
			panic(fmt.Sprintf("grid: shaped tile %v written to %v", t, c.s))
		}
		c.g.setTile(c.node, t)
	case b.Intersects(sb):
		c.g.subdivide(c.node)
		uniform := true
		for _, o := range geom.AllOcts {
			if !c.Child(o).fill(b, t) {
				uniform = false
			}
		}
		if uniform && !t.Shaped() {
			c.g.setTile(c.node, t)
		}
	}
	return c.node.kind == kindTile && c.node.tile == t
}

// Tiles yields every maximal non-empty tile region intersecting bound, in
// CoordLess order of region origin. Regions are not clipped to bound.
func (c Cursor) Tiles(bound geom.Box) iter.Seq2[geom.SBox, tile.Tile] {
	return func(yield func(geom.SBox, tile.Tile) bool) {
		c.tiles(bound, yield)
	}
}

func (c Cursor) tiles(bound geom.Box, yield func(geom.SBox, tile.Tile) bool) bool {
	if !c.s.Intersects(bound) {
		return true
	}
	switch c.node.kind {
	case kindTile:
		if c.node.tile.Empty() {
			return true
		}
		return yield(c.s, c.node.tile)
	case kindBranch:
		for _, o := range geom.AllOcts {
			if !c.Child(o).tiles(bound, yield) {
				return false
			}
		}
	}
	return true
}

func (c Cursor) EachTile(bound geom.Box, fn func(geom.SBox, tile.Tile)) {
	for s, t := range c.Tiles(bound) {
		fn(s, t)
	}
}

// Dump writes an indented listing of the subtree.
func (c Cursor) Dump(w io.Writer) { c.dump(w, 0) }

func (c Cursor) dump(w io.Writer, depth int) {
	pad := strings.Repeat("  ", depth)
	switch c.node.kind {
	case kindNull:
		fmt.Fprintf(w, "%s%v null\n", pad, c.s)
	case kindTile:
		fmt.Fprintf(w, "%s%v %v\n", pad, c.s, c.node.tile)
	case kindBranch:
		fmt.Fprintf(w, "%s%v\n", pad, c.s)
		for _, o := range geom.AllOcts {
			c.Child(o).dump(w, depth+1)
		}
	}
}

// ContainingSBox returns the aligned cube twice the size of s that contains
// it.
func ContainingSBox(s geom.SBox) geom.SBox {
	d := s.Size() * 2
	if d == 0 {
		d = 1
	}
	p := s.P0()
	return geom.SBoxAt(geom.V(p.X&^(d-1), p.Y&^(d-1), p.Z&^(d-1)), d)
}
