package grid

import (
	"fmt"
	"io"
	"iter"

	"voxelsea.ai/internal/sim/geom"
	"voxelsea.ai/internal/sim/tile"
)

// Grid is a sparse octree of tiles over the cube [0, size)^3.
// Accessed only from the simulation loop goroutine.
type Grid struct {
	root Node
	size int
	free []*Branch
}

// New returns a grid whose cells are all Null. size must be a power of two.
func New(size int) *Grid {
	if size < 1 || size&(size-1) != 0 {
		panic(fmt.Sprintf("grid: size %d is not a power of two", size))
	}
	return &Grid{size: size}
}

func (g *Grid) Size() int { return g.size }

func (g *Grid) Bounds() geom.Box { return geom.Cube(g.size).Box() }

// Top returns the cursor at the root.
func (g *Grid) Top() Cursor {
	return Cursor{g: g, node: &g.root, s: geom.Cube(g.size)}
}

func (g *Grid) Fill(b geom.Box, t tile.Tile) { g.Top().Fill(b, t) }

func (g *Grid) Cut(b geom.Box) { g.Top().Cut(b) }

func (g *Grid) EachTile(bound geom.Box, fn func(geom.SBox, tile.Tile)) {
	g.Top().EachTile(bound, fn)
}

func (g *Grid) Tiles(bound geom.Box) iter.Seq2[geom.SBox, tile.Tile] {
	return g.Top().Tiles(bound)
}

// At classifies a single cell. Cells outside the grid and unset cells are
// empty.
func (g *Grid) At(p geom.Vec3i) tile.Tile {
	cell := geom.SBoxAt(p, 1)
	if !g.Bounds().Contains(cell.Box()) {
		return tile.Empty
	}
	c := g.Top().FindSmallest(cell)
	if !c.IsTile() {
		return tile.Empty
	}
	return c.Tile()
}

// Stats counts nodes by kind.
func (g *Grid) Stats() (branches, tiles, nulls int) {
	var walk func(n *Node)
	walk = func(n *Node) {
		switch n.kind {
		case kindNull:
			nulls++
		case kindTile:
			tiles++
		case kindBranch:
			branches++
			for i := range n.branch.child {
				walk(&n.branch.child[i])
			}
		}
	}
	walk(&g.root)
	return
}

func (g *Grid) Dump(w io.Writer) { g.Top().Dump(w) }
