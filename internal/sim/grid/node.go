package grid

import "voxelsea.ai/internal/sim/tile"

type nodeKind uint8

const (
	kindNull nodeKind = iota
	kindTile
	kindBranch
)

// Node is one octree slot. A Null node is unpopulated, a Tile node holds its
// value inline, and a Branch node owns eight children.
type Node struct {
	kind   nodeKind
	tile   tile.Tile
	branch *Branch
}

// Branch owns one child per octant, indexed by geom.Oct.
type Branch struct {
	child [8]Node
}

// maxFreeBranches bounds the free list kept between edits.
const maxFreeBranches = 4096

func (g *Grid) newBranch(fill Node) *Branch {
	var b *Branch
	if n := len(g.free); n > 0 {
		b = g.free[n-1]
		g.free = g.free[:n-1]
	} else {
		b = &Branch{}
	}
	for i := range b.child {
		b.child[i] = fill
	}
	return b
}

// release frees n's subtree and leaves n Null.
func (g *Grid) release(n *Node) {
	if n.kind == kindBranch {
		for i := range n.branch.child {
			g.release(&n.branch.child[i])
		}
		if len(g.free) < maxFreeBranches {
			g.free = append(g.free, n.branch)
		}
	}
	*n = Node{}
}

func (g *Grid) setTile(n *Node, t tile.Tile) {
	g.release(n)
	n.kind = kindTile
	n.tile = t
}

// subdivide turns a leaf into a branch whose children all repeat the leaf.
func (g *Grid) subdivide(n *Node) {
	if n.kind == kindBranch {
		return
	}
	fill := *n
	n.branch = g.newBranch(fill)
	n.kind = kindBranch
}
