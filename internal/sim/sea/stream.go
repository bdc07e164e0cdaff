package sea

import "voxelsea.ai/internal/sim/geom"

// DrawKind selects how a renderer draws a DrawItem.
type DrawKind uint8

const (
	DrawMesh DrawKind = iota + 1
	DrawBolt
	DrawBall
)

func (k DrawKind) String() string {
	switch k {
	case DrawMesh:
		return "mesh"
	case DrawBolt:
		return "bolt"
	case DrawBall:
		return "ball"
	}
	return "unknown"
}

// DrawItem is one instanced draw: a mesh or primitive at a grid location.
type DrawItem struct {
	Kind   DrawKind
	Mesh   string
	Loc    geom.DLoc
	Radius float64
}

// SpriteStream collects draw items from sprite Render hooks.
type SpriteStream struct {
	Items []DrawItem
}

func (s *SpriteStream) PushMesh(mesh string, l geom.DLoc) {
	s.Items = append(s.Items, DrawItem{Kind: DrawMesh, Mesh: mesh, Loc: l})
}

func (s *SpriteStream) PushBolt(l geom.DLoc) {
	s.Items = append(s.Items, DrawItem{Kind: DrawBolt, Loc: l})
}

func (s *SpriteStream) PushBall(l geom.DLoc, radius float64) {
	s.Items = append(s.Items, DrawItem{Kind: DrawBall, Loc: l, Radius: radius})
}

func (s *SpriteStream) Reset() { s.Items = s.Items[:0] }
