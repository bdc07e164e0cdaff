// Package sprites holds the concrete sprite behaviours: bolts, balls and the
// player craft.
package sprites

import (
	"github.com/go-gl/mathgl/mgl64"

	"voxelsea.ai/internal/sim/sea"
	"voxelsea.ai/internal/sim/tile"
)

// Bolt is a fast kinematic projectile. It takes a hit point from the first
// tile it touches and disappears; other sprites are ignored.
type Bolt struct {
	sea.Base
	Speed float64
	// Ticks is the lifetime; the bolt expires unspent after that many ticks.
	Ticks int

	age int
}

func NewBolt() *Bolt { return &Bolt{Speed: 75, Ticks: 1200} }

func (b *Bolt) Placed(s *sea.Sprite) {
	w := s.World()
	w.SetKinematic(s.Body())
	w.SetLinearVelocity(s.Body(), s.Location().Q.Rotate(mgl64.Vec3{0, 0, -b.Speed}))
	s.Attach(w.NewCapsule(s.Island().SpriteSpace(), .1, 2))
}

func (b *Bolt) BeforeTick(s *sea.Sprite) {
	b.age++
	if b.Ticks > 0 && b.age >= b.Ticks {
		s.Expire()
	}
}

func (b *Bolt) CollideTile(_ *sea.Sprite, t tile.Tile) (sea.Interaction, tile.Tile) {
	return sea.Destroyed, t.Hit()
}

func (b *Bolt) CollideSprite(_, _ *sea.Sprite) sea.Interaction { return sea.Ignore }

func (b *Bolt) Radius() float64 { return 3 }

func (b *Bolt) Render(s *sea.Sprite, out *sea.SpriteStream) { out.PushBolt(s.Location()) }

// BallRadius is the radius of a Ball's sphere.
const BallRadius = 2. / 3

// Ball is a bouncing sphere that shifts the colour of every tile it touches.
type Ball struct {
	sea.Base
}

func (b *Ball) Placed(s *sea.Sprite) {
	s.Attach(s.World().NewSphere(s.Island().SpriteSpace(), BallRadius))
}

func (b *Ball) CollideTile(_ *sea.Sprite, t tile.Tile) (sea.Interaction, tile.Tile) {
	c := t.Color()
	c.X = (c.X + 1) % 32
	c.Y = (c.Y + 1) % 32
	c.Z = (c.Z + 1) % 32
	return sea.Hit, t.WithColor(c)
}

func (b *Ball) Bounciness() float64 { return .8 }

func (b *Ball) Render(s *sea.Sprite, out *sea.SpriteStream) {
	out.PushBall(s.Location(), BallRadius)
}
