package sea

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"voxelsea.ai/internal/sim/geom"
	"voxelsea.ai/internal/sim/physics"
	"voxelsea.ai/internal/sim/tile"
)

// Interaction is a collision policy's verdict on one contact.
type Interaction uint8

const (
	// Ignore lets the bodies pass through each other.
	Ignore Interaction = iota
	// Hit applies the contact response.
	Hit
	// Destroyed removes the sprite after the current tick. Other contacts of
	// the tick are still resolved.
	Destroyed
)

func (i Interaction) String() string {
	switch i {
	case Ignore:
		return "ignore"
	case Hit:
		return "hit"
	case Destroyed:
		return "destroyed"
	}
	return fmt.Sprintf("Interaction(%d)", int(i))
}

// Behavior is what a kind of sprite does. Embed Base for the defaults.
type Behavior interface {
	// Placed runs once the sprite has a body; create shapes here.
	Placed(s *Sprite)
	// Removing runs before the body is destroyed.
	Removing(s *Sprite)
	AfterSync(s *Sprite)
	BeforeTick(s *Sprite)
	// CollideTile decides a contact with tile t and returns the tile's new
	// value, t itself when unchanged.
	CollideTile(s *Sprite, t tile.Tile) (Interaction, tile.Tile)
	// CollideSprite decides a contact with another sprite. Both sides are
	// asked before either verdict is applied.
	CollideSprite(s, other *Sprite) Interaction
	Bounciness() float64
	Radius() float64
	Render(s *Sprite, out *SpriteStream)
}

// Base is the default Behavior: hits everything, changes nothing.
type Base struct{}

func (Base) Placed(*Sprite)     {}
func (Base) Removing(*Sprite)   {}
func (Base) AfterSync(*Sprite)  {}
func (Base) BeforeTick(*Sprite) {}

func (Base) CollideTile(_ *Sprite, t tile.Tile) (Interaction, tile.Tile) { return Hit, t }

func (Base) CollideSprite(_, _ *Sprite) Interaction { return Hit }

func (Base) Bounciness() float64 { return 0 }
func (Base) Radius() float64     { return 10 }

func (Base) Render(*Sprite, *SpriteStream) {}

// Sprite is a dynamic object. A dormant sprite only has a location; an active
// one belongs to exactly one Island and is backed by a physics body there.
type Sprite struct {
	id       SpriteID
	behavior Behavior

	island  *Island
	dormant geom.DLoc
	body    physics.BodyID
	expired bool
}

// NewSprite returns a dormant sprite at grid location loc.
func NewSprite(b Behavior, loc geom.DLoc) *Sprite {
	return &Sprite{behavior: b, dormant: loc}
}

func (s *Sprite) ID() SpriteID       { return s.id }
func (s *Sprite) Behavior() Behavior { return s.behavior }
func (s *Sprite) Island() *Island    { return s.island }
func (s *Sprite) Active() bool       { return s.island != nil }

func (s *Sprite) mustActive() *Island {
	if s.island == nil {
		panic(fmt.Sprintf("sea: sprite %v is dormant", s.id))
	}
	return s.island
}

func (s *Sprite) Body() physics.BodyID { s.mustActive(); return s.body }

func (s *Sprite) World() physics.World { return s.mustActive().world }

// Expire retires the sprite at the end of the current or next tick, like a
// Destroyed verdict.
func (s *Sprite) Expire() { s.expired = true }

// Attach binds a shape to the sprite's body.
func (s *Sprite) Attach(sh physics.ShapeID) { s.mustActive().world.Attach(sh, s.body) }

// Location is the grid-space position and orientation.
func (s *Sprite) Location() geom.DLoc {
	if s.island == nil {
		return s.dormant
	}
	return s.island.world.BodyLocation(s.body).Translate(s.island.origin.Float())
}

// Velocity is the linear velocity of an active sprite; dormant sprites are
// still.
func (s *Sprite) Velocity() mgl64.Vec3 {
	if s.island == nil {
		return mgl64.Vec3{}
	}
	return s.island.world.LinearVelocity(s.body)
}

// Bound is the integer box enclosing the sprite's radius around its location.
func (s *Sprite) Bound() geom.Box {
	p := s.Location().P
	r := s.behavior.Radius()
	e := mgl64.Vec3{r, r, r}
	return geom.Ranged(geom.Floor(p.Sub(e)), geom.Ceil(p.Add(e)))
}
