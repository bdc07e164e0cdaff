package tile

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"voxelsea.ai/internal/sim/geom"
)

// Tile is the packed state of one grid cell. It is immutable once stored in
// the grid: to change it, derive a new value and fill it back.
//
// Layout:
//
//	bits 0-2:   hit points; 0 empty, 1 destroyed by one hit, 7 invulnerable
//	bits 3-17:  colour, 5 bits each of sRGB red, green, blue
//	bits 18-22: shape index into the shape catalogue, 0 for a full cube
//
// The zero value is the empty tile, and every tile without hit points is
// normalised to it so that destroyed cells compare equal.
type Tile uint32

const (
	hpShift    = 0
	hpBits     = 3
	colorShift = 3
	colorBits  = 15
	shapeShift = 18
	shapeBits  = 5

	MaxHP = 1<<hpBits - 1
)

// Empty is the tile of an unoccupied cell.
const Empty Tile = 0

// New returns a solid unshaped tile with one hit point and black colour.
func New() Tile { return Empty.set(hpShift, hpBits, 1) }

func (t Tile) bits(shift, n int) int {
	return int(uint32(t) >> shift & (1<<n - 1))
}

func (t Tile) set(shift, n, v int) Tile {
	mask := uint32(1<<n-1) << shift
	val := uint32(v) << shift
	if val&^mask != 0 {
		panic(fmt.Sprintf("tile: value %d overflows %d bits", v, n))
	}
	out := Tile(uint32(t)&^mask | val)
	if out.HP() == 0 {
		return Empty
	}
	return out
}

func (t Tile) Empty() bool { return t.HP() == 0 }

func (t Tile) HP() int { return t.bits(hpShift, hpBits) }

// WithHP sets hit points below the invulnerable value.
func (t Tile) WithHP(v int) Tile {
	if v < 0 || v >= MaxHP {
		panic(fmt.Sprintf("tile: hit points %d out of range", v))
	}
	return t.set(hpShift, hpBits, v)
}

func (t Tile) Invulnerable() Tile { return t.set(hpShift, hpBits, MaxHP) }

func (t Tile) IsInvulnerable() bool { return t.HP() == MaxHP }

// Hit removes one hit point unless the tile is empty or invulnerable.
func (t Tile) Hit() Tile {
	hp := t.HP()
	if hp != 0 && hp != MaxHP {
		hp--
	}
	return t.set(hpShift, hpBits, hp)
}

// Color returns the 5-bit sRGB channels.
func (t Tile) Color() geom.Vec3i {
	return geom.V(t.bits(colorShift, 5), t.bits(colorShift+5, 5), t.bits(colorShift+10, 5))
}

// WithColor sets the colour from 5-bit sRGB channels (0-31).
func (t Tile) WithColor(c geom.Vec3i) Tile {
	if c.CompMin() < 0 || c.CompMax() > 31 {
		panic(fmt.Sprintf("tile: colour %v out of range", c))
	}
	return t.set(colorShift, colorBits, c.X|c.Y<<5|c.Z<<10)
}

// ColorRGBA returns the linear-space colour for rendering.
func (t Tile) ColorRGBA() mgl64.Vec4 {
	c := t.Color()
	return mgl64.Vec4{srgbToLinear(c.X), srgbToLinear(c.Y), srgbToLinear(c.Z), 1}
}

func srgbToLinear(v int) float64 {
	s := float64(v) / 31
	if s <= 0.04045 {
		return s / 12.92
	}
	return math.Pow((s+0.055)/1.055, 2.4)
}

func (t Tile) Shape() int { return t.bits(shapeShift, shapeBits) }

// Shaped reports whether the tile is a partial cube. Shaped tiles only exist
// at unit cell granularity.
func (t Tile) Shaped() bool { return t.Shape() != 0 }

func (t Tile) String() string {
	if t.Empty() {
		return "Empty"
	}
	c := t.ColorRGBA()
	hex := func(v float64) int { return min(int(v*256), 255) }
	s := fmt.Sprintf("Tile{#%02x%02x%02x hp=%d", hex(c[0]), hex(c[1]), hex(c[2]), t.HP())
	if t.Shaped() {
		s += fmt.Sprintf(" shape=%d", t.Shape())
	}
	return s + "}"
}
