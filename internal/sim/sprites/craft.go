package sprites

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"voxelsea.ai/internal/sim/control"
	"voxelsea.ai/internal/sim/geom"
	"voxelsea.ai/internal/sim/physics"
	"voxelsea.ai/internal/sim/sea"
)

// Craft controls.
const (
	ControlThrust = iota
	ControlStrafe
	ControlPitch
	ControlTurn
	ControlBlast
	ControlBall
	ControlEngine
)

const (
	craftScale = .5
	// HoverLevel is the height the thrusters hold above the voxels below.
	HoverLevel   = 5.
	numThrusters = 37
	thrusterK    = .05

	blastCooldown = 5
	ballCooldown  = 25
)

// CraftSize is the extent of the craft's collision box.
var CraftSize = mgl64.Vec3{4, 1, 6}.Mul(craftScale)

// motor drives the body's velocity along a body-frame axis towards vel,
// using at most fmax force (or torque).
type motor struct {
	axis mgl64.Vec3
	vel  float64
	fmax float64
}

// Thruster is one hover jet: a point under the craft pushing away from the
// voxels its ray finds.
type Thruster struct {
	Loc      geom.DLoc
	Hit      bool
	Distance float64
}

// Craft is the player's hovercraft.
type Craft struct {
	sea.Base

	Engine    bool
	Thrusters [numThrusters]Thruster

	thruster, strafer       motor
	turner, pitcher, roller motor
	blastCooldown           int
	ballCooldown            int
}

func NewCraft() *Craft {
	c := &Craft{
		Engine:   true,
		thruster: motor{axis: mgl64.Vec3{0, 0, -1}},
		strafer:  motor{axis: mgl64.Vec3{1, 0, 0}},
		turner:   motor{axis: mgl64.Vec3{0, -1, 0}},
		pitcher:  motor{axis: mgl64.Vec3{1, 0, 0}},
		roller:   motor{axis: mgl64.Vec3{0, 0, -1}},
	}
	// rings of 12 at radius 3, 6 and 9 around one centre jet, pointing down
	down := mgl64.QuatRotate(-math.Pi/2, mgl64.Vec3{1, 0, 0})
	for i := range c.Thrusters {
		ring := float64((i + 11) / 12)
		angle := 2 * math.Pi * float64((i+11)%12) / 12
		p := mgl64.QuatRotate(angle, mgl64.Vec3{0, 1, 0}).Rotate(mgl64.Vec3{0, 0, 3 * ring})
		c.Thrusters[i].Loc = geom.DLoc{P: p.Mul(craftScale), Q: down}
	}
	return c
}

func (c *Craft) Placed(s *sea.Sprite) {
	w := s.World()
	s.Attach(w.NewBox(s.Island().SpriteSpace(), CraftSize, geom.DIdent()))
	w.SetMass(s.Body(), 1)
}

func (c *Craft) BeforeTick(s *sea.Sprite) {
	w := s.World()
	body := s.Body()
	dt := s.Island().Config().TickSize

	if c.Engine {
		c.hover(s, w, body)
	}
	bl := w.BodyLocation(body)
	v := w.LinearVelocity(body)
	for _, m := range []*motor{&c.thruster, &c.strafer} {
		if f, ok := m.drive(bl.Q, v, dt); ok {
			w.AddForce(body, f)
		}
	}
	av := w.AngularVelocity(body)
	for _, m := range []*motor{&c.turner, &c.pitcher, &c.roller} {
		if t, ok := m.drive(bl.Q, av, dt); ok {
			w.AddTorque(body, t)
		}
	}
}

func (m *motor) drive(q mgl64.Quat, v mgl64.Vec3, dt float64) (mgl64.Vec3, bool) {
	if m.fmax == 0 {
		return mgl64.Vec3{}, false
	}
	a := q.Rotate(m.axis)
	f := mgl64.Clamp((m.vel-v.Dot(a))/dt, -m.fmax, m.fmax)
	return a.Mul(f), true
}

// hover pushes each thruster away from the voxels below it, damped by the
// thruster's own velocity along its ray.
func (c *Craft) hover(s *sea.Sprite, w physics.World, body physics.BodyID) {
	bl := w.BodyLocation(body)
	v := w.LinearVelocity(body)
	av := w.AngularVelocity(body)
	space := s.Island().VoxelSpace()
	for i := range c.Thrusters {
		t := &c.Thrusters[i]
		tl := bl.Mul(t.Loc)
		dir := tl.Q.Rotate(mgl64.Vec3{0, 0, -1})
		t.Distance, t.Hit = w.RayCast(space, tl.P, dir, 2*HoverLevel)
		if !t.Hit {
			continue
		}
		r := tl.P.Sub(bl.P)
		pv := v.Add(av.Cross(r))
		f := dir.Mul(-thrusterK * (2*math.Pow(HoverLevel-t.Distance, 3) + pv.Dot(dir)))
		w.AddForce(body, f)
		w.AddTorque(body, r.Cross(f))
	}
}

// InitControls binds the craft's keys.
func (c *Craft) InitControls(ctl *control.Controls) {
	ctl.Axis(ControlThrust, 'S', 'W')
	ctl.Axis(ControlStrafe, 'A', 'D')
	ctl.Axis(ControlPitch, control.KeyUp, control.KeyDown)
	ctl.Axis(ControlTurn, control.KeyLeft, control.KeyRight)
	ctl.Trigger(ControlBlast, control.KeyLeftControl)
	ctl.Release(ControlBall, 'B')
	ctl.Toggle(ControlEngine, 'R', true)
}

// Input reads the controls once per frame: it sets the motors and fires
// bolts and balls when their cooldowns allow.
func (c *Craft) Input(s *sea.Sprite, ctl *control.Controls) {
	thrust := ctl.Get(ControlThrust)
	c.thruster.vel, c.thruster.fmax = 0, 0
	if thrust > 0 {
		c.thruster.vel, c.thruster.fmax = 25, 30
	} else if thrust < 0 {
		c.thruster.vel, c.thruster.fmax = -5, 30
	}

	strafe := ctl.Get(ControlStrafe)
	c.strafer.vel, c.strafer.fmax = float64(strafe*10), pick(strafe != 0, 30, 0)

	pitch := ctl.Get(ControlPitch)
	c.pitcher.vel, c.pitcher.fmax = float64(pitch*20), pick(pitch != 0, 10, 1)

	// a weak turner also damps spinning
	turn := ctl.Get(ControlTurn)
	c.turner.vel, c.turner.fmax = float64(turn*15), pick(turn != 0, 10, 5)

	l := s.Location()
	if c.blastCooldown > 0 {
		c.blastCooldown--
	} else if ctl.Get(ControlBlast) != 0 {
		c.blastCooldown = blastCooldown
		for _, x := range []float64{-.2, .2} {
			p := mgl64.Vec3{x, 0, -5}.Mul(craftScale)
			s.Island().Create(NewBolt(), geom.DLoc{P: l.Apply(p), Q: l.Q})
		}
	}

	if c.ballCooldown > 0 {
		c.ballCooldown--
	} else if ctl.Get(ControlBall) != 0 {
		c.ballCooldown = ballCooldown
		p := mgl64.Vec3{0, -2, 0}.Mul(craftScale)
		ball := s.Island().Create(&Ball{}, geom.DLoc{P: l.Apply(p), Q: l.Q})
		w := s.World()
		r := l.Q.Rotate(p)
		v := w.LinearVelocity(s.Body()).Add(w.AngularVelocity(s.Body()).Cross(r))
		w.SetLinearVelocity(ball.Body(), v)
	}

	c.Engine = ctl.Get(ControlEngine) != 0
}

func pick(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}

func (c *Craft) Render(s *sea.Sprite, out *sea.SpriteStream) {
	out.PushMesh("craft", s.Location())
}
