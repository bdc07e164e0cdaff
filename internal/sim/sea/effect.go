package sea

import "voxelsea.ai/internal/sim/geom"

// Effect is a short-lived highlight of an edited region.
type Effect struct {
	Box geom.SBox
	Age int
}

// Effects holds live effects in creation order.
type Effects struct {
	lifetime int
	live     []Effect
}

func NewEffects(lifetime int) *Effects { return &Effects{lifetime: lifetime} }

func (e *Effects) Add(b geom.SBox) { e.live = append(e.live, Effect{Box: b}) }

// Step ages every effect by one frame and drops the expired ones.
func (e *Effects) Step() {
	out := e.live[:0]
	for _, fx := range e.live {
		fx.Age++
		if fx.Age < e.lifetime {
			out = append(out, fx)
		}
	}
	e.live = out
}

func (e *Effects) All() []Effect { return e.live }

func (e *Effects) Len() int { return len(e.live) }
