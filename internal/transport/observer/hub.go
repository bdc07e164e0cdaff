package observer

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"

	"voxelsea.ai/internal/observerproto"
	"voxelsea.ai/internal/sim/control"
	"voxelsea.ai/internal/sim/geom"
	"voxelsea.ai/internal/sim/level"
	"voxelsea.ai/internal/sim/sea"
	"voxelsea.ai/internal/sim/tile"
)

const (
	defaultMaxRegions = 4096
	maxMaxRegions     = 65536
)

type joinReq struct {
	id  string
	out chan []byte
	sub observerproto.SubscribeMsg
}

type subscribeReq struct {
	id  string
	sub observerproto.SubscribeMsg
}

type inputReq struct {
	key   control.Key
	press bool
	mods  control.Mods
}

type session struct {
	id         string
	out        chan []byte
	region     geom.Box
	maxRegions int
	// tiles are owed at the next Publish
	dirty bool
}

// Hub connects websocket sessions to the simulation loop. Sessions talk to
// it through channels, except for leaves, which must never be dropped and
// so go to a locked list. ApplyInputs and Publish are called from the loop
// goroutine, which alone owns the session table.
type Hub struct {
	log *log.Logger

	join      chan joinReq
	subscribe chan subscribeReq
	inputs    chan inputReq

	mu   sync.Mutex
	left []string

	sessions map[string]*session
	frame    atomic.Int64
	boot     atomic.Pointer[observerproto.BootstrapResponse]

	stream sea.SpriteStream
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		log:       logger,
		join:      make(chan joinReq, 64),
		subscribe: make(chan subscribeReq, 256),
		inputs:    make(chan inputReq, 1024),
		sessions:  map[string]*session{},
	}
}

// Frame is the last published frame number. Safe from any goroutine.
func (h *Hub) Frame() int { return int(h.frame.Load()) }

// Sessions is the number of joined sessions. Loop goroutine only.
func (h *Hub) Sessions() int { return len(h.sessions) }

// SetBootstrap records the game parameters served by the bootstrap handler.
func (h *Hub) SetBootstrap(g *level.Game, frameRateHz int) {
	cfg := g.Sea.Config()
	h.boot.Store(&observerproto.BootstrapResponse{
		ProtocolVersion: observerproto.Version,
		Level:           g.Name,
		GridParams: observerproto.GridParams{
			Size:          g.Grid.Size(),
			FrameRateHz:   frameRateHz,
			TicksPerFrame: cfg.TicksPerFrame,
			TickSize:      cfg.TickSize,
			Seed:          g.Seed,
		},
		Meshes: []string{"cube", "ramp", "corner1", "corner2", "craft"},
	})
}

func (h *Hub) bootstrap() (observerproto.BootstrapResponse, bool) {
	b := h.boot.Load()
	if b == nil {
		return observerproto.BootstrapResponse{}, false
	}
	out := *b
	out.Frame = h.Frame()
	return out, true
}

// Leave retires a session at the next ApplyInputs. Safe from any goroutine
// and never blocks on the loop.
func (h *Hub) Leave(id string) {
	h.mu.Lock()
	h.left = append(h.left, id)
	h.mu.Unlock()
}

// ApplyInputs handles pending joins, leaves and subscriptions, then feeds
// queued key events to ctl.
func (h *Hub) ApplyInputs(g *level.Game, ctl *control.Controls) {
	// A session joins before it can leave, so every join owed to a leave
	// taken here is already queued and the drain below sees it.
	h.mu.Lock()
	left := h.left
	h.left = nil
	h.mu.Unlock()

	for drained := false; !drained; {
		select {
		case j := <-h.join:
			s := &session{id: j.id, out: j.out}
			h.resubscribe(g, s, j.sub)
			h.sessions[j.id] = s
			h.log.Printf("observer %s joined region=%v", j.id, s.region)
		default:
			drained = true
		}
	}
	for _, id := range left {
		if _, ok := h.sessions[id]; ok {
			delete(h.sessions, id)
			h.log.Printf("observer %s left", id)
		}
	}

	for {
		select {
		case r := <-h.subscribe:
			if s := h.sessions[r.id]; s != nil {
				h.resubscribe(g, s, r.sub)
			}
		case in := <-h.inputs:
			if ctl != nil {
				ctl.InputKey(in.press, in.key, in.mods)
			}
		default:
			return
		}
	}
}

func (h *Hub) resubscribe(g *level.Game, s *session, sub observerproto.SubscribeMsg) {
	bounds := g.Grid.Bounds()
	s.region = bounds
	if sub.Region != nil {
		r := sub.Region
		s.region = geom.BoxAt(geom.V(r.Min[0], r.Min[1], r.Min[2]), geom.V(r.Size[0], r.Size[1], r.Size[2]).Max(geom.Splat(0))).Intersection(bounds)
	}
	s.maxRegions = sub.MaxRegions
	if s.maxRegions <= 0 {
		s.maxRegions = defaultMaxRegions
	}
	if s.maxRegions > maxMaxRegions {
		s.maxRegions = maxMaxRegions
	}
	s.dirty = true
}

// Publish sends owed TILES messages, then one FRAME to every session.
// Sessions whose queue is full miss the frame.
func (h *Hub) Publish(g *level.Game, st sea.FrameStats) {
	h.frame.Store(int64(st.Frame))
	if len(h.sessions) == 0 {
		return
	}
	for _, s := range h.sessions {
		if !s.dirty {
			continue
		}
		b, err := json.Marshal(h.tiles(g, s, st.Frame))
		if err != nil {
			h.log.Printf("observer tiles: %v", err)
			continue
		}
		select {
		case s.out <- b:
			s.dirty = false
		default:
		}
	}

	b, err := json.Marshal(h.frameMsg(g, st))
	if err != nil {
		h.log.Printf("observer frame: %v", err)
		return
	}
	for _, s := range h.sessions {
		if s.dirty {
			continue
		}
		select {
		case s.out <- b:
		default:
		}
	}
}

func (h *Hub) tiles(g *level.Game, s *session, frame int) observerproto.TilesMsg {
	msg := observerproto.TilesMsg{
		Type:            observerproto.TypeTiles,
		ProtocolVersion: observerproto.Version,
		Frame:           frame,
		Region:          region(s.region),
		Tiles:           []observerproto.TileRegion{},
	}
	if s.region.Empty() {
		return msg
	}
	for b, t := range g.Grid.Tiles(s.region) {
		if len(msg.Tiles) == s.maxRegions {
			msg.Truncated = true
			break
		}
		msg.Tiles = append(msg.Tiles, observerproto.TileRegion{
			Min:   ivec(b.P0()),
			Size:  [3]int{b.Size(), b.Size(), b.Size()},
			HP:    t.HP(),
			Color: ivec(t.Color()),
			Shape: t.Shape(),
		})
	}
	return msg
}

func (h *Hub) frameMsg(g *level.Game, st sea.FrameStats) observerproto.FrameMsg {
	h.stream.Reset()
	g.Sea.Render(&h.stream)
	msg := observerproto.FrameMsg{
		Type:            observerproto.TypeFrame,
		ProtocolVersion: observerproto.Version,
		Frame:           st.Frame,
		Items:           make([]observerproto.DrawItem, 0, len(h.stream.Items)),
		Effects:         []observerproto.Effect{},
		Stats: observerproto.FrameStats{
			Islands:   st.Islands,
			Sprites:   st.Sprites,
			Voxels:    st.Sync.Voxels,
			Inserted:  st.Sync.Inserted,
			Updated:   st.Sync.Updated,
			Deleted:   st.Sync.Deleted,
			Contacts:  st.Ticks.Contacts,
			Hits:      st.Ticks.Hits,
			Destroyed: st.Destroyed,
		},
	}
	for _, it := range h.stream.Items {
		q := it.Loc.Q
		msg.Items = append(msg.Items, observerproto.DrawItem{
			Kind:   it.Kind.String(),
			Mesh:   it.Mesh,
			Pos:    [3]float64{it.Loc.P[0], it.Loc.P[1], it.Loc.P[2]},
			Quat:   [4]float64{q.W, q.V[0], q.V[1], q.V[2]},
			Radius: it.Radius,
		})
	}
	for _, fx := range g.Sea.Effects().All() {
		msg.Effects = append(msg.Effects, observerproto.Effect{Min: ivec(fx.Box.P0()), Size: fx.Box.Size(), Age: fx.Age})
	}
	for _, e := range st.Ticks.Edits {
		msg.Edits = append(msg.Edits, tileEdit(e.Cell, e.To))
	}
	return msg
}

func tileEdit(p geom.Vec3i, t tile.Tile) observerproto.TileEdit {
	return observerproto.TileEdit{Pos: ivec(p), HP: t.HP(), Color: ivec(t.Color()), Shape: t.Shape()}
}

func ivec(v geom.Vec3i) [3]int { return [3]int{v.X, v.Y, v.Z} }

func region(b geom.Box) observerproto.Region {
	return observerproto.Region{Min: ivec(b.P0()), Size: ivec(b.Size())}
}
