package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"voxelsea.ai/internal/persistence/indexdb"
	persistlog "voxelsea.ai/internal/persistence/log"
	"voxelsea.ai/internal/sim/level"
	"voxelsea.ai/internal/sim/sea"
	"voxelsea.ai/internal/transport/observer"
)

type frameIndex interface {
	WriteFrame(level string, st sea.FrameStats)
}

// runner owns the game and drives it one frame at a time. Everything but
// the metrics handler runs on the loop goroutine.
type runner struct {
	game     *level.Game
	hub      *observer.Hub
	frameLog *persistlog.FrameLogger
	index    frameIndex
	logger   *log.Logger
	now      func() time.Time

	last   atomic.Pointer[sea.FrameStats]
	stepNS atomic.Int64
	logErr bool
}

// run steps frames until ctx is done or n frames have run (n <= 0 means no
// limit). A positive period paces the loop.
func (r *runner) run(ctx context.Context, n int, period time.Duration) error {
	var tick <-chan time.Time
	if period > 0 {
		t := time.NewTicker(period)
		defer t.Stop()
		tick = t.C
	}
	for i := 0; n <= 0 || i < n; i++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		r.step()
	}
	return nil
}

func (r *runner) step() sea.FrameStats {
	now := time.Now
	if r.now != nil {
		now = r.now
	}
	start := now()
	if r.hub != nil {
		r.hub.ApplyInputs(r.game, r.game.Controls)
	}
	st := r.game.Step()
	r.stepNS.Store(int64(now().Sub(start)))
	r.last.Store(&st)

	if r.frameLog != nil {
		if err := r.frameLog.WriteFrame(persistlog.NewFrameEntry(r.game.Name, start.UnixMilli(), st)); err != nil {
			if !r.logErr {
				r.logger.Printf("frame log: %v", err)
			}
			r.logErr = true
		} else {
			r.logErr = false
		}
	}
	if r.index != nil {
		r.index.WriteFrame(r.game.Name, st)
	}
	if r.hub != nil {
		r.hub.Publish(r.game, st)
	}
	if len(st.Ticks.Destroyed) > 0 {
		r.logger.Printf("frame=%d destroyed=%v", st.Frame, st.Ticks.Destroyed)
	}
	return st
}

func (r *runner) metricsHandler(idx *indexdb.SQLiteIndex) http.HandlerFunc {
	name := r.game.Name
	return func(rw http.ResponseWriter, _ *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		var st sea.FrameStats
		if p := r.last.Load(); p != nil {
			st = *p
		}

		// Minimal Prometheus exposition format.
		fmt.Fprintf(rw, "# HELP voxsim_frame Last simulated frame.\n")
		fmt.Fprintf(rw, "# TYPE voxsim_frame gauge\n")
		fmt.Fprintf(rw, "voxsim_frame{level=%q} %d\n", name, st.Frame)

		fmt.Fprintf(rw, "# HELP voxsim_sprites Live sprites.\n")
		fmt.Fprintf(rw, "# TYPE voxsim_sprites gauge\n")
		fmt.Fprintf(rw, "voxsim_sprites{level=%q} %d\n", name, st.Sprites)

		fmt.Fprintf(rw, "# HELP voxsim_islands Islands.\n")
		fmt.Fprintf(rw, "# TYPE voxsim_islands gauge\n")
		fmt.Fprintf(rw, "voxsim_islands{level=%q} %d\n", name, st.Islands)

		fmt.Fprintf(rw, "# HELP voxsim_voxels Mirrored voxels after the last sync.\n")
		fmt.Fprintf(rw, "# TYPE voxsim_voxels gauge\n")
		fmt.Fprintf(rw, "voxsim_voxels{level=%q} %d\n", name, st.Sync.Voxels)

		fmt.Fprintf(rw, "# HELP voxsim_frame_events Events of the last frame.\n")
		fmt.Fprintf(rw, "# TYPE voxsim_frame_events gauge\n")
		fmt.Fprintf(rw, "voxsim_frame_events{level=%q,event=%q} %d\n", name, "contacts", st.Ticks.Contacts)
		fmt.Fprintf(rw, "voxsim_frame_events{level=%q,event=%q} %d\n", name, "hits", st.Ticks.Hits)
		fmt.Fprintf(rw, "voxsim_frame_events{level=%q,event=%q} %d\n", name, "tile_edits", len(st.Ticks.Edits))
		fmt.Fprintf(rw, "voxsim_frame_events{level=%q,event=%q} %d\n", name, "destroyed", st.Destroyed)

		fmt.Fprintf(rw, "# HELP voxsim_step_ms Last frame step duration in milliseconds.\n")
		fmt.Fprintf(rw, "# TYPE voxsim_step_ms gauge\n")
		fmt.Fprintf(rw, "voxsim_step_ms{level=%q} %.3f\n", name, float64(r.stepNS.Load())/1e6)

		if r.hub != nil {
			fmt.Fprintf(rw, "# HELP voxsim_observer_frame Last frame published to observers.\n")
			fmt.Fprintf(rw, "# TYPE voxsim_observer_frame gauge\n")
			fmt.Fprintf(rw, "voxsim_observer_frame{level=%q} %d\n", name, r.hub.Frame())
		}
		if idx != nil {
			s := idx.Stats()
			fmt.Fprintf(rw, "# HELP voxsim_index_queue_depth Index writer backlog.\n")
			fmt.Fprintf(rw, "# TYPE voxsim_index_queue_depth gauge\n")
			fmt.Fprintf(rw, "voxsim_index_queue_depth %d\n", s.QueueDepth)
			fmt.Fprintf(rw, "# HELP voxsim_index_dropped_total Frames dropped by the index writer.\n")
			fmt.Fprintf(rw, "# TYPE voxsim_index_dropped_total counter\n")
			fmt.Fprintf(rw, "voxsim_index_dropped_total %d\n", s.DropFrameTotal)
		}
	}
}
