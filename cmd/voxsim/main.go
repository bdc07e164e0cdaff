package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"voxelsea.ai/internal/persistence/indexdb"
	persistlog "voxelsea.ai/internal/persistence/log"
	"voxelsea.ai/internal/sim/level"
	_ "voxelsea.ai/internal/sim/levels"
	"voxelsea.ai/internal/sim/physics"
	"voxelsea.ai/internal/sim/physics/arcade"
	"voxelsea.ai/internal/sim/sea"
	"voxelsea.ai/internal/sim/tuning"
	"voxelsea.ai/internal/transport/observer"
)

func main() {
	var (
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		levelName  = flag.String("level", "", "level to play (default: tuning level, then the first registered)")
		frames     = flag.Int("frames", 0, "frames to simulate (0 runs until interrupted)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite frame index")
		observe    = flag.String("observe", "127.0.0.1:8080", "observer http listen address (empty to disable)")
		realtime   = flag.Bool("realtime", true, "pace frames at frame_rate_hz")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[voxsim] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}
	name := strings.TrimSpace(*levelName)
	if name == "" {
		name = tune.Level
	}

	cfg := sea.DefaultConfig()
	cfg.NewWorld = func() physics.World { return arcade.New() }
	g, err := level.New(name, tune, cfg)
	if err != nil {
		logger.Fatalf("level: %v", err)
	}
	logger.Printf("level=%s grid=%d seed=%d", g.Name, g.Grid.Size(), g.Seed)

	_ = os.MkdirAll(*dataDir, 0o755)
	frameLog := persistlog.NewFrameLogger(*dataDir)
	defer frameLog.Close()

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(*dataDir, "index", "frames.sqlite"))
		if err != nil {
			logger.Fatalf("open index db: %v", err)
		}
		defer idx.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := idx.UpsertTuning(ctx, tune); err != nil {
			logger.Printf("index: upsert tuning: %v", err)
		}
		cancel()
	}

	hub := observer.NewHub(log.New(os.Stdout, "[observer] ", log.LstdFlags|log.Lmicroseconds))
	hub.SetBootstrap(g, tune.FrameRateHz)
	r := &runner{game: g, hub: hub, frameLog: frameLog, logger: logger}
	if idx != nil {
		r.index = idx
	}

	ctx, cancel := signalContext()
	defer cancel()

	var srv *http.Server
	if addr := strings.TrimSpace(*observe); addr != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
			rw.WriteHeader(200)
			_, _ = rw.Write([]byte("ok"))
		})
		mux.HandleFunc("/metrics", r.metricsHandler(idx))
		observer.NewServer(hub, logger).Routes(mux)
		srv = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Printf("observer listening on %s", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Printf("observer http: %v", err)
			}
		}()
	}

	var period time.Duration
	if *realtime && tune.FrameRateHz > 0 {
		period = time.Second / time.Duration(tune.FrameRateHz)
	}
	err = r.run(ctx, *frames, period)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Printf("run: %v", err)
	}
	logger.Printf("stopped at frame=%d sprites=%d", g.Sea.Frame(), g.Sea.Len())

	if srv != nil {
		shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutCtx)
		shutCancel()
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
