// Package indexdb keeps a queryable SQLite index of the frame log. The
// compressed JSONL log stays the source of truth; rows are dropped rather
// than stalling the simulation when the writer falls behind.
package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"voxelsea.ai/internal/sim/sea"
	"voxelsea.ai/internal/sim/tuning"
)

type SQLiteIndex struct {
	db *sql.DB

	ch chan frameReq
	// an open batch is committed at least this often
	flushEvery time.Duration
	wg         sync.WaitGroup
	once       sync.Once

	closed     atomic.Bool
	dropFrames atomic.Uint64
	written    atomic.Uint64
}

type frameReq struct {
	level string
	at    time.Time
	stats sea.FrameStats
}

// Stats reports the writer queue.
type Stats struct {
	QueueDepth     int    `json:"queue_depth"`
	QueueCapacity  int    `json:"queue_capacity"`
	DropFrameTotal uint64 `json:"drop_frame_total"`
	FramesWritten  uint64 `json:"frames_written"`
}

// FrameRow is one row of the frames table.
type FrameRow struct {
	Frame     int
	Level     string
	Islands   int
	Sprites   int
	Voxels    int
	Inserted  int
	Updated   int
	Deleted   int
	Contacts  int
	Hits      int
	TileEdits int
	Destroyed int
}

const (
	queueSize     = 4096
	flushInterval = 500 * time.Millisecond
)

func OpenSQLite(path string) (*SQLiteIndex, error) {
	return openSQLite(path, flushInterval)
}

func openSQLite(path string, flushEvery time.Duration) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	s := &SQLiteIndex{db: db, ch: make(chan frameReq, queueSize), flushEvery: flushEvery}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	for _, p := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	} {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS frames (
			frame INTEGER PRIMARY KEY,
			level TEXT NOT NULL,
			recorded_at TEXT NOT NULL,
			islands INTEGER NOT NULL,
			sprites INTEGER NOT NULL,
			voxels INTEGER NOT NULL,
			inserted INTEGER NOT NULL,
			updated INTEGER NOT NULL,
			deleted INTEGER NOT NULL,
			contacts INTEGER NOT NULL,
			hits INTEGER NOT NULL,
			tile_edits INTEGER NOT NULL,
			destroyed INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tile_edits (
			frame INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			z INTEGER NOT NULL,
			from_tile INTEGER NOT NULL,
			to_tile INTEGER NOT NULL,
			PRIMARY KEY (frame, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tile_edits_pos ON tile_edits(x, z, y, frame);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// WriteFrame queues one frame's statistics and edits.
func (s *SQLiteIndex) WriteFrame(level string, st sea.FrameStats) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- frameReq{level: level, at: time.Now().UTC(), stats: st}:
	default:
		s.dropFrames.Add(1)
	}
}

func (s *SQLiteIndex) Stats() Stats {
	return Stats{
		QueueDepth:     len(s.ch),
		QueueCapacity:  cap(s.ch),
		DropFrameTotal: s.dropFrames.Load(),
		FramesWritten:  s.written.Load(),
	}
}

// UpsertTuning records the tuning in effect, keyed by its digest.
func (s *SQLiteIndex) UpsertTuning(ctx context.Context, t tuning.Tuning) error {
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	sum := sha256.Sum256(b)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for k, v := range map[string]string{
		"schema_version": "1",
		"tuning":         string(b),
		"tuning_digest":  hex.EncodeToString(sum[:]),
	} {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO meta(key,value) VALUES(?,?)`, k, v); err != nil {
			return fmt.Errorf("meta %s: %w", k, err)
		}
	}
	return tx.Commit()
}

// Meta reads one meta value.
func (s *SQLiteIndex) Meta(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key=?`, key).Scan(&v)
	return v, err
}

// Frames returns the indexed frames in [from, to).
func (s *SQLiteIndex) Frames(ctx context.Context, from, to int) ([]FrameRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT frame,level,islands,sprites,voxels,inserted,updated,deleted,contacts,hits,tile_edits,destroyed
		FROM frames WHERE frame >= ? AND frame < ? ORDER BY frame`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []FrameRow
	for rows.Next() {
		var r FrameRow
		if err := rows.Scan(&r.Frame, &r.Level, &r.Islands, &r.Sprites, &r.Voxels, &r.Inserted, &r.Updated,
			&r.Deleted, &r.Contacts, &r.Hits, &r.TileEdits, &r.Destroyed); err != nil {
			return out, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// EditsAt counts the indexed tile edits of one cell.
func (s *SQLiteIndex) EditsAt(ctx context.Context, x, y, z int) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tile_edits WHERE x=? AND y=? AND z=?`, x, y, z).Scan(&n)
	return n, err
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertFrame, _ := s.db.Prepare(`INSERT OR REPLACE INTO frames(frame,level,recorded_at,islands,sprites,voxels,inserted,updated,deleted,contacts,hits,tile_edits,destroyed) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	insertEdit, _ := s.db.Prepare(`INSERT OR REPLACE INTO tile_edits(frame,seq,x,y,z,from_tile,to_tile) VALUES(?,?,?,?,?,?,?)`)
	defer func() {
		if insertFrame != nil {
			_ = insertFrame.Close()
		}
		if insertEdit != nil {
			_ = insertEdit.Close()
		}
	}()
	if insertFrame == nil || insertEdit == nil {
		for range s.ch {
			s.dropFrames.Add(1)
		}
		return
	}

	// Frames count as written only once their batch commits; a failed
	// batch is counted as dropped as a whole.
	var (
		tx          *sql.Tx
		ops         int
		batch       uint64
		opened      time.Time
		commitEvery = 2000
	)
	begin := func() {
		if tx != nil {
			return
		}
		t, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx, ops, batch, opened = t, 0, 0, time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		if err := tx.Commit(); err != nil {
			s.dropFrames.Add(batch)
		} else {
			s.written.Add(batch)
		}
		tx, ops, batch = nil, 0, 0
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		s.dropFrames.Add(batch)
		tx, ops, batch = nil, 0, 0
	}

	flush := time.NewTicker(s.flushEvery)
	defer flush.Stop()
	for {
		select {
		case r, ok := <-s.ch:
			if !ok {
				commit()
				return
			}
			begin()
			if tx == nil {
				s.dropFrames.Add(1)
				continue
			}
			if err := writeFrame(tx.Stmt(insertFrame), tx.Stmt(insertEdit), r); err != nil {
				rollback()
				s.dropFrames.Add(1)
				continue
			}
			batch++
			ops += 1 + len(r.stats.Ticks.Edits)
			if ops >= commitEvery || time.Since(opened) >= s.flushEvery {
				commit()
			}
		case <-flush.C:
			// an idle writer must not hold a batch, or the connection, open
			commit()
		}
	}
}

func writeFrame(frame, edit *sql.Stmt, r frameReq) error {
	st := r.stats
	if _, err := frame.Exec(st.Frame, r.level, r.at.Format(time.RFC3339Nano), st.Islands, st.Sprites,
		st.Sync.Voxels, st.Sync.Inserted, st.Sync.Updated, st.Sync.Deleted,
		st.Ticks.Contacts, st.Ticks.Hits, len(st.Ticks.Edits), st.Destroyed); err != nil {
		return err
	}
	for i, e := range st.Ticks.Edits {
		if _, err := edit.Exec(st.Frame, i, e.Cell.X, e.Cell.Y, e.Cell.Z, int64(e.From), int64(e.To)); err != nil {
			return err
		}
	}
	return nil
}
