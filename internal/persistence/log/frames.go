// Package log writes the frame event log: one compressed JSON line per
// simulated frame.
package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/klauspost/compress/zstd"

	"voxelsea.ai/internal/sim/sea"
)

// FrameEntry is one line of the frame log.
type FrameEntry struct {
	Frame     int            `json:"frame"`
	UnixMS    int64          `json:"unix_ms"`
	Level     string         `json:"level"`
	Stats     sea.FrameStats `json:"stats"`
	Destroyed []string       `json:"destroyed,omitempty"`
}

// NewFrameEntry builds the log line of one frame's statistics.
func NewFrameEntry(level string, unixMS int64, st sea.FrameStats) FrameEntry {
	e := FrameEntry{Frame: st.Frame, UnixMS: unixMS, Level: level, Stats: st}
	for _, id := range st.Ticks.Destroyed {
		e.Destroyed = append(e.Destroyed, id.String())
	}
	return e
}

type FrameLogger struct{ w *JSONLZstdWriter }

// NewFrameLogger writes under <dataDir>/events.
func NewFrameLogger(dataDir string) *FrameLogger {
	return &FrameLogger{w: NewJSONLZstdWriter(filepath.Join(dataDir, "events"), "events")}
}

func (l *FrameLogger) WriteFrame(e FrameEntry) error { return l.w.Write(e) }
func (l *FrameLogger) Close() error                  { return l.w.Close() }

// FrameFiles lists the frame log files of dataDir, oldest first.
func FrameFiles(dataDir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dataDir, "events", "events-*.jsonl.zst"))
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

// ReadFrames decodes every entry of one frame log file.
func ReadFrames(path string) ([]FrameEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer dec.Close()

	var out []FrameEntry
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		var e FrameEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return out, fmt.Errorf("%s line %d: %w", path, len(out)+1, err)
		}
		out = append(out, e)
	}
	if err := sc.Err(); err != nil {
		return out, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}
