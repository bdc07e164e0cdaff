package tuning

import (
	"fmt"
	"math/bits"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	GridSize int    `yaml:"grid_size"`
	Level    string `yaml:"level"`
	Seed     int64  `yaml:"seed"`

	FrameRateHz   int `yaml:"frame_rate_hz"`
	TicksPerFrame int `yaml:"ticks_per_frame"`
	// TickSize is the physics step in seconds; 0 means one tick's share of
	// a frame.
	TickSize float64   `yaml:"tick_size"`
	Gravity  []float64 `yaml:"gravity"`

	VoxelOverlap   float64 `yaml:"voxel_overlap"`
	ContactMu      float64 `yaml:"contact_mu"`
	EffectFrames   int     `yaml:"effect_frames"`
	SyncProbeSteps int     `yaml:"sync_probe_steps"`
}

func Defaults() Tuning {
	return Tuning{
		GridSize:       256,
		Level:          "Demo",
		FrameRateHz:    60,
		TicksPerFrame:  10,
		TickSize:       1. / 600,
		Gravity:        []float64{0, -10, 0},
		VoxelOverlap:   .01,
		ContactMu:      .5,
		EffectFrames:   20,
		SyncProbeSteps: 3,
	}
}

// Load reads a tuning file over Defaults, so fields it leaves unset keep
// their defaults and an explicit zero is kept as written.
func Load(path string) (Tuning, error) {
	t := Defaults()
	t.TickSize = 0
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if t.TickSize == 0 {
		t.TickSize = 1 / float64(t.FrameRateHz*t.TicksPerFrame)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.GridSize <= 0 || bits.OnesCount(uint(t.GridSize)) != 1 {
		return fmt.Errorf("grid_size %d is not a power of two", t.GridSize)
	}
	if t.FrameRateHz <= 0 || t.TicksPerFrame <= 0 {
		return fmt.Errorf("frame_rate_hz and ticks_per_frame must be positive")
	}
	if t.TickSize < 0 {
		return fmt.Errorf("tick_size %v is negative", t.TickSize)
	}
	if len(t.Gravity) != 3 {
		return fmt.Errorf("gravity needs 3 components, got %d", len(t.Gravity))
	}
	if t.VoxelOverlap < 0 || t.VoxelOverlap >= .5 {
		return fmt.Errorf("voxel_overlap %v out of [0, 0.5)", t.VoxelOverlap)
	}
	if t.EffectFrames < 0 || t.SyncProbeSteps < 0 {
		return fmt.Errorf("effect_frames and sync_probe_steps must not be negative")
	}
	return nil
}
