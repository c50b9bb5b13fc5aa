package config

import (
	"fmt"
	"math"
	"time"
)

// DifficultyConfig defines how human play speeds up.
type DifficultyConfig struct {
	Enabled      bool              `yaml:"enabled"`
	InitialLevel float64           `yaml:"initial_level"` // 0.0 = slowest, 1.0 = fastest
	Progression  ProgressionConfig `yaml:"progression"`
}

// ProgressionConfig defines how difficulty increases over a game.
type ProgressionConfig struct {
	Type  string `yaml:"type"`   // "score", "time", or "none"
	MaxAt int    `yaml:"max_at"` // Score/ticks at which max difficulty is reached
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParseDifficultyPreset accepts easy, normal, hard or fixed.
func ParseDifficultyPreset(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(s); p {
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, nil
	}
	return "", fmt.Errorf("unknown difficulty %q (want easy, normal, hard or fixed)", s)
}

// InitialLevelForPreset returns the initial_level for a difficulty preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyNormal:
		return 0.3
	case DifficultyHard:
		return 0.7
	default:
		return 0.0
	}
}

// ApplyPreset modifies the play config based on a difficulty preset.
func ApplyPreset(cfg *PlayConfig, preset DifficultyPreset) {
	if preset == DifficultyFixed {
		cfg.Difficulty.Enabled = false
		return
	}
	cfg.Difficulty.Enabled = true
	cfg.Difficulty.InitialLevel = InitialLevelForPreset(preset)
}

// DifficultyManager derives the human tick interval from score and ticks.
type DifficultyManager struct {
	cfg          DifficultyConfig
	initialLevel float64
	base         time.Duration
	fastest      time.Duration
}

// NewDifficultyManager creates a difficulty manager for the given play config.
func NewDifficultyManager(cfg PlayConfig) *DifficultyManager {
	base := time.Duration(cfg.TickMs) * time.Millisecond
	fastest := time.Duration(cfg.MinTickMs) * time.Millisecond
	if fastest <= 0 || fastest > base {
		fastest = base
	}
	return &DifficultyManager{
		cfg:          cfg.Difficulty,
		initialLevel: clampF(cfg.Difficulty.InitialLevel, 0.0, 1.0),
		base:         base,
		fastest:      fastest,
	}
}

// IsEnabled returns whether difficulty progression is active.
func (d *DifficultyManager) IsEnabled() bool {
	return d.cfg.Enabled && d.cfg.Progression.Type != "none"
}

// Level returns the current difficulty level (0.0 to 1.0) based on score/ticks.
func (d *DifficultyManager) Level(score int, ticks uint64) float64 {
	if !d.cfg.Enabled {
		return 0
	}

	maxAt := float64(d.cfg.Progression.MaxAt)
	if maxAt <= 0 {
		maxAt = 1
	}

	var progress float64
	switch d.cfg.Progression.Type {
	case "score":
		progress = float64(score) / maxAt
	case "time":
		progress = float64(ticks) / maxAt
	default:
		return d.initialLevel
	}

	progress = clampF(progress, 0.0, 1.0)
	return d.initialLevel + progress*(1.0-d.initialLevel)
}

// Interval returns the tick interval for the current level, interpolated
// from tick_ms down to min_tick_ms.
func (d *DifficultyManager) Interval(score int, ticks uint64) time.Duration {
	level := d.Level(score, ticks)
	span := float64(d.base - d.fastest)
	return d.base - time.Duration(level*span)
}

// clampF restricts a float64 to [lo, hi].
func clampF(val, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, val))
}
