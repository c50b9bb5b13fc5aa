// Package config provides YAML-based configuration loading for snakelab:
// board size, AI defaults, human play pacing, storage and servers.
package config

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/snakelab/internal/ai"
	"github.com/vovakirdan/snakelab/internal/engine"
	"github.com/vovakirdan/snakelab/internal/sim"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the whole snakelab configuration file.
type Config struct {
	Board   BoardConfig   `yaml:"board"`
	AI      AIConfig      `yaml:"ai"`
	Play    PlayConfig    `yaml:"play"`
	Storage StorageConfig `yaml:"storage"`
	SSH     SSHConfig     `yaml:"ssh"`
	Stream  StreamConfig  `yaml:"stream"`
	Log     LogConfig     `yaml:"log"`
}

// BoardConfig sets the grid size for new games.
type BoardConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// AIConfig sets the defaults for AI-driven games.
type AIConfig struct {
	Strategy        string `yaml:"strategy"`
	Speed           string `yaml:"speed"`
	Script          string `yaml:"script"`            // Path to a custom strategy script
	ScriptTimeoutMs int    `yaml:"script_timeout_ms"` // Per-move script budget
	MaxTicks        uint64 `yaml:"max_ticks"`         // 0 = derived from board size
	Seed            int64  `yaml:"seed"`              // 0 = random based on time
}

// PlayConfig paces human games.
type PlayConfig struct {
	TickMs     int              `yaml:"tick_ms"`
	MinTickMs  int              `yaml:"min_tick_ms"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
}

// StorageConfig locates persisted data.
type StorageConfig struct {
	Path         string `yaml:"path"`
	Trajectories string `yaml:"trajectories"` // Directory for Parquet exports
}

// SSHConfig configures the SSH server.
type SSHConfig struct {
	Address            string `yaml:"address"`
	HostKey            string `yaml:"host_key"`
	IdleTimeoutMinutes int    `yaml:"idle_timeout_minutes"`
}

// StreamConfig configures the websocket spectator server.
type StreamConfig struct {
	Address  string `yaml:"address"`
	Strategy string `yaml:"strategy"`
	Speed    string `yaml:"speed"`
}

// LogConfig sets the log level: debug, info, warn or error.
type LogConfig struct {
	Level string `yaml:"level"`
}

// ParsedStrategy returns the parsed AI strategy.
func (c AIConfig) ParsedStrategy() (ai.Strategy, error) {
	return ai.ParseStrategy(c.Strategy)
}

// ParsedSpeed returns the parsed AI speed.
func (c AIConfig) ParsedSpeed() (sim.Speed, error) {
	return sim.ParseSpeed(c.Speed)
}

// Validate reports the first invalid value.
func (c Config) Validate() error {
	if c.Board.Width < engine.MinBoardSize || c.Board.Height < engine.MinBoardSize {
		return fmt.Errorf("%w: board must be at least %dx%d, got %dx%d",
			ErrInvalid, engine.MinBoardSize, engine.MinBoardSize, c.Board.Width, c.Board.Height)
	}
	if _, err := ai.ParseStrategy(c.AI.Strategy); err != nil {
		return fmt.Errorf("%w: ai.strategy: %w", ErrInvalid, err)
	}
	if _, err := sim.ParseSpeed(c.AI.Speed); err != nil {
		return fmt.Errorf("%w: ai.speed: %w", ErrInvalid, err)
	}
	if c.AI.ScriptTimeoutMs < 0 {
		return fmt.Errorf("%w: ai.script_timeout_ms must not be negative", ErrInvalid)
	}
	if c.Play.TickMs <= 0 {
		return fmt.Errorf("%w: play.tick_ms must be positive, got %d", ErrInvalid, c.Play.TickMs)
	}
	if c.Play.MinTickMs <= 0 || c.Play.MinTickMs > c.Play.TickMs {
		return fmt.Errorf("%w: play.min_tick_ms must be in 1..%d, got %d", ErrInvalid, c.Play.TickMs, c.Play.MinTickMs)
	}
	switch c.Play.Difficulty.Progression.Type {
	case "score", "time", "none":
	default:
		return fmt.Errorf("%w: play.difficulty.progression.type %q", ErrInvalid, c.Play.Difficulty.Progression.Type)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("%w: storage.path is empty", ErrInvalid)
	}
	if _, err := ai.ParseStrategy(c.Stream.Strategy); err != nil {
		return fmt.Errorf("%w: stream.strategy: %w", ErrInvalid, err)
	}
	if _, err := sim.ParseSpeed(c.Stream.Speed); err != nil {
		return fmt.Errorf("%w: stream.speed: %w", ErrInvalid, err)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	return nil
}
