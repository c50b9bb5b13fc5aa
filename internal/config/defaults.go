package config

import (
	_ "embed"
)

//go:embed defaults/snakelab.yaml
var defaultYAML []byte

// Default returns the hard-coded configuration, used when even the embedded
// YAML cannot be parsed.
func Default() Config {
	return Config{
		Board: BoardConfig{
			Width:  20,
			Height: 20,
		},
		AI: AIConfig{
			Strategy:        "strong",
			Speed:           "normal",
			ScriptTimeoutMs: 50,
		},
		Play: PlayConfig{
			TickMs:    150,
			MinTickMs: 60,
			Difficulty: DifficultyConfig{
				Enabled:      true,
				InitialLevel: 0.0,
				Progression: ProgressionConfig{
					Type:  "score",
					MaxAt: 50,
				},
			},
		},
		Storage: StorageConfig{
			Path:         "~/.snakelab/runs.db",
			Trajectories: "~/.snakelab/trajectories",
		},
		SSH: SSHConfig{
			Address:            ":23234",
			IdleTimeoutMinutes: 30,
		},
		Stream: StreamConfig{
			Address:  ":8080",
			Strategy: "hamiltonian",
			Speed:    "fast",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
