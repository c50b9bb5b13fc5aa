package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEmbeddedMatchesDefault(t *testing.T) {
	emb := Embedded()
	def := Default()

	if emb.Board != def.Board {
		t.Errorf("board = %+v, expected %+v", emb.Board, def.Board)
	}
	if emb.AI != def.AI {
		t.Errorf("ai = %+v, expected %+v", emb.AI, def.AI)
	}
	if emb.Play != def.Play {
		t.Errorf("play = %+v, expected %+v", emb.Play, def.Play)
	}
	if emb.Storage != def.Storage || emb.SSH != def.SSH || emb.Stream != def.Stream || emb.Log != def.Log {
		t.Errorf("embedded = %+v, expected %+v", emb, def)
	}
	if err := emb.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadCustomPathOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	data := "board:\n  width: 12\n  height: 8\nai:\n  strategy: hamiltonian\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Board.Width != 12 || cfg.Board.Height != 8 {
		t.Errorf("board = %+v", cfg.Board)
	}
	if cfg.AI.Strategy != "hamiltonian" {
		t.Errorf("strategy = %q", cfg.AI.Strategy)
	}
	// Untouched keys keep their defaults
	if cfg.AI.Speed != "normal" || cfg.Play.TickMs != 150 || cfg.Log.Level != "info" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadCustomPathErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected missing file to fail")
	}

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("board: [unterminated"), 0o644)
	if _, err := Load(bad); err == nil {
		t.Error("expected malformed yaml to fail")
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	os.WriteFile(invalid, []byte("board:\n  width: 3\n"), 0o644)
	_, err := Load(invalid)
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("Load(invalid) = %v, expected ErrInvalid", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"small board", func(c *Config) { c.Board.Width = 4 }},
		{"unknown strategy", func(c *Config) { c.AI.Strategy = "random" }},
		{"unknown speed", func(c *Config) { c.AI.Speed = "warp" }},
		{"negative script timeout", func(c *Config) { c.AI.ScriptTimeoutMs = -1 }},
		{"zero tick", func(c *Config) { c.Play.TickMs = 0 }},
		{"min tick above tick", func(c *Config) { c.Play.MinTickMs = 500 }},
		{"bad progression", func(c *Config) { c.Play.Difficulty.Progression.Type = "length" }},
		{"empty storage", func(c *Config) { c.Storage.Path = "" }},
		{"bad stream strategy", func(c *Config) { c.Stream.Strategy = "x" }},
		{"bad stream speed", func(c *Config) { c.Stream.Speed = "x" }},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, expected ErrInvalid", err)
			}
		})
	}
}

func TestParsedValues(t *testing.T) {
	cfg := Default()
	s, err := cfg.AI.ParsedStrategy()
	if err != nil || s != "strong" {
		t.Errorf("ParsedStrategy() = %q, %v", s, err)
	}
	sp, err := cfg.AI.ParsedSpeed()
	if err != nil || sp.Interval() != 120*time.Millisecond {
		t.Errorf("ParsedSpeed() = %q, %v", sp, err)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandHome("~/.snakelab/runs.db"); got != filepath.Join(home, ".snakelab", "runs.db") {
		t.Errorf("ExpandHome() = %q", got)
	}
	if got := ExpandHome("/tmp/x.db"); got != "/tmp/x.db" {
		t.Errorf("ExpandHome(abs) = %q", got)
	}
	if got := ExpandHome("~user/x"); got != "~user/x" {
		t.Errorf("ExpandHome(~user) = %q", got)
	}
}

func TestDifficultyInterval(t *testing.T) {
	play := Default().Play // 150ms down to 60ms, score progression, max at 50
	d := NewDifficultyManager(play)

	if !d.IsEnabled() {
		t.Fatal("expected progression to be enabled")
	}
	tests := []struct {
		score int
		want  time.Duration
	}{
		{0, 150 * time.Millisecond},
		{25, 105 * time.Millisecond},
		{50, 60 * time.Millisecond},
		{500, 60 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := d.Interval(tt.score, 0); got != tt.want {
			t.Errorf("Interval(%d) = %v, expected %v", tt.score, got, tt.want)
		}
	}
}

func TestDifficultyPresets(t *testing.T) {
	if _, err := ParseDifficultyPreset("nightmare"); err == nil {
		t.Error("expected unknown preset to fail")
	}

	play := Default().Play
	ApplyPreset(&play, DifficultyHard)
	d := NewDifficultyManager(play)
	if lvl := d.Level(0, 0); lvl != 0.7 {
		t.Errorf("hard initial level = %v, expected 0.7", lvl)
	}

	play = Default().Play
	ApplyPreset(&play, DifficultyFixed)
	d = NewDifficultyManager(play)
	if d.IsEnabled() {
		t.Error("fixed preset should disable progression")
	}
	if got := d.Interval(1000, 1000); got != 150*time.Millisecond {
		t.Errorf("fixed Interval() = %v", got)
	}

	play = Default().Play
	play.Difficulty.Progression = ProgressionConfig{Type: "time", MaxAt: 100}
	d = NewDifficultyManager(play)
	if lvl := d.Level(0, 50); lvl != 0.5 {
		t.Errorf("time level = %v, expected 0.5", lvl)
	}
}
