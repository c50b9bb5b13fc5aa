package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/vovakirdan/snakelab/internal/ai"
	"github.com/vovakirdan/snakelab/internal/config"
	"github.com/vovakirdan/snakelab/internal/hamilton"
	"github.com/vovakirdan/snakelab/internal/script"
	"github.com/vovakirdan/snakelab/internal/storage"
)

// loadConfig loads the config file and applies the global flags over it.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, err
	}
	applyGlobalFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func applyGlobalFlags(cfg *config.Config) {
	if flagSeed != 0 {
		cfg.AI.Seed = flagSeed
	}
	if flagDBPath != "" {
		cfg.Storage.Path = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
}

// newLogger creates the process logger. Library packages never log; commands
// hand this logger to the servers.
func newLogger(cfg config.Config, prefix string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	}
	return logger
}

// newEngine builds the shared AI engine. When the config names a script it
// is compiled up front so a broken script fails the command, not every move.
func newEngine(cfg config.Config, logger *log.Logger) (*ai.Engine, error) {
	var opts []ai.Option

	if cfg.AI.Script != "" {
		path := config.ExpandHome(cfg.AI.Script)
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read script: %w", err)
		}
		var scriptOpts []script.Option
		if cfg.AI.ScriptTimeoutMs > 0 {
			scriptOpts = append(scriptOpts, script.WithTimeout(time.Duration(cfg.AI.ScriptTimeoutMs)*time.Millisecond))
		}
		s, err := script.Compile(string(src), scriptOpts...)
		if err != nil {
			return nil, fmt.Errorf("script %s: %w", path, err)
		}
		opts = append(opts, ai.WithScript(s))
	}

	if logger != nil {
		opts = append(opts, ai.WithScriptErrors(func(err error) {
			logger.Debug("custom script fell back to safe", "error", err)
		}))
	}

	return ai.New(hamilton.NewCache(), opts...), nil
}

// openStore opens the runs database from the config.
func openStore(cfg config.Config) (*storage.Store, error) {
	store, err := storage.Open(config.ExpandHome(cfg.Storage.Path))
	if err != nil {
		return nil, fmt.Errorf("opening runs database: %w", err)
	}
	return store, nil
}

// seed returns the configured seed, or a time based one.
func seed(cfg config.Config) int64 {
	if cfg.AI.Seed != 0 {
		return cfg.AI.Seed
	}
	return time.Now().UnixNano()
}

// terminalSize returns the size of stdout, defaulting to 80x24.
func terminalSize() (int, int) {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}
	return width, height
}
