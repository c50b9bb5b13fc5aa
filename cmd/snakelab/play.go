package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snakelab/internal/ai"
	"github.com/vovakirdan/snakelab/internal/config"
	"github.com/vovakirdan/snakelab/internal/platform/tui"
	"github.com/vovakirdan/snakelab/internal/sim"
)

var (
	flagWidth      int
	flagHeight     int
	flagSpeed      string
	flagMaxTicks   uint64
	flagDifficulty string
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick a strategy to watch, or play yourself",
	Long: `Start the interactive menu.

From the menu you can play a game from the keyboard, watch any strategy,
or press Tab to browse the stored runs. Esc in a game returns to the menu.

Examples:
  snakelab menu
  snakelab menu --width 12 --height 12 --speed fast`,
	Args: cobra.NoArgs,
	RunE: runMenu,
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a game from the keyboard",
	Long: `Play snake yourself. The game speeds up as you score.

Controls:
  Arrows/WASD/HJKL  - Steer
  P/Space           - Pause
  R                 - Restart
  Tab               - Let the AI take over (arrows take it back)
  ]/[               - Next/previous AI strategy
  Ctrl+S            - Save a screenshot
  Q/Ctrl+C          - Quit

Difficulty options:
  easy   - Start slow, speed up to max
  normal - Start at 30% speed-up
  hard   - Start at 70% speed-up
  fixed  - No speed-up, stays at tick_ms

Examples:
  snakelab play
  snakelab play --difficulty hard
  snakelab play --width 30 --height 15`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

var watchCmd = &cobra.Command{
	Use:   "watch [strategy]",
	Short: "Watch one AI strategy play",
	Long: `Watch an AI strategy play a single game.

The strategy defaults to ai.strategy from the config. Press +/- to change
speed, ]/[ to switch strategy mid-game, or an arrow key to take over.

Examples:
  snakelab watch
  snakelab watch hamiltonian --speed turbo
  snakelab watch custom --config ./my-snakelab.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	for _, cmd := range []*cobra.Command{menuCmd, playCmd, watchCmd} {
		cmd.Flags().IntVar(&flagWidth, "width", 0, "Board width (default from config)")
		cmd.Flags().IntVar(&flagHeight, "height", 0, "Board height (default from config)")
		cmd.Flags().Uint64Var(&flagMaxTicks, "max-ticks", 0, "Stop AI games after this many ticks (0 = config or board based)")
	}
	for _, cmd := range []*cobra.Command{menuCmd, watchCmd} {
		cmd.Flags().StringVar(&flagSpeed, "speed", "", "AI speed: turbo, fast, normal, slow")
	}
	for _, cmd := range []*cobra.Command{menuCmd, playCmd} {
		cmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	}
}

// applyBoardFlags applies the per-command board and pacing flags.
func applyBoardFlags(cfg *config.Config) error {
	if flagWidth != 0 {
		cfg.Board.Width = flagWidth
	}
	if flagHeight != 0 {
		cfg.Board.Height = flagHeight
	}
	if flagSpeed != "" {
		cfg.AI.Speed = flagSpeed
	}
	if flagMaxTicks != 0 {
		cfg.AI.MaxTicks = flagMaxTicks
	}
	if flagDifficulty != "" {
		preset, err := config.ParseDifficultyPreset(flagDifficulty)
		if err != nil {
			return err
		}
		config.ApplyPreset(&cfg.Play, preset)
	}
	return cfg.Validate()
}

// viewerConfig builds the game template shared by the TUI commands.
func viewerConfig(cfg config.Config) (tui.ViewerConfig, error) {
	strategy, err := cfg.AI.ParsedStrategy()
	if err != nil {
		return tui.ViewerConfig{}, err
	}
	speed, err := cfg.AI.ParsedSpeed()
	if err != nil {
		return tui.ViewerConfig{}, err
	}
	w, h := terminalSize()
	return tui.ViewerConfig{
		Width:    cfg.Board.Width,
		Height:   cfg.Board.Height,
		Strategy: strategy,
		Speed:    speed,
		Seed:     cfg.AI.Seed,
		MaxTicks: cfg.AI.MaxTicks,
		Play:     cfg.Play,
		ScreenW:  w,
		ScreenH:  h,
	}, nil
}

// prepareTUI loads everything a TUI command needs. The engine gets no logger
// because the alternate screen owns the terminal.
func prepareTUI() (config.Config, *ai.Engine, tui.ViewerConfig, error) {
	cfg, err := loadConfig()
	if err != nil {
		return cfg, nil, tui.ViewerConfig{}, err
	}
	if err := applyBoardFlags(&cfg); err != nil {
		return cfg, nil, tui.ViewerConfig{}, err
	}
	e, err := newEngine(cfg, nil)
	if err != nil {
		return cfg, nil, tui.ViewerConfig{}, err
	}
	vc, err := viewerConfig(cfg)
	return cfg, e, vc, err
}

func runMenu(_ *cobra.Command, _ []string) error {
	cfg, e, vc, err := prepareTUI()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	return tui.RunSession(e, store, vc)
}

func runPlay(_ *cobra.Command, _ []string) error {
	cfg, e, vc, err := prepareTUI()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	vc.Human = true
	return tui.Run(e, store, vc)
}

func runWatch(_ *cobra.Command, args []string) error {
	if len(args) == 1 {
		if _, err := ai.ParseStrategy(args[0]); err != nil {
			return fmt.Errorf("%w (run 'snakelab strategies' to list them)", err)
		}
	}
	cfg, e, vc, err := prepareTUI()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		vc.Strategy, _ = ai.ParseStrategy(args[0])
	}
	if vc.MaxTicks == 0 {
		vc.MaxTicks = sim.DefaultMaxTicks(vc.Width, vc.Height)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	return tui.Run(e, store, vc)
}
