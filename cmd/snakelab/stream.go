package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snakelab/internal/ai"
	"github.com/vovakirdan/snakelab/internal/platform/stream"
	"github.com/vovakirdan/snakelab/internal/sim"
)

var (
	flagStreamAddr     string
	flagStreamStrategy string
)

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Stream AI games to browsers over websockets",
	Long: `Start an HTTP server that plays one AI game per websocket client and
sends one JSON frame per tick. The last frame has "final": true, then the
server closes the connection. Finished games are stored as runs.

Query parameters override the defaults per connection:
  strategy, speed, width, height, seed

Endpoints:
  GET /ws       - websocket game stream
  GET /healthz  - liveness check with the number of active games

Examples:
  snakelab stream
  snakelab stream --addr :9000 --strategy strong --speed normal
  websocat 'ws://localhost:8080/ws?strategy=hamiltonian&width=10&height=10'`,
	Args: cobra.NoArgs,
	RunE: runStream,
}

func init() {
	streamCmd.Flags().StringVar(&flagStreamAddr, "addr", "", "Listen address (default from config, :8080)")
	streamCmd.Flags().StringVar(&flagStreamStrategy, "strategy", "", "Default strategy (default from config)")
	streamCmd.Flags().StringVar(&flagSpeed, "speed", "", "Default speed: turbo, fast, normal, slow")
	streamCmd.Flags().IntVar(&flagWidth, "width", 0, "Default board width (default from config)")
	streamCmd.Flags().IntVar(&flagHeight, "height", 0, "Default board height (default from config)")
	streamCmd.Flags().Uint64Var(&flagMaxTicks, "max-ticks", 0, "Tick cap per game (0 = config or board based)")
}

func runStream(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagStreamAddr != "" {
		cfg.Stream.Address = flagStreamAddr
	}
	if flagStreamStrategy != "" {
		cfg.Stream.Strategy = flagStreamStrategy
	}
	if flagSpeed != "" {
		cfg.Stream.Speed = flagSpeed
	}
	flagSpeed = "" // applies to the stream section only
	if err := applyBoardFlags(&cfg); err != nil {
		return err
	}

	strategy, err := ai.ParseStrategy(cfg.Stream.Strategy)
	if err != nil {
		return err
	}
	speed, err := sim.ParseSpeed(cfg.Stream.Speed)
	if err != nil {
		return err
	}

	logger := newLogger(cfg, "snakelab-stream")
	e, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	server := stream.NewServer(stream.Config{
		Address:  cfg.Stream.Address,
		Width:    cfg.Board.Width,
		Height:   cfg.Board.Height,
		Strategy: strategy,
		Speed:    speed,
		MaxTicks: cfg.AI.MaxTicks,
	}, e, store, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.ListenAndServe(ctx)
}
