package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snakelab/internal/config"
	"github.com/vovakirdan/snakelab/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the snakelab SSH server",
	Long: `Start an SSH server that lets users connect, play and watch the AIs.

Each SSH connection gets its own session with the strategy menu.
Runs are stored per-server (all users share the same runs board).

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.snakelab/host_key

Examples:
  snakelab serve                           # Listen on :23234 with auto-generated key
  snakelab serve --ssh :2222               # Listen on port 2222
  snakelab serve --host-key ./my_host_key  # Use specific host key
  snakelab serve --db ./runs.db            # Use specific database

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (default from config, :23234)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout in minutes (default from config)")
	serveCmd.Flags().IntVar(&flagWidth, "width", 0, "Board width (default from config)")
	serveCmd.Flags().IntVar(&flagHeight, "height", 0, "Board height (default from config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagSSHAddr != "" {
		cfg.SSH.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		cfg.SSH.HostKey = flagHostKey
	}
	if flagIdleTimeout > 0 {
		cfg.SSH.IdleTimeoutMinutes = flagIdleTimeout
	}
	if err := applyBoardFlags(&cfg); err != nil {
		return err
	}

	logger := newLogger(cfg, "snakelab-ssh")
	e, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}
	game, err := viewerConfig(cfg)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	sshCfg := tui.SSHServerConfig{
		Address:     cfg.SSH.Address,
		IdleTimeout: time.Duration(cfg.SSH.IdleTimeoutMinutes) * time.Minute,
		Game:        game,
	}
	if cfg.SSH.HostKey != "" {
		sshCfg.HostKeyPath = config.ExpandHome(cfg.SSH.HostKey)
	}

	server, err := tui.NewSSHServer(sshCfg, e, store, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("connect with: ssh localhost -p <port>", "address", server.Addr())
	return server.ListenAndServe(ctx)
}
