// snakelab is a terminal lab for watching, playing and benchmarking snake AIs.
//
// Usage:
//
//	snakelab menu                 - Pick a strategy or play yourself
//	snakelab play                 - Play a game from the keyboard
//	snakelab watch [strategy]     - Watch one AI game
//	snakelab bench [strategy...]  - Play many headless games and summarise them
//	snakelab runs [strategy]      - Show stored runs
//	snakelab serve                - Start the SSH server
//	snakelab stream               - Stream AI games to browsers over websockets
//	snakelab strategies           - List strategies
//	snakelab script check <file>  - Validate a custom strategy script
//	snakelab trace <file>         - Inspect an exported trajectory file
//
// Global flags:
//
//	--config <path>    - Config file (default: search ~/.snakelab/configs, ./configs)
//	--seed <value>     - RNG seed for reproducible games
//	--db <path>        - Runs database (default: ~/.snakelab/runs.db)
//	--log-level <lvl>  - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagConfig   string
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "snakelab",
	Short: "snakelab - Watch, play and benchmark snake AIs in your terminal",
	Long: `snakelab runs a classic snake game with a set of AI strategies:
greedy, safe, strong, hamiltonian and a user supplied custom script.

Available commands:
  menu        - Interactive picker (play yourself or watch a strategy)
  play        - Play a game from the keyboard
  watch       - Watch one strategy play
  bench       - Headless benchmark of one or more strategies
  runs        - Stored runs and per-strategy stats
  serve       - SSH server for remote sessions
  stream      - Websocket server streaming AI games
  strategies  - List strategies
  script      - Custom strategy script tools
  trace       - Inspect a Parquet trajectory export

Examples:
  snakelab menu
  snakelab watch hamiltonian --speed fast
  snakelab bench strong safe --games 200 --width 10 --height 10
  snakelab runs greedy
  snakelab serve --ssh :2222`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a snakelab.yaml config file")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = config value, else random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to runs database (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")

	// Add subcommands
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(streamCmd)
	rootCmd.AddCommand(strategiesCmd)
	rootCmd.AddCommand(scriptCmd)
	rootCmd.AddCommand(traceCmd)
}
