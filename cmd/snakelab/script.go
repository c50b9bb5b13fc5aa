package main

import (
	"fmt"
	"math/rand"
	"os"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snakelab/internal/ai"
	"github.com/vovakirdan/snakelab/internal/engine"
	"github.com/vovakirdan/snakelab/internal/hamilton"
	"github.com/vovakirdan/snakelab/internal/script"
	"github.com/vovakirdan/snakelab/internal/sim"
)

var flagCheckGames int

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Custom strategy script tools",
	Long: `A custom strategy is a single expression evaluated once per move.
It must return "up", "down", "left" or "right".

Variables: width, height, snake, head, tail, food, direction, pending,
score, tick, directions.
Helpers: move(cell, dir), same(a, b), opposite(a, b), inBounds(cell),
occupied(cell). Cells have X and Y.

Point ai.script in the config at the file and pick the custom strategy.`,
}

var scriptCheckCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Compile a script and play test games with it",
	Long: `Compile the script, evaluate it once on a fresh board, then play a few
headless games with the custom strategy. Moves where the script failed or
picked an illegal direction fall back to the safe strategy and are counted.

Examples:
  snakelab script check ./my-strategy.expr
  snakelab script check ./my-strategy.expr --games 20 --width 10 --height 10`,
	Args: cobra.ExactArgs(1),
	RunE: runScriptCheck,
}

var scriptExampleCmd = &cobra.Command{
	Use:   "example",
	Short: "Print the example script",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println(script.DefaultSource)
	},
}

func init() {
	scriptCheckCmd.Flags().IntVar(&flagCheckGames, "games", 5, "Test games to play (0 = compile and evaluate only)")
	scriptCheckCmd.Flags().IntVar(&flagWidth, "width", 0, "Board width (default from config)")
	scriptCheckCmd.Flags().IntVar(&flagHeight, "height", 0, "Board height (default from config)")

	scriptCmd.AddCommand(scriptCheckCmd)
	scriptCmd.AddCommand(scriptExampleCmd)
}

func runScriptCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyBoardFlags(&cfg); err != nil {
		return err
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	timeout := time.Duration(cfg.AI.ScriptTimeoutMs) * time.Millisecond
	s, err := script.Compile(string(src), script.WithTimeout(timeout))
	if err != nil {
		return err
	}
	fmt.Printf("Compiled %s (timeout %s)\n", args[0], s.Timeout())

	first := seed(cfg)
	rng := rand.New(rand.NewSource(first))
	st := engine.NewState(cfg.Board.Width, cfg.Board.Height, rng.Float64)
	d, err := s.Run(cmd.Context(), st)
	if err != nil {
		return err
	}
	fmt.Printf("First move on a %dx%d board: %s\n", st.Width, st.Height, d)
	if !engine.IsLegal(st, d) {
		fmt.Println("Warning: that move is illegal, the engine would fall back to safe.")
	}

	if flagCheckGames <= 0 {
		return nil
	}

	var failures atomic.Int64
	var lastErr atomic.Value
	e := ai.New(hamilton.NewCache(),
		ai.WithScript(s),
		ai.WithScriptErrors(func(err error) {
			failures.Add(1)
			lastErr.Store(err.Error())
		}),
	)
	results, err := sim.Bench(cmd.Context(), e, sim.BenchConfig{
		Width:    cfg.Board.Width,
		Height:   cfg.Board.Height,
		Strategy: ai.StrategyCustom,
		Games:    flagCheckGames,
		Workers:  1,
		Seed:     first,
		MaxTicks: cfg.AI.MaxTicks,
	})
	if err != nil {
		return err
	}

	sum := sim.Summarize(results)
	fmt.Println()
	fmt.Printf("Played %d games: %d passed, %d died, %d stalled\n", sum.Games, sum.Passed, sum.GameOver, sum.Stalled)
	fmt.Printf("Average score %.1f, best %d\n", sum.MeanScore, sum.BestScore)
	fmt.Printf("Script moves %d, fallbacks to safe %d\n", sum.Tags[ai.TagCustom], failures.Load())
	if msg, ok := lastErr.Load().(string); ok {
		fmt.Printf("Last script error: %s\n", msg)
	}
	return nil
}
