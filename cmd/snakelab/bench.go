package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/snakelab/internal/ai"
	"github.com/vovakirdan/snakelab/internal/config"
	"github.com/vovakirdan/snakelab/internal/record"
	"github.com/vovakirdan/snakelab/internal/sim"
	"github.com/vovakirdan/snakelab/internal/storage"
)

var (
	flagGames   int
	flagWorkers int
	flagNoSave  bool
	flagExport  string
	flagTrace   bool
)

var benchCmd = &cobra.Command{
	Use:   "bench [strategy...]",
	Short: "Play many headless games and summarise each strategy",
	Long: `Play games at full speed without a UI, one batch per strategy.

Game i of a batch uses seed+i, so every strategy sees the same food
sequence. Results are saved to the runs database unless --no-save is set.
With --export, every tick of every game is written to a Parquet file
(zstd compressed) for offline analysis.

Examples:
  snakelab bench
  snakelab bench greedy safe strong --games 500
  snakelab bench hamiltonian --width 6 --height 6 --seed 1
  snakelab bench strong --export ./trajectories/strong.parquet
  snakelab bench --trace`,
	RunE: runBench,
}

func init() {
	benchCmd.Flags().IntVar(&flagGames, "games", 100, "Games per strategy")
	benchCmd.Flags().IntVar(&flagWorkers, "workers", 0, "Concurrent games (0 = GOMAXPROCS)")
	benchCmd.Flags().IntVar(&flagWidth, "width", 0, "Board width (default from config)")
	benchCmd.Flags().IntVar(&flagHeight, "height", 0, "Board height (default from config)")
	benchCmd.Flags().Uint64Var(&flagMaxTicks, "max-ticks", 0, "Tick cap per game (0 = config or board based)")
	benchCmd.Flags().BoolVar(&flagNoSave, "no-save", false, "Do not store results in the runs database")
	benchCmd.Flags().StringVar(&flagExport, "export", "", "Write per-tick trajectories to this Parquet file")
	benchCmd.Flags().BoolVar(&flagTrace, "trace", false, "Write trajectories to a timestamped file under storage.trajectories")
}

// benchStrategies resolves the positional strategy names. No names means
// every strategy, skipping custom when no script is configured.
func benchStrategies(args []string, hasScript bool) ([]ai.Strategy, error) {
	if len(args) == 0 {
		var out []ai.Strategy
		for _, s := range ai.Strategies {
			if s == ai.StrategyCustom && !hasScript {
				continue
			}
			out = append(out, s)
		}
		return out, nil
	}

	out := make([]ai.Strategy, 0, len(args))
	for _, a := range args {
		s, err := ai.ParseStrategy(a)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out, nil
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyBoardFlags(&cfg); err != nil {
		return err
	}
	logger := newLogger(cfg, "snakelab")

	e, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}
	strategies, err := benchStrategies(args, e.Script() != nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var store *storage.Store
	if !flagNoSave {
		store, err = openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	exportTo := flagExport
	if exportTo == "" && flagTrace {
		exportTo = exportPath(cfg.Storage.Trajectories, time.Now())
	}
	var writer *record.Writer
	if exportTo != "" {
		writer, err = record.NewWriter(config.ExpandHome(exportTo))
		if err != nil {
			return err
		}
	}

	base := sim.BenchConfig{
		Width:      cfg.Board.Width,
		Height:     cfg.Board.Height,
		Games:      flagGames,
		Workers:    flagWorkers,
		Seed:       seed(cfg),
		MaxTicks:   cfg.AI.MaxTicks,
		Trajectory: writer != nil,
	}
	logger.Info("bench started",
		"strategies", len(strategies), "games", base.Games,
		"board", fmt.Sprintf("%dx%d", base.Width, base.Height), "seed", base.Seed)

	summaries := make(map[ai.Strategy]sim.Summary, len(strategies))
	for _, s := range strategies {
		bc := base
		bc.Strategy = s

		start := time.Now()
		results, err := sim.Bench(ctx, e, bc)
		if err != nil {
			return abortExport(writer, err)
		}
		summaries[s] = sim.Summarize(results)
		logger.Info("strategy finished", "strategy", s, "elapsed", time.Since(start).Round(time.Millisecond))

		if err := storeResults(ctx, store, writer, results); err != nil {
			return abortExport(writer, err)
		}
	}

	if writer != nil {
		if err := writer.Close(); err != nil {
			return err
		}
		logger.Info("trajectories written", "path", exportTo, "runs", writer.Runs(), "rows", writer.Rows())
	}

	fmt.Println(benchTable(strategies, summaries))
	return nil
}

// storeResults saves each run and exports its trajectory under the same ID.
// Without a store, exported runs get their index as ID.
func storeResults(ctx context.Context, store *storage.Store, writer *record.Writer, results []sim.Result) error {
	for i, res := range results {
		if err := ctx.Err(); err != nil {
			return err
		}
		id := strconv.Itoa(i)
		if store != nil {
			var err error
			id, err = store.SaveRun(storage.RunFromResult(res))
			if err != nil {
				return err
			}
		}
		if writer != nil {
			if err := writer.WriteResult(id, res); err != nil {
				return err
			}
		}
	}
	return nil
}

// abortExport drops a partially written export and returns err.
func abortExport(writer *record.Writer, err error) error {
	if writer == nil {
		return err
	}
	if abortErr := writer.Abort(); abortErr != nil {
		return errors.Join(err, abortErr)
	}
	return err
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// benchTable renders one row per strategy.
func benchTable(strategies []ai.Strategy, summaries map[ai.Strategy]sim.Summary) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("Strategy", "Games", "Passed", "Died", "Stalled", "Avg score", "Avg len", "Avg ticks", "Best", "Best final")

	for _, s := range strategies {
		sum := summaries[s]
		t.Row(
			string(s),
			strconv.Itoa(sum.Games),
			strconv.Itoa(sum.Passed),
			strconv.Itoa(sum.GameOver),
			strconv.Itoa(sum.Stalled),
			fmt.Sprintf("%.1f", sum.MeanScore),
			fmt.Sprintf("%.1f", sum.MeanLength),
			fmt.Sprintf("%.0f", sum.MeanTicks),
			strconv.Itoa(sum.BestScore),
			strconv.Itoa(sum.BestFinal),
		)
	}
	return t.String()
}

// exportPath names a timestamped trajectory file in dir.
func exportPath(dir string, now time.Time) string {
	return filepath.Join(config.ExpandHome(dir), "bench-"+now.Format("20060102-150405")+".parquet")
}
