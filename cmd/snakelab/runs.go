package main

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/snakelab/internal/ai"
	"github.com/vovakirdan/snakelab/internal/platform/tui"
	"github.com/vovakirdan/snakelab/internal/storage"
)

var (
	flagLimit  int
	flagRecent bool
	flagYes    bool
)

var runsCmd = &cobra.Command{
	Use:   "runs [strategy]",
	Short: "Show stored runs",
	Long: `Display the best stored runs by final score, optionally for one
strategy. Use "human" for games played from the keyboard and "mixed" for
AI games whose strategy was switched mid-game.

Examples:
  snakelab runs
  snakelab runs hamiltonian --limit 20
  snakelab runs --recent
  snakelab runs show <id>
  snakelab runs stats
  snakelab runs board
  snakelab runs clear greedy --yes`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one stored run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-strategy statistics",
	Args:  cobra.NoArgs,
	RunE:  runRunsStats,
}

var runsBoardCmd = &cobra.Command{
	Use:   "board",
	Short: "Browse stored runs interactively",
	Args:  cobra.NoArgs,
	RunE:  runRunsBoard,
}

var runsClearCmd = &cobra.Command{
	Use:   "clear [strategy]",
	Short: "Delete stored runs, all or for one strategy",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRunsClear,
}

func init() {
	runsCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of runs to show")
	runsCmd.Flags().BoolVar(&flagRecent, "recent", false, "Show the latest runs instead of the best")
	runsClearCmd.Flags().BoolVar(&flagYes, "yes", false, "Confirm deletion")

	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsStatsCmd)
	runsCmd.AddCommand(runsBoardCmd)
	runsCmd.AddCommand(runsClearCmd)
}

// runFilter validates a strategy argument for the runs commands.
func runFilter(args []string) (string, error) {
	if len(args) == 0 {
		return "", nil
	}
	if args[0] == storage.StrategyHuman || args[0] == storage.StrategyMixed {
		return args[0], nil
	}
	s, err := ai.ParseStrategy(args[0])
	if err != nil {
		return "", err
	}
	return string(s), nil
}

func withStore(fn func(*storage.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func runRuns(_ *cobra.Command, args []string) error {
	filter, err := runFilter(args)
	if err != nil {
		return err
	}
	return withStore(func(store *storage.Store) error {
		var runs []storage.Run
		if flagRecent {
			runs, err = store.RecentRuns(flagLimit)
			if filter != "" {
				runs = slices.DeleteFunc(runs, func(r storage.Run) bool { return r.Strategy != filter })
			}
		} else {
			runs, err = store.TopRuns(filter, flagLimit)
		}
		if err != nil {
			return err
		}

		title := "Best runs"
		if flagRecent {
			title = "Recent runs"
		}
		if filter != "" {
			title += " - " + filter
		}
		fmt.Println(title)
		fmt.Println()

		if len(runs) == 0 {
			fmt.Println("No runs recorded yet.")
			fmt.Println()
			fmt.Println("Run 'snakelab bench' or 'snakelab watch' to record some.")
			return nil
		}
		fmt.Println(runsTable(runs))

		if filter != "" {
			if best, err := store.HighScore(filter); err == nil {
				fmt.Printf("Best score: %d\n", best)
			}
		}
		return nil
	})
}

func runsTable(runs []storage.Run) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("#", "ID", "Strategy", "Final", "Score", "Len", "Ticks", "Board", "Status", "Date")

	for i, r := range runs {
		id := r.ID
		if len(id) > 8 {
			id = id[:8]
		}
		t.Row(
			strconv.Itoa(i+1),
			id,
			r.Strategy,
			strconv.Itoa(r.FinalScore),
			strconv.Itoa(r.Score),
			strconv.Itoa(r.Length),
			strconv.FormatInt(r.Ticks, 10),
			fmt.Sprintf("%dx%d", r.Width, r.Height),
			r.Status,
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	return t.String()
}

func runRunsShow(_ *cobra.Command, args []string) error {
	return withStore(func(store *storage.Store) error {
		run, err := store.RunByID(args[0])
		if err != nil {
			return err
		}
		if run == nil {
			return fmt.Errorf("no run with id %q", args[0])
		}
		fmt.Printf("Run %s\n\n", run.ID)
		fmt.Printf("  Strategy     %s\n", run.Strategy)
		fmt.Printf("  Board        %dx%d\n", run.Width, run.Height)
		fmt.Printf("  Seed         %d\n", run.Seed)
		fmt.Printf("  Status       %s\n", run.Status)
		fmt.Printf("  Score        %d\n", run.Score)
		fmt.Printf("  Length       %d\n", run.Length)
		fmt.Printf("  Ticks        %d\n", run.Ticks)
		fmt.Printf("  Final score  %d\n", run.FinalScore)
		fmt.Printf("  Duration     %s\n", run.Duration)
		fmt.Printf("  Played       %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
		return nil
	})
}

func runRunsStats(_ *cobra.Command, _ []string) error {
	return withStore(func(store *storage.Store) error {
		stats, err := store.AllStrategyStats()
		if err != nil {
			return err
		}
		if len(stats) == 0 {
			fmt.Println("No runs recorded yet.")
			return nil
		}

		names := make([]string, 0, len(stats))
		for name := range stats {
			names = append(names, name)
		}
		slices.Sort(names)

		t := table.New().
			Border(lipgloss.NormalBorder()).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			}).
			Headers("Strategy", "Runs", "Passed", "Best", "Avg score", "Best final", "Avg final", "Avg ticks", "Last played")
		for _, name := range names {
			st := stats[name]
			t.Row(
				st.Strategy,
				strconv.Itoa(st.Runs),
				strconv.Itoa(st.Passed),
				strconv.Itoa(st.HighScore),
				fmt.Sprintf("%.1f", st.AvgScore),
				strconv.Itoa(st.BestFinal),
				fmt.Sprintf("%.0f", st.AvgFinalScore),
				fmt.Sprintf("%.0f", st.AvgTicks),
				st.LastPlayed.Format("2006-01-02 15:04"),
			)
		}
		fmt.Println(t.String())
		return nil
	})
}

func runRunsBoard(_ *cobra.Command, _ []string) error {
	return withStore(func(store *storage.Store) error {
		w, h := terminalSize()
		return tui.RunScoreboard(store, w, h)
	})
}

func runRunsClear(_ *cobra.Command, args []string) error {
	filter, err := runFilter(args)
	if err != nil {
		return err
	}
	if !flagYes {
		target := "all runs"
		if filter != "" {
			target = filter + " runs"
		}
		return fmt.Errorf("refusing to delete %s without --yes", target)
	}
	return withStore(func(store *storage.Store) error {
		n, err := store.ClearRuns(filter)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d runs.\n", n)
		return nil
	})
}
