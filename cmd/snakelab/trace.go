package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snakelab/internal/record"
)

var traceCmd = &cobra.Command{
	Use:   "trace <file.parquet>",
	Short: "Summarise an exported trajectory file",
	Long: `Read a Parquet file written by 'snakelab bench --export' and print
how many runs and ticks it holds per strategy, and how often each move tag
was used.

Examples:
  snakelab trace ./trajectories/strong.parquet`,
	Args: cobra.ExactArgs(1),
	RunE: runTrace,
}

type traceStats struct {
	runs  map[string]struct{}
	ticks int
	tags  map[string]int
}

func runTrace(_ *cobra.Command, args []string) error {
	path := args[0]
	schema, err := record.Schema(path)
	if err != nil {
		return err
	}
	if schema != record.SchemaVersion {
		fmt.Printf("Warning: schema %q, expected %q\n", schema, record.SchemaVersion)
	}

	rows, err := record.ReadFile(path)
	if err != nil {
		return err
	}

	byStrategy := make(map[string]*traceStats)
	for _, r := range rows {
		st, ok := byStrategy[r.Strategy]
		if !ok {
			st = &traceStats{runs: make(map[string]struct{}), tags: make(map[string]int)}
			byStrategy[r.Strategy] = st
		}
		st.runs[r.RunID] = struct{}{}
		st.ticks++
		st.tags[r.Tag]++
	}

	fmt.Printf("%s: %d rows, schema %s\n\n", path, len(rows), schema)

	names := make([]string, 0, len(byStrategy))
	for name := range byStrategy {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		st := byStrategy[name]
		fmt.Printf("%s: %d runs, %d ticks\n", name, len(st.runs), st.ticks)

		tags := make([]string, 0, len(st.tags))
		for tag := range st.tags {
			tags = append(tags, tag)
		}
		slices.Sort(tags)
		for _, tag := range tags {
			n := st.tags[tag]
			fmt.Printf("  %-12s %8d  %5.1f%%\n", tag, n, 100*float64(n)/float64(st.ticks))
		}
	}
	return nil
}
