package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snakelab/internal/ai"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List all AI strategies",
	Long:  `Shows every strategy the AI engine can play.`,
	Args:  cobra.NoArgs,
	Run:   runStrategies,
}

func runStrategies(_ *cobra.Command, _ []string) {
	fmt.Println("Available strategies:")
	fmt.Println()

	// Calculate column width
	maxLen := len("Name")
	for _, s := range ai.Strategies {
		maxLen = max(maxLen, len(s))
	}

	fmt.Printf("  %-*s  %s\n", maxLen, "Name", "Description")
	fmt.Printf("  %-*s  %s\n", maxLen, "----", "-----------")
	for _, s := range ai.Strategies {
		name := string(s)
		if s == ai.DefaultStrategy {
			name += "*"
		}
		fmt.Printf("  %-*s  %s\n", maxLen, name, s.Description())
	}

	fmt.Println()
	fmt.Println("* default. Run 'snakelab watch <name>' to watch one.")
}
