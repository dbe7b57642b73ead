package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-tiles/internal/storage"
	"github.com/vovakirdan/tui-tiles/internal/tiles"
)

var (
	flagClearScores bool
	flagStats       bool
	flagLimit       int
)

var scoresCmd = &cobra.Command{
	Use:   "scores [mode]",
	Short: "Show the scoreboard of a mode",
	Long: `Display the best runs of a timed mode (default: normal).

Runs are ranked by score, then by tap rate.

Examples:
  tiles scores
  tiles scores endless
  tiles scores --stats
  tiles scores endless --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().BoolVar(&flagClearScores, "clear", false, "Delete every run of the mode")
	scoresCmd.Flags().BoolVar(&flagStats, "stats", false, "Show totals for every mode instead")
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of runs to show")
}

func runScores(_ *cobra.Command, args []string) {
	mode := tiles.ModeFixedTime
	if len(args) == 1 {
		m, err := tiles.ParseMode(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Fprintln(os.Stderr, "Run 'tiles modes' to see available modes.")
			os.Exit(1)
		}
		mode = m
	}

	// Open score storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagStats {
		if err := printStats(store); err != nil {
			fmt.Fprintf(os.Stderr, "Error retrieving stats: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if mode.BestScoreKey() == "" {
		fmt.Printf("%s mode keeps no scores.\n", mode)
		return
	}

	if flagClearScores {
		if err := store.ClearScores(mode.String()); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing scores: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Cleared %s scores.\n", mode)
		return
	}

	// Get top scores
	scores, err := store.TopScores(mode.String(), flagLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving scores: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("High Scores - %s\n", mode)
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'tiles play --mode %s' to set the first high score!\n", mode)
		return
	}

	// Print header
	fmt.Printf("  %-4s  %-6s  %-6s  %-12s  %s\n", "Rank", "Score", "Rate", "Player", "Date")
	fmt.Printf("  %-4s  %-6s  %-6s  %-12s  %s\n", "----", "-----", "----", "------", "----")

	for i, entry := range scores {
		player := entry.Player
		if player == "" {
			player = "-"
		}
		fmt.Printf("  %-4d  %-6d  %-6.2f  %-12s  %s\n",
			i+1, entry.Score, entry.Rate, player, entry.CreatedAt.Format("2006-01-02 15:04"))
	}

	// Show high score
	fmt.Println()
	if best, err := store.HighScore(mode.String()); err == nil {
		fmt.Printf("Best: %d\n", best)
	}
}

func printStats(store *storage.Store) error {
	stats, err := store.Stats()
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
	sort.Strings(names)

	fmt.Printf("  %-10s  %-5s  %-5s  %-6s  %-6s  %-6s  %s\n", "Mode", "Runs", "Best", "Rate", "Avg", "Taps", "Last played")
	fmt.Printf("  %-10s  %-5s  %-5s  %-6s  %-6s  %-6s  %s\n", "----", "----", "----", "----", "---", "----", "-----------")
	for _, name := range names {
		s := stats[name]
		fmt.Printf("  %-10s  %-5d  %-5d  %-6.2f  %-6.1f  %-6d  %s\n",
			s.Mode, s.RunsCount, s.HighScore, s.BestRate, s.AvgScore, s.TotalTaps,
			s.LastPlayed.Format("2006-01-02 15:04"))
	}
	return nil
}
