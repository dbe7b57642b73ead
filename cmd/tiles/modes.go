package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-tiles/internal/tiles"
)

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List the game modes",
	Long:  `Shows every game mode with its code and whether it keeps a record.`,
	Run:   runModes,
}

func runModes(_ *cobra.Command, _ []string) {
	fmt.Println("Game modes:")
	fmt.Println()

	// Calculate column widths
	maxNameLen := 4 // "Name" header
	for _, m := range tiles.Modes {
		maxNameLen = max(maxNameLen, len(m.String()))
	}

	// Print header
	fmt.Printf("  %-4s  %-*s  %s\n", "Code", maxNameLen, "Name", "Scoreboard")
	fmt.Printf("  %-4s  %-*s  %s\n", "----", maxNameLen, "----", "----------")

	for _, m := range tiles.Modes {
		record := "no"
		if m.BestScoreKey() != "" {
			record = "yes"
		}
		fmt.Printf("  %-4s  %-*s  %s\n", m.Code(), maxNameLen, m.String(), record)
	}

	fmt.Println()
	fmt.Println("Run 'tiles play --mode <name>' to play a mode.")
}
