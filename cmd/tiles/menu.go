package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-tiles/internal/platform/tui"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start the game with the settings menu",
	Long: `Start tiles in interactive menu mode.

The menu changes the mode, the time limit, the column count, the sound,
the language and the key binding. Every change is stored at once.

Controls:
  Up/Down/j/k     - Navigate menu
  Left/Right/h/l  - Change the selected setting
  Enter/Space     - Play, open or edit
  Q               - Quit

Examples:
  tiles menu
  tiles menu --fps 30
  tiles menu --db ./tiles.db`,
	Run: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) {
	env, release, err := localEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	runErr := tui.Run(env)

	// Release before potential exit
	release()

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}
