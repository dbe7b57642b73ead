package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-tiles/internal/config"
	"github.com/vovakirdan/tui-tiles/internal/platform/tui"
	"github.com/vovakirdan/tui-tiles/internal/tiles"
)

var (
	flagMode     string
	flagColumns  int
	flagDuration int
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a session",
	Long: `Start playing right away with the stored settings.

Flags override the stored settings for this run only.

Controls:
  Column keys   - Tap the lowest tile of that column (default: d f j k)
  1-9           - Tap by column number
  Mouse click   - Tap the tile under the pointer
  Enter/Ctrl+R  - Restart
  Tab           - Next mode
  +/-           - More or fewer columns
  >/<           - Longer or shorter time limit
  Ctrl+S        - Sound on/off
  Ctrl+P        - Save a screenshot
  Ctrl+C        - Quit

Modes:
  normal    - Tap as many tiles as you can before time runs out
  endless   - No time limit; one miss ends the run
  practice  - No time limit and no game over

Examples:
  tiles play
  tiles play --mode endless
  tiles play --duration 30
  tiles play --columns 5 --seed 42`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagMode, "mode", "", "Game mode: normal, endless, practice")
	playCmd.Flags().IntVar(&flagColumns, "columns", 0, "Column count (0 = stored setting)")
	playCmd.Flags().IntVar(&flagDuration, "duration", 0, "Time limit in seconds for normal mode (0 = stored setting)")
}

func runPlay(_ *cobra.Command, _ []string) {
	// Validate flags before touching the terminal
	var mode tiles.Mode
	if flagMode != "" {
		m, err := tiles.ParseMode(flagMode)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Fprintln(os.Stderr, "Run 'tiles modes' to see available modes.")
			os.Exit(1)
		}
		mode = m
	}
	if flagColumns != 0 {
		if err := config.ValidateColumns(flagColumns); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	if flagDuration != 0 {
		if err := config.ValidateDuration(flagDuration); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	env, release, err := localEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if mode.Valid() {
		env.Settings.Mode = mode
	}
	if flagColumns != 0 {
		env.Settings.Columns = flagColumns
	}
	if flagDuration != 0 {
		env.Settings.Duration = flagDuration
	}

	runErr := tui.RunGame(env)

	// Release before potential exit
	release()

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}
