// tiles is a reaction game for the terminal: tap the lowest tile of the
// falling lane before it leaves the screen.
//
// Usage:
//
//	tiles menu                  - Start the menu (default)
//	tiles play                  - Play straight away
//	tiles modes                 - List game modes
//	tiles scores [mode]         - Show the scoreboard
//	tiles prefs list|get|set    - Inspect or change stored preferences
//	tiles serve                 - Start SSH server for remote play
//
// Global flags:
//
//	--fps <rate>        - Set frame rate (default: 60)
//	--seed <value>      - Set RNG seed for a reproducible tile sequence
//	--db <path>         - Set database path (default: ~/.tiles/tiles.db)
//	--config <path>     - Use a custom tiles.yaml
//	--log-level <level> - Log level for ~/.tiles/tiles.log
//	--no-sound          - Never open the audio device
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagConfig   string
	flagLogLevel string
	flagNoSound  bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tiles",
	Short: "Tiles - tap the falling tiles in your terminal",
	Long: `Tiles is a terminal reaction game. Columns of tiles scroll down the
lane; tap the lowest one with its column key or the mouse before it
reaches the bottom. Tapping anything else ends the run.

Available commands:
  menu    - Interactive menu with settings and scoreboard
  play    - Play a session directly
  modes   - Show the game modes
  scores  - View the scoreboard
  prefs   - Inspect or change stored preferences
  serve   - Start SSH server for remote play

Examples:
  tiles
  tiles play --mode endless
  tiles play --duration 30 --columns 5
  tiles scores endless
  tiles prefs set keyboard asdf
  tiles serve --ssh :2222`,
	Run: runMenu,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Frame rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.tiles/tiles.db", "Path to scores and preferences database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom tiles config YAML")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&flagNoSound, "no-sound", false, "Disable audio output")

	// Add subcommands
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(modesCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(prefsCmd)
	rootCmd.AddCommand(serveCmd)
}

// fileLogger logs to ~/.tiles/tiles.log since the terminal belongs to the
// game while it runs. It returns a close func for the log file.
func fileLogger() (*log.Logger, func()) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		level = log.InfoLevel
	}

	out := os.Stderr
	closeFn := func() {}
	if home, err := os.UserHomeDir(); err == nil {
		dir := filepath.Join(home, ".tiles")
		if err := os.MkdirAll(dir, 0o755); err == nil {
			f, err := os.OpenFile(filepath.Join(dir, "tiles.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err == nil {
				out = f
				closeFn = func() { f.Close() }
			}
		}
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Prefix:          "tiles",
		Level:           level,
	})
	return logger, closeFn
}

// stderrLogger logs to the terminal, for commands that do not take it over.
func stderrLogger(prefix string) *log.Logger {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           level,
	})
}
