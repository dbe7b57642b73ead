package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-tiles/internal/settings"
	"github.com/vovakirdan/tui-tiles/internal/storage"
)

var flagPlayer string

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Inspect or change stored preferences",
	Long: `Read and write the preferences the menu stores.

Preferences expire 100 days after they were last written.
Use --player to reach the preferences of an SSH user.

Keys:
  ` + strings.Join(settings.Keys(), ", ") + `

Examples:
  tiles prefs list
  tiles prefs get gameTime
  tiles prefs set keyboard asdf
  tiles prefs set gameMode endless --player alice
  tiles prefs delete columns`,
}

var prefsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored preferences",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		withScope(func(sc *storage.Scope) error {
			all, err := sc.All()
			if err != nil {
				return err
			}
			if len(all) == 0 {
				fmt.Println("No preferences stored.")
				return nil
			}
			keys := make([]string, 0, len(all))
			for k := range all {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("  %-22s  %s\n", k, all[k])
			}
			return nil
		})
	},
}

var prefsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one preference",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		withScope(func(sc *storage.Scope) error {
			v, err := sc.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Println(v)
			return nil
		})
	},
}

var prefsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Validate and store a preference",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		withScope(func(sc *storage.Scope) error {
			return settings.Set(sc, args[0], args[1])
		})
	},
}

var prefsDeleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Remove a preference so the default applies",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		withScope(func(sc *storage.Scope) error {
			return sc.Delete(args[0])
		})
	},
}

func init() {
	prefsCmd.PersistentFlags().StringVar(&flagPlayer, "player", "", "SSH user whose preferences to use (default: local)")

	prefsCmd.AddCommand(prefsListCmd)
	prefsCmd.AddCommand(prefsGetCmd)
	prefsCmd.AddCommand(prefsSetCmd)
	prefsCmd.AddCommand(prefsDeleteCmd)
}

// withScope opens the store and runs fn on the selected preference scope.
func withScope(fn func(sc *storage.Scope) error) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}

	sc := store.Local()
	if flagPlayer != "" {
		sc = store.Player(flagPlayer)
	}

	err = fn(sc)
	store.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
