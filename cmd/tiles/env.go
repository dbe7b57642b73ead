package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/vovakirdan/tui-tiles/internal/audio"
	"github.com/vovakirdan/tui-tiles/internal/config"
	"github.com/vovakirdan/tui-tiles/internal/core"
	"github.com/vovakirdan/tui-tiles/internal/i18n"
	"github.com/vovakirdan/tui-tiles/internal/platform/tui"
	"github.com/vovakirdan/tui-tiles/internal/settings"
	"github.com/vovakirdan/tui-tiles/internal/storage"
)

// localEnv assembles the collaborators of a local session from the global
// flags. The returned func releases the store, the audio device and the log
// file.
func localEnv() (*tui.Env, func(), error) {
	logger, closeLog := fileLogger()
	cleanup := []func(){closeLog}
	release := func() {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
	}

	cfg, err := config.LoadTiles(flagConfig)
	if err != nil {
		release()
		return nil, nil, err
	}

	env := &tui.Env{Config: cfg, Logger: logger}

	// Open storage; the game still works without it
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open database: %v\n", err)
		logger.Warn("cannot open database", "path", flagDBPath, "err", err)
	} else {
		cleanup = append(cleanup, func() { store.Close() })
		if n, err := store.PurgeExpired(); err != nil {
			logger.Warn("cannot purge preferences", "err", err)
		} else if n > 0 {
			logger.Debug("purged expired preferences", "count", n)
		}
		local := store.Local()
		env.Store = store
		env.Prefs = local
		env.Results = local
	}

	env.Settings = settings.Load(env.Prefs, cfg, logger)
	if env.Settings.Language == "" {
		env.Settings.Language = i18n.Detect(os.Getenv)
	}

	// Get terminal size
	env.Runtime = core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		env.Runtime.ScreenW = w
		env.Runtime.ScreenH = h
	}
	env.Runtime.FrameRate = flagFPS
	env.Runtime.Seed = flagSeed

	if !flagNoSound {
		player := audio.NewPlayer(cfg.Audio, logger)
		if err := player.Init(env.Settings.Sounds); err != nil {
			logger.Warn("audio unavailable", "err", err)
		} else {
			env.Sound = player
			cleanup = append(cleanup, player.Close)
		}
	}

	return env, release, nil
}
