package tui

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-tiles/internal/config"
	"github.com/vovakirdan/tui-tiles/internal/core"
	"github.com/vovakirdan/tui-tiles/internal/i18n"
	"github.com/vovakirdan/tui-tiles/internal/settings"
	"github.com/vovakirdan/tui-tiles/internal/storage"
	"github.com/vovakirdan/tui-tiles/internal/tiles"
)

// Sound is an effect player that can be switched on and off.
type Sound interface {
	tiles.Audio
	SetEnabled(on bool)
}

type muteSound struct{}

func (muteSound) PlayEffect(tiles.Effect) {}
func (muteSound) SetEnabled(bool)         {}

// Env carries one player's collaborators through the menu, game and
// scoreboard screens. A session owns its Env; screens update Settings and
// Text in place.
type Env struct {
	Config   config.TilesConfig
	Settings settings.Settings
	Runtime  core.RuntimeConfig

	Prefs   tiles.Preferences // Nil keeps choices in memory
	Results tiles.ResultSink  // Nil drops finished runs
	Store   *storage.Store    // Nil hides the scoreboard
	Sound   Sound             // Nil plays nothing
	Text    *i18n.Catalog
	Logger  *log.Logger
}

// init fills missing collaborators.
func (e *Env) init() {
	if e.Prefs == nil {
		e.Prefs = tiles.NewMemoryPreferences()
	}
	if e.Sound == nil {
		e.Sound = muteSound{}
	}
	if e.Logger == nil {
		e.Logger = log.New(io.Discard)
	}
	if e.Text == nil {
		lang := e.Settings.Language
		if lang == "" {
			lang = i18n.DefaultLanguage
		}
		cat, err := i18n.Load(lang)
		if err != nil {
			e.Logger.Warn("unknown language, using default", "lang", lang, "err", err)
			cat, _ = i18n.Load(i18n.DefaultLanguage)
		}
		e.Text = cat
	}
	e.Sound.SetEnabled(e.Settings.Sound)
}

// save logs failed preference writes; the game continues regardless.
func (e *Env) save(what string, err error) {
	if err != nil {
		e.Logger.Warn("cannot save preference", "setting", what, "err", err)
	}
}

// notice returns the first pending warning as display text.
func (e *Env) notice() string {
	if len(e.Settings.Warnings) == 0 {
		return ""
	}
	return e.Text.Text(e.Settings.Warnings[0])
}

// dismissNotice drops the warning returned by notice.
func (e *Env) dismissNotice() {
	if len(e.Settings.Warnings) > 0 {
		e.Settings.Warnings = e.Settings.Warnings[1:]
	}
}
