package tui

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-tiles/internal/config"
	"github.com/vovakirdan/tui-tiles/internal/core"
	"github.com/vovakirdan/tui-tiles/internal/settings"
	"github.com/vovakirdan/tui-tiles/internal/tiles"
)

// GameModel is the Bubble Tea model for one tiles session.
// The frame tick drives the session scheduler; pointer and key events
// become taps.
type GameModel struct {
	env        *Env
	game       *tiles.Game
	screen     *core.Screen
	layout     laneLayout
	keys       GameKeyMap
	help       help.Model
	standalone bool // Esc quits instead of returning to the menu
	quitting   bool
	backToMenu bool
}

// NewGameModel creates a session sized to env.Runtime.
func NewGameModel(env *Env) GameModel {
	env.init()
	cfg := env.Runtime
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	layout := newLaneLayout(cfg.ScreenW, cfg.ScreenH)
	opts := env.Settings.Apply(tiles.OptionsFromConfig(env.Config))
	game := tiles.NewGame(opts, env.Settings.Mode, layout.viewport(cfg.Desktop), tiles.Deps{
		Audio:   env.Sound,
		Prefs:   env.Prefs,
		Text:    env.Text,
		Results: env.Results,
		Logger:  env.Logger,
		Rand:    rand.New(rand.NewSource(cfg.Seed)),
	})

	h := help.New()
	h.Width = cfg.ScreenW

	return GameModel{
		env:    env,
		game:   game,
		screen: core.NewScreen(cfg.ScreenW, max(cfg.ScreenH-footerRows, 0)),
		layout: layout,
		keys:   DefaultGameKeyMap(env.Settings.Keys),
		help:   h,
	}
}

// Game returns the running session.
func (m GameModel) Game() *tiles.Game {
	return m.game
}

// Init starts the frame loop.
func (m GameModel) Init() tea.Cmd {
	return frameCmd(m.env.Runtime.FrameRate)
}

// Update handles messages and updates the model state.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.FocusMsg:
		m.game.SetActive(true)
		return m, nil

	case tea.BlurMsg:
		m.game.SetActive(false)
		return m, nil

	case FrameMsg:
		m.game.Advance()
		return m, frameCmd(m.env.Runtime.FrameRate)
	}

	return m, nil
}

// handleKey processes keyboard input. Lane keys are checked before controls.
func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.env.dismissNotice()

	if msg.Type == tea.KeyRunes {
		if col := LaneColumn(m.env.Settings, msg.String()); col >= 0 {
			m.game.KeyTap(col)
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		m.game.SetActive(false)
		if m.standalone {
			m.quitting = true
			return m, tea.Quit
		}
		m.backToMenu = true

	case key.Matches(msg, m.keys.Restart):
		//nolint:errcheck // Failure is shown in the panel and retried
		m.game.Restart()

	case key.Matches(msg, m.keys.Mode):
		m.cycleMode()

	case key.Matches(msg, m.keys.Columns):
		m.changeColumns(msg.String())

	case key.Matches(msg, m.keys.Duration):
		m.changeDuration(msg.String())

	case key.Matches(msg, m.keys.Sound):
		s := &m.env.Settings
		s.Sound = !s.Sound
		m.env.Sound.SetEnabled(s.Sound)
		m.env.save(settings.KeySound, settings.SaveSound(m.env.Prefs, s.Sound))

	case key.Matches(msg, m.keys.Screenshot):
		m.saveScreenshot()
	}

	return m, nil
}

func (m GameModel) cycleMode() {
	next := tiles.Modes[0]
	for i, mode := range tiles.Modes {
		if mode == m.game.Mode() {
			next = tiles.Modes[(i+1)%len(tiles.Modes)]
		}
	}
	//nolint:errcheck // Failure is shown in the panel and retried
	m.game.SetMode(next)
	m.env.Settings.Mode = next
	m.env.save(settings.KeyMode, settings.SaveMode(m.env.Prefs, next))
}

func (m GameModel) changeColumns(k string) {
	n := m.env.Settings.Columns + 1
	if k == "-" {
		n = m.env.Settings.Columns - 1
	}
	if config.ValidateColumns(n) != nil {
		return
	}
	//nolint:errcheck // Validated above; layout failure is shown in the panel
	m.game.SetColumns(n)
	m.env.Settings.Columns = n
	m.env.save(settings.KeyColumns, settings.SaveColumns(m.env.Prefs, n))
}

func (m GameModel) changeDuration(k string) {
	if m.game.Mode() != tiles.ModeFixedTime {
		return
	}
	secs := m.env.Settings.Duration + 5
	if k == "<" {
		secs = m.env.Settings.Duration - 5
	}
	secs = core.Clamp(secs, config.MinDurationSec, config.MaxDurationSec)
	//nolint:errcheck // Clamped above; layout failure is shown in the panel
	m.game.SetDuration(secs)
	m.env.Settings.Duration = secs
	m.env.save(settings.KeyDuration, settings.SaveDuration(m.env.Prefs, secs))
}

// handleMouse turns a left click into a tap on the cell under the pointer.
func (m GameModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	x, y, ok := m.layout.toLane(m.game.Geometry(), msg.X, msg.Y)
	if !ok {
		return m, nil
	}
	m.game.Tap(float64(x)+0.5, float64(y), m.game.CellAt(x, y))
	return m, nil
}

// handleResize processes window resize events. The session relayouts once
// the size settles.
func (m GameModel) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.env.Runtime.ScreenW = msg.Width
	m.env.Runtime.ScreenH = msg.Height
	m.screen.Resize(msg.Width, max(msg.Height-footerRows, 0))
	m.layout = newLaneLayout(msg.Width, msg.Height)
	m.game.Resize(m.layout.viewport(m.env.Runtime.Desktop))
	m.help.Width = msg.Width
	return m, nil
}

// saveScreenshot saves the current screen to a file.
func (m GameModel) saveScreenshot() {
	m.render()

	home, err := os.UserHomeDir()
	if err != nil {
		m.env.Logger.Warn("cannot save screenshot", "err", err)
		return
	}
	dir := filepath.Join(home, ".tiles", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.env.Logger.Warn("cannot save screenshot", "err", err)
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("tiles_%s_%s.txt", m.game.Mode(), timestamp))
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.env.Logger.Warn("cannot save screenshot", "err", err)
	}
}

func (m GameModel) render() {
	m.screen.Clear()
	drawPanel(m.screen, m.game.Panel(), m.env.Text, m.env.notice())
	drawLane(m.screen, m.layout, m.game)
}

// View renders the current state to a string for display.
func (m GameModel) View() string {
	if m.quitting {
		return ""
	}
	m.render()
	return RenderScreen(m.screen) + "\n" + dimStyle.Render(m.help.View(m.keys))
}

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m GameModel) BackToMenu() bool {
	return m.backToMenu
}

// RunGame plays a single session until the player quits.
func RunGame(env *Env) error {
	model := NewGameModel(env)
	model.standalone = true

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
	)

	_, err := p.Run()
	return err
}
