package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-tiles/internal/config"
	"github.com/vovakirdan/tui-tiles/internal/core"
	"github.com/vovakirdan/tui-tiles/internal/i18n"
	"github.com/vovakirdan/tui-tiles/internal/settings"
	"github.com/vovakirdan/tui-tiles/internal/tiles"
)

// MenuItem is one row of the start menu.
type MenuItem int

const (
	ItemPlay MenuItem = iota
	ItemMode
	ItemDuration
	ItemColumns
	ItemSound
	ItemLanguage
	ItemKeys
	ItemScores
	ItemQuit
)

var menuItems = []MenuItem{
	ItemPlay, ItemMode, ItemDuration, ItemColumns, ItemSound,
	ItemLanguage, ItemKeys, ItemScores, ItemQuit,
}

// durationStep is the Left/Right increment of the fixed-time length.
const durationStep = 5

// MenuModel is the Bubble Tea model for the start menu. Left/Right change
// the selected setting, which is saved immediately.
type MenuModel struct {
	env       *Env
	cursor    int
	width     int
	height    int
	keyMapper *KeyMapper
	editing   bool // Key binding input has focus
	input     textinput.Model
	inputErr  string

	quitting       bool
	play           bool
	openScoreboard bool
}

// NewMenuModel creates a new menu model.
func NewMenuModel(env *Env) MenuModel {
	env.init()
	in := textinput.New()
	in.CharLimit = config.MaxColumns
	in.Width = config.MaxColumns + 1

	return MenuModel{
		env:       env,
		width:     env.Runtime.ScreenW,
		height:    env.Runtime.ScreenH,
		keyMapper: NewKeyMapper(),
		input:     in,
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m.handleEdit(msg)
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.env.Runtime.ScreenW = msg.Width
		m.env.Runtime.ScreenH = msg.Height
		return m, nil
	}

	if m.editing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.env.dismissNotice()

	switch m.keyMapper.MapKey(msg) {
	case core.ActionQuit:
		m.quitting = true
		return m, tea.Quit

	case core.ActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case core.ActionDown:
		if m.cursor < len(menuItems)-1 {
			m.cursor++
		}

	case core.ActionLeft:
		m.change(-1)

	case core.ActionRight:
		m.change(1)

	case core.ActionConfirm:
		return m.confirm()
	}

	return m, nil
}

func (m MenuModel) confirm() (tea.Model, tea.Cmd) {
	switch menuItems[m.cursor] {
	case ItemPlay:
		m.play = true
	case ItemScores:
		m.openScoreboard = true
	case ItemQuit:
		m.quitting = true
		return m, tea.Quit
	case ItemKeys:
		m.editing = true
		m.inputErr = ""
		m.input.SetValue(m.env.Settings.Keys)
		m.input.CursorEnd()
		return m, m.input.Focus()
	default:
		m.change(1)
	}
	return m, nil
}

// handleEdit feeds the key binding input.
func (m MenuModel) handleEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.editing = false
		m.input.Blur()
		return m, nil

	case tea.KeyEnter:
		keys, err := settings.NormalizeKeys(m.input.Value())
		if err != nil {
			m.inputErr = m.env.Text.Text("keys-invalid")
			return m, nil
		}
		m.env.Settings.Keys = keys
		m.env.save(settings.KeyKeyboard, settings.SaveKeys(m.env.Prefs, keys))
		m.editing = false
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// change steps the selected setting by dir and persists it.
func (m *MenuModel) change(dir int) {
	e := m.env
	s := &e.Settings

	switch menuItems[m.cursor] {
	case ItemMode:
		s.Mode = stepMode(s.Mode, dir)
		e.save(settings.KeyMode, settings.SaveMode(e.Prefs, s.Mode))

	case ItemDuration:
		secs := core.Clamp(s.Duration+dir*durationStep, config.MinDurationSec, config.MaxDurationSec)
		// From the minimum, step back onto the 5s grid
		if s.Duration == config.MinDurationSec && dir > 0 {
			secs = durationStep
		}
		s.Duration = secs
		e.save(settings.KeyDuration, settings.SaveDuration(e.Prefs, secs))

	case ItemColumns:
		s.Columns = core.Clamp(s.Columns+dir, config.MinColumns, config.MaxColumns)
		e.save(settings.KeyColumns, settings.SaveColumns(e.Prefs, s.Columns))

	case ItemSound:
		s.Sound = !s.Sound
		e.Sound.SetEnabled(s.Sound)
		e.save(settings.KeySound, settings.SaveSound(e.Prefs, s.Sound))

	case ItemLanguage:
		langs := i18n.Languages()
		next := langs[0]
		for i, l := range langs {
			if l == e.Text.Lang() {
				next = langs[(i+dir+len(langs))%len(langs)]
			}
		}
		cat, err := i18n.Load(next)
		if err != nil {
			e.Logger.Warn("cannot load language", "lang", next, "err", err)
			return
		}
		e.Text = cat
		s.Language = next
		e.save(settings.KeyLanguage, settings.SaveLanguage(e.Prefs, next))
	}
}

func stepMode(m tiles.Mode, dir int) tiles.Mode {
	n := len(tiles.Modes)
	for i, mode := range tiles.Modes {
		if mode == m {
			return tiles.Modes[(i+dir+n)%n]
		}
	}
	return tiles.Modes[0]
}

// label returns the display text of a menu row.
func (m MenuModel) label(item MenuItem) string {
	t := m.env.Text
	s := m.env.Settings

	switch item {
	case ItemPlay:
		return t.Text("play")
	case ItemMode:
		return fmt.Sprintf("%s  < %s >", t.Text("mode"), t.Text(s.Mode.LabelKey()))
	case ItemDuration:
		return fmt.Sprintf("%s  < %ds >", t.Text("time"), s.Duration)
	case ItemColumns:
		return fmt.Sprintf("%s  < %d >", t.Text("columns"), s.Columns)
	case ItemSound:
		if s.Sound {
			return t.Text("sound-on")
		}
		return t.Text("sound-off")
	case ItemLanguage:
		return fmt.Sprintf("%s  < %s >", t.Text("language"), t.Text("lang"))
	case ItemKeys:
		if m.editing {
			return t.Text("key") + "  " + m.input.View()
		}
		return fmt.Sprintf("%s  %s", t.Text("key"), s.Keys)
	case ItemScores:
		return t.Text("scores")
	case ItemQuit:
		return t.Text("quit")
	}
	return ""
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	t := m.env.Text

	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render(t.Text("game-title")), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(dimStyle.Render(t.Text("game-intro1")), m.width))
	b.WriteString("\n")
	b.WriteString(centerText(dimStyle.Render(t.Text("game-intro2")), m.width))
	b.WriteString("\n\n")

	for i, item := range menuItems {
		line := "  " + m.label(item)
		if i == m.cursor {
			line = cursorStyle.Render("> " + m.label(item))
		}
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.inputErr != "" {
		b.WriteString(centerText(warnStyle.Render(m.inputErr), m.width))
		b.WriteString("\n")
	}
	if notice := m.env.notice(); notice != "" {
		b.WriteString(centerText(warnStyle.Render(notice), m.width))
		b.WriteString("\n")
	}

	controls := "Up/Down: Navigate  |  Left/Right: Change  |  Enter: Select  |  Q: Quit"
	if m.editing {
		controls = "Enter: Save  |  Esc: Cancel"
	}
	b.WriteString(centerText(dimStyle.Render(controls), m.width))
	b.WriteString("\n")
	b.WriteString(centerText(dimStyle.Render(t.Text("hint-keyboard-support")+" "+t.Text("hint-pointer-support")), m.width))
	b.WriteString("\n")

	return b.String()
}

// WantsPlay returns true if the player chose to start a run.
func (m MenuModel) WantsPlay() bool {
	return m.play
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsScoreboard returns true if user requested scoreboard.
func (m MenuModel) WantsScoreboard() bool {
	return m.openScoreboard
}
