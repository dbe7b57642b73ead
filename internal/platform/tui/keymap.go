package tui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-tiles/internal/core"
	"github.com/vovakirdan/tui-tiles/internal/settings"
)

// KeyMapper translates Bubble Tea key messages to menu actions.
// This centralizes key bindings and makes them testable.
type KeyMapper struct{}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{}
}

// MapKey translates a key to a menu action.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) core.Action {
	switch msg.String() {
	case "ctrl+c", "q":
		return core.ActionQuit
	case "w", "up", "k": // vim-style k for up
		return core.ActionUp
	case "s", "down", "j": // vim-style j for down
		return core.ActionDown
	case "a", "left", "h":
		return core.ActionLeft
	case "d", "right", "l":
		return core.ActionRight
	case "enter", " ":
		return core.ActionConfirm
	case "b", "esc":
		return core.ActionBack
	}
	return core.ActionNone
}

// LaneColumn maps a key to a lane column. The bound keys come first, then
// the digits 1-9 as a fallback for wide lanes. Returns -1 for other keys.
func LaneColumn(s settings.Settings, pressed string) int {
	if c := s.KeyColumn(pressed); c >= 0 {
		return c
	}
	if n, err := strconv.Atoi(pressed); err == nil && n >= 1 && n <= s.Columns {
		return n - 1
	}
	return -1
}

// GameKeyMap defines the control bindings of the game screen.
// Lane keys are matched first, so a lane key never triggers a control.
type GameKeyMap struct {
	Lanes      key.Binding
	Restart    key.Binding
	Mode       key.Binding
	Sound      key.Binding
	Columns    key.Binding
	Duration   key.Binding
	Screenshot key.Binding
	Back       key.Binding
	Quit       key.Binding
}

// ShortHelp returns key bindings for the help bar.
func (k GameKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Lanes, k.Restart, k.Mode, k.Columns, k.Duration, k.Sound, k.Back, k.Quit}
}

// FullHelp returns the same bindings in one group; the lane leaves no room
// for a multi-line help view.
func (k GameKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// DefaultGameKeyMap returns the game bindings for the given lane keys.
func DefaultGameKeyMap(laneKeys string) GameKeyMap {
	lanes := make([]string, 0, len(laneKeys))
	for _, r := range laneKeys {
		lanes = append(lanes, string(r))
	}
	return GameKeyMap{
		Lanes: key.NewBinding(
			key.WithKeys(lanes...),
			key.WithHelp(laneKeys+"/click", "tap"),
		),
		Restart: key.NewBinding(
			key.WithKeys("enter", "ctrl+r"),
			key.WithHelp("enter", "again"),
		),
		Mode: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "mode"),
		),
		Sound: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "sound"),
		),
		Columns: key.NewBinding(
			key.WithKeys("+", "-"),
			key.WithHelp("+/-", "columns"),
		),
		Duration: key.NewBinding(
			key.WithKeys(">", "<"),
			key.WithHelp("</>", "time"),
		),
		Screenshot: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "screenshot"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "menu"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}
