package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-tiles/internal/core"
	"github.com/vovakirdan/tui-tiles/internal/settings"
)

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestMapKey(t *testing.T) {
	km := NewKeyMapper()

	tests := []struct {
		msg  tea.KeyMsg
		want core.Action
	}{
		{runeKey("q"), core.ActionQuit},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionQuit},
		{tea.KeyMsg{Type: tea.KeyUp}, core.ActionUp},
		{runeKey("j"), core.ActionDown},
		{tea.KeyMsg{Type: tea.KeyLeft}, core.ActionLeft},
		{runeKey("l"), core.ActionRight},
		{tea.KeyMsg{Type: tea.KeyEnter}, core.ActionConfirm},
		{tea.KeyMsg{Type: tea.KeyEsc}, core.ActionBack},
		{runeKey("x"), core.ActionNone},
	}

	for _, tc := range tests {
		if got := km.MapKey(tc.msg); got != tc.want {
			t.Errorf("MapKey(%q) = %v, expected %v", tc.msg.String(), got, tc.want)
		}
	}
}

func TestLaneColumn(t *testing.T) {
	s := settings.Settings{Keys: "dfjk", Columns: 6}

	tests := []struct {
		key  string
		want int
	}{
		{"d", 0},
		{"K", 3},
		{"1", 0},
		{"6", 5},
		{"7", -1}, // Beyond the lane
		{"0", -1},
		{"z", -1},
	}

	for _, tc := range tests {
		if got := LaneColumn(s, tc.key); got != tc.want {
			t.Errorf("LaneColumn(%q) = %d, expected %d", tc.key, got, tc.want)
		}
	}
}
