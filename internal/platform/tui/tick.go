// Package tui provides the Bubble Tea front-end for the tiles game.
// It maps terminal cells to lane pixels, drives the session scheduler from
// the frame tick and hosts the menu, scoreboard and SSH server.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FrameMsg is sent once per UI frame.
type FrameMsg time.Time

// frameCmd returns a Bubble Tea command that sends a frame message after one
// frame interval.
func frameCmd(frameRate int) tea.Cmd {
	if frameRate <= 0 {
		frameRate = 60
	}
	interval := time.Second / time.Duration(frameRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}
