// Package tui drives the game from a terminal with Bubble Tea.
// It maps key and mouse input to actions, paces frames and draws the
// desktop with its sprite windows, locally or over SSH.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to trigger a game frame.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends a tick after delay.
// The caller subtracts the time the last frame took, see core.FrameDelay.
func tickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
