package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/window-flappy/internal/core"
)

// colorPair is the style key of a cell.
type colorPair struct {
	fg, bg core.Color
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same colours to minimize ANSI escape sequences.
func RenderScreen(r *lipgloss.Renderer, s *core.Screen) string {
	styles := make(map[colorPair]lipgloss.Style)
	style := func(p colorPair) lipgloss.Style {
		st, ok := styles[p]
		if !ok {
			st = r.NewStyle().
				Foreground(lipgloss.Color(p.fg.Hex())).
				Background(lipgloss.Color(p.bg.Hex()))
			styles[p] = st
		}
		return st
	}

	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*4 + s.Height())

	for y := 0; y < s.Height(); y++ {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			start := s.Get(x, y)
			pair := colorPair{start.FG, start.BG}

			// Collect consecutive cells with the same colours
			var run strings.Builder
			for x < s.Width() {
				cell := s.Get(x, y)
				if (colorPair{cell.FG, cell.BG}) != pair {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			sb.WriteString(style(pair).Render(run.String()))
		}
	}
	return sb.String()
}
