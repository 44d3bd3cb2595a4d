package desktop

import (
	"fmt"

	"golang.org/x/term"

	"github.com/vovakirdan/window-flappy/internal/core"
)

// Probe asks the terminal on fd for its size in character cells.
// Nothing is drawn, so the probe never shows up as a window.
func Probe(fd uintptr) (cols, rows int, err error) {
	cols, rows, err = term.GetSize(int(fd))
	if err != nil {
		return 0, 0, fmt.Errorf("desktop: cannot query screen size: %w", err)
	}
	if cols <= 0 || rows <= 0 {
		return 0, 0, fmt.Errorf("desktop: terminal reports empty size %dx%d", cols, rows)
	}
	return cols, rows, nil
}

// FieldFor converts a terminal size to field pixels. reserved rows at the
// bottom are kept for the status line; every remaining row holds two pixels.
func FieldFor(cols, rows, reserved int) core.FieldDimensions {
	usable := rows - reserved
	if usable < 1 {
		usable = 1
	}
	return core.NewField(cols, usable*2)
}
