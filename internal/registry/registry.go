// Package registry owns the sprite windows of a game.
// Each window is a record {handle, label, rect, image} keyed by an opaque
// handle, mirrored onto a window System that actually displays it. Handles
// are never reused, so a destroyed window cannot be reached again.
package registry

import (
	"errors"
	"fmt"
	"image"
	"io"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/window-flappy/internal/core"
)

// ErrUnknownHandle is returned for handles that were never created or have
// already been destroyed.
var ErrUnknownHandle = errors.New("registry: unknown window handle")

// Handle identifies a window. The zero Handle is never issued.
type Handle uint64

// Window is the record the registry keeps for every live window.
type Window struct {
	ID          Handle
	Label       string // For debugging only
	Rect        core.Rect
	Image       image.Image
	AlwaysOnTop bool
}

// System is the window system the registry drives.
// Failures are fatal to the caller; there is no degraded mode.
type System interface {
	// Open makes a new window visible, showing its image stretched to fill it.
	Open(w Window) error
	// Move repositions a window.
	Move(id Handle, x, y float64) error
	// Resize changes a window's size; the image is stretched again.
	Resize(id Handle, w, h float64) error
	// Close removes a window from the screen and releases it.
	Close(id Handle) error
}

// Registry tracks the live windows of one game.
// It is used from a single goroutine and does no locking.
type Registry struct {
	system  System
	windows map[Handle]*Window
	next    Handle
	logger  *log.Logger
}

// New creates an empty registry on top of the given window system.
func New(system System, logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Registry{
		system:  system,
		windows: make(map[Handle]*Window),
		logger:  logger,
	}
}

// Create opens a window of the given rect showing img.
func (r *Registry) Create(label string, img image.Image, rect core.Rect, alwaysOnTop bool) (Handle, error) {
	if rect.X < 0 || rect.Y < 0 || rect.W < 0 || rect.H < 0 {
		return 0, fmt.Errorf("registry: window %q has negative geometry %v", label, rect)
	}

	r.next++
	w := &Window{
		ID:          r.next,
		Label:       label,
		Rect:        rect,
		Image:       img,
		AlwaysOnTop: alwaysOnTop,
	}
	if err := r.system.Open(*w); err != nil {
		return 0, fmt.Errorf("registry: cannot create window %q: %w", label, err)
	}
	r.windows[w.ID] = w

	r.logger.Debug("window created", "id", w.ID, "label", label, "rect", rect)
	return w.ID, nil
}

// SetPosition moves a window. The position is not validated.
func (r *Registry) SetPosition(h Handle, x, y float64) error {
	w, ok := r.windows[h]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	if err := r.system.Move(h, x, y); err != nil {
		return fmt.Errorf("registry: cannot move window %q: %w", w.Label, err)
	}
	w.Rect = w.Rect.Moved(x, y)
	return nil
}

// Resize changes a window's size.
func (r *Registry) Resize(h Handle, width, height float64) error {
	w, ok := r.windows[h]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	if width < 0 || height < 0 {
		return fmt.Errorf("registry: window %q cannot have size %vx%v", w.Label, width, height)
	}
	if err := r.system.Resize(h, width, height); err != nil {
		return fmt.Errorf("registry: cannot resize window %q: %w", w.Label, err)
	}
	w.Rect.W, w.Rect.H = width, height
	return nil
}

// Destroy closes a window. The handle is invalid afterwards.
func (r *Registry) Destroy(h Handle) error {
	w, ok := r.windows[h]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	delete(r.windows, h)
	if err := r.system.Close(h); err != nil {
		return fmt.Errorf("registry: cannot destroy window %q: %w", w.Label, err)
	}

	r.logger.Debug("window destroyed", "id", h, "label", w.Label)
	return nil
}

// DestroyAll closes every live window, oldest first.
func (r *Registry) DestroyAll() error {
	var errs []error
	for _, w := range r.Windows() {
		if err := r.Destroy(w.ID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Position returns a window's top-left corner.
func (r *Registry) Position(h Handle) (x, y float64, err error) {
	w, ok := r.windows[h]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	return w.Rect.X, w.Rect.Y, nil
}

// Size returns a window's width and height.
func (r *Registry) Size(h Handle) (width, height float64, err error) {
	w, ok := r.windows[h]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	return w.Rect.W, w.Rect.H, nil
}

// Rect returns a window's bounding box.
func (r *Registry) Rect(h Handle) (core.Rect, error) {
	w, ok := r.windows[h]
	if !ok {
		return core.Rect{}, fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	return w.Rect, nil
}

// Alive reports whether h refers to a live window.
func (r *Registry) Alive(h Handle) bool {
	_, ok := r.windows[h]
	return ok
}

// Len returns the number of live windows.
func (r *Registry) Len() int {
	return len(r.windows)
}

// Windows returns copies of all live windows sorted by creation order.
func (r *Registry) Windows() []Window {
	result := make([]Window, 0, len(r.windows))
	for _, w := range r.windows {
		result = append(result, *w)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}
