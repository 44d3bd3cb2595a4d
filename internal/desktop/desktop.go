// Package desktop is the window system the game draws into.
// It keeps one surface per window, stretches each window's image to the
// window's size and composes all of them into a pixel framebuffer that the
// terminal shows two pixels per character cell.
package desktop

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"math"

	"github.com/charmbracelet/log"
	xdraw "golang.org/x/image/draw"

	"github.com/vovakirdan/window-flappy/internal/core"
	"github.com/vovakirdan/window-flappy/internal/registry"
)

var (
	// ErrWindowExists is returned when a handle is opened twice.
	ErrWindowExists = errors.New("desktop: window already open")
	// ErrNoWindow is returned for operations on windows that are not open.
	ErrNoWindow = errors.New("desktop: no such window")
)

// Options controls how the desktop paints.
type Options struct {
	Background       core.Color // Visible where no window covers the field
	WindowBackground core.Color // Painted behind every window's image
}

// DefaultOptions returns the default desktop colours.
func DefaultOptions() Options {
	return Options{
		Background:       core.Color{R: 0x1e, G: 0x1e, B: 0x2e},
		WindowBackground: core.Color{R: 0xd8, G: 0xdc, B: 0xe6},
	}
}

// surface is the desktop side of one window.
type surface struct {
	id     registry.Handle
	label  string
	rect   core.Rect
	src    image.Image
	pixels *image.RGBA // src stretched to rect's size over the window background
	onTop  bool
}

// Desktop implements registry.System on an in-memory framebuffer.
type Desktop struct {
	opts     Options
	width    int
	height   int
	surfaces map[registry.Handle]*surface
	order    []registry.Handle // Open order
	frame    *image.RGBA
	logger   *log.Logger
}

var _ registry.System = (*Desktop)(nil)

// New creates an empty desktop covering the given field.
func New(field core.FieldDimensions, opts Options, logger *log.Logger) *Desktop {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	w := int(math.Round(field.Width))
	h := int(math.Round(field.Height))
	return &Desktop{
		opts:     opts,
		width:    w,
		height:   h,
		surfaces: make(map[registry.Handle]*surface),
		frame:    image.NewRGBA(image.Rect(0, 0, w, h)),
		logger:   logger,
	}
}

// Open implements registry.System.
func (d *Desktop) Open(w registry.Window) error {
	if _, ok := d.surfaces[w.ID]; ok {
		return fmt.Errorf("%w: %d", ErrWindowExists, w.ID)
	}
	s := &surface{
		id:    w.ID,
		label: w.Label,
		rect:  w.Rect,
		src:   w.Image,
		onTop: w.AlwaysOnTop,
	}
	s.pixels = d.stretch(s.src, s.rect)
	d.surfaces[w.ID] = s
	d.order = append(d.order, w.ID)

	d.logger.Debug("window opened", "id", w.ID, "label", w.Label,
		"size", fmt.Sprintf("%dx%d", s.pixels.Bounds().Dx(), s.pixels.Bounds().Dy()))
	return nil
}

// Move implements registry.System.
func (d *Desktop) Move(id registry.Handle, x, y float64) error {
	s, ok := d.surfaces[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoWindow, id)
	}
	s.rect = s.rect.Moved(x, y)
	return nil
}

// Resize implements registry.System.
func (d *Desktop) Resize(id registry.Handle, w, h float64) error {
	s, ok := d.surfaces[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoWindow, id)
	}
	s.rect.W, s.rect.H = w, h
	s.pixels = d.stretch(s.src, s.rect)
	return nil
}

// Close implements registry.System.
func (d *Desktop) Close(id registry.Handle) error {
	if _, ok := d.surfaces[id]; !ok {
		return fmt.Errorf("%w: %d", ErrNoWindow, id)
	}
	delete(d.surfaces, id)
	for i, h := range d.order {
		if h == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}

	d.logger.Debug("window closed", "id", id)
	return nil
}

// Len returns the number of open windows.
func (d *Desktop) Len() int {
	return len(d.surfaces)
}

// Size returns the framebuffer size in pixels.
func (d *Desktop) Size() (width, height int) {
	return d.width, d.height
}

// Stacking returns window handles bottom-most first. Always-on-top windows
// sit above all others; ties keep open order.
func (d *Desktop) Stacking() []registry.Handle {
	result := make([]registry.Handle, 0, len(d.order))
	for _, top := range []bool{false, true} {
		for _, id := range d.order {
			if d.surfaces[id].onTop == top {
				result = append(result, id)
			}
		}
	}
	return result
}

// Compose paints the background and every window into the framebuffer and
// returns it. The returned image is reused by the next call.
func (d *Desktop) Compose() *image.RGBA {
	draw.Draw(d.frame, d.frame.Bounds(), image.NewUniform(d.opts.Background), image.Point{}, draw.Src)

	for _, id := range d.Stacking() {
		s := d.surfaces[id]
		origin := image.Pt(int(math.Round(s.rect.X)), int(math.Round(s.rect.Y)))
		r := s.pixels.Bounds().Add(origin)
		draw.Draw(d.frame, r, s.pixels, image.Point{}, draw.Src)
	}
	return d.frame
}

// Render composes the desktop into dst, two vertical pixels per cell: the
// upper pixel is the foreground of '▀' and the lower one its background.
func (d *Desktop) Render(dst *core.Screen) {
	frame := d.Compose()

	for cy := 0; cy < dst.Height(); cy++ {
		for cx := 0; cx < dst.Width(); cx++ {
			dst.Set(cx, cy, core.Cell{
				Rune: '▀',
				FG:   d.pixel(frame, cx, 2*cy),
				BG:   d.pixel(frame, cx, 2*cy+1),
			})
		}
	}
}

// pixel reads the framebuffer, treating anything outside it as background.
func (d *Desktop) pixel(frame *image.RGBA, x, y int) core.Color {
	if !image.Pt(x, y).In(frame.Bounds()) {
		return d.opts.Background
	}
	c := frame.RGBAAt(x, y)
	return core.Color{R: c.R, G: c.G, B: c.B}
}

// stretch renders src scaled to fill rect on an opaque window background.
func (d *Desktop) stretch(src image.Image, rect core.Rect) *image.RGBA {
	w := pixelSpan(rect.W)
	h := pixelSpan(rect.H)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(d.opts.WindowBackground), image.Point{}, draw.Src)
	if src != nil && !src.Bounds().Empty() && w > 0 && h > 0 {
		xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	}
	return dst
}

// pixelSpan rounds a window extent to whole pixels; any visible extent
// covers at least one pixel.
func pixelSpan(v float64) int {
	n := int(math.Round(v))
	if n < 1 && v > 0 {
		n = 1
	}
	if n < 0 {
		n = 0
	}
	return n
}
