// Package score renders the final score and shows it in its own window.
package score

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/vovakirdan/window-flappy/internal/core"
	"github.com/vovakirdan/window-flappy/internal/registry"
)

// Padding around the text inside the rendered buffer, in font pixels.
const Padding = 2

// WindowHeightPercent is the height of the score window relative to the field.
const WindowHeightPercent = 15

// Ink is the text colour.
var Ink = color.RGBA{0x20, 0x20, 0x30, 0xff}

// Windows creates sprite windows. Satisfied by *registry.Registry.
type Windows interface {
	Create(label string, img image.Image, rect core.Rect, alwaysOnTop bool) (registry.Handle, error)
}

// Text formats the final score line.
func Text(score int) string {
	return fmt.Sprintf("Score: %d", score)
}

// Measure returns the size of text in font pixels, padding included.
func Measure(text string) (width, height int) {
	face := basicfont.Face7x13
	advance := font.MeasureString(face, text)
	m := face.Metrics()
	return advance.Ceil() + 2*Padding, m.Height.Ceil() + 2*Padding
}

// Render rasterises text onto a transparent buffer sized by Measure.
func Render(text string, ink color.Color) *image.RGBA {
	w, h := Measure(text)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(ink),
		Face: face,
		Dot:  fixed.P(Padding, Padding+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
	return dst
}

// Placement returns where the score window goes: WindowHeightPercent of the
// field tall, the text's aspect ratio preserved, centred on the field. Text
// wider than the field is shrunk to fit.
func Placement(field core.FieldDimensions, textW, textH int) core.Rect {
	h := field.VH(WindowHeightPercent)
	w := h * float64(textW) / float64(textH)
	if w > field.Width {
		h *= field.Width / w
		w = field.Width
	}
	return core.NewRect((field.Width-w)/2, (field.Height-h)/2, w, h)
}

// Show opens the final score window.
func Show(windows Windows, field core.FieldDimensions, score int) (registry.Handle, error) {
	img := Render(Text(score), Ink)
	rect := Placement(field, img.Bounds().Dx(), img.Bounds().Dy())

	h, err := windows.Create("score", img, rect, true)
	if err != nil {
		return 0, fmt.Errorf("score: cannot show final score: %w", err)
	}
	return h, nil
}
