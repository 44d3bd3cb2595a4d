package flappy

import (
	"fmt"
	"image"
	"math"
	"math/rand"

	"github.com/vovakirdan/window-flappy/internal/assets"
	"github.com/vovakirdan/window-flappy/internal/core"
	"github.com/vovakirdan/window-flappy/internal/registry"
)

// PipePair is a top and a bottom pipe window sharing one x and one gap.
type PipePair struct {
	Top    registry.Handle
	Bottom registry.Handle

	X            float64 // Shared left edge
	TopHeight    float64 // Also the y where the gap starts
	GapSize      float64
	BottomHeight float64
}

// BottomY returns the y of the bottom pipe's top edge.
func (p PipePair) BottomY() float64 {
	return p.TopHeight + p.GapSize
}

// PipeFactory creates pipe pairs at the right side of the field.
type PipeFactory struct {
	field   core.FieldDimensions
	windows *registry.Registry
	top     image.Image
	bottom  image.Image
	rng     *rand.Rand
}

// NewPipeFactory creates a factory cutting pipes from the given source images.
func NewPipeFactory(field core.FieldDimensions, windows *registry.Registry, top, bottom image.Image, rng *rand.Rand) *PipeFactory {
	return &PipeFactory{
		field:   field,
		windows: windows,
		top:     top,
		bottom:  bottom,
		rng:     rng,
	}
}

// ColumnWidth returns the on-screen width of a pipe.
func (f *PipeFactory) ColumnWidth() float64 {
	return f.field.VH(float64(f.top.Bounds().Dx()) * SpriteScale)
}

// Spawn creates both windows of a new pair at PipeSpawnX and returns the
// pair together with the ceiling the bird may not fly above.
// A gap position whose crop would be taller than a source image panics.
func (f *PipeFactory) Spawn() (PipePair, float64, error) {
	percent := MinTopPercent + f.rng.Intn(MaxTopPercent-MinTopPercent+1)

	pair := PipePair{
		X:         f.field.VW(PipeSpawnX),
		TopHeight: f.field.VH(float64(percent)),
		GapSize:   f.field.VH(GapPercent),
	}
	pair.BottomHeight = f.field.Height - pair.GapSize - pair.TopHeight

	width := f.ColumnWidth()
	topImg := cropAnchored(f.top, width, pair.TopHeight, true)
	bottomImg := cropAnchored(f.bottom, width, pair.BottomHeight, false)

	var err error
	pair.Top, err = f.windows.Create("top pipe", topImg, core.NewRect(pair.X, 0, width, pair.TopHeight), false)
	if err != nil {
		return PipePair{}, 0, err
	}
	pair.Bottom, err = f.windows.Create("bottom pipe", bottomImg, core.NewRect(pair.X, pair.BottomY(), width, pair.BottomHeight), false)
	if err != nil {
		return PipePair{}, 0, err
	}

	_, topBound, err := f.windows.Position(pair.Top)
	if err != nil {
		return PipePair{}, 0, err
	}
	return pair, topBound, nil
}

// cropAnchored cuts the part of a pipe image that keeps its aspect ratio at
// the given on-screen size. The lip stays at the gap: a top pipe keeps the
// bottom of its source, a bottom pipe keeps the top.
func cropAnchored(src image.Image, width, height float64, fromBottom bool) image.Image {
	b := src.Bounds()
	cropH := int(math.Round(height * float64(b.Dx()) / width))
	if cropH > b.Dy() {
		panic(fmt.Sprintf("flappy: pipe crop of %d rows is taller than its %dx%d source", cropH, b.Dx(), b.Dy()))
	}

	y := 0
	if fromBottom {
		y = b.Dy() - cropH
	}
	return assets.Crop(src, 0, y, b.Dx(), cropH)
}
