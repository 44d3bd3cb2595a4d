// Package assets loads sprite images by name and crops sub-regions from them.
package assets

import (
	"embed"
	"fmt"
	"image"
	"image/draw"
	_ "image/png" // Sprites ship as PNG
	"io"
	"io/fs"
	"os"
	"path"

	"github.com/charmbracelet/log"
)

// Sprite file names.
const (
	Bird       = "bird.png"
	TopPipe    = "top_pipe.png"
	BottomPipe = "bottom_pipe.png"
)

//go:embed images/*.png
var embedded embed.FS

// Provider loads images from a directory of named image files.
type Provider struct {
	fsys   fs.FS
	logger *log.Logger
}

// New creates a provider reading from fsys.
func New(fsys fs.FS, logger *log.Logger) *Provider {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Provider{fsys: fsys, logger: logger}
}

// Embedded returns a provider over the images compiled into the binary.
func Embedded(logger *log.Logger) *Provider {
	sub, err := fs.Sub(embedded, "images")
	if err != nil {
		panic(fmt.Sprintf("assets: embedded images: %v", err))
	}
	return New(sub, logger)
}

// Open returns a provider for dir, or the embedded images when dir is empty.
// The directory must exist.
func Open(dir string, logger *log.Logger) (*Provider, error) {
	if dir == "" {
		return Embedded(logger), nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("assets: cannot open directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("assets: %s is not a directory", dir)
	}
	return New(os.DirFS(dir), logger), nil
}

// Load decodes the named image. A missing file is an error.
func (p *Provider) Load(name string) (image.Image, error) {
	f, err := p.fsys.Open(path.Clean(name))
	if err != nil {
		return nil, fmt.Errorf("assets: cannot load %s: %w", name, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("assets: cannot decode %s: %w", name, err)
	}

	p.logger.Debug("image loaded", "name", name, "format", format,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return img, nil
}

// Crop returns the w×h sub-rectangle of img whose top-left corner is (x, y),
// relative to img's bounds. The region must lie inside the image; a region
// that does not is a caller bug and panics.
func Crop(img image.Image, x, y, w, h int) image.Image {
	b := img.Bounds()
	if x < 0 || y < 0 || w < 0 || h < 0 || x+w > b.Dx() || y+h > b.Dy() {
		panic(fmt.Sprintf("assets: crop (%d,%d %dx%d) exceeds image %dx%d",
			x, y, w, h, b.Dx(), b.Dy()))
	}

	r := image.Rect(x, y, x+w, y+h).Add(b.Min)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst
}
