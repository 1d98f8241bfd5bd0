// Package images sizes image files for embedding in a document. Only the
// header of each file is read; pixel data never enters the layout core.
package images

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"galley/pkg/doc"
	"galley/pkg/text/cache"
)

// DefaultSizeCacheSize bounds the dimension cache.
const DefaultSizeCacheSize = 1024

// Size is an image's intrinsic dimensions in pixels.
type Size struct {
	Width  int
	Height int
}

// Probe reads intrinsic image dimensions for sizing doc.ImageRun values.
// Results are memoized per path, so re-measuring a document does not re-read
// its images. Probe is safe for concurrent use.
type Probe struct {
	sizes *cache.LRU[string, Size]
}

// NewProbe creates a Probe with a default-sized cache.
func NewProbe() *Probe {
	return &Probe{sizes: cache.New[string, Size](DefaultSizeCacheSize)}
}

// Dimensions returns the pixel dimensions of the image at path, decoding only
// the file header. GIF, JPEG and PNG are supported.
func (p *Probe) Dimensions(path string) (Size, error) {
	if s, ok := p.sizes.Get(path); ok {
		return s, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Size{}, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return Size{}, fmt.Errorf("images: decoding %s: %w", path, err)
	}

	s := Size{Width: cfg.Width, Height: cfg.Height}
	p.sizes.Set(path, s)
	return s, nil
}

// InlineRun builds an inline image run sized to the file's intrinsic
// dimensions.
func (p *Probe) InlineRun(path string) (*doc.ImageRun, error) {
	s, err := p.Dimensions(path)
	if err != nil {
		return nil, err
	}
	return &doc.ImageRun{
		Width:  float64(s.Width),
		Height: float64(s.Height),
		Wrap:   doc.WrapInline,
	}, nil
}

// Invalidate drops every cached dimension. Call it when image files on disk
// change.
func (p *Probe) Invalidate() {
	p.sizes.Clear()
}
