package text

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/go-text/typesetting/di"
	gtfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"

	"galley/pkg/doc"
)

// ShapedBackend measures text with full HarfBuzz shaping via
// go-text/typesetting: kerning pairs, ligatures and contextual alternates
// all land in the advances. A ligature collapses its cluster's width onto
// the cluster's first rune so the per-character widths still sum to the
// aggregate width.
//
// ShapedBackend is safe for concurrent use. Parsed fonts (thread-safe) are
// cached per file; faces and HarfbuzzShaper instances are created per call
// or pooled, since neither is safe for concurrent use.
type ShapedBackend struct {
	fallback FontConfig
	families map[string]FontConfig

	shaperPool sync.Pool

	mu    sync.RWMutex
	fonts map[string]*gtfont.Font
}

// NewShapedBackend creates a backend whose unknown families resolve to
// fallback.
func NewShapedBackend(fallback FontConfig) *ShapedBackend {
	return &ShapedBackend{
		fallback: fallback,
		families: make(map[string]FontConfig),
		shaperPool: sync.Pool{
			New: func() any {
				return &shaping.HarfbuzzShaper{}
			},
		},
		fonts: make(map[string]*gtfont.Font),
	}
}

// RegisterFamily maps a font family name to its font files.
func (b *ShapedBackend) RegisterFamily(name string, fc FontConfig) {
	b.families[name] = fc
}

// Reset drops every parsed font, forcing re-parsing on next use.
func (b *ShapedBackend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fonts = make(map[string]*gtfont.Font)
}

func (b *ShapedBackend) fontPath(style doc.TextStyle) (string, error) {
	fc, ok := b.families[style.FontFamily]
	if !ok {
		fc = b.fallback
	}
	path := fc.FontPath(style.Bold, style.Italic)
	if path == "" {
		return "", fmt.Errorf("%w: no font file for family %q", ErrBackendUnavailable, style.FontFamily)
	}
	return path, nil
}

// font returns the cached parsed font for path, parsing it on first use.
// gtfont.Font is read-only and safe for concurrent use.
func (b *ShapedBackend) font(path string) (*gtfont.Font, error) {
	b.mu.RLock()
	f, ok := b.fonts[path]
	b.mu.RUnlock()
	if ok {
		return f, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if f, ok := b.fonts[path]; ok {
		return f, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrBackendUnavailable, path, err)
	}
	face, err := gtfont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrBackendUnavailable, path, err)
	}
	b.fonts[path] = face.Font
	return face.Font, nil
}

func (b *ShapedBackend) shape(s string, style doc.TextStyle) (shaping.Output, error) {
	path, err := b.fontPath(style)
	if err != nil {
		return shaping.Output{}, err
	}
	f, err := b.font(path)
	if err != nil {
		return shaping.Output{}, err
	}

	runes := []rune(s)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      gtfont.NewFace(f),
		Size:      floatToFixed(style.FontSize),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}

	shaper := b.shaperPool.Get().(*shaping.HarfbuzzShaper)
	output := shaper.Shape(input)
	b.shaperPool.Put(shaper)
	return output, nil
}

// MeasureText implements Backend.
func (b *ShapedBackend) MeasureText(s string, style doc.TextStyle) (Measurement, error) {
	runeCount := 0
	for range s {
		runeCount++
	}
	if runeCount == 0 {
		return Measurement{}, nil
	}

	output, err := b.shape(s, style)
	if err != nil {
		return Measurement{}, err
	}

	// Distribute glyph advances onto runes by cluster. Glyphs of a multi-rune
	// cluster (ligature) all credit the cluster's first rune; the remaining
	// runes of the cluster keep width zero.
	widths := make([]float64, runeCount)
	for _, g := range output.Glyphs {
		cluster := g.TextIndex()
		if cluster < 0 {
			cluster = 0
		}
		if cluster >= runeCount {
			cluster = runeCount - 1
		}
		widths[cluster] += fixedToFloat(g.Advance)
	}
	total := applyLetterSpacing(widths, style.LetterSpacing)
	return Measurement{Width: total, CharWidths: widths}, nil
}

// FontMetrics implements Backend.
func (b *ShapedBackend) FontMetrics(style doc.TextStyle) (FontMetrics, error) {
	// Shape a single space to obtain the face's line bounds at this size.
	output, err := b.shape(" ", style)
	if err != nil {
		return FontMetrics{}, err
	}
	ascent := fixedToFloat(output.LineBounds.Ascent)
	descent := fixedToFloat(output.LineBounds.Descent)
	if descent < 0 {
		// go-text reports descent as a negative offset below the baseline.
		descent = -descent
	}
	gap := fixedToFloat(output.LineBounds.Gap)
	return FontMetrics{
		Ascent:     ascent,
		Descent:    descent,
		LineHeight: ascent + descent + gap,
	}, nil
}

// detectScript returns the script of the first non-space rune. Mixed-script
// text should be split into per-script runs by the caller.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

// floatToFixed converts a float64 size to fixed.Int26_6.
func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}
