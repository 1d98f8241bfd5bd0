package text

import (
	"fmt"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"galley/pkg/doc"
)

// FontConfig holds paths to the font files backing one family.
type FontConfig struct {
	Regular    string
	Bold       string
	Italic     string
	BoldItalic string
}

// FontPath returns the font path for the given style combination, falling
// back to Regular when a variant is not configured.
func (fc FontConfig) FontPath(bold, italic bool) string {
	if bold && italic && fc.BoldItalic != "" {
		return fc.BoldItalic
	}
	if bold && fc.Bold != "" {
		return fc.Bold
	}
	if italic && fc.Italic != "" {
		return fc.Italic
	}
	return fc.Regular
}

type faceKey struct {
	path string
	size float64
}

// FaceBackend measures text through font faces loaded from disk with
// fogleman/gg. Advances are per-rune glyph advances; kerning between pairs
// is not applied, which keeps the aggregate width exactly equal to the sum
// of the per-character widths. Use ShapedBackend when kerning and ligatures
// matter.
//
// FaceBackend is safe for concurrent use; loaded faces are cached per
// (path, size) and measurement is serialized because truetype faces are not
// concurrency-safe.
type FaceBackend struct {
	fallback FontConfig
	families map[string]FontConfig

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

// NewFaceBackend creates a backend whose unknown families resolve to
// fallback.
func NewFaceBackend(fallback FontConfig) *FaceBackend {
	return &FaceBackend{
		fallback: fallback,
		families: make(map[string]FontConfig),
		faces:    make(map[faceKey]font.Face),
	}
}

// RegisterFamily maps a font family name to its font files.
func (b *FaceBackend) RegisterFamily(name string, fc FontConfig) {
	b.families[name] = fc
}

// Reset drops every loaded face, forcing reloads on next use. Call it when
// the font files on disk change.
func (b *FaceBackend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.faces = make(map[faceKey]font.Face)
}

func (b *FaceBackend) fontPath(style doc.TextStyle) string {
	fc, ok := b.families[style.FontFamily]
	if !ok {
		fc = b.fallback
	}
	return fc.FontPath(style.Bold, style.Italic)
}

// face returns the cached font.Face for style, loading it on first use.
// Callers must hold b.mu.
func (b *FaceBackend) face(style doc.TextStyle) (font.Face, error) {
	path := b.fontPath(style)
	if path == "" {
		return nil, fmt.Errorf("%w: no font file for family %q", ErrBackendUnavailable, style.FontFamily)
	}
	key := faceKey{path: path, size: style.FontSize}
	if f, ok := b.faces[key]; ok {
		return f, nil
	}
	f, err := gg.LoadFontFace(path, style.FontSize)
	if err != nil {
		return nil, fmt.Errorf("%w: loading %s: %v", ErrBackendUnavailable, path, err)
	}
	b.faces[key] = f
	return f, nil
}

// MeasureText implements Backend.
func (b *FaceBackend) MeasureText(s string, style doc.TextStyle) (Measurement, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := b.face(style)
	if err != nil {
		return Measurement{}, err
	}

	var widths []float64
	for _, r := range s {
		adv, ok := f.GlyphAdvance(r)
		if !ok {
			// Missing glyph: fall back to the replacement character's
			// advance so measurement still covers every rune.
			adv, _ = f.GlyphAdvance('�')
		}
		widths = append(widths, fixedToFloat(adv))
	}
	total := applyLetterSpacing(widths, style.LetterSpacing)
	return Measurement{Width: total, CharWidths: widths}, nil
}

// FontMetrics implements Backend.
func (b *FaceBackend) FontMetrics(style doc.TextStyle) (FontMetrics, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := b.face(style)
	if err != nil {
		return FontMetrics{}, err
	}
	m := f.Metrics()
	ascent := fixedToFloat(m.Ascent)
	descent := fixedToFloat(m.Descent)
	height := fixedToFloat(m.Height)
	if height < ascent+descent {
		height = ascent + descent
	}
	return FontMetrics{Ascent: ascent, Descent: descent, LineHeight: height}, nil
}

// fixedToFloat converts a fixed.Int26_6 value to float64.
func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}
