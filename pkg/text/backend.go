// Package text measures glyph advances and font vertical metrics for styled
// text. The rest of the layout core treats the Backend interface as an
// injected dependency; no global backend exists, so tests and callers own
// backend lifetime explicitly.
package text

import (
	"errors"

	"galley/pkg/doc"
)

// ErrBackendUnavailable is returned when measurement is requested but no
// metrics backend is configured, or a backend cannot serve the request.
// It must surface to the caller; it is never substituted with a silently
// wrong layout.
var ErrBackendUnavailable = errors.New("text: metrics backend unavailable")

// Measurement is the result of measuring one string in one style.
// CharWidths has one entry per rune and sums to Width (up to rounding).
type Measurement struct {
	Width      float64
	CharWidths []float64
}

// FontMetrics are the vertical metrics of a style's font at its size,
// in pixels. Ascent and Descent are both positive distances from the
// baseline; LineHeight is the natural (single-spaced) line height.
type FontMetrics struct {
	Ascent     float64
	Descent    float64
	LineHeight float64
}

// Backend measures text deterministically: identical (text, style) inputs
// must yield identical results for as long as the rendering environment is
// unchanged. When the environment does change (a font finishes loading),
// the caller must invalidate any caches layered on top.
type Backend interface {
	MeasureText(text string, style doc.TextStyle) (Measurement, error)
	FontMetrics(style doc.TextStyle) (FontMetrics, error)
}

// applyLetterSpacing folds style letter-spacing into per-rune advances.
// Spacing is added once between each pair of runes, never after the last,
// so the aggregate width and the per-rune widths stay consistent.
func applyLetterSpacing(widths []float64, spacing float64) (total float64) {
	if spacing != 0 {
		for i := 0; i < len(widths)-1; i++ {
			widths[i] += spacing
		}
	}
	for _, w := range widths {
		total += w
	}
	return total
}
