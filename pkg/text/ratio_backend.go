package text

import "galley/pkg/doc"

// RatioBackend estimates metrics from the font size alone: ascent 0.8x,
// descent 0.2x, line height 1.15x, and a flat 0.5x advance per rune.
//
// It is an explicit opt-in degraded mode for environments without font
// files (and a convenient deterministic backend for tests). It is never
// used as a hidden default: a nil backend yields ErrBackendUnavailable
// instead.
type RatioBackend struct{}

func (RatioBackend) MeasureText(s string, style doc.TextStyle) (Measurement, error) {
	advance := style.FontSize * 0.5
	var widths []float64
	for range s {
		widths = append(widths, advance)
	}
	total := applyLetterSpacing(widths, style.LetterSpacing)
	return Measurement{Width: total, CharWidths: widths}, nil
}

func (RatioBackend) FontMetrics(style doc.TextStyle) (FontMetrics, error) {
	return FontMetrics{
		Ascent:     style.FontSize * 0.8,
		Descent:    style.FontSize * 0.2,
		LineHeight: style.FontSize * 1.15,
	}, nil
}
