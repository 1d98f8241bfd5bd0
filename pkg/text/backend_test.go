package text

import (
	"errors"
	"testing"

	"galley/pkg/doc"
)

// countingBackend wraps RatioBackend and counts calls, for cache assertions.
type countingBackend struct {
	RatioBackend
	measureCalls int
	metricCalls  int
}

func (b *countingBackend) MeasureText(s string, style doc.TextStyle) (Measurement, error) {
	b.measureCalls++
	return b.RatioBackend.MeasureText(s, style)
}

func (b *countingBackend) FontMetrics(style doc.TextStyle) (FontMetrics, error) {
	b.metricCalls++
	return b.RatioBackend.FontMetrics(style)
}

func TestRatioBackendMeasureText(t *testing.T) {
	var b RatioBackend
	m, err := b.MeasureText("abc", doc.TextStyle{FontSize: 10})
	if err != nil {
		t.Fatalf("MeasureText: %v", err)
	}
	if m.Width != 15 {
		t.Errorf("width = %v, want 15", m.Width)
	}
	if len(m.CharWidths) != 3 {
		t.Fatalf("got %d char widths, want 3", len(m.CharWidths))
	}
	for i, w := range m.CharWidths {
		if w != 5 {
			t.Errorf("CharWidths[%d] = %v, want 5", i, w)
		}
	}
}

func TestRatioBackendLetterSpacing(t *testing.T) {
	var b RatioBackend
	m, err := b.MeasureText("abc", doc.TextStyle{FontSize: 10, LetterSpacing: 2})
	if err != nil {
		t.Fatalf("MeasureText: %v", err)
	}
	// Spacing applies between pairs, never after the last rune.
	want := []float64{7, 7, 5}
	for i, w := range want {
		if m.CharWidths[i] != w {
			t.Errorf("CharWidths[%d] = %v, want %v", i, m.CharWidths[i], w)
		}
	}
	if m.Width != 19 {
		t.Errorf("width = %v, want 19", m.Width)
	}
}

func TestRatioBackendFontMetrics(t *testing.T) {
	var b RatioBackend
	size := 20.0
	fm, err := b.FontMetrics(doc.TextStyle{FontSize: size})
	if err != nil {
		t.Fatalf("FontMetrics: %v", err)
	}
	if fm.Ascent != 16 || fm.Descent != 4 || fm.LineHeight != size*1.15 {
		t.Errorf("metrics = %v/%v/%v, want 16/4/%v", fm.Ascent, fm.Descent, fm.LineHeight, size*1.15)
	}
}

func TestCachedMemoizes(t *testing.T) {
	b := &countingBackend{}
	c := NewCached(b)
	style := doc.TextStyle{FontFamily: "serif", FontSize: 12}

	first, err := c.MeasureText("hello", style)
	if err != nil {
		t.Fatalf("MeasureText: %v", err)
	}
	second, err := c.MeasureText("hello", style)
	if err != nil {
		t.Fatalf("MeasureText: %v", err)
	}
	if b.measureCalls != 1 {
		t.Errorf("backend measured %d times, want 1", b.measureCalls)
	}
	if first.Width != second.Width {
		t.Errorf("cached width %v differs from %v", second.Width, first.Width)
	}

	if _, err := c.FontMetrics(style); err != nil {
		t.Fatalf("FontMetrics: %v", err)
	}
	if _, err := c.FontMetrics(style); err != nil {
		t.Fatalf("FontMetrics: %v", err)
	}
	if b.metricCalls != 1 {
		t.Errorf("backend metrics called %d times, want 1", b.metricCalls)
	}
}

func TestCachedDistinguishesStyles(t *testing.T) {
	b := &countingBackend{}
	c := NewCached(b)

	c.MeasureText("x", doc.TextStyle{FontSize: 12})
	c.MeasureText("x", doc.TextStyle{FontSize: 12, Bold: true})
	if b.measureCalls != 2 {
		t.Errorf("backend measured %d times, want 2 for distinct styles", b.measureCalls)
	}
}

func TestCachedInvalidate(t *testing.T) {
	b := &countingBackend{}
	c := NewCached(b)
	style := doc.TextStyle{FontSize: 12}

	c.MeasureText("x", style)
	c.Invalidate()
	c.MeasureText("x", style)
	if b.measureCalls != 2 {
		t.Errorf("backend measured %d times, want 2 after Invalidate", b.measureCalls)
	}
}

func TestCachedNilBackend(t *testing.T) {
	c := NewCached(nil)
	if _, err := c.MeasureText("x", doc.TextStyle{}); !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("MeasureText err = %v, want ErrBackendUnavailable", err)
	}
	if _, err := c.FontMetrics(doc.TextStyle{}); !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("FontMetrics err = %v, want ErrBackendUnavailable", err)
	}
}

// flakyBackend fails once, then succeeds; proves errors are not cached.
type flakyBackend struct {
	failed bool
}

func (b *flakyBackend) MeasureText(s string, style doc.TextStyle) (Measurement, error) {
	if !b.failed {
		b.failed = true
		return Measurement{}, ErrBackendUnavailable
	}
	return RatioBackend{}.MeasureText(s, style)
}

func (b *flakyBackend) FontMetrics(style doc.TextStyle) (FontMetrics, error) {
	return RatioBackend{}.FontMetrics(style)
}

func TestCachedDoesNotCacheErrors(t *testing.T) {
	c := NewCached(&flakyBackend{})
	style := doc.TextStyle{FontSize: 10}

	if _, err := c.MeasureText("x", style); !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("first call err = %v, want ErrBackendUnavailable", err)
	}
	m, err := c.MeasureText("x", style)
	if err != nil {
		t.Fatalf("second call err = %v, want recovery", err)
	}
	if m.Width != 5 {
		t.Errorf("width = %v, want 5", m.Width)
	}
}

func TestFaceBackendMissingFont(t *testing.T) {
	b := NewFaceBackend(FontConfig{})
	if _, err := b.MeasureText("x", doc.TextStyle{FontFamily: "nope", FontSize: 12}); !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("no configured font: err = %v, want ErrBackendUnavailable", err)
	}

	b = NewFaceBackend(FontConfig{Regular: "testdata/does-not-exist.ttf"})
	if _, err := b.FontMetrics(doc.TextStyle{FontSize: 12}); !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("unreadable font file: err = %v, want ErrBackendUnavailable", err)
	}
}

func TestFontConfigFontPath(t *testing.T) {
	fc := FontConfig{Regular: "r.ttf", Bold: "b.ttf", Italic: "i.ttf"}
	tests := []struct {
		bold, italic bool
		want         string
	}{
		{false, false, "r.ttf"},
		{true, false, "b.ttf"},
		{false, true, "i.ttf"},
		{true, true, "b.ttf"}, // no bold-italic variant configured
	}
	for _, tt := range tests {
		if got := fc.FontPath(tt.bold, tt.italic); got != tt.want {
			t.Errorf("FontPath(%v, %v) = %q, want %q", tt.bold, tt.italic, got, tt.want)
		}
	}
}

func TestApplyLetterSpacingSingleRune(t *testing.T) {
	widths := []float64{8}
	if total := applyLetterSpacing(widths, 3); total != 8 {
		t.Errorf("total = %v, want 8 (no spacing after the last rune)", total)
	}
}
