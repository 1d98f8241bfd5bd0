package layout

import (
	"hash/fnv"
	"math"

	"galley/pkg/doc"
	"galley/pkg/text"
	"galley/pkg/text/cache"
)

// Layout defaults.
const (
	// DefaultTabWidth is the advance of a tab run with no explicit width.
	DefaultTabWidth = 48.0

	// imageLineMargin is the top and bottom margin of a dedicated image line.
	imageLineMargin = 6.0

	// DefaultMeasureCacheSize bounds the paragraph measure cache.
	DefaultMeasureCacheSize = 512
)

// DefaultStyle is the typography used when a paragraph has no styled content
// to take metrics from, unless overridden with WithDefaultStyle.
var DefaultStyle = doc.TextStyle{FontSize: 16}

// Measurer owns a metrics backend and a bounded paragraph measure cache.
// It is the entry point for line breaking and position mapping.
//
// Measurer is safe for concurrent use if its backend is; independent
// paragraphs may be measured concurrently.
type Measurer struct {
	backend      text.Backend
	defaultStyle doc.TextStyle
	tabWidth     float64
	measures     *cache.LRU[measureKey, *ParagraphMeasure]
}

// Option configures a Measurer.
type Option func(*Measurer)

// WithDefaultStyle sets the style used for empty paragraphs and empty lines.
func WithDefaultStyle(s doc.TextStyle) Option {
	return func(m *Measurer) { m.defaultStyle = s }
}

// WithTabWidth overrides the default tab advance.
func WithTabWidth(w float64) Option {
	return func(m *Measurer) { m.tabWidth = w }
}

// WithMeasureCacheSize bounds the paragraph measure cache.
func WithMeasureCacheSize(n int) Option {
	return func(m *Measurer) { m.measures = cache.New[measureKey, *ParagraphMeasure](n) }
}

// NewMeasurer creates a Measurer over backend. The backend is injected, not
// owned: callers wrap it in text.NewCached when repeated measurement of the
// same strings is expected. A nil backend is allowed; measurement then fails
// with text.ErrBackendUnavailable.
func NewMeasurer(backend text.Backend, opts ...Option) *Measurer {
	m := &Measurer{
		backend:      backend,
		defaultStyle: DefaultStyle,
		tabWidth:     DefaultTabWidth,
		measures:     cache.New[measureKey, *ParagraphMeasure](DefaultMeasureCacheSize),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// InvalidateMeasures drops every cached paragraph measure. Call it when the
// backend's rendering environment changes, together with invalidating any
// text.Cached wrapper.
func (m *Measurer) InvalidateMeasures() {
	m.measures.Clear()
}

// ResizeMeasureCache changes the measure cache capacity.
func (m *Measurer) ResizeMeasureCache(n int) {
	m.measures.Resize(n)
}

type measureKey struct {
	content uint64
	width   uint64
}

// hashParagraph fingerprints everything that can change a measurement:
// run content and styles, paragraph attributes, exclusion zones and the
// paragraph's vertical offset relative to them.
func hashParagraph(block *doc.ParagraphBlock, zones []doc.ExclusionZone, zoneOffset float64) uint64 {
	h := fnv.New64a()
	buf := make([]byte, 8)
	writeFloat := func(v float64) {
		bits := math.Float64bits(v)
		for i := 0; i < 8; i++ {
			buf[i] = byte(bits >> (8 * i))
		}
		h.Write(buf)
	}
	writeString := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}

	for _, r := range block.Runs {
		switch r := r.(type) {
		case *doc.TextRun:
			h.Write([]byte{1})
			writeString(r.Content)
			writeString(r.Style.Key())
		case *doc.TabRun:
			h.Write([]byte{2})
			writeFloat(r.Width)
			writeString(r.Style.Key())
		case *doc.ImageRun:
			h.Write([]byte{3})
			writeFloat(r.Width)
			writeFloat(r.Height)
			if r.Float {
				h.Write([]byte{1})
			} else {
				h.Write([]byte{0})
			}
			h.Write([]byte{byte(r.Wrap)})
		case *doc.BreakRun:
			h.Write([]byte{4})
		}
	}

	a := block.Attrs
	h.Write([]byte{byte(a.Alignment), byte(a.Spacing.Mode)})
	writeFloat(a.LeftIndent)
	writeFloat(a.RightIndent)
	writeFloat(a.FirstLineIndent)
	writeFloat(a.Spacing.Value)
	writeFloat(a.SpacingBefore)
	writeFloat(a.SpacingAfter)

	for _, z := range zones {
		writeFloat(z.LeftMargin)
		writeFloat(z.RightMargin)
		writeFloat(z.TopY)
		writeFloat(z.BottomY)
	}
	writeFloat(zoneOffset)

	return h.Sum64()
}
