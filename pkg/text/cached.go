package text

import (
	"galley/pkg/doc"
	"galley/pkg/text/cache"
)

// Default capacities for the measurement caches.
const (
	DefaultWidthCacheSize   = 4096
	DefaultMetricsCacheSize = 256
)

type widthKey struct {
	text  string
	style string
}

// Cached wraps a Backend with bounded per-(text, style) width and per-style
// font metrics memoization. Errors are never cached: a failing backend fails
// identically on retry anyway, and a later configuration change must be able
// to succeed.
//
// Cached is safe for concurrent use if the wrapped backend is.
type Cached struct {
	backend Backend
	widths  *cache.LRU[widthKey, Measurement]
	metrics *cache.LRU[string, FontMetrics]
}

// NewCached wraps backend with default cache capacities.
func NewCached(backend Backend) *Cached {
	return &Cached{
		backend: backend,
		widths:  cache.New[widthKey, Measurement](DefaultWidthCacheSize),
		metrics: cache.New[string, FontMetrics](DefaultMetricsCacheSize),
	}
}

// MeasureText implements Backend.
func (c *Cached) MeasureText(s string, style doc.TextStyle) (Measurement, error) {
	if c.backend == nil {
		return Measurement{}, ErrBackendUnavailable
	}
	key := widthKey{text: s, style: style.Key()}
	if m, ok := c.widths.Get(key); ok {
		return m, nil
	}
	m, err := c.backend.MeasureText(s, style)
	if err != nil {
		return Measurement{}, err
	}
	c.widths.Set(key, m)
	return m, nil
}

// FontMetrics implements Backend.
func (c *Cached) FontMetrics(style doc.TextStyle) (FontMetrics, error) {
	if c.backend == nil {
		return FontMetrics{}, ErrBackendUnavailable
	}
	key := style.Key()
	if m, ok := c.metrics.Get(key); ok {
		return m, nil
	}
	m, err := c.backend.FontMetrics(style)
	if err != nil {
		return FontMetrics{}, err
	}
	c.metrics.Set(key, m)
	return m, nil
}

// Invalidate drops every cached width and metric. Call it whenever the
// backend's rendering environment changes (for example a font finished
// loading) since cached widths may no longer reflect reality.
func (c *Cached) Invalidate() {
	c.widths.Clear()
	c.metrics.Clear()
}

// Resize changes the capacity of both caches.
func (c *Cached) Resize(widthEntries, metricEntries int) {
	c.widths.Resize(widthEntries)
	c.metrics.Resize(metricEntries)
}
