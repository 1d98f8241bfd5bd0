package doc

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// TextStyle describes the typography of a text or tab run.
// FontSize is the nominal size in CSS pixels (96 dpi); use the conversion
// helpers in units.go when the surrounding format speaks points, twips or
// half-points.
type TextStyle struct {
	FontFamily    string
	FontSize      float64
	Bold          bool
	Italic        bool
	LetterSpacing float64 // extra advance between each pair of characters
}

// Key returns a stable string identifying this style for cache lookups.
func (s TextStyle) Key() string {
	var b strings.Builder
	b.WriteString(s.FontFamily)
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(s.FontSize, 'g', -1, 64))
	b.WriteByte('|')
	if s.Bold {
		b.WriteByte('b')
	}
	if s.Italic {
		b.WriteByte('i')
	}
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(s.LetterSpacing, 'g', -1, 64))
	return b.String()
}

// WrapMode controls how an image run participates in text flow.
type WrapMode int

const (
	// WrapInline places the image in the line like a single fixed-size word.
	WrapInline WrapMode = iota
	// WrapSquare, WrapTight and WrapThrough float the image out of flow;
	// text wraps around it via exclusion zones.
	WrapSquare
	WrapTight
	WrapThrough
	// WrapTopAndBottom gives the image a dedicated line of its own.
	WrapTopAndBottom
)

// Run is an atomic styled content unit within a paragraph. It is a closed
// sum: the only implementations are TextRun, TabRun, ImageRun and BreakRun,
// and every consumer switches exhaustively over those four.
type Run interface {
	// Positions reports how many document-position units the run occupies:
	// one per character for text, one for a tab, break or image.
	Positions() int

	isRun()
}

// TextRun is a span of characters sharing one style.
type TextRun struct {
	Content string
	Style   TextStyle
}

func (r *TextRun) Positions() int { return utf8.RuneCountInString(r.Content) }
func (r *TextRun) isRun()         {}

// TabRun is a horizontal tab. Width <= 0 means the layout default.
type TabRun struct {
	Width float64
	Style TextStyle
}

func (r *TabRun) Positions() int { return 1 }
func (r *TabRun) isRun()         {}

// ImageRun is an embedded image. Float forces out-of-flow placement
// regardless of Wrap.
type ImageRun struct {
	Width  float64
	Height float64
	Float  bool
	Wrap   WrapMode
}

func (r *ImageRun) Positions() int { return 1 }
func (r *ImageRun) isRun()         {}

// Floating reports whether the image is positioned out of flow and therefore
// contributes nothing to line width or height.
func (r *ImageRun) Floating() bool {
	if r.Float {
		return true
	}
	switch r.Wrap {
	case WrapSquare, WrapTight, WrapThrough:
		return true
	}
	return false
}

// BreakRun is a forced line break.
type BreakRun struct{}

func (r *BreakRun) Positions() int { return 1 }
func (r *BreakRun) isRun()         {}
