package layout

import (
	"math"
	"unicode/utf8"

	"galley/pkg/doc"
	"galley/pkg/text"
)

// MeasureParagraph breaks the block's runs into measured lines under the
// given width budget. zones are exclusion zones from floating images, in a
// coordinate space the paragraph sits zoneOffset below (pass the block's own
// Attrs.Zones with offset 0 for paragraph-local zones).
//
// The result is a pure function of the inputs: identical calls yield
// identical measures, which makes the bounded measure cache safe and keeps
// position mapping self-consistent.
func (m *Measurer) MeasureParagraph(block *doc.ParagraphBlock, maxWidth float64, zones []doc.ExclusionZone, zoneOffset float64) (*ParagraphMeasure, error) {
	if m.backend == nil {
		return nil, text.ErrBackendUnavailable
	}

	key := measureKey{
		content: hashParagraph(block, zones, zoneOffset),
		width:   math.Float64bits(maxWidth),
	}
	if pm, ok := m.measures.Get(key); ok {
		return pm, nil
	}

	b := &breaker{
		m:           m,
		block:       block,
		maxWidth:    maxWidth,
		zones:       zones,
		zoneOffset:  zoneOffset,
		curStyle:    m.defaultStyle,
		metricsMemo: make(map[string]text.FontMetrics),
	}
	pm, err := b.run()
	if err != nil {
		return nil, err
	}
	m.measures.Set(key, pm)
	return pm, nil
}

// breaker is the single-pass greedy line breaking state. The cursor
// (runIdx, charIdx) marks how far content has been consumed; lines always
// close at the cursor, so the produced ranges are contiguous by
// construction.
type breaker struct {
	m          *Measurer
	block      *doc.ParagraphBlock
	maxWidth   float64
	zones      []doc.ExclusionZone
	zoneOffset float64

	estLineHeight float64

	lines []MeasuredLine
	y     float64 // paragraph-local top of the next line
	pos   int     // absolute document position cursor

	runIdx  int
	charIdx int

	open         bool
	lineFromRun  int
	lineFromChar int
	lineStartPos int
	lineWidth    float64
	hasContent   bool
	joinRun      int // run index of the line's last placed text, -1 if none
	ascent       float64
	descent      float64
	natural      float64
	leftOff      float64
	rightOff     float64

	afterBreak  bool
	curStyle    doc.TextStyle
	metricsMemo map[string]text.FontMetrics
}

func (b *breaker) run() (*ParagraphMeasure, error) {
	b.pos = b.block.PositionStart

	if len(b.zones) > 0 {
		// Zone overlap is estimated with the default line height before a
		// line's true height is known; re-evaluated per new line, never
		// retroactively. Known approximation carried from the source
		// behavior: unusually large fonts can under- or over-count overlap
		// at zone boundaries.
		fm, err := b.styleMetrics(b.m.defaultStyle)
		if err != nil {
			return nil, err
		}
		b.estLineHeight = fm.LineHeight
	}

	for i, r := range b.block.Runs {
		if err := b.handleRun(i, r); err != nil {
			return nil, err
		}
	}

	if b.open {
		if err := b.closeLine(); err != nil {
			return nil, err
		}
	}
	// An empty paragraph still yields one zero-width line, and a paragraph
	// ending in a forced break yields a trailing empty line for the caret.
	if len(b.lines) == 0 || b.afterBreak {
		b.openLine()
		if err := b.closeLine(); err != nil {
			return nil, err
		}
	}

	attrs := b.block.Attrs
	return &ParagraphMeasure{
		Lines:       b.lines,
		MaxWidth:    b.maxWidth,
		TotalHeight: b.y + attrs.SpacingBefore + attrs.SpacingAfter,
	}, nil
}

func (b *breaker) handleRun(i int, r doc.Run) error {
	switch r := r.(type) {
	case *doc.BreakRun:
		b.ensureOpen()
		b.setCursor(i+1, 0)
		b.pos++
		if err := b.closeLine(); err != nil {
			return err
		}
		b.afterBreak = true
		return nil

	case *doc.TabRun:
		if r.Style.FontSize > 0 {
			b.curStyle = r.Style
		}
		w := r.Width
		if w <= 0 {
			w = b.m.tabWidth
		}
		b.ensureOpen()
		if b.hasContent && b.lineWidth+w > b.available()+Epsilon {
			if err := b.closeLine(); err != nil {
				return err
			}
			b.ensureOpen()
		}
		// A tab with no style of its own renders at the prevailing typography;
		// curStyle was updated above when the tab carries one.
		if err := b.contributeStyle(b.curStyle); err != nil {
			return err
		}
		b.lineWidth += w
		b.hasContent = true
		b.setCursor(i+1, 0)
		b.pos++
		return nil

	case *doc.ImageRun:
		return b.handleImage(i, r)

	case *doc.TextRun:
		return b.handleText(i, r)
	}
	return nil
}

func (b *breaker) handleImage(i int, r *doc.ImageRun) error {
	switch {
	case r.Floating():
		// Out-of-flow: occupies a document position but contributes nothing
		// to line width or height. Positioning happens elsewhere, via the
		// exclusion zones it induces.
		b.ensureOpen()
		b.setCursor(i+1, 0)
		b.pos++
		return nil

	case r.Wrap == doc.WrapTopAndBottom:
		// Block-wrapped images get a dedicated line of their own.
		if b.open {
			if err := b.closeLine(); err != nil {
				return err
			}
		}
		b.openLine()
		b.setCursor(i+1, 0)
		b.pos++
		b.lineWidth = r.Width
		b.hasContent = true
		b.closeImageLine(r.Height)
		return nil

	default:
		// Inline image: a single unbreakable word of fixed size.
		b.ensureOpen()
		if b.hasContent && b.lineWidth+r.Width > b.available()+Epsilon {
			if err := b.closeLine(); err != nil {
				return err
			}
			b.ensureOpen()
		}
		b.lineWidth += r.Width
		b.hasContent = true
		if r.Height > b.ascent {
			b.ascent = r.Height
		}
		if r.Height > b.natural {
			b.natural = r.Height
		}
		b.setCursor(i+1, 0)
		b.pos++
		return nil
	}
}

func (b *breaker) handleText(i int, r *doc.TextRun) error {
	b.curStyle = r.Style
	runes := []rune(r.Content)
	if len(runes) == 0 {
		b.ensureOpen()
		b.setCursor(i+1, 0)
		return nil
	}

	runLen := len(runes)
	for _, w := range splitWords(runes) {
		word := string(runes[w.start:w.end])
		meas, err := b.m.backend.MeasureText(word, r.Style)
		if err != nil {
			return err
		}
		b.ensureOpen()

		if meas.Width > b.available()+Epsilon {
			if err := b.placeChunked(i, runLen, w, meas, r.Style); err != nil {
				return err
			}
			continue
		}

		// Letter-spacing also separates this word from the previous one when
		// both came from the same run; the line width must account for it the
		// way a whole-slice measurement does.
		join := b.joinSpacing(i, r.Style)
		if b.hasContent && b.lineWidth+join+meas.Width > b.available()+Epsilon {
			if err := b.closeLine(); err != nil {
				return err
			}
			b.ensureOpen()
			join = 0
		}
		if err := b.contributeStyle(r.Style); err != nil {
			return err
		}
		b.lineWidth += join + meas.Width
		b.hasContent = true
		b.joinRun = i
		b.advanceText(i, runLen, w.end, w.end-w.start)
	}
	return nil
}

// placeChunked hard-breaks a word wider than the entire available width into
// the largest character chunks that fit, always advancing at least one rune
// per line so forward progress is guaranteed even for a single character
// wider than the budget.
func (b *breaker) placeChunked(i, runLen int, w wordSpan, meas text.Measurement, style doc.TextStyle) error {
	widths := meas.CharWidths
	idx := 0
	n := w.end - w.start
	for idx < n {
		b.ensureOpen()
		join := b.joinSpacing(i, style)
		remaining := b.available() - b.lineWidth - join
		take := 0
		acc := 0.0
		for j := idx; j < n; j++ {
			if acc+widths[j] > remaining+Epsilon {
				break
			}
			acc += widths[j]
			take++
		}
		if take == 0 {
			if b.hasContent {
				if err := b.closeLine(); err != nil {
					return err
				}
				continue
			}
			// Unbreakable single-character overflow.
			take = 1
			acc = widths[idx]
		}
		if err := b.contributeStyle(style); err != nil {
			return err
		}
		b.lineWidth += join + acc
		b.hasContent = true
		b.joinRun = i
		idx += take
		b.advanceText(i, runLen, w.start+idx, take)
	}
	return nil
}

// advanceText moves the cursor to rune offset char of run i, normalizing a
// fully consumed run to the next run boundary, and advances the document
// position by units.
func (b *breaker) advanceText(i, runLen, char, units int) {
	if char >= runLen {
		b.setCursor(i+1, 0)
	} else {
		b.setCursor(i, char)
	}
	b.pos += units
}

func (b *breaker) setCursor(run, char int) {
	b.runIdx = run
	b.charIdx = char
}

func (b *breaker) ensureOpen() {
	if b.open {
		return
	}
	b.openLine()
}

func (b *breaker) openLine() {
	b.open = true
	b.afterBreak = false
	b.lineFromRun = b.runIdx
	b.lineFromChar = b.charIdx
	b.lineStartPos = b.pos
	b.lineWidth = 0
	b.hasContent = false
	b.joinRun = -1
	b.ascent = 0
	b.descent = 0
	b.natural = 0

	attrs := b.block.Attrs
	left := attrs.LeftIndent
	if len(b.lines) == 0 {
		// Sign-aware first-line adjustment: a positive indent narrows the
		// first line, a hanging (negative) indent widens it.
		left += attrs.FirstLineIndent
	}
	if left < 0 {
		left = 0
	}
	zl, zr := b.zoneMargins()
	b.leftOff = left + zl
	b.rightOff = attrs.RightIndent + zr
}

// zoneMargins returns the widths carved off each side by exclusion zones
// overlapping the next line's provisional vertical span.
func (b *breaker) zoneMargins() (left, right float64) {
	if len(b.zones) == 0 {
		return 0, 0
	}
	top := b.y + b.zoneOffset
	bottom := top + b.estLineHeight
	for _, z := range b.zones {
		if top < z.BottomY && bottom > z.TopY {
			if z.LeftMargin > left {
				left = z.LeftMargin
			}
			if z.RightMargin > right {
				right = z.RightMargin
			}
		}
	}
	return left, right
}

// joinSpacing is the letter-spacing owed between the open line's last placed
// text and more text from the same run. Word-at-a-time measurement drops it;
// a whole-slice measurement of the finished line includes it, so the breaker
// adds it back explicitly to keep the two in agreement.
func (b *breaker) joinSpacing(i int, style doc.TextStyle) float64 {
	if b.hasContent && b.joinRun == i {
		return style.LetterSpacing
	}
	return 0
}

func (b *breaker) available() float64 {
	return b.maxWidth - b.leftOff - b.rightOff
}

func (b *breaker) closeLine() error {
	ascent, descent, natural := b.ascent, b.descent, b.natural
	if ascent == 0 && descent == 0 {
		// No styled content reached the line: an empty line still renders at
		// the height of the prevailing (or default) typography.
		fm, err := b.styleMetrics(b.curStyle)
		if err != nil {
			return err
		}
		ascent, descent = fm.Ascent, fm.Descent
		if fm.LineHeight > natural {
			natural = fm.LineHeight
		}
	}
	height := b.block.Attrs.Spacing.Resolve(natural)
	b.appendLine(ascent, descent, height)
	return nil
}

// closeImageLine closes the dedicated line of a block-wrapped image. Its
// height is the image height plus fixed top/bottom margins; the paragraph
// spacing rule does not apply.
func (b *breaker) closeImageLine(imageHeight float64) {
	b.appendLine(imageHeight+imageLineMargin, imageLineMargin, imageHeight+2*imageLineMargin)
}

func (b *breaker) appendLine(ascent, descent, height float64) {
	b.lines = append(b.lines, MeasuredLine{
		FromRun:     b.lineFromRun,
		FromChar:    b.lineFromChar,
		ToRun:       b.runIdx,
		ToChar:      b.charIdx,
		StartPos:    b.lineStartPos,
		Width:       b.lineWidth,
		Ascent:      ascent,
		Descent:     descent,
		LineHeight:  height,
		LeftOffset:  b.leftOff,
		RightOffset: b.rightOff,
	})
	b.y += height
	b.open = false
}

func (b *breaker) contributeStyle(style doc.TextStyle) error {
	fm, err := b.styleMetrics(style)
	if err != nil {
		return err
	}
	if fm.Ascent > b.ascent {
		b.ascent = fm.Ascent
	}
	if fm.Descent > b.descent {
		b.descent = fm.Descent
	}
	if fm.LineHeight > b.natural {
		b.natural = fm.LineHeight
	}
	return nil
}

func (b *breaker) styleMetrics(style doc.TextStyle) (text.FontMetrics, error) {
	key := style.Key()
	if fm, ok := b.metricsMemo[key]; ok {
		return fm, nil
	}
	fm, err := b.m.backend.FontMetrics(style)
	if err != nil {
		return text.FontMetrics{}, err
	}
	b.metricsMemo[key] = fm
	return fm, nil
}

// wordSpan is a word's rune-offset range within a text run. Break points sit
// after spaces, hyphens and tab characters, so the delimiter stays with the
// preceding word.
type wordSpan struct {
	start int
	end   int
}

func splitWords(runes []rune) []wordSpan {
	var words []wordSpan
	start := 0
	for i, r := range runes {
		if r == ' ' || r == '-' || r == '\t' {
			words = append(words, wordSpan{start: start, end: i + 1})
			start = i + 1
		}
	}
	if start < len(runes) {
		words = append(words, wordSpan{start: start, end: len(runes)})
	}
	return words
}

// runeLen reports a run's length in cursor units: runes for text, one for
// everything else.
func runeLen(r doc.Run) int {
	if t, ok := r.(*doc.TextRun); ok {
		return utf8.RuneCountInString(t.Content)
	}
	return 1
}
