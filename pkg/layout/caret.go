package layout

import (
	"galley/pkg/doc"
	"galley/pkg/text"
)

// PositionToOffset is the inverse of ResolvePosition: it finds the line
// containing the document position and walks the line's slices forward,
// accumulating x, to the point where a caret for that position would be
// drawn.
//
// A position outside the measure returns nil. When a position sits on the
// boundary between two lines (the end of one line is the start of the next)
// the earlier line wins, which keeps the round trip through ResolvePosition
// self-consistent.
func (m *Measurer) PositionToOffset(block *doc.ParagraphBlock, measure *ParagraphMeasure, pos int) (*CaretOffset, error) {
	if m.backend == nil {
		return nil, text.ErrBackendUnavailable
	}
	for idx, line := range measure.Lines {
		total := line.Units(block)
		if pos < line.StartPos || pos > line.StartPos+total {
			continue
		}
		if pos == line.StartPos+total && idx < len(measure.Lines)-1 && endsHard(block, line) {
			// The position after a forced break or a dedicated image line
			// belongs to the start of the following line.
			continue
		}

		rel := pos - line.StartPos
		cx := 0.0
		for _, s := range lineSlices(block, line) {
			if rel == 0 {
				break
			}
			n := s.units()
			switch r := s.run.(type) {
			case *doc.TextRun:
				meas, err := m.backend.MeasureText(s.text(), r.Style)
				if err != nil {
					return nil, err
				}
				if rel < n {
					for k := 0; k < rel; k++ {
						cx += meas.CharWidths[k]
					}
					rel = 0
				} else {
					cx += meas.Width
					rel -= n
				}
			case *doc.TabRun:
				cx += m.tabAdvance(r)
				rel -= n
			case *doc.ImageRun:
				if !r.Floating() {
					cx += r.Width
				}
				rel -= n
			case *doc.BreakRun:
				// Zero width; a caret after the break belongs to the next
				// line, which the line search already ruled out.
				rel -= n
			}
		}

		available := measure.MaxWidth - line.LeftOffset - line.RightOffset
		x := alignOffset(block.Attrs.Alignment, available, line.Width) + line.LeftOffset + cx
		return &CaretOffset{X: x, Line: idx}, nil
	}
	return nil, nil
}

// endsHard reports whether the line's last unit forces the next position
// onto the following line: a forced break or a block-wrapped image.
func endsHard(block *doc.ParagraphBlock, line MeasuredLine) bool {
	slices := lineSlices(block, line)
	if len(slices) == 0 {
		return false
	}
	switch r := slices[len(slices)-1].run.(type) {
	case *doc.BreakRun:
		return true
	case *doc.ImageRun:
		return r.Wrap == doc.WrapTopAndBottom && !r.Floating()
	}
	return false
}

// GetCaretRect composes PositionToOffset with the line's vertical offset and
// height, yielding a renderable caret rectangle in paragraph-local
// coordinates (y includes the paragraph's before-spacing).
func (m *Measurer) GetCaretRect(block *doc.ParagraphBlock, measure *ParagraphMeasure, pos int) (*CaretRect, error) {
	off, err := m.PositionToOffset(block, measure, pos)
	if off == nil || err != nil {
		return nil, err
	}
	y := block.Attrs.SpacingBefore
	for i := 0; i < off.Line; i++ {
		y += measure.Lines[i].LineHeight
	}
	return &CaretRect{
		X:      off.X,
		Y:      y,
		Height: measure.Lines[off.Line].LineHeight,
	}, nil
}
