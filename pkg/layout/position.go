package layout

import (
	"galley/pkg/doc"
	"galley/pkg/text"
)

// runSlice is the portion of one run that landed on one line, addressed by
// rune offsets (non-text runs span 0..1).
type runSlice struct {
	runIndex int
	from     int
	to       int
	run      doc.Run
}

func (s runSlice) units() int { return s.to - s.from }

// text returns the slice's characters; empty for non-text runs.
func (s runSlice) text() string {
	t, ok := s.run.(*doc.TextRun)
	if !ok {
		return ""
	}
	runes := []rune(t.Content)
	return string(runes[s.from:s.to])
}

// lineSlices expands a measured line's run range into per-run slices.
func lineSlices(block *doc.ParagraphBlock, l MeasuredLine) []runSlice {
	var slices []runSlice
	for i := l.FromRun; i < len(block.Runs); i++ {
		if i > l.ToRun || (i == l.ToRun && l.ToChar == 0) {
			break
		}
		r := block.Runs[i]
		from := 0
		if i == l.FromRun {
			from = l.FromChar
		}
		to := runeLen(r)
		if i == l.ToRun && l.ToChar < to {
			to = l.ToChar
		}
		if to <= from {
			continue
		}
		slices = append(slices, runSlice{runIndex: i, from: from, to: to, run: r})
	}
	return slices
}

// alignOffset is the horizontal shift alignment applies to a line's content
// within its available width.
func alignOffset(align doc.Alignment, available, lineWidth float64) float64 {
	leftover := available - lineWidth
	if leftover <= 0 {
		return 0
	}
	switch align {
	case doc.AlignCenter:
		return leftover / 2
	case doc.AlignRight:
		return leftover
	default:
		// Left and justify lines start at the left edge.
		return 0
	}
}

func (m *Measurer) tabAdvance(r *doc.TabRun) float64 {
	if r.Width > 0 {
		return r.Width
	}
	return m.tabWidth
}

// ResolvePosition maps a point inside a paragraph fragment to a document
// position. x and y are local to the fragment's content box; the fragment
// spans lines [fromLine, toLine) of the measure. A y beyond the last line
// clamps to it.
//
// The result is nil only when the line range is empty. A metrics backend
// failure is returned as an error; it never degrades into a wrong position.
func (m *Measurer) ResolvePosition(block *doc.ParagraphBlock, measure *ParagraphMeasure, x, y float64, fromLine, toLine int) (*PositionHit, error) {
	if m.backend == nil {
		return nil, text.ErrBackendUnavailable
	}
	if fromLine < 0 {
		fromLine = 0
	}
	if toLine > len(measure.Lines) {
		toLine = len(measure.Lines)
	}
	if fromLine >= toLine {
		return nil, nil
	}

	idx := toLine - 1
	acc := 0.0
	for i := fromLine; i < toLine; i++ {
		h := measure.Lines[i].LineHeight
		if y < acc+h {
			idx = i
			break
		}
		acc += h
	}

	line := measure.Lines[idx]
	available := measure.MaxWidth - line.LeftOffset - line.RightOffset
	adjusted := x - alignOffset(block.Attrs.Alignment, available, line.Width) - line.LeftOffset
	if adjusted <= 0 {
		return &PositionHit{Position: line.StartPos, Char: 0, Line: idx}, nil
	}

	cx := 0.0
	units := 0
	for _, s := range lineSlices(block, line) {
		switch r := s.run.(type) {
		case *doc.TabRun:
			hit, off := unitHit(adjusted, cx, m.tabAdvance(r))
			if hit {
				return &PositionHit{Position: line.StartPos + units + off, Char: units + off, Line: idx}, nil
			}
			cx += m.tabAdvance(r)
			units++

		case *doc.ImageRun:
			w := r.Width
			if r.Floating() {
				w = 0
			}
			hit, off := unitHit(adjusted, cx, w)
			if hit {
				return &PositionHit{Position: line.StartPos + units + off, Char: units + off, Line: idx}, nil
			}
			cx += w
			units++

		case *doc.BreakRun:
			// A break has no width: any x at or past it resolves to its own
			// position, keeping the caret before the forced break.
			return &PositionHit{Position: line.StartPos + units, Char: units, Line: idx}, nil

		case *doc.TextRun:
			meas, err := m.backend.MeasureText(s.text(), r.Style)
			if err != nil {
				return nil, err
			}
			if adjusted < cx+meas.Width {
				rel := adjusted - cx
				charAcc := 0.0
				for k, cw := range meas.CharWidths {
					// Midpoint rule; a point exactly on a midpoint resolves
					// to the following character.
					if rel < charAcc+cw/2 {
						return &PositionHit{Position: line.StartPos + units + k, Char: units + k, Line: idx}, nil
					}
					charAcc += cw
				}
				end := units + len(meas.CharWidths)
				return &PositionHit{Position: line.StartPos + end, Char: end, Line: idx}, nil
			}
			cx += meas.Width
			units += s.units()
		}
	}

	// Past all content: the line's end position.
	return &PositionHit{Position: line.StartPos + units, Char: units, Line: idx}, nil
}

// unitHit applies the midpoint rule to an atomic unit spanning
// [cx, cx+width): off 0 resolves before the unit, 1 after. A point exactly
// on the midpoint resolves after.
func unitHit(adjusted, cx, width float64) (bool, int) {
	if adjusted >= cx+width {
		return false, 0
	}
	if adjusted < cx+width/2 {
		return true, 0
	}
	return true, 1
}
