package layout

import (
	"fmt"

	"galley/pkg/doc"
)

// Validate checks a measure's structural invariants against its block: at
// least one line, contiguous gap-free run ranges covering every run exactly
// once, and per-line start positions consistent with the block's position
// space. A violation indicates a line breaker bug, so this is a debugging
// aid for tests and assertions, not a runtime contract toward callers.
func Validate(block *doc.ParagraphBlock, measure *ParagraphMeasure) error {
	if len(measure.Lines) == 0 {
		return fmt.Errorf("layout: measure has no lines")
	}

	prevRun, prevChar := 0, 0
	pos := block.PositionStart
	for i, l := range measure.Lines {
		if l.FromRun != prevRun || l.FromChar != prevChar {
			return fmt.Errorf("layout: line %d starts at (%d,%d), want (%d,%d)",
				i, l.FromRun, l.FromChar, prevRun, prevChar)
		}
		if l.StartPos != pos {
			return fmt.Errorf("layout: line %d starts at position %d, want %d", i, l.StartPos, pos)
		}
		pos += l.Units(block)
		prevRun, prevChar = l.ToRun, l.ToChar
	}

	if prevRun != len(block.Runs) || prevChar != 0 {
		return fmt.Errorf("layout: lines end at (%d,%d), want (%d,0)", prevRun, prevChar, len(block.Runs))
	}
	if end := block.PositionEnd(); pos != end {
		return fmt.Errorf("layout: lines cover positions up to %d, want %d", pos, end)
	}
	return nil
}
