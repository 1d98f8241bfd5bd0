package doc

// Alignment is the horizontal alignment of a paragraph's lines.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
	AlignJustify
)

// SpacingMode selects how a paragraph's line height is derived.
type SpacingMode int

const (
	// SpacingDefault uses the natural height of the tallest font on the line.
	SpacingDefault SpacingMode = iota
	// SpacingMultiple multiplies the natural height (1.0 = single spacing).
	SpacingMultiple
	// SpacingAtLeast uses the larger of Value and the natural height.
	SpacingAtLeast
	// SpacingExact uses Value verbatim.
	SpacingExact
)

// LineSpacing is a paragraph's line spacing rule.
// Precedence when resolving: exact > atLeast > multiple > natural.
type LineSpacing struct {
	Mode  SpacingMode
	Value float64
}

// Resolve computes the line height for a line whose natural height (from its
// tallest font) is natural.
func (s LineSpacing) Resolve(natural float64) float64 {
	switch s.Mode {
	case SpacingExact:
		return s.Value
	case SpacingAtLeast:
		if natural > s.Value {
			return natural
		}
		return s.Value
	case SpacingMultiple:
		return natural * s.Value
	default:
		return natural
	}
}

// ExclusionZone is a rectangular region, from a floating image, that reduces
// the available width of any line whose vertical extent overlaps
// [TopY, BottomY). Coordinates are paragraph-local pixels; LeftMargin and
// RightMargin are the widths carved out of the respective sides.
type ExclusionZone struct {
	LeftMargin  float64
	RightMargin float64
	TopY        float64
	BottomY     float64
}

// ParagraphAttrs are the paragraph-level attributes that affect measurement.
type ParagraphAttrs struct {
	Alignment   Alignment
	LeftIndent  float64
	RightIndent float64
	// FirstLineIndent is sign-aware: positive reduces the first line's width
	// (ordinary indent), negative increases it (hanging indent).
	FirstLineIndent float64
	Spacing         LineSpacing
	SpacingBefore   float64
	SpacingAfter    float64
	// Zones are exclusion zones from floating images anchored in this
	// paragraph, in paragraph-local coordinates.
	Zones []ExclusionZone
}

// Block is a top-level document block addressable by ID from page fragments.
type Block interface {
	BlockID() int
	// PositionStart is the document position of the block's first unit.
	StartPosition() int
}

// ParagraphBlock is an ordered sequence of runs plus paragraph attributes.
// Runs are immutable once measured.
type ParagraphBlock struct {
	ID            int
	PositionStart int
	Runs          []Run
	Attrs         ParagraphAttrs
}

func (b *ParagraphBlock) BlockID() int       { return b.ID }
func (b *ParagraphBlock) StartPosition() int { return b.PositionStart }

// PositionEnd returns PositionStart plus the sum of every run's unit count.
func (b *ParagraphBlock) PositionEnd() int {
	end := b.PositionStart
	for _, r := range b.Runs {
		end += r.Positions()
	}
	return end
}

// TableCell holds the cell's column width and its nested content blocks.
// Geometry is produced by the surrounding system; this core only reads it.
type TableCell struct {
	Width  float64
	Blocks []*ParagraphBlock
}

// TableRow holds the row's height and its cells in column order.
type TableRow struct {
	Height float64
	Cells  []TableCell
}

// TableBlock is a table with externally computed row/column geometry.
type TableBlock struct {
	ID            int
	PositionStart int
	Rows          []TableRow
}

func (b *TableBlock) BlockID() int       { return b.ID }
func (b *TableBlock) StartPosition() int { return b.PositionStart }
