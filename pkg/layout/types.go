// Package layout is the measurement and geometry core of the editor: it
// breaks a paragraph's styled runs into measured lines under a width budget,
// maps between pixel coordinates and document positions in both directions,
// and hit-tests points against page/fragment/table geometry.
//
// Everything here is synchronous and side-effect-free except for advisory
// cache writes. Page and fragment geometry is produced by pagination (out of
// scope) and is only ever read.
package layout

import "galley/pkg/doc"

// Epsilon absorbs sub-pixel measurement jitter in width comparisons, so a
// rounding error never forces a spurious extra line break.
const Epsilon = 0.5

// MeasuredLine is one visual line produced by line breaking: the sub-range
// of the paragraph's runs that fits on the line, with its measured width and
// vertical metrics.
//
// The range runs from (FromRun, FromChar) inclusive to (ToRun, ToChar)
// exclusive, where chars are rune offsets within a run (non-text runs span
// offsets 0..1). Across a paragraph's lines the ranges are contiguous and
// gap-free, covering every run exactly once.
type MeasuredLine struct {
	FromRun  int
	FromChar int
	ToRun    int
	ToChar   int

	// StartPos is the document position of the line's first unit, precomputed
	// during line breaking so position queries need not re-walk the block.
	StartPos int

	Width      float64
	Ascent     float64
	Descent    float64
	LineHeight float64

	// LeftOffset and RightOffset are the widths carved off each side of the
	// budget by indentation and overlapping exclusion zones. The line's
	// available width is maxWidth - LeftOffset - RightOffset.
	LeftOffset  float64
	RightOffset float64
}

// Units returns the number of document-position units on the line.
func (l MeasuredLine) Units(block *doc.ParagraphBlock) int {
	units := 0
	for _, s := range lineSlices(block, l) {
		units += s.units()
	}
	return units
}

// ParagraphMeasure is the result of measuring one paragraph at one width
// budget. It is recomputed whenever the paragraph's content or budget
// changes, and is otherwise immutable.
type ParagraphMeasure struct {
	Lines []MeasuredLine

	// MaxWidth echoes the width budget the measurement was produced under;
	// alignment offsets during position mapping derive from it.
	MaxWidth float64

	// TotalHeight is the sum of line heights plus the paragraph's before and
	// after spacing.
	TotalHeight float64
}

// Point is a 2-D coordinate in whatever space the operation documents.
type Point struct {
	X float64
	Y float64
}

// FragmentKind discriminates the content a fragment places on a page.
type FragmentKind int

const (
	FragmentParagraph FragmentKind = iota
	FragmentTable
	FragmentImage
)

// Fragment is the portion of a block placed on a specific page, with its
// page-relative bounding box. Paragraph fragments span [FromLine, ToLine) of
// the block's ParagraphMeasure; table fragments span [FromRow, ToRow) of the
// table block. Produced by pagination; read-only here.
type Fragment struct {
	Kind    FragmentKind
	BlockID int

	X      float64
	Y      float64
	Width  float64
	Height float64

	FromLine int
	ToLine   int

	FromRow int
	ToRow   int
}

// Page is one page's dimensions and its ordered fragments.
type Page struct {
	Width     float64
	Height    float64
	Fragments []Fragment
}

// PageLayout is the vertical stack of pages separated by a constant gap.
type PageLayout struct {
	Pages []Page
	Gap   float64
}

// PageHit identifies the page containing (or nearest to) a point, with the
// point translated into page-local coordinates and clamped into the page.
type PageHit struct {
	PageIndex int
	Page      *Page
	Local     Point
}

// FragmentHit identifies a fragment within a page, with the point translated
// to fragment-local coordinates.
type FragmentHit struct {
	FragmentIndex int
	Fragment      *Fragment
	Local         Point
}

// TableCellHit identifies a cell within a table fragment. Row and Col are
// absolute indices into the table block. Block is the cell's first content
// block, nil for an empty cell. Local is the point in cell-local
// coordinates, ready for position mapping against the cell's content.
type TableCellHit struct {
	Fragment *Fragment
	Row      int
	Col      int
	Cell     *doc.TableCell
	Block    *doc.ParagraphBlock
	Local    Point
}

// Hit is the composed result of a full hit test. Fragment is nil when the
// point missed every fragment on the page; Cell is non-nil only when the hit
// fragment is a table.
type Hit struct {
	Page     *PageHit
	Fragment *FragmentHit
	Cell     *TableCellHit
}

// PositionHit is the result of resolving a point to a document position.
type PositionHit struct {
	// Position is the absolute document position.
	Position int
	// Char is the offset in position units from the start of the line.
	Char int
	// Line is the index of the resolved line within the measure.
	Line int
}

// CaretOffset is the horizontal placement of a caret for a position.
type CaretOffset struct {
	X    float64
	Line int
}

// CaretRect is a renderable caret rectangle in paragraph-local coordinates.
type CaretRect struct {
	X      float64
	Y      float64
	Height float64
}
