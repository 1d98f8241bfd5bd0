package layout

import (
	"math"
	"sort"

	"galley/pkg/doc"
)

// HitTestPage resolves a point in document space to a page. Pages stack
// vertically separated by the layout's gap; a point inside a page's span
// resolves directly, while a point in a gap or beyond the stack resolves to
// the page whose vertical center is nearest, with the point clamped into
// that page's bounds. Returns nil only for an empty layout.
func HitTestPage(layout *PageLayout, pt Point) *PageHit {
	if layout == nil || len(layout.Pages) == 0 {
		return nil
	}

	top := 0.0
	bestIdx := -1
	bestDist := math.MaxFloat64
	for i := range layout.Pages {
		p := &layout.Pages[i]
		if pt.Y >= top && pt.Y <= top+p.Height {
			return &PageHit{
				PageIndex: i,
				Page:      p,
				Local:     Point{X: clamp(pt.X, 0, p.Width), Y: pt.Y - top},
			}
		}
		center := top + p.Height/2
		if d := math.Abs(pt.Y - center); d < bestDist {
			bestDist = d
			bestIdx = i
		}
		top += p.Height + layout.Gap
	}

	// Gap or overflow: nearest page center, point clamped into the page.
	p := &layout.Pages[bestIdx]
	pageTop := 0.0
	for i := 0; i < bestIdx; i++ {
		pageTop += layout.Pages[i].Height + layout.Gap
	}
	return &PageHit{
		PageIndex: bestIdx,
		Page:      p,
		Local: Point{
			X: clamp(pt.X, 0, p.Width),
			Y: clamp(pt.Y-pageTop, 0, p.Height),
		},
	}
}

// fragmentOrder returns the page's fragment indices sorted by (y, then x),
// treating y values within Epsilon as the same row. The ordering is stable
// regardless of the input order of the fragment list, which is what makes
// hit-testing deterministic for documents with overlapping or floating
// fragments.
func fragmentOrder(page *Page) []int {
	order := make([]int, len(page.Fragments))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		fa, fb := &page.Fragments[order[a]], &page.Fragments[order[b]]
		if math.Abs(fa.Y-fb.Y) > Epsilon {
			return fa.Y < fb.Y
		}
		return fa.X < fb.X
	})
	return order
}

// fragmentHeight computes a fragment's effective height: the sum of its
// spanned line heights for paragraph fragments, the stored height otherwise.
func fragmentHeight(f *Fragment, measures map[int]*ParagraphMeasure) float64 {
	if f.Kind != FragmentParagraph {
		return f.Height
	}
	measure, ok := measures[f.BlockID]
	if !ok {
		return f.Height
	}
	to := f.ToLine
	if to > len(measure.Lines) {
		to = len(measure.Lines)
	}
	h := 0.0
	for i := f.FromLine; i < to; i++ {
		h += measure.Lines[i].LineHeight
	}
	return h
}

// HitTestFragment resolves a page-local point to a fragment on the page.
// Bounding boxes are inclusive on all edges; the first containing fragment
// in (y, x) order wins. Returns nil when the point misses every fragment.
func HitTestFragment(page *PageHit, measures map[int]*ParagraphMeasure, pt Point) *FragmentHit {
	if page == nil {
		return nil
	}
	for _, i := range fragmentOrder(page.Page) {
		f := &page.Page.Fragments[i]
		h := fragmentHeight(f, measures)
		if pt.X >= f.X && pt.X <= f.X+f.Width && pt.Y >= f.Y && pt.Y <= f.Y+h {
			return &FragmentHit{
				FragmentIndex: i,
				Fragment:      f,
				Local:         Point{X: pt.X - f.X, Y: pt.Y - f.Y},
			}
		}
	}
	return nil
}

// HitTestTableCell resolves a page-local point to a row, column and cell of
// a table fragment containing it. Rows are scanned in [FromRow, ToRow) by
// accumulated height and columns by accumulated width, falling back to the
// last row/column when the point lies past them (but never before FromRow).
// Returns nil when the point is in no table fragment or the block is
// missing.
func HitTestTableCell(page *PageHit, blocks map[int]doc.Block, measures map[int]*ParagraphMeasure, pt Point) *TableCellHit {
	if page == nil {
		return nil
	}
	for _, i := range fragmentOrder(page.Page) {
		f := &page.Page.Fragments[i]
		if f.Kind != FragmentTable {
			continue
		}
		if pt.X < f.X || pt.X > f.X+f.Width || pt.Y < f.Y || pt.Y > f.Y+f.Height {
			continue
		}
		table, ok := blocks[f.BlockID].(*doc.TableBlock)
		if !ok {
			continue
		}
		toRow := f.ToRow
		if toRow > len(table.Rows) {
			toRow = len(table.Rows)
		}
		if f.FromRow >= toRow {
			continue
		}

		localY := pt.Y - f.Y
		row := -1
		rowTop := 0.0
		acc := 0.0
		for r := f.FromRow; r < toRow; r++ {
			h := table.Rows[r].Height
			if localY < acc+h {
				row = r
				rowTop = acc
				break
			}
			acc += h
		}
		if row < 0 {
			row = toRow - 1
			rowTop = acc - table.Rows[row].Height
		}

		cells := table.Rows[row].Cells
		if len(cells) == 0 {
			continue
		}
		localX := pt.X - f.X
		col := -1
		colLeft := 0.0
		acc = 0.0
		for c := range cells {
			w := cells[c].Width
			if localX < acc+w {
				col = c
				colLeft = acc
				break
			}
			acc += w
		}
		if col < 0 {
			col = len(cells) - 1
			colLeft = acc - cells[col].Width
		}

		cell := &cells[col]
		var content *doc.ParagraphBlock
		if len(cell.Blocks) > 0 {
			content = cell.Blocks[0]
		}
		return &TableCellHit{
			Fragment: f,
			Row:      row,
			Col:      col,
			Cell:     cell,
			Block:    content,
			Local:    Point{X: localX - colLeft, Y: localY - rowTop},
		}
	}
	return nil
}

// HitTest composes page, fragment and (for tables) cell lookup for a point
// in document space. The fragment and cell fields are nil when the
// corresponding lookup found nothing.
func HitTest(layout *PageLayout, blocks map[int]doc.Block, measures map[int]*ParagraphMeasure, pt Point) *Hit {
	page := HitTestPage(layout, pt)
	if page == nil {
		return nil
	}
	hit := &Hit{Page: page}
	hit.Fragment = HitTestFragment(page, measures, page.Local)
	if hit.Fragment != nil && hit.Fragment.Fragment.Kind == FragmentTable {
		hit.Cell = HitTestTableCell(page, blocks, measures, page.Local)
	}
	return hit
}

// FindNearestFragment is the fallback for clicks in empty space: it returns
// the fragment whose center is nearest the page-local point (Euclidean
// distance), with the local coordinates clamped into the fragment's bounds.
// Returns nil for a page with no fragments.
func FindNearestFragment(page *PageHit, measures map[int]*ParagraphMeasure, pt Point) *FragmentHit {
	if page == nil || len(page.Page.Fragments) == 0 {
		return nil
	}
	bestIdx := -1
	bestDist := math.MaxFloat64
	bestH := 0.0
	for i := range page.Page.Fragments {
		f := &page.Page.Fragments[i]
		h := fragmentHeight(f, measures)
		cx := f.X + f.Width/2
		cy := f.Y + h/2
		d := (pt.X-cx)*(pt.X-cx) + (pt.Y-cy)*(pt.Y-cy)
		if d < bestDist {
			bestDist = d
			bestIdx = i
			bestH = h
		}
	}
	f := &page.Page.Fragments[bestIdx]
	return &FragmentHit{
		FragmentIndex: bestIdx,
		Fragment:      f,
		Local: Point{
			X: clamp(pt.X-f.X, 0, f.Width),
			Y: clamp(pt.Y-f.Y, 0, bestH),
		},
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
