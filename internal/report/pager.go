package report

import (
	"github.com/at-ishikawa/leadgen/internal/pdf"
)

// atTopTolerance absorbs rounding when comparing the cursor to the top margin.
const atTopTolerance = 0.5

// Pager adds page-break decisions on top of a canvas. All drawing calls go
// straight to the embedded canvas.
type Pager struct {
	pdf.Canvas
	layout Layout
}

// NewPager wraps a canvas.
func NewPager(canvas pdf.Canvas, layout Layout) *Pager {
	return &Pager{Canvas: canvas, layout: layout}
}

// ContentWidth is the width between the left and right margins.
func (p *Pager) ContentWidth() float64 {
	w, _ := p.PageSize()
	m := p.Margins()
	return w - m.Left - m.Right
}

// Bottom is the y coordinate of the bottom margin.
func (p *Pager) Bottom() float64 {
	_, h := p.PageSize()
	return h - p.Margins().Bottom
}

// Remaining is the vertical space left above the bottom margin.
func (p *Pager) Remaining() float64 {
	return p.Bottom() - p.Y()
}

// AtPageTop reports whether nothing has been placed on the current page yet.
func (p *Pager) AtPageTop() bool {
	return p.Y() <= p.Margins().Top+atTopTolerance
}

// NewPage starts a new page; the cursor moves to the top margin.
func (p *Pager) NewPage() {
	p.AddPage()
}

// BreakIfBelow starts a new page when the cursor is within threshold of the
// page's bottom edge. It reports whether a page was added.
func (p *Pager) BreakIfBelow(threshold float64) bool {
	_, h := p.PageSize()
	if p.Y() <= h-threshold {
		return false
	}
	p.NewPage()
	return true
}

// EnsureSpace starts a new page when height does not fit above the bottom
// margin. An empty page is never abandoned, so content taller than a page
// simply overflows into the automatic line-by-line breaks.
func (p *Pager) EnsureSpace(height float64) bool {
	if height <= p.Remaining() || p.AtPageTop() {
		return false
	}
	p.NewPage()
	return true
}

// Advance moves the cursor down by dy, continuing on a new page when the gap
// would cross the bottom margin.
func (p *Pager) Advance(dy float64) {
	if p.Y()+dy > p.Bottom() {
		p.NewPage()
		return
	}
	p.MoveDown(dy)
}
