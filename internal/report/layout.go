package report

import (
	"github.com/at-ishikawa/leadgen/internal/pdf"
)

// Layout holds the page geometry and the heuristic spacing constants used
// by the renderer. All heights are in points. The look-ahead numbers are an
// approximation of how tall a lead block renders, not exact text metrics.
type Layout struct {
	PageSize string
	Margin   float64

	// LineBreakThreshold starts a new page before a line when the cursor
	// is closer than this to the bottom edge of the page.
	LineBreakThreshold float64
	// CitationsBreakThreshold does the same for the citations heading.
	CitationsBreakThreshold float64
	// LookAheadLines bounds the scan that estimates a lead block's height.
	LookAheadLines int

	LeadCardHeight   float64
	LeadCardGap      float64
	LeadBlockPadding float64
	BulletRowHeight  float64
	BulletIndent     float64

	BodyLineHeight float64
	ParagraphGap   float64
	BlankGap       float64
	HeaderGap      float64
}

// DefaultLayout is A4 with 50pt margins.
func DefaultLayout() Layout {
	return Layout{
		PageSize:                "A4",
		Margin:                  50,
		LineBreakThreshold:      100,
		CitationsBreakThreshold: 200,
		LookAheadLines:          20,
		LeadCardHeight:          28,
		LeadCardGap:             8,
		LeadBlockPadding:        12,
		BulletRowHeight:         16,
		BulletIndent:            20,
		BodyLineHeight:          14,
		ParagraphGap:            4,
		BlankGap:                4,
		HeaderGap:               6,
	}
}

// Geometry returns the canvas geometry of the layout.
func (l Layout) Geometry() pdf.Geometry {
	return pdf.Geometry{
		PageSize: l.PageSize,
		Margins:  pdf.Margins{Top: l.Margin, Right: l.Margin, Bottom: l.Margin, Left: l.Margin},
	}
}

// Branding are the fixed strings printed in the report frame.
type Branding struct {
	Title    string
	Subtitle string
	Footer   string
}

// DefaultBranding returns the LeadGen Plus strings.
func DefaultBranding() Branding {
	return Branding{
		Title:    "LeadGen Plus",
		Subtitle: "Lead Generation Report",
		Footer:   "Generated by LeadGen Plus - AI-Powered Lead Generation",
	}
}

const (
	fontSans = "Helvetica"
	fontMono = "Courier"
)

var (
	colorBrand     = pdf.MustHex("#1a56db")
	colorHeading   = pdf.MustHex("#111827")
	colorBody      = pdf.MustHex("#374151")
	colorEmphasis  = pdf.MustHex("#111827")
	colorCode      = pdf.MustHex("#6d28d9")
	colorMuted     = pdf.MustHex("#6b7280")
	colorSubtitle  = pdf.MustHex("#4b5563")
	colorFooter    = pdf.MustHex("#9ca3af")
	colorBorder    = pdf.MustHex("#e5e7eb")
	colorCardFill  = pdf.MustHex("#eff6ff")
	colorCardEdge  = pdf.MustHex("#bfdbfe")
	colorBadgeText = pdf.MustHex("#ffffff")
)
