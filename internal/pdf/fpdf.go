package pdf

import (
	"io"
	"log/slog"
	"time"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"
)

// FpdfCanvas implements Canvas on top of go-pdf/fpdf using the standard
// Helvetica and Courier fonts. Text is translated from UTF-8 to cp1252;
// characters that cp1252 cannot represent (CJK, emoji, most symbols) are
// drawn as "." and a debug line is logged for each affected run.
type FpdfCanvas struct {
	f         *fpdf.Fpdf
	geometry  Geometry
	translate func(string) string
}

var _ Canvas = (*FpdfCanvas)(nil)

// FpdfOptions configures NewFpdfCanvas.
type FpdfOptions struct {
	Metadata Metadata
	// CreatedAt is stored as both creation and modification date. Fixing it
	// makes the output reproducible.
	CreatedAt time.Time
	// Compress enables stream compression.
	Compress bool
}

// NewFpdfCanvas opens a new document with the given geometry and adds its
// first page. Flowing text never crosses the bottom margin: fpdf breaks the
// page automatically there.
func NewFpdfCanvas(geometry Geometry, opts FpdfOptions) *FpdfCanvas {
	f := fpdf.New("P", "pt", geometry.PageSize, "")
	m := geometry.Margins
	f.SetMargins(m.Left, m.Top, m.Right)
	f.SetAutoPageBreak(true, m.Bottom)
	f.SetCatalogSort(true)
	f.SetCompression(opts.Compress)
	if !opts.CreatedAt.IsZero() {
		f.SetCreationDate(opts.CreatedAt)
		f.SetModificationDate(opts.CreatedAt)
	}
	if opts.Metadata.Title != "" {
		f.SetTitle(opts.Metadata.Title, true)
	}
	if opts.Metadata.Subject != "" {
		f.SetSubject(opts.Metadata.Subject, true)
	}
	if opts.Metadata.Creator != "" {
		f.SetCreator(opts.Metadata.Creator, true)
	}

	c := &FpdfCanvas{
		f:         f,
		geometry:  geometry,
		translate: f.UnicodeTranslatorFromDescriptor(""),
	}
	f.AddPage()
	return c
}

func (c *FpdfCanvas) PageSize() (float64, float64) {
	return c.f.GetPageSize()
}

func (c *FpdfCanvas) Margins() Margins {
	return c.geometry.Margins
}

func (c *FpdfCanvas) PageNo() int {
	return c.f.PageNo()
}

func (c *FpdfCanvas) AddPage() {
	c.f.AddPage()
}

func (c *FpdfCanvas) X() float64 {
	return c.f.GetX()
}

func (c *FpdfCanvas) Y() float64 {
	return c.f.GetY()
}

func (c *FpdfCanvas) SetXY(x, y float64) {
	c.f.SetXY(x, y)
}

func (c *FpdfCanvas) MoveDown(dy float64) {
	c.f.SetY(c.f.GetY() + dy)
}

func (c *FpdfCanvas) SetIndent(dx float64) {
	left := c.geometry.Margins.Left + dx
	c.f.SetLeftMargin(left)
	c.f.SetX(left)
}

func (c *FpdfCanvas) Text(run TextRun) {
	c.setFont(run.Font)
	c.setTextColor(run.Color)
	h := lineHeight(run)
	txt := c.drawable(run.Text)

	switch run.Align {
	case AlignCenter, AlignRight:
		align := "C"
		if run.Align == AlignRight {
			align = "R"
		}
		left, _, _, _ := c.f.GetMargins()
		c.f.SetX(left)
		c.f.CellFormat(0, h, txt, "", 1, align, false, 0, run.Link)
		return
	}

	if run.Link != "" {
		c.f.WriteLinkString(h, txt, run.Link)
	} else {
		c.f.Write(h, txt)
	}
	if !run.Continued {
		c.f.Ln(h)
	}
}

func (c *FpdfCanvas) TextAt(x, y float64, run TextRun) {
	c.setFont(run.Font)
	c.setTextColor(run.Color)
	c.f.Text(x, y, c.drawable(run.Text))
}

func (c *FpdfCanvas) TextWidth(text string, font Font) float64 {
	c.setFont(font)
	return c.f.GetStringWidth(c.translate(text))
}

func (c *FpdfCanvas) SplitText(text string, font Font, width float64) []string {
	c.setFont(font)
	return WrapText(text, width, func(s string) float64 {
		return c.f.GetStringWidth(c.translate(s))
	})
}

func (c *FpdfCanvas) Rect(x, y, w, h float64, paint Paint) {
	if style := c.applyPaint(paint); style != "" {
		c.f.Rect(x, y, w, h, style)
	}
}

func (c *FpdfCanvas) RoundedRect(x, y, w, h, r float64, paint Paint) {
	if style := c.applyPaint(paint); style != "" {
		c.f.RoundedRect(x, y, w, h, r, "1234", style)
	}
}

func (c *FpdfCanvas) Circle(x, y, r float64, paint Paint) {
	if style := c.applyPaint(paint); style != "" {
		c.f.Circle(x, y, r, style)
	}
}

func (c *FpdfCanvas) Line(x1, y1, x2, y2 float64, paint Paint) {
	if paint.Stroke == nil {
		paint.Stroke = &Color{}
	}
	paint.Fill = nil
	c.applyPaint(paint)
	c.f.Line(x1, y1, x2, y2)
}

func (c *FpdfCanvas) Err() error {
	return c.f.Error()
}

func (c *FpdfCanvas) Output(w io.Writer) error {
	return c.f.Output(w)
}

// drawable translates text for drawing and logs when characters are lost.
func (c *FpdfCanvas) drawable(text string) string {
	if r, ok := firstUnencodable(text); ok {
		slog.Default().Debug("replaced characters outside cp1252",
			"text", text,
			"first", string(r),
		)
	}
	return c.translate(text)
}

// firstUnencodable returns the first rune of s that cp1252 has no code for.
func firstUnencodable(s string) (rune, bool) {
	for _, r := range s {
		if _, ok := charmap.Windows1252.EncodeRune(r); !ok {
			return r, true
		}
	}
	return 0, false
}

func (c *FpdfCanvas) setFont(font Font) {
	c.f.SetFont(font.Family, string(font.Style), font.Size)
}

func (c *FpdfCanvas) setTextColor(color Color) {
	c.f.SetTextColor(int(color.R), int(color.G), int(color.B))
}

// applyPaint sets colors and line width and returns the fpdf style string,
// or "" when there is nothing to draw.
func (c *FpdfCanvas) applyPaint(paint Paint) string {
	if paint.LineWidth > 0 {
		c.f.SetLineWidth(paint.LineWidth)
	}
	style := ""
	if paint.Fill != nil {
		c.f.SetFillColor(int(paint.Fill.R), int(paint.Fill.G), int(paint.Fill.B))
		style += "F"
	}
	if paint.Stroke != nil {
		c.f.SetDrawColor(int(paint.Stroke.R), int(paint.Stroke.G), int(paint.Stroke.B))
		style += "D"
	}
	return style
}

func lineHeight(run TextRun) float64 {
	if run.LineHeight > 0 {
		return run.LineHeight
	}
	return run.Font.Size * 1.2
}
