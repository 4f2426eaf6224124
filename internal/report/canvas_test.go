package report

import (
	"fmt"
	"io"

	"github.com/at-ishikawa/leadgen/internal/pdf"
)

// drawOp is one recorded drawing call.
type drawOp struct {
	kind string
	page int
	x, y float64
	w, h float64
	run  pdf.TextRun
}

// recordingCanvas is an in-memory pdf.Canvas. Text never wraps and the
// page never breaks on its own, so every break observed in a test was
// requested by the pager.
type recordingCanvas struct {
	width, height float64
	margins       pdf.Margins
	page          int
	x, y          float64
	indent        float64
	ops           []drawOp
	err           error
	panicOnText   string
}

func newRecordingCanvas(geometry pdf.Geometry) *recordingCanvas {
	return &recordingCanvas{
		width:   595.28,
		height:  841.89,
		margins: geometry.Margins,
		page:    1,
		x:       geometry.Margins.Left,
		y:       geometry.Margins.Top,
	}
}

func (c *recordingCanvas) PageSize() (float64, float64) { return c.width, c.height }
func (c *recordingCanvas) Margins() pdf.Margins         { return c.margins }
func (c *recordingCanvas) PageNo() int                  { return c.page }
func (c *recordingCanvas) X() float64                   { return c.x }
func (c *recordingCanvas) Y() float64                   { return c.y }

func (c *recordingCanvas) AddPage() {
	c.page++
	c.x = c.margins.Left + c.indent
	c.y = c.margins.Top
	c.record(drawOp{kind: "page"})
}

func (c *recordingCanvas) SetXY(x, y float64) { c.x, c.y = x, y }

func (c *recordingCanvas) MoveDown(dy float64) {
	c.y += dy
	c.x = c.margins.Left + c.indent
}

func (c *recordingCanvas) SetIndent(dx float64) {
	c.indent = dx
	c.x = c.margins.Left + dx
}

func (c *recordingCanvas) Text(run pdf.TextRun) {
	if c.panicOnText != "" && run.Text == c.panicOnText {
		panic("backend exploded")
	}
	c.record(drawOp{kind: "text", x: c.x, y: c.y, h: run.LineHeight, run: run})
	if run.Continued && run.Align == pdf.AlignLeft {
		c.x += c.TextWidth(run.Text, run.Font)
		return
	}
	c.y += run.LineHeight
	c.x = c.margins.Left + c.indent
}

func (c *recordingCanvas) TextAt(x, y float64, run pdf.TextRun) {
	c.record(drawOp{kind: "textAt", x: x, y: y, run: run})
}

func (c *recordingCanvas) TextWidth(text string, font pdf.Font) float64 {
	return float64(len(text)) * font.Size * 0.5
}

func (c *recordingCanvas) SplitText(text string, font pdf.Font, width float64) []string {
	return pdf.WrapText(text, width, func(s string) float64 { return c.TextWidth(s, font) })
}

func (c *recordingCanvas) Rect(x, y, w, h float64, _ pdf.Paint) {
	c.record(drawOp{kind: "rect", x: x, y: y, w: w, h: h})
}

func (c *recordingCanvas) RoundedRect(x, y, w, h, _ float64, _ pdf.Paint) {
	c.record(drawOp{kind: "card", x: x, y: y, w: w, h: h})
}

func (c *recordingCanvas) Circle(x, y, r float64, _ pdf.Paint) {
	c.record(drawOp{kind: "circle", x: x, y: y, w: r})
}

func (c *recordingCanvas) Line(x1, y1, x2, _ float64, _ pdf.Paint) {
	c.record(drawOp{kind: "line", x: x1, y: y1, w: x2 - x1})
}

func (c *recordingCanvas) Err() error { return c.err }

func (c *recordingCanvas) Output(w io.Writer) error {
	if c.err != nil {
		return c.err
	}
	_, err := fmt.Fprintf(w, "recorded %d ops on %d pages", len(c.ops), c.page)
	return err
}

func (c *recordingCanvas) record(op drawOp) {
	op.page = c.page
	c.ops = append(c.ops, op)
}

func (c *recordingCanvas) opsOfKind(kind string) []drawOp {
	var out []drawOp
	for _, op := range c.ops {
		if op.kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// texts returns the text of every flowing and absolute text run in order.
func (c *recordingCanvas) texts() []string {
	var out []string
	for _, op := range c.ops {
		if op.kind == "text" || op.kind == "textAt" {
			out = append(out, op.run.Text)
		}
	}
	return out
}

func (c *recordingCanvas) indexOf(kind, text string) int {
	for i, op := range c.ops {
		if op.kind == kind && op.run.Text == text {
			return i
		}
	}
	return -1
}
