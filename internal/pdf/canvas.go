// Package pdf defines the drawing capabilities the report renderer needs and
// provides an implementation backed by go-pdf/fpdf.
package pdf

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Color is an RGB color.
type Color struct {
	R, G, B uint8
}

// Hex parses "#rrggbb" (the leading # is optional).
func Hex(s string) (Color, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("invalid color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("strconv.ParseUint(%s) > %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// MustHex is Hex for package-level constants.
func MustHex(s string) Color {
	c, err := Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// FontStyle is a combination of bold/italic/underline flags.
type FontStyle string

const (
	Regular   FontStyle = ""
	BoldStyle FontStyle = "B"
	Underline FontStyle = "U"
)

// Font selects one of the standard PDF font families.
type Font struct {
	Family string
	Style  FontStyle
	Size   float64
}

// Align is the horizontal alignment of a text run.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// TextRun is a piece of text drawn at the cursor.
//
// A left-aligned run flows from the current position and wraps inside the
// margins. When Continued is set the cursor stays right after the run, so
// the next run continues the same visual line; otherwise the cursor moves to
// the start of the next line. Centered and right-aligned runs always occupy
// a full line.
type TextRun struct {
	Text       string
	Font       Font
	Color      Color
	LineHeight float64
	Continued  bool
	Link       string
	Align      Align
}

// Paint describes how a shape is filled and stroked. A nil color disables
// that part of the paint.
type Paint struct {
	Fill      *Color
	Stroke    *Color
	LineWidth float64
}

// Margins of a page.
type Margins struct {
	Top, Right, Bottom, Left float64
}

// Geometry is the fixed page format of a document, in points.
type Geometry struct {
	PageSize string
	Margins  Margins
}

// Metadata is written into the document information dictionary.
type Metadata struct {
	Title   string
	Subject string
	Creator string
}

// Canvas is a paginated drawing surface with a vertical text cursor.
// Coordinates are in points with the origin at the top-left of the page.
type Canvas interface {
	PageSize() (width, height float64)
	Margins() Margins
	PageNo() int
	AddPage()

	X() float64
	Y() float64
	SetXY(x, y float64)
	// MoveDown advances the cursor and returns it to the left margin.
	MoveDown(dy float64)
	// SetIndent moves the left edge used for flowing text, relative to the
	// page's left margin.
	SetIndent(dx float64)

	Text(run TextRun)
	// TextAt draws a single line of text with its baseline at (x, y) without
	// moving the cursor or triggering page breaks.
	TextAt(x, y float64, run TextRun)
	TextWidth(text string, font Font) float64
	// SplitText wraps text into lines no wider than width when drawn with
	// font.
	SplitText(text string, font Font, width float64) []string

	Rect(x, y, w, h float64, paint Paint)
	RoundedRect(x, y, w, h, r float64, paint Paint)
	Circle(x, y, r float64, paint Paint)
	Line(x1, y1, x2, y2 float64, paint Paint)

	// Err reports the first error raised by the backend, if any.
	Err() error
	// Output serializes the finished document.
	Output(w io.Writer) error
}
