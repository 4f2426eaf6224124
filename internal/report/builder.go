package report

import (
	"bytes"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/at-ishikawa/leadgen/internal/pdf"
)

// DefaultTimestampFormat renders the generation stamp, e.g. "March 1, 2025 12:00".
const DefaultTimestampFormat = "January 2, 2006 15:04"

// CanvasFactory opens a fresh canvas for one build.
type CanvasFactory func(geometry pdf.Geometry, opts pdf.FpdfOptions) pdf.Canvas

// Builder assembles complete reports. It holds no per-build state, so one
// Builder may serve concurrent builds.
type Builder struct {
	layout          Layout
	branding        Branding
	now             func() time.Time
	location        *time.Location
	timestampFormat string
	compress        bool
	newCanvas       CanvasFactory
}

// Option configures a Builder.
type Option func(*Builder)

func WithLayout(layout Layout) Option {
	return func(b *Builder) { b.layout = layout }
}

func WithBranding(branding Branding) Option {
	return func(b *Builder) { b.branding = branding }
}

// WithClock replaces time.Now, the only non-deterministic input of a build.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(b *Builder) { b.location = loc }
}

func WithTimestampFormat(format string) Option {
	return func(b *Builder) { b.timestampFormat = format }
}

func WithCompression(compress bool) Option {
	return func(b *Builder) { b.compress = compress }
}

func WithCanvasFactory(factory CanvasFactory) Option {
	return func(b *Builder) { b.newCanvas = factory }
}

// NewBuilder returns a Builder with the default layout and branding.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		layout:          DefaultLayout(),
		branding:        DefaultBranding(),
		now:             time.Now,
		location:        time.Local,
		timestampFormat: DefaultTimestampFormat,
		compress:        true,
		newCanvas: func(geometry pdf.Geometry, opts pdf.FpdfOptions) pdf.Canvas {
			return pdf.NewFpdfCanvas(geometry, opts)
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildReport builds a report with the default Builder.
func BuildReport(markdownBody string, citations []Citation, criteria SearchCriteria) ([]byte, error) {
	return NewBuilder().Build(markdownBody, citations, criteria)
}

// Build renders one complete report and returns the serialized PDF.
func (b *Builder) Build(markdownBody string, citations []Citation, criteria SearchCriteria) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("%w: %v", ErrRendering, r)
		}
	}()

	generatedAt := b.now().In(b.location)
	canvas := b.newCanvas(b.layout.Geometry(), pdf.FpdfOptions{
		Metadata: pdf.Metadata{
			Title:   b.branding.Subtitle,
			Subject: strings.TrimSpace(criteria.Description),
			Creator: b.branding.Title,
		},
		CreatedAt: generatedAt,
		Compress:  b.compress,
	})
	pager := NewPager(canvas, b.layout)

	b.drawHeader(pager, generatedAt)
	b.drawCriteria(pager, criteria)
	b.drawSectionHeading(pager, "Lead Results")
	state := NewRenderer(pager, b.layout).Render(markdownBody)
	b.drawCitations(pager, citations)
	b.drawFooter(pager)

	if err := canvas.Err(); err != nil {
		return nil, fmt.Errorf("%w: canvas > %w", ErrRendering, err)
	}
	var buf bytes.Buffer
	if err := canvas.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: canvas.Output() > %w", ErrRendering, err)
	}

	slog.Default().Debug("built report",
		"leads", state.LeadIndex,
		"citations", len(citations),
		"pages", canvas.PageNo(),
		"bytes", buf.Len(),
	)
	return buf.Bytes(), nil
}

func (b *Builder) drawHeader(p *Pager, generatedAt time.Time) {
	p.Text(pdf.TextRun{
		Text:       b.branding.Title,
		Font:       pdf.Font{Family: fontSans, Style: pdf.BoldStyle, Size: 24},
		Color:      colorBrand,
		LineHeight: 29,
		Align:      pdf.AlignCenter,
	})
	p.Advance(6)
	p.Text(pdf.TextRun{
		Text:       b.branding.Subtitle,
		Font:       pdf.Font{Family: fontSans, Size: 16},
		Color:      colorSubtitle,
		LineHeight: 20,
		Align:      pdf.AlignCenter,
	})
	p.Advance(12)
	p.Text(pdf.TextRun{
		Text:       "Generated: " + generatedAt.Format(b.timestampFormat),
		Font:       pdf.Font{Family: fontSans, Size: 10},
		Color:      colorMuted,
		LineHeight: 12,
		Align:      pdf.AlignRight,
	})
	p.Advance(12)
}

// criteriaFields lists the non-empty criteria as label/value pairs.
func criteriaFields(c SearchCriteria) [][2]string {
	var fields [][2]string
	if d := strings.TrimSpace(c.Description); d != "" {
		fields = append(fields, [2]string{"Description", d})
	}
	if v := nonEmpty(c.Locations); len(v) > 0 {
		fields = append(fields, [2]string{"Locations", strings.Join(v, ", ")})
	}
	if v := nonEmpty(c.Industries); len(v) > 0 {
		fields = append(fields, [2]string{"Industries", strings.Join(v, ", ")})
	}
	if c.CompanySizeMin != nil || c.CompanySizeMax != nil {
		fields = append(fields, [2]string{"Company Size", sizeBound(c.CompanySizeMin) + " - " + sizeBound(c.CompanySizeMax) + " employees"})
	}
	if v := nonEmpty(c.Personas); len(v) > 0 {
		fields = append(fields, [2]string{"Target Personas", strings.Join(v, ", ")})
	}
	return fields
}

func sizeBound(v *int) string {
	if v == nil {
		return "Any"
	}
	return strconv.Itoa(*v)
}

type criteriaRow struct {
	label  string
	indent float64
	lines  []string
}

// drawCriteria draws the bordered criteria box. Values wrap under their
// label; a box that crosses the bottom margin is closed there and continues
// in a new frame on the next page.
func (b *Builder) drawCriteria(p *Pager, criteria SearchCriteria) {
	const (
		padding       = 10
		topGap        = 8
		headingHeight = 16
		headingGap    = 3
		rowHeight     = 13
		bottomGap     = 6
	)
	labelFont := pdf.Font{Family: fontSans, Style: pdf.BoldStyle, Size: 10}
	valueFont := pdf.Font{Family: fontSans, Size: 10}
	left := p.Margins().Left + padding
	inner := p.ContentWidth() - 2*padding

	var rows []criteriaRow
	lineCount := 0
	for _, field := range criteriaFields(criteria) {
		label := field[0] + ": "
		indent := p.TextWidth(label, labelFont)
		lines := p.SplitText(field[1], valueFont, inner-indent)
		rows = append(rows, criteriaRow{label: label, indent: indent, lines: lines})
		lineCount += len(lines)
	}

	frame := float64(topGap + headingHeight + headingGap + bottomGap)
	p.EnsureSpace(min(frame+float64(lineCount)*rowHeight, frame+rowHeight))

	border := pdf.Paint{Stroke: &colorBorder, LineWidth: 1}
	top := p.Y()
	p.Advance(topGap)
	p.SetIndent(padding)
	p.Text(pdf.TextRun{
		Text:       "Search Criteria",
		Font:       pdf.Font{Family: fontSans, Style: pdf.BoldStyle + pdf.Underline, Size: 12},
		Color:      colorHeading,
		LineHeight: headingHeight,
	})
	p.SetIndent(0)
	p.Advance(headingGap)

	for _, row := range rows {
		for i, line := range row.lines {
			if p.Y()+rowHeight+bottomGap > p.Bottom() {
				p.Rect(p.Margins().Left, top, p.ContentWidth(), p.Y()+bottomGap-top, border)
				p.NewPage()
				top = p.Y()
				p.MoveDown(bottomGap)
			}
			baseline := p.Y() + rowHeight/2 + valueFont.Size*0.3
			if i == 0 {
				p.TextAt(left, baseline, pdf.TextRun{Text: row.label, Font: labelFont, Color: colorBody})
			}
			p.TextAt(left+row.indent, baseline, pdf.TextRun{Text: line, Font: valueFont, Color: colorBody})
			p.MoveDown(rowHeight)
		}
	}
	p.MoveDown(bottomGap)

	p.Rect(p.Margins().Left, top, p.ContentWidth(), p.Y()-top, border)
	p.Advance(14)
}

func (b *Builder) drawSectionHeading(p *Pager, title string) {
	p.SetIndent(0)
	p.Text(pdf.TextRun{
		Text:       title,
		Font:       pdf.Font{Family: fontSans, Style: pdf.BoldStyle + pdf.Underline, Size: 14},
		Color:      colorHeading,
		LineHeight: 18,
	})
	p.Advance(6)
}

func (b *Builder) drawCitations(p *Pager, citations []Citation) {
	if len(citations) == 0 {
		return
	}
	if !p.BreakIfBelow(b.layout.CitationsBreakThreshold) {
		p.Advance(20)
	}
	b.drawSectionHeading(p, "Sources & Citations")

	left := p.Margins().Left
	for i, c := range citations {
		p.BreakIfBelow(b.layout.LineBreakThreshold)

		title := strings.TrimSpace(c.Title)
		if title == "" {
			title = "Source"
		}
		heading := pdf.TextRun{
			Text:       fmt.Sprintf("[%d] %s", i+1, title),
			Font:       pdf.Font{Family: fontSans, Style: pdf.BoldStyle, Size: 9},
			Color:      colorSubtitle,
			LineHeight: 12,
		}
		if c.URL != "" {
			heading.Font.Style = pdf.BoldStyle + pdf.Underline
			heading.Color = colorBrand
			heading.Link = c.URL
		}
		p.Text(heading)

		p.SetIndent(20)
		if c.URL != "" {
			p.Text(pdf.TextRun{
				Text:       c.URL,
				Font:       pdf.Font{Family: fontSans, Size: 8},
				Color:      colorMuted,
				LineHeight: 11,
			})
		}
		if quote := strings.TrimSpace(c.CitedText); quote != "" {
			p.Text(pdf.TextRun{
				Text:       `"` + quote + `"`,
				Font:       pdf.Font{Family: fontSans, Size: 8},
				Color:      colorBody,
				LineHeight: 11,
			})
		}
		p.SetIndent(0)

		p.Advance(3)
		y := p.Y()
		p.Line(left, y, left+p.ContentWidth(), y, pdf.Paint{Stroke: &colorBorder, LineWidth: 0.5})
		p.Advance(5)
	}
}

// drawFooter prints the footer below the bottom margin of the last page.
func (b *Builder) drawFooter(p *Pager) {
	run := pdf.TextRun{
		Text:  b.branding.Footer,
		Font:  pdf.Font{Family: fontSans, Size: 8},
		Color: colorFooter,
	}
	w, h := p.PageSize()
	x := (w - p.TextWidth(run.Text, run.Font)) / 2
	p.TextAt(x, h-22, run)
}
