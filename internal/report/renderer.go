package report

import (
	"log/slog"
	"strconv"

	"github.com/at-ishikawa/leadgen/internal/markdown"
	"github.com/at-ishikawa/leadgen/internal/pdf"
)

// Mode is the list state of the renderer.
type Mode int

const (
	ModeDefault Mode = iota
	ModeInBulletList
)

func (m Mode) String() string {
	if m == ModeInBulletList {
		return "in_bullet_list"
	}
	return "default"
}

// RenderState is carried from one line to the next.
type RenderState struct {
	Mode      Mode
	LeadIndex int
}

// Next returns the state after line has been consumed.
func (s RenderState) Next(line markdown.Line) RenderState {
	switch line.Kind {
	case markdown.Bullet:
		s.Mode = ModeInBulletList
	case markdown.Header2:
		s.Mode = ModeDefault
		s.LeadIndex++
	default:
		s.Mode = ModeDefault
	}
	return s
}

const (
	bodyFontSize        = 10
	header3FontSize     = 11
	leadTitleSize       = 13
	leadTitleLineHeight = leadTitleSize + 4
	badgeFontSize       = 10
	bulletGlyphSize     = 1.8
	bulletTextOffset    = 10
	cardRadius          = 6
	cardInset           = 8
)

var (
	plainFont = pdf.Font{Family: fontSans, Size: bodyFontSize}
	boldFont  = pdf.Font{Family: fontSans, Style: pdf.BoldStyle, Size: bodyFontSize}
	codeFont  = pdf.Font{Family: fontMono, Size: bodyFontSize}
)

// Renderer draws a Markdown body onto a pager.
type Renderer struct {
	pager  *Pager
	layout Layout
}

// NewRenderer returns a renderer that draws with the given layout.
func NewRenderer(pager *Pager, layout Layout) *Renderer {
	return &Renderer{pager: pager, layout: layout}
}

// Render draws every line of body and returns the final state. Lines that
// match no known construct are drawn as paragraphs; rendering never fails
// here, backend errors are collected by the canvas.
func (r *Renderer) Render(body string) RenderState {
	raw := markdown.SplitLines(body)
	lines := make([]markdown.Line, len(raw))
	for i, l := range raw {
		lines[i] = markdown.Classify(l)
	}

	var state RenderState
	for i, line := range lines {
		r.pager.BreakIfBelow(r.layout.LineBreakThreshold)
		state = state.Next(line)

		switch line.Kind {
		case markdown.Blank:
			r.pager.Advance(r.layout.BlankGap)
		case markdown.Header3:
			r.header3(line.Text)
		case markdown.Header2:
			title := r.leadTitle(line.Text)
			estimate := r.EstimateLeadHeight(r.leadCardHeight(len(title)), lines[i+1:])
			if r.pager.EnsureSpace(estimate) {
				slog.Default().Debug("moved lead to a new page",
					"lead", state.LeadIndex,
					"estimate", estimate,
				)
			}
			r.leadCard(state.LeadIndex, title)
		case markdown.Bullet:
			r.bullet(line.Text)
		default:
			r.paragraph(line.Text)
		}
	}
	return state
}

// EstimateLeadHeight approximates the height of a lead block from its card
// height and the lines that follow its header: the card plus one row per
// bullet, scanning at most LookAheadLines lines and stopping at the next lead.
func (r *Renderer) EstimateLeadHeight(cardHeight float64, following []markdown.Line) float64 {
	bullets := 0
	for i, line := range following {
		if i >= r.layout.LookAheadLines || line.Kind == markdown.Header2 {
			break
		}
		if line.Kind == markdown.Bullet {
			bullets++
		}
	}
	return cardHeight + r.layout.LeadCardGap +
		float64(bullets)*r.layout.BulletRowHeight + r.layout.LeadBlockPadding
}

func (r *Renderer) header3(text string) {
	r.pager.SetIndent(0)
	r.pager.Text(pdf.TextRun{
		Text:       markdown.PlainText(markdown.Tokenize(text)),
		Font:       pdf.Font{Family: fontSans, Style: pdf.BoldStyle, Size: header3FontSize},
		Color:      colorBrand,
		LineHeight: header3FontSize + 5,
	})
	r.pager.Advance(r.layout.HeaderGap)
}

var leadTitleFont = pdf.Font{Family: fontSans, Style: pdf.BoldStyle, Size: leadTitleSize}

// badgeRadius is the radius of the lead number badge, which sits in the
// first row of the card.
func (r *Renderer) badgeRadius() float64 {
	return max(r.layout.LeadCardHeight/2-5, 0)
}

// leadTitle wraps a lead header to the space right of the badge.
func (r *Renderer) leadTitle(text string) []string {
	offset := cardInset + 2*r.badgeRadius() + cardInset
	width := r.pager.ContentWidth() - offset - cardInset
	return r.pager.SplitText(markdown.PlainText(markdown.Tokenize(text)), leadTitleFont, width)
}

// leadCardHeight grows the card by one title line for every wrapped line
// after the first.
func (r *Renderer) leadCardHeight(titleLines int) float64 {
	if titleLines <= 1 {
		return r.layout.LeadCardHeight
	}
	return r.layout.LeadCardHeight + float64(titleLines-1)*leadTitleLineHeight
}

func (r *Renderer) leadCard(index int, title []string) {
	h := r.leadCardHeight(len(title))
	r.pager.EnsureSpace(h)

	x := r.pager.Margins().Left
	y := r.pager.Y()
	width := r.pager.ContentWidth()
	r.pager.RoundedRect(x, y, width, h, cardRadius, pdf.Paint{
		Fill:      &colorCardFill,
		Stroke:    &colorCardEdge,
		LineWidth: 1,
	})

	radius := r.badgeRadius()
	cx := x + cardInset + radius
	cy := y + r.layout.LeadCardHeight/2
	r.pager.Circle(cx, cy, radius, pdf.Paint{Fill: &colorBrand})

	badge := pdf.TextRun{
		Text:  strconv.Itoa(index),
		Font:  pdf.Font{Family: fontSans, Style: pdf.BoldStyle, Size: badgeFontSize},
		Color: colorBadgeText,
	}
	badgeWidth := r.pager.TextWidth(badge.Text, badge.Font)
	r.pager.TextAt(cx-badgeWidth/2, cy+badgeFontSize*0.35, badge)

	titleX := cx + radius + cardInset
	for i, line := range title {
		r.pager.TextAt(titleX, cy+leadTitleSize*0.35+float64(i)*leadTitleLineHeight, pdf.TextRun{
			Text:  line,
			Font:  leadTitleFont,
			Color: colorBrand,
		})
	}

	r.pager.SetXY(x, y+h)
	r.pager.Advance(r.layout.LeadCardGap)
}

func (r *Renderer) bullet(text string) {
	lh := r.layout.BodyLineHeight
	left := r.pager.Margins().Left
	y := r.pager.Y()
	r.pager.Circle(left+r.layout.BulletIndent+bulletGlyphSize, y+lh/2, bulletGlyphSize, pdf.Paint{Fill: &colorBrand})

	r.pager.SetIndent(r.layout.BulletIndent + bulletTextOffset)
	r.spans(markdown.Tokenize(text))
	r.pager.SetIndent(0)
	if gap := r.layout.BulletRowHeight - lh; gap > 0 {
		r.pager.Advance(gap)
	}
}

func (r *Renderer) paragraph(text string) {
	r.pager.SetIndent(0)
	r.spans(markdown.Tokenize(text))
	r.pager.Advance(r.layout.ParagraphGap)
}

// spans draws inline spans as one flowing line.
func (r *Renderer) spans(spans []markdown.Span) {
	for i, s := range spans {
		run := pdf.TextRun{
			Text:       s.Text,
			Font:       plainFont,
			Color:      colorBody,
			LineHeight: r.layout.BodyLineHeight,
			Continued:  i < len(spans)-1,
		}
		switch s.Style {
		case markdown.Bold:
			run.Font = boldFont
			run.Color = colorEmphasis
		case markdown.Code:
			run.Font = codeFont
			run.Color = colorCode
		}
		r.pager.Text(run)
	}
}
