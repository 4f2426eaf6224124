package markdown

import (
	"strings"
	"unicode"
)

// LineKind classifies a physical line of the report body.
type LineKind int

const (
	Blank LineKind = iota
	Header2
	Header3
	Bullet
	Paragraph
)

func (k LineKind) String() string {
	switch k {
	case Blank:
		return "blank"
	case Header2:
		return "header2"
	case Header3:
		return "header3"
	case Bullet:
		return "bullet"
	default:
		return "paragraph"
	}
}

// Line is the classification of one input line.
type Line struct {
	Kind LineKind
	Text string
}

// Classify returns the kind of a single line. It never fails: anything that
// does not match a known prefix is a paragraph.
func Classify(raw string) Line {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Line{Kind: Blank}
	}

	// Header prefixes are checked before bullets, and ### before ##.
	if text, ok := cutMarker(trimmed, "###"); ok {
		return Line{Kind: Header3, Text: text}
	}
	if text, ok := cutMarker(trimmed, "##"); ok {
		return Line{Kind: Header2, Text: text}
	}
	if text, ok := cutMarker(trimmed, "-"); ok {
		return Line{Kind: Bullet, Text: text}
	}
	if text, ok := cutMarker(trimmed, "*"); ok {
		return Line{Kind: Bullet, Text: text}
	}
	return Line{Kind: Paragraph, Text: trimmed}
}

// cutMarker matches marker followed by at least one whitespace rune and
// non-empty text.
func cutMarker(s, marker string) (string, bool) {
	rest, ok := strings.CutPrefix(s, marker)
	if !ok || rest == "" {
		return "", false
	}
	if !unicode.IsSpace([]rune(rest)[0]) {
		return "", false
	}
	text := strings.TrimSpace(rest)
	if text == "" {
		return "", false
	}
	return text, true
}

// SplitLines splits a body into physical lines, tolerating CRLF input.
func SplitLines(body string) []string {
	if body == "" {
		return nil
	}
	lines := strings.Split(body, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
