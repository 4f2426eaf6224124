// Package markdown implements the small Markdown subset used by lead reports:
// level-2 and level-3 headers, bullet items, paragraphs, and **bold** and `code`
// inline spans. Anything outside that subset is treated as plain text.
package markdown

import (
	"regexp"
	"strings"
)

// SpanStyle is the inline style of a span.
type SpanStyle int

const (
	Plain SpanStyle = iota
	Bold
	Code
)

func (s SpanStyle) String() string {
	switch s {
	case Bold:
		return "bold"
	case Code:
		return "code"
	default:
		return "plain"
	}
}

// Span is a contiguous run of text sharing one style.
type Span struct {
	Text  string
	Style SpanStyle
}

// Delimited content may not contain its own delimiter character.
var inlinePattern = regexp.MustCompile("\\*\\*[^*]+\\*\\*|`[^`]+`")

// Tokenize splits a line into plain, bold and code spans.
// The result is never empty; a line without complete delimiter pairs
// comes back as a single plain span.
func Tokenize(line string) []Span {
	matches := inlinePattern.FindAllStringIndex(line, -1)
	if len(matches) == 0 {
		return []Span{{Text: line, Style: Plain}}
	}

	spans := make([]Span, 0, 2*len(matches)+1)
	pos := 0
	for _, m := range matches {
		if m[0] > pos {
			spans = append(spans, Span{Text: line[pos:m[0]], Style: Plain})
		}
		token := line[m[0]:m[1]]
		if strings.HasPrefix(token, "**") {
			spans = append(spans, Span{Text: token[2 : len(token)-2], Style: Bold})
		} else {
			spans = append(spans, Span{Text: token[1 : len(token)-1], Style: Code})
		}
		pos = m[1]
	}
	if pos < len(line) {
		spans = append(spans, Span{Text: line[pos:], Style: Plain})
	}
	return spans
}

// PlainText concatenates the text of all spans, dropping their styles.
func PlainText(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}
