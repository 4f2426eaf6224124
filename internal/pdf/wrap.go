package pdf

import "strings"

// WrapText breaks text into lines no wider than width as reported by measure.
// Lines break at whitespace; a word wider than width on its own is broken
// between runes. The result always holds at least one line.
func WrapText(text string, width float64, measure func(string) float64) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if measure(candidate) <= width {
			line = candidate
			continue
		}
		if line != "" {
			lines = append(lines, line)
		}
		for word != "" && measure(word) > width {
			head := longestPrefix(word, width, measure)
			lines = append(lines, head)
			word = word[len(head):]
		}
		line = word
	}
	if line != "" || len(lines) == 0 {
		lines = append(lines, line)
	}
	return lines
}

// longestPrefix returns the longest prefix of word that fits width, but never
// less than one rune.
func longestPrefix(word string, width float64, measure func(string) float64) string {
	runes := []rune(word)
	n := 1
	for n < len(runes) && measure(string(runes[:n+1])) <= width {
		n++
	}
	return string(runes[:n])
}
