package layout

import "strings"

// wrap breaks text into lines whose shaped width at size stays within maxW.
// Words wider than maxW on their own are split between characters.
func (e *Engine) wrap(text string, size int, maxW float64) []string {
	var lines []string
	current := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if e.measure(size, candidate) <= maxW {
			current = candidate
			continue
		}

		if current != "" {
			lines = append(lines, current)
			current = ""
		}
		if e.measure(size, word) <= maxW {
			current = word
			continue
		}

		pieces := e.splitWord(word, size, maxW)
		lines = append(lines, pieces[:len(pieces)-1]...)
		current = pieces[len(pieces)-1]
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

func (e *Engine) splitWord(word string, size int, maxW float64) []string {
	var pieces []string
	piece := ""
	for _, r := range word {
		next := piece + string(r)
		if piece != "" && e.measure(size, next) > maxW {
			pieces = append(pieces, piece)
			next = string(r)
		}
		piece = next
	}
	return append(pieces, piece)
}
