package shaper

import (
	"golang.org/x/text/unicode/bidi"
)

type dirClass int

const (
	dirNeutral dirClass = iota
	dirLTR
	dirRTL
	dirNumber
)

func classify(r rune) (dirClass, bidi.Class) {
	p, _ := bidi.LookupRune(r)
	c := p.Class()
	switch c {
	case bidi.L:
		return dirLTR, c
	case bidi.R, bidi.AL:
		return dirRTL, c
	case bidi.EN, bidi.AN:
		return dirNumber, c
	}
	return dirNeutral, c
}

var mirrors = map[rune]rune{
	'(': ')', ')': '(',
	'[': ']', ']': '[',
	'{': '}', '}': '{',
	'<': '>', '>': '<',
	'«': '»', '»': '«',
}

// Reorder converts a single line from logical to visual order for the
// given paragraph direction. It resolves numbers, neutrals and marks the
// way the Unicode bidi algorithm does for text without explicit embedding
// controls, then reverses every odd-level run.
func Reorder(text string, base Base) string {
	in := []rune(text)
	if len(in) == 0 {
		return text
	}

	dirs := make([]dirClass, len(in))
	classes := make([]bidi.Class, len(in))
	hasRTL := false
	for i, r := range in {
		dirs[i], classes[i] = classify(r)
		if dirs[i] == dirRTL {
			hasRTL = true
		}
	}
	if !hasRTL && base == BaseL {
		return text
	}

	baseDir := dirLTR
	if base == BaseR {
		baseDir = dirRTL
	}

	// Non-spacing marks take the class of what they sit on.
	for i := range in {
		if classes[i] == bidi.NSM && i > 0 {
			dirs[i] = dirs[i-1]
		}
	}

	// Separators and terminators between or next to digits belong to the
	// number ("0300-1234567", "12.5", "50%").
	for i := range in {
		if dirs[i] != dirNeutral {
			continue
		}
		switch classes[i] {
		case bidi.ES, bidi.CS:
			if i > 0 && i < len(in)-1 && dirs[i-1] == dirNumber && dirs[i+1] == dirNumber {
				dirs[i] = dirNumber
			}
		case bidi.ET:
			if (i > 0 && dirs[i-1] == dirNumber) || (i < len(in)-1 && dirs[i+1] == dirNumber) {
				dirs[i] = dirNumber
			}
		}
	}

	// Numbers after a left-to-right letter (or at the start of a
	// left-to-right paragraph) are plain left-to-right text.
	last := baseDir
	for i := range in {
		switch dirs[i] {
		case dirLTR, dirRTL:
			last = dirs[i]
		case dirNumber:
			if last == dirLTR {
				dirs[i] = dirLTR
			}
		}
	}

	// Neutrals between two runs of the same direction join them; numbers
	// count as right-to-left here. Anything else takes the paragraph
	// direction.
	strong := func(d dirClass) dirClass {
		if d == dirNumber {
			return dirRTL
		}
		return d
	}
	for i := 0; i < len(in); {
		if dirs[i] != dirNeutral {
			i++
			continue
		}
		j := i
		for j < len(in) && dirs[j] == dirNeutral {
			j++
		}
		before, after := baseDir, baseDir
		if i > 0 {
			before = strong(dirs[i-1])
		}
		if j < len(in) {
			after = strong(dirs[j])
		}
		resolved := baseDir
		if before == after {
			resolved = before
		}
		for k := i; k < j; k++ {
			dirs[k] = resolved
		}
		i = j
	}

	levels := make([]int, len(in))
	maxLevel := 0
	for i, d := range dirs {
		switch {
		case baseDir == dirLTR && d == dirRTL:
			levels[i] = 1
		case baseDir == dirLTR && d == dirNumber:
			levels[i] = 2
		case baseDir == dirRTL && d == dirRTL:
			levels[i] = 1
		case baseDir == dirRTL:
			levels[i] = 2
		}
		if levels[i] > maxLevel {
			maxLevel = levels[i]
		}
	}

	out := make([]rune, len(in))
	copy(out, in)
	for i := range out {
		if levels[i]%2 == 1 {
			if m, ok := mirrors[out[i]]; ok {
				out[i] = m
			}
		}
	}

	for level := maxLevel; level >= 1; level-- {
		for i := 0; i < len(out); {
			if levels[i] < level {
				i++
				continue
			}
			j := i
			for j < len(out) && levels[j] >= level {
				j++
			}
			reverseRunes(out[i:j])
			reverseInts(levels[i:j])
			i = j
		}
	}
	return string(out)
}

func reverseRunes(s []rune) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseInts(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
