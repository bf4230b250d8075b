// Package shaper turns logical Arabic-script text into a string that draws
// correctly with a plain left-to-right glyph renderer: letters are replaced
// by their contextual presentation forms and runs are put in visual order.
package shaper

import (
	"strings"

	"github.com/mylxsw/asteria/log"
)

// Base is the paragraph direction used for reordering.
type Base string

const (
	BaseL Base = "L"
	BaseR Base = "R"
)

// Shape returns text ready for drawing. Only Urdu and Arabic are processed;
// every other language is returned untouched. A failure in either pass
// yields the original text.
func Shape(text, language string, base Base) (out string) {
	if !needsShaping(language) || text == "" {
		return text
	}

	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"text":     text,
				"language": language,
			}).Warningf("text shaping failed, drawing logical order: %v", r)
			out = text
		}
	}()

	return Reorder(Reshape(text), base)
}

func needsShaping(language string) bool {
	switch strings.ToLower(language) {
	case "urdu", "arabic":
		return true
	}
	return false
}
