package template

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ApplyCase transforms a field value per the template's text case. Dates
// and phone numbers are never touched.
func ApplyCase(value, fieldType string, tc TextCase) string {
	if fieldType == "date" || fieldType == "tel" {
		return value
	}
	switch tc {
	case CaseUpper:
		return strings.ToUpper(value)
	case CaseLower:
		return strings.ToLower(value)
	case CaseCapitalize:
		return cases.Title(language.Und).String(value)
	default:
		return value
	}
}
