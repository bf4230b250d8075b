package cards

import (
	"fmt"
	"strings"

	"github.com/youruser/idcardapp/internal/template"
)

type FilterOptions struct {
	Classes   []string `json:"classes"`
	IDs       []string `json:"ids"`
	FreeWords string   `json:"free_words"`
}

// RowError reports a student row that cannot be printed.
type RowError struct {
	Row   int    `json:"row"` // 1-based data row
	Name  string `json:"name"`
	Field string `json:"field"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d (%s): required field %q is empty", e.Row, e.Name, e.Field)
}

func containsFold(hay []string, needle string) bool {
	for _, h := range hay {
		if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(needle)) {
			return true
		}
	}
	return false
}

// Filter keeps students matching every non-empty option.
func Filter(students []Student, opt FilterOptions) []Student {
	var out []Student
	for _, s := range students {
		if len(opt.Classes) > 0 && !containsFold(opt.Classes, s.Class) {
			continue
		}
		if len(opt.IDs) > 0 && !containsFold(opt.IDs, s.ID) {
			continue
		}
		if opt.FreeWords != "" {
			ok := true
			for _, k := range strings.Fields(opt.FreeWords) {
				k = strings.ToLower(k)
				if !strings.Contains(strings.ToLower(s.Name), k) &&
					!strings.Contains(strings.ToLower(s.FatherName), k) &&
					!strings.Contains(strings.ToLower(s.Address), k) {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}

// Validate drops rows without a name and reports rows missing a required
// field of the template. Only fully valid students are returned.
func Validate(students []Student, spec *template.Spec) ([]Student, []RowError) {
	defs := spec.Fields()
	var ok []Student
	var rowErrs []RowError
	for i, s := range students {
		if strings.TrimSpace(s.Name) == "" {
			continue
		}
		valid := true
		for _, d := range defs {
			if d.Required && strings.TrimSpace(s.Value(d.Name)) == "" {
				rowErrs = append(rowErrs, RowError{Row: i + 1, Name: s.Name, Field: d.Name})
				valid = false
			}
		}
		if valid {
			ok = append(ok, s)
		}
	}
	return ok, rowErrs
}
