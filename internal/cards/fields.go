package cards

import (
	"github.com/youruser/idcardapp/internal/template"
)

// RenderFields pairs the template's fields with the student's values in
// display order. Text case is left alone on right-to-left templates.
func RenderFields(spec *template.Spec, s Student) []template.Field {
	defs := spec.Fields()
	out := make([]template.Field, 0, len(defs))
	for _, d := range defs {
		v := s.Value(d.Name)
		if !spec.IsRTL() {
			v = template.ApplyCase(v, d.Type, spec.Font.TextCase)
		}
		out = append(out, template.Field{Name: d.Name, Label: d.Label, Value: v, Order: d.DisplayOrder})
	}
	return out
}
