package template

import "sort"

// Standard field names in draw order.
var StandardFieldNames = []string{"name", "father_name", "class", "dob", "mobile", "address"}

var standardLabels = map[Language][]string{
	English: {"NAME", "F.NAME", "CLASS", "D.O.B", "MOBILE", "ADDRESS"},
	Urdu:    {"نام", "ولدیت", "جماعت", "تاریخ پیدائش", "موبائل", "پتہ"},
	Hindi:   {"नाम", "पिता का नाम", "कक्षा", "जन्म तिथि", "मोबाइल", "पता"},
	Arabic:  {"الاسم", "اسم الأب", "الصف", "تاريخ الميلاد", "رقم الهاتف", "العنوان"},
}

var standardTypes = []string{"text", "text", "text", "date", "tel", "textarea"}

// StandardFields returns the six built-in fields for a language at orders
// 10 through 60. Unknown languages get the English labels.
func StandardFields(lang Language) []FieldDefinition {
	labels, ok := standardLabels[lang]
	if !ok {
		labels = standardLabels[English]
	}
	out := make([]FieldDefinition, len(StandardFieldNames))
	for i, name := range StandardFieldNames {
		out[i] = FieldDefinition{
			Name:         name,
			Label:        labels[i],
			Type:         standardTypes[i],
			Required:     name == "name",
			DisplayOrder: (i + 1) * 10,
		}
	}
	return out
}

// Fields returns standard and custom fields ordered by display order.
// A custom field reusing a standard name replaces it; equal orders keep
// standard fields first.
func (s *Spec) Fields() []FieldDefinition {
	std := StandardFields(s.Language)
	custom := make(map[string]bool, len(s.CustomFields))
	for _, f := range s.CustomFields {
		custom[f.Name] = true
	}

	out := make([]FieldDefinition, 0, len(std)+len(s.CustomFields))
	for _, f := range std {
		if !custom[f.Name] {
			out = append(out, f)
		}
	}
	for _, f := range s.CustomFields {
		if f.Name == "" {
			continue
		}
		if f.Label == "" {
			f.Label = f.Name
		}
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DisplayOrder < out[j].DisplayOrder
	})
	return out
}
