package cards

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/pkg/errors"
)

// headerAliases maps normalised CSV headers onto Student fields.
var headerAliases = map[string]string{
	"student_id":    "id",
	"school":        "school_name",
	"f_name":        "father_name",
	"father":        "father_name",
	"class_name":    "class",
	"date_of_birth": "dob",
	"d_o_b":         "dob",
	"phone":         "mobile",
	"mobile_number": "mobile",
	"photo_url":     "photo",
	"image_url":     "photo",
}

func normalizeHeader(h string) string {
	h = strcase.ToSnake(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	if alias, ok := headerAliases[h]; ok {
		return alias
	}
	return h
}

// LoadStudentsCSV reads students from a CSV file with a header row.
func LoadStudentsCSV(path string) ([]Student, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer fp.Close()

	out, err := ParseStudentsCSV(fp)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return out, nil
}

// ParseStudentsCSV reads students from CSV. Headers are matched loosely
// ("Father Name", "fatherName" and "father_name" are the same column);
// columns that are not standard fields become custom values.
func ParseStudentsCSV(r io.Reader) ([]Student, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "read csv")
	}
	if len(rows) < 1 {
		return nil, errors.New("csv has no header")
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = normalizeHeader(h)
	}

	out := []Student{}
	for _, row := range rows[1:] {
		s := Student{}
		for i, col := range header {
			if i >= len(row) || col == "" {
				continue
			}
			v := strings.TrimSpace(row[i])
			switch col {
			case "id":
				s.ID = v
			case "school_name":
				s.SchoolName = v
			case "name":
				s.Name = v
			case "father_name":
				s.FatherName = v
			case "class":
				s.Class = v
			case "dob":
				s.DOB = v
			case "mobile":
				s.Mobile = v
			case "address":
				s.Address = v
			case "photo":
				s.Photo = v
			default:
				if s.Custom == nil {
					s.Custom = map[string]string{}
				}
				s.Custom[col] = v
			}
		}
		out = append(out, s)
	}
	return out, nil
}

// LoadStudentsJSON reads a JSON array of students.
func LoadStudentsJSON(path string) ([]Student, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	var out []Student
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return out, nil
}
