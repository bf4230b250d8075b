package cards

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/youruser/idcardapp/internal/template"
)

const qrIDLength = 10

type studentIDPayload struct {
	StudentID  string `json:"student_id"`
	Name       string `json:"name"`
	SchoolName string `json:"school_name"`
}

type fullPayload struct {
	StudentID  string `json:"student_id"`
	Name       string `json:"name"`
	Class      string `json:"class"`
	SchoolName string `json:"school_name"`
}

// QRID is the short id printed in url payloads: the first ten hex digits
// of the data hash.
func (s Student) QRID() string {
	return s.DataHash()[:qrIDLength]
}

// QRPayload builds the string encoded in a student's QR code. It returns
// "" when QR is disabled. Students without an id use their QR id.
func QRPayload(spec *template.Spec, s Student) (string, error) {
	q := spec.QR
	if !q.Enable {
		return "", nil
	}
	school := s.SchoolName
	if school == "" {
		school = spec.SchoolName
	}
	id := s.ID
	if id == "" {
		id = s.QRID()
	}

	var v any
	switch q.DataType {
	case "url":
		base := q.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		return base + s.QRID(), nil
	case "text":
		return q.CustomText, nil
	case "json":
		v = fullPayload{StudentID: id, Name: s.Name, Class: s.Class, SchoolName: school}
	default:
		v = studentIDPayload{StudentID: id, Name: s.Name, SchoolName: school}
	}

	data, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "encode qr payload")
	}
	return string(data), nil
}
