package cards

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Student is one card holder. Custom holds values of school-specific
// fields keyed by field name.
type Student struct {
	ID         string            `json:"id"`
	SchoolName string            `json:"school_name"`
	Name       string            `json:"name"`
	FatherName string            `json:"father_name"`
	Class      string            `json:"class"`
	DOB        string            `json:"dob"`
	Mobile     string            `json:"mobile"`
	Address    string            `json:"address"`
	Photo      string            `json:"photo"` // URL or local path
	Custom     map[string]string `json:"custom,omitempty"`
}

// Value returns the value of a standard or custom field.
func (s Student) Value(field string) string {
	switch field {
	case "name":
		return s.Name
	case "father_name":
		return s.FatherName
	case "class":
		return s.Class
	case "dob":
		return s.DOB
	case "mobile":
		return s.Mobile
	case "address":
		return s.Address
	}
	return strings.TrimSpace(s.Custom[field])
}

// DataHash is the md5 hex digest of the standard values and photo
// reference. Editing any of them changes the card's QR id.
func (s Student) DataHash() string {
	var b strings.Builder
	for _, v := range []string{s.Name, s.FatherName, s.Class, s.DOB, s.Address, s.Mobile, s.Photo} {
		b.WriteString(v)
	}
	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
