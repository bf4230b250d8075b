package template

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/mylxsw/asteria/log"
	"github.com/pkg/errors"
)

var ErrTemplateNotFound = errors.New("template not found")

// Load reads a template record from a JSON file.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(ErrTemplateNotFound, path)
		}
		return nil, errors.Wrapf(err, "read template %s", path)
	}
	spec, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse template %s", path)
	}
	return spec, nil
}

// Parse decodes a template record and merges it over the defaults for its
// orientation. Keys absent from the record keep their default value; bad
// colours fall back with a warning. Only a structurally invalid document
// is an error.
func Parse(data []byte) (*Spec, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "template record")
	}

	orientation := Landscape
	if v, ok := raw["card_orientation"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err == nil && Orientation(strings.ToLower(s)) == Portrait {
			orientation = Portrait
		}
	}

	spec := Default(orientation)
	spec.CardWidth, spec.CardHeight = 0, 0
	if err := json.Unmarshal(data, spec); err != nil {
		return nil, errors.Wrap(err, "template record")
	}
	spec.Orientation = orientation
	if _, ok := raw["text_direction"]; !ok {
		// derived from the language in normalize
		spec.Direction = ""
	}

	applyLegacyFontColor(raw["font_settings"], &spec.Font)
	normalize(spec)
	return spec, nil
}

// applyLegacyFontColor honours the single font_color key older records
// carry when the split label/value colours are missing.
func applyLegacyFontColor(data json.RawMessage, fs *FontSettings) {
	if len(data) == 0 {
		return
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return
	}
	legacy, ok := keys["font_color"]
	if !ok {
		return
	}
	c := Black
	if err := json.Unmarshal(legacy, &c); err != nil {
		return
	}
	if _, ok := keys["label_font_color"]; !ok {
		fs.LabelFontColor = c
	}
	if _, ok := keys["value_font_color"]; !ok {
		fs.ValueFontColor = c
	}
}

func normalize(s *Spec) {
	if s.CardWidth <= 0 || s.CardHeight <= 0 {
		s.CardWidth, s.CardHeight = LandscapeWidth, LandscapeHeight
		if s.Orientation == Portrait {
			s.CardWidth, s.CardHeight = LandscapeHeight, LandscapeWidth
		}
	}
	if (s.Orientation == Landscape && s.CardWidth < s.CardHeight) ||
		(s.Orientation == Portrait && s.CardWidth > s.CardHeight) {
		log.WithFields(log.Fields{
			"orientation": s.Orientation,
			"width":       s.CardWidth,
			"height":      s.CardHeight,
		}).Debugf("card size conflicts with orientation, swapping")
		s.CardWidth, s.CardHeight = s.CardHeight, s.CardWidth
	}

	if s.SheetWidth <= 0 || s.SheetHeight <= 0 {
		s.SheetWidth, s.SheetHeight = DefaultSheetWidth, DefaultSheetHeight
	}
	if s.GridRows <= 0 {
		s.GridRows = DefaultGridRows
	}
	if s.GridCols <= 0 {
		s.GridCols = DefaultGridCols
	}

	s.Language = Language(strings.ToLower(string(s.Language)))
	switch s.Language {
	case English, Urdu, Hindi, Arabic:
	default:
		s.Language = English
	}
	s.Direction = Direction(strings.ToLower(string(s.Direction)))
	if s.Direction != LTR && s.Direction != RTL {
		s.Direction = LTR
		if s.Language == Urdu || s.Language == Arabic {
			s.Direction = RTL
		}
	}

	def := DefaultFont(s.Orientation)
	fs := &s.Font
	if fs.FontBold == "" {
		fs.FontBold = def.FontBold
	}
	if fs.FontRegular == "" {
		fs.FontRegular = def.FontRegular
	}
	if fs.LabelFontSize <= 0 {
		fs.LabelFontSize = def.LabelFontSize
	}
	if fs.ValueFontSize <= 0 {
		fs.ValueFontSize = def.ValueFontSize
	}
	if fs.LineHeight <= 0 {
		fs.LineHeight = def.LineHeight
	}
	switch fs.TextCase {
	case CaseNormal, CaseUpper, CaseLower, CaseCapitalize:
	default:
		fs.TextCase = CaseNormal
	}

	if s.Photo.Width <= 0 || s.Photo.Height <= 0 {
		dp := DefaultPhoto(s.Orientation)
		s.Photo.Width, s.Photo.Height = dp.Width, dp.Height
	}

	q := &s.QR
	if q.Size <= 0 {
		q.Size = 120
	}
	if q.Border < 0 {
		q.Border = 0
	}
	switch q.Style {
	case "square", "rounded", "circle":
	default:
		// includes "gapped", which has no drawer of its own
		q.Style = "square"
	}
	if q.DataType == "" {
		q.DataType = "student_id"
	}
	if q.BaseURL == "" {
		q.BaseURL = DefaultQRBaseURL
	}
}

// IsRTL reports whether the template's base direction is right-to-left.
func (s *Spec) IsRTL() bool {
	return s.Direction == RTL
}
