package template

import (
	"encoding/json"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/mylxsw/asteria/log"

	"github.com/youruser/idcardapp/internal/metrics"
)

// Color is an opaque RGB colour.
type Color struct {
	R, G, B uint8
}

var (
	Black = Color{0, 0, 0}
	White = Color{255, 255, 255}
)

// RGBA converts c to an opaque color.RGBA.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// Hex returns c as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseColor accepts "#rrggbb", "#rgb", "r,g,b", and []int / []any /
// []float64 triples (the shapes stored settings have used over time).
func ParseColor(v any) (Color, error) {
	switch t := v.(type) {
	case Color:
		return t, nil
	case string:
		return parseColorString(t)
	case []int:
		return colorFromInts(t)
	case []float64:
		ints := make([]int, len(t))
		for i, f := range t {
			ints[i] = int(f)
		}
		return colorFromInts(ints)
	case []any:
		ints := make([]int, 0, len(t))
		for _, e := range t {
			switch n := e.(type) {
			case float64:
				ints = append(ints, int(n))
			case int:
				ints = append(ints, n)
			case string:
				i, err := strconv.Atoi(strings.TrimSpace(n))
				if err != nil {
					return Color{}, fmt.Errorf("invalid colour component %q", n)
				}
				ints = append(ints, i)
			default:
				return Color{}, fmt.Errorf("invalid colour component %v", e)
			}
		}
		return colorFromInts(ints)
	default:
		return Color{}, fmt.Errorf("unsupported colour value %v", v)
	}
}

// ParseColorOr parses v and returns def (with a warning) when v is malformed.
func ParseColorOr(v any, def Color) Color {
	c, err := ParseColor(v)
	if err != nil {
		log.WithFields(log.Fields{"value": v}).Warningf("colour parse failed, using %s: %v", def.Hex(), err)
		metrics.Fallback("colour")
		return def
	}
	return c
}

func parseColorString(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return Color{}, fmt.Errorf("invalid colour %q: expected 6-char hex", s)
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return Color{}, fmt.Errorf("invalid colour %q: %w", s, err)
		}
		return Color{uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
	}

	parts := strings.Split(s, ",")
	ints := make([]int, 0, len(parts))
	for _, p := range parts {
		i, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Color{}, fmt.Errorf("invalid colour %q", s)
		}
		ints = append(ints, i)
	}
	return colorFromInts(ints)
}

func colorFromInts(v []int) (Color, error) {
	if len(v) < 3 {
		return Color{}, fmt.Errorf("colour needs 3 components, got %d", len(v))
	}
	for _, c := range v[:3] {
		if c < 0 || c > 255 {
			return Color{}, fmt.Errorf("colour component %d out of range", c)
		}
	}
	return Color{uint8(v[0]), uint8(v[1]), uint8(v[2])}, nil
}

// UnmarshalJSON accepts every representation ParseColor does. A malformed
// value keeps the colour already in c (the merged default) and logs.
func (c *Color) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return nil
	}
	*c = ParseColorOr(raw, *c)
	return nil
}

// MarshalJSON writes the colour as "#rrggbb".
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Hex())
}
