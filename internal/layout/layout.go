// Package layout places label/value pairs on a card. It works in template
// pixels and emits draw commands; raster and PDF backends only convert
// units, so both draw exactly the same lines at the same sizes.
package layout

import (
	"github.com/youruser/idcardapp/internal/fonts"
	"github.com/youruser/idcardapp/internal/shaper"
	"github.com/youruser/idcardapp/internal/template"
)

const (
	bottomMargin = 20
	rightMargin  = 20
	photoGap     = 15

	addressField   = "address"
	addressMinSize = 12
	addressStep    = 2
	addressLines   = 2
)

// Kind distinguishes label and value commands.
type Kind int

const (
	Label Kind = iota
	Value
)

// Command is one string to draw. X and Y are the top-left of the line box
// in card pixels; Baseline is Y plus the face ascent.
type Command struct {
	Kind     Kind
	Field    string
	Text     string
	X        float64
	Y        float64
	Baseline float64
	Size     int
	Bold     bool
	Color    template.Color
}

// Placed records the outcome for one field.
type Placed struct {
	Name     string
	Y        int
	Lines    []string
	Size     int
	MaxWidth float64
}

// Result is the full layout of a card.
type Result struct {
	Commands []Command
	Fields   []Placed
	FinalY   int
}

// Engine lays out fields for one template using one font family. Like the
// family it is bound to one render.
type Engine struct {
	spec   *template.Spec
	family *fonts.Family
}

func New(spec *template.Spec, family *fonts.Family) *Engine {
	return &Engine{spec: spec, family: family}
}

// Layout flows fields top to bottom from start_y. Fields must already be
// in display order. The loop stops once the cursor passes the bottom
// margin; fields after that are not drawn.
func (e *Engine) Layout(fields []template.Field) Result {
	fs := e.spec.Font
	var res Result

	y := fs.StartY
	for _, f := range fields {
		if y > e.spec.CardHeight-bottomMargin {
			break
		}

		res.Commands = append(res.Commands, e.label(f, y))

		maxW := e.MaxWidth(y)
		var placed Placed
		if f.Name == addressField {
			placed = e.address(f, y, maxW, &res)
		} else {
			placed = e.standard(f, y, maxW, &res)
		}
		res.Fields = append(res.Fields, placed)
		y = placed.Y + advance(placed, f.Name, fs.LineHeight)
	}

	res.FinalY = y
	return res
}

// MaxWidth is the value column width for a field starting at y. The
// column stops short of the photo when the field's line band overlaps
// the photo band and the photo sits right of the value column.
func (e *Engine) MaxWidth(y int) float64 {
	fs, ps := e.spec.Font, e.spec.Photo
	overlaps := y < ps.Y+ps.Height && y+fs.LineHeight > ps.Y
	if overlaps && ps.X > fs.ValueX {
		return float64(ps.X - fs.ValueX - photoGap)
	}
	return float64(e.spec.CardWidth - fs.ValueX - rightMargin)
}

func (e *Engine) label(f template.Field, y int) Command {
	fs := e.spec.Font
	base := shaper.BaseL
	if e.spec.IsRTL() {
		base = shaper.BaseR
	}
	text := e.shape(f.Label, base)
	if e.spec.IsRTL() {
		text = ":" + text
	} else {
		text = text + ":"
	}
	return e.command(Label, f.Name, text, fs.LabelX, y, fs.LabelFontSize, true, fs.LabelFontColor)
}

func (e *Engine) standard(f template.Field, y int, maxW float64, res *Result) Placed {
	fs := e.spec.Font
	placed := Placed{Name: f.Name, Y: y, Size: fs.ValueFontSize, MaxWidth: maxW}
	if f.Value == "" {
		return placed
	}

	if e.measure(fs.ValueFontSize, f.Value) <= maxW {
		placed.Lines = []string{f.Value}
	} else {
		lines := e.wrap(f.Value, fs.ValueFontSize, maxW)
		// wrap only overflows when a single glyph is wider than the column
		_, placed.Size = e.family.Fit(false, e.shape(widest(lines, e.widthAt(fs.ValueFontSize)), shaper.BaseL), maxW, fs.ValueFontSize, 0)
		placed.Lines = lines
	}

	for i, line := range placed.Lines {
		ly := y + i*fs.LineHeight
		res.Commands = append(res.Commands, e.command(Value, f.Name, e.shape(line, shaper.BaseL), fs.ValueX, ly, placed.Size, false, fs.ValueFontColor))
	}
	return placed
}

// address shrinks the value in steps of two until it wraps into at most
// two lines; if no size manages that, the smallest size is used and the
// wrap is cut to two lines.
func (e *Engine) address(f template.Field, y int, maxW float64, res *Result) Placed {
	fs := e.spec.Font
	placed := Placed{Name: f.Name, Y: y, MaxWidth: maxW}

	size := fs.ValueFontSize
	floor := addressMinSize
	if size < floor {
		floor = size
	}
	var lines []string
	for {
		lines = e.wrap(f.Value, size, maxW)
		if len(lines) <= addressLines || size-addressStep < floor {
			break
		}
		size -= addressStep
	}
	if len(lines) > addressLines {
		lines = lines[:addressLines]
	}
	placed.Lines = lines
	placed.Size = size

	step := addressAdvance(size, fs.LineHeight)
	for i, line := range lines {
		res.Commands = append(res.Commands, e.command(Value, f.Name, e.shape(line, shaper.BaseL), fs.ValueX, y+i*step, size, false, fs.ValueFontColor))
	}
	return placed
}

func addressAdvance(size, lineHeight int) int {
	if size+4 > lineHeight-6 {
		return size + 4
	}
	return lineHeight - 6
}

func advance(p Placed, name string, lineHeight int) int {
	if name == addressField {
		if len(p.Lines) == 0 {
			return lineHeight
		}
		return len(p.Lines) * addressAdvance(p.Size, lineHeight)
	}
	if len(p.Lines) <= 1 {
		return lineHeight
	}
	return len(p.Lines) * lineHeight
}

func (e *Engine) command(kind Kind, field, text string, x, y, size int, bold bool, c template.Color) Command {
	return Command{
		Kind:     kind,
		Field:    field,
		Text:     text,
		X:        float64(x),
		Y:        float64(y),
		Baseline: float64(y) + e.family.Ascent(bold, size),
		Size:     size,
		Bold:     bold,
		Color:    c,
	}
}

func (e *Engine) shape(text string, base shaper.Base) string {
	return shaper.Shape(text, string(e.spec.Language), base)
}

// measure returns the drawn width of logical text at size.
func (e *Engine) measure(size int, text string) float64 {
	return e.family.Measure(false, size, e.shape(text, shaper.BaseL))
}

func (e *Engine) widthAt(size int) func(string) float64 {
	return func(s string) float64 { return e.measure(size, s) }
}

func widest(lines []string, width func(string) float64) string {
	best, bestW := "", -1.0
	for _, l := range lines {
		if w := width(l); w > bestW {
			best, bestW = l, w
		}
	}
	return best
}
