// Package pdf draws cards as vector PDF pages. Everything is laid out in
// template pixels by the layout package and converted to points here.
package pdf

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"

	"github.com/youruser/idcardapp/internal/fonts"
	imagepkg "github.com/youruser/idcardapp/internal/image"
	"github.com/youruser/idcardapp/internal/layout"
	"github.com/youruser/idcardapp/internal/sheet"
	"github.com/youruser/idcardapp/internal/template"
)

const (
	cardFamily    = "card"
	builtinFamily = "Helvetica"
	arcSteps      = 8
	bgImage       = "background"
)

// Card is what one card contributes to a page. Photo and QR may be nil.
type Card struct {
	Commands []layout.Command
	Photo    image.Image
	QR       image.Image
}

// Document wraps one gofpdf document drawing cards of a single template.
type Document struct {
	pdf     *gofpdf.Fpdf
	spec    *template.Spec
	family  *fonts.Family
	quality int

	embedded [2]bool
	hasBg    bool
	images   int
}

func newDocument(spec *template.Spec, family *fonts.Family, pageW, pageH float64, quality int) *Document {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	d := &Document{pdf: pdf, spec: spec, family: family, quality: quality}
	d.embedFonts()
	return d
}

func (d *Document) embedFonts() {
	for i, f := range []*fonts.Font{d.family.Regular(), d.family.Bold()} {
		if f == nil || f.Builtin() || len(f.Data) == 0 {
			continue
		}
		style := ""
		if i == 1 {
			style = "B"
		}
		d.pdf.AddUTF8FontFromBytes(cardFamily, style, f.Data)
		d.embedded[i] = true
	}
}

// SetBackground registers the template background once for all pages.
func (d *Document) SetBackground(bg image.Image) error {
	if bg == nil {
		return errors.New("card background is missing")
	}
	data, err := imagepkg.EncodeJPEG(bg, d.quality)
	if err != nil {
		return err
	}
	d.pdf.RegisterImageOptionsReader(bgImage, gofpdf.ImageOptions{ImageType: "JPG"}, bytes.NewReader(data))
	d.hasBg = true
	return d.pdf.Error()
}

// DrawCard draws one card with its top-left corner at (x, y) points, in
// the fixed order background, text, photo, QR.
func (d *Document) DrawCard(x, y float64, c Card) error {
	s := sheet.Scale
	w, h := float64(d.spec.CardWidth)*s, float64(d.spec.CardHeight)*s

	if d.hasBg {
		d.pdf.ImageOptions(bgImage, x, y, w, h, false, gofpdf.ImageOptions{ImageType: "JPG"}, 0, "")
	}

	for _, cmd := range c.Commands {
		if cmd.Text == "" {
			continue
		}
		d.setFont(cmd.Bold, float64(cmd.Size)*s)
		d.pdf.SetTextColor(int(cmd.Color.R), int(cmd.Color.G), int(cmd.Color.B))
		d.pdf.Text(x+cmd.X*s, y+cmd.Baseline*s, cmd.Text)
	}

	if c.Photo != nil {
		if err := d.drawPhoto(x, y, c.Photo); err != nil {
			return err
		}
	}

	if c.QR != nil {
		q := d.spec.QR
		data, err := imagepkg.EncodePNG(c.QR)
		if err != nil {
			return err
		}
		name := d.register(data, "PNG")
		d.pdf.ImageOptions(name, x+float64(q.X)*s, y+float64(q.Y)*s, float64(q.Size)*s, float64(q.Size)*s,
			false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}
	return d.pdf.Error()
}

func (d *Document) drawPhoto(x, y float64, img image.Image) error {
	s := sheet.Scale
	ps := d.spec.Photo
	data, err := imagepkg.EncodeJPEG(img, d.quality)
	if err != nil {
		return err
	}
	name := d.register(data, "JPG")

	px, py := x+float64(ps.X)*s, y+float64(ps.Y)*s
	pw, ph := float64(ps.Width)*s, float64(ps.Height)*s

	radii := ps.Radii()
	rounded := radii != [4]int{}
	if rounded {
		d.pdf.ClipPolygon(roundedRect(px, py, pw, ph, radii, s), false)
	}
	d.pdf.ImageOptions(name, px, py, pw, ph, false, gofpdf.ImageOptions{ImageType: "JPG"}, 0, "")
	if rounded {
		d.pdf.ClipEnd()
	}
	return nil
}

func (d *Document) register(data []byte, kind string) string {
	d.images++
	name := fmt.Sprintf("img%d", d.images)
	d.pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: kind}, bytes.NewReader(data))
	return name
}

func (d *Document) setFont(bold bool, size float64) {
	style := ""
	idx := 0
	if bold {
		style, idx = "B", 1
	}
	if d.embedded[idx] {
		d.pdf.SetFont(cardFamily, style, size)
		return
	}
	d.pdf.SetFont(builtinFamily, style, size)
}

// Bytes finishes the document.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "write pdf")
	}
	return buf.Bytes(), nil
}

// roundedRect approximates a rectangle with per-corner radii (given in
// pixels, clamped like the raster mask) as a polygon in points.
func roundedRect(x, y, w, h float64, radii [4]int, scale float64) []gofpdf.PointType {
	limit := math.Min(w, h) / 2
	r := make([]float64, 4)
	for i, v := range radii {
		r[i] = math.Min(math.Max(float64(v)*scale, 0), limit)
	}

	corners := []struct {
		cx, cy, from float64
	}{
		{x + r[0], y + r[0], math.Pi},
		{x + w - r[1], y + r[1], 1.5 * math.Pi},
		{x + w - r[2], y + h - r[2], 0},
		{x + r[3], y + h - r[3], 0.5 * math.Pi},
	}

	var pts []gofpdf.PointType
	for i, c := range corners {
		if r[i] == 0 {
			pts = append(pts, gofpdf.PointType{X: c.cx, Y: c.cy})
			continue
		}
		for step := 0; step <= arcSteps; step++ {
			a := c.from + float64(step)*(math.Pi/2)/arcSteps
			pts = append(pts, gofpdf.PointType{X: c.cx + r[i]*math.Cos(a), Y: c.cy + r[i]*math.Sin(a)})
		}
	}
	return pts
}
