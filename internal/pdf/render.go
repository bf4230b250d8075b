package pdf

import (
	"image"

	"github.com/youruser/idcardapp/internal/fonts"
	"github.com/youruser/idcardapp/internal/sheet"
	"github.com/youruser/idcardapp/internal/template"
)

// RenderCard produces a one-page PDF the size of the card.
func RenderCard(spec *template.Spec, family *fonts.Family, bg image.Image, card Card, quality int) ([]byte, error) {
	w, h := float64(spec.CardWidth)*sheet.Scale, float64(spec.CardHeight)*sheet.Scale
	d := newDocument(spec, family, w, h, quality)
	if err := d.SetBackground(bg); err != nil {
		return nil, err
	}
	d.pdf.AddPage()
	if err := d.DrawCard(0, 0, card); err != nil {
		return nil, err
	}
	return d.Bytes()
}

// RenderSheet places cards on the template's sheet grid, starting a new
// page every rows×cols cards. No cards yields a single empty page.
func RenderSheet(spec *template.Spec, family *fonts.Family, bg image.Image, cards []Card, quality int) ([]byte, error) {
	g := sheet.NewGrid(spec)
	d := newDocument(spec, family, g.PageW, g.PageH, quality)
	if err := d.SetBackground(bg); err != nil {
		return nil, err
	}

	if len(cards) == 0 {
		d.pdf.AddPage()
	}
	page := -1
	for i, c := range cards {
		slot := g.Place(i)
		if slot.Page != page {
			d.pdf.AddPage()
			page = slot.Page
		}
		if err := d.DrawCard(slot.X, slot.Y, c); err != nil {
			return nil, err
		}
	}
	return d.Bytes()
}
