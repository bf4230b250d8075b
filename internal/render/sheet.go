package render

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/youruser/idcardapp/internal/cards"
	"github.com/youruser/idcardapp/internal/layout"
	"github.com/youruser/idcardapp/internal/metrics"
	"github.com/youruser/idcardapp/internal/pdf"
	"github.com/youruser/idcardapp/internal/template"
)

// PrepareStudents prepares card inputs for many students in parallel,
// bounded by the renderer's worker count. Output order follows input.
func (r *Renderer) PrepareStudents(ctx context.Context, spec *template.Spec, students []cards.Student) ([]CardInput, error) {
	out := make([]CardInput, len(students))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := range students {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = r.PrepareStudent(gctx, spec, students[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// RenderSheet lays cards out on the template's sheet grid and returns a
// multi-page PDF.
func (r *Renderer) RenderSheet(ctx context.Context, spec *template.Spec, inputs []CardInput) (doc []byte, err error) {
	defer func() { metrics.Render("sheet", err) }()

	bg, err := r.background(ctx, spec)
	if err != nil {
		return nil, err
	}

	family := r.fonts.Family(spec.Font.FontRegular, spec.Font.FontBold)
	defer family.Close()

	engine := layout.New(spec, family)
	pages := make([]pdf.Card, 0, len(inputs))
	for _, in := range inputs {
		res := engine.Layout(in.Fields)
		pages = append(pages, pdf.Card{
			Commands: res.Commands,
			Photo:    r.fitPhoto(ctx, spec, in.Photo),
			QR:       r.qrImage(spec, in.QRPayload),
		})
	}
	return pdf.RenderSheet(spec, family, bg, pages, r.quality)
}

// RenderStudentSheet prepares students and renders them onto sheets.
func (r *Renderer) RenderStudentSheet(ctx context.Context, spec *template.Spec, students []cards.Student) ([]byte, error) {
	inputs, err := r.PrepareStudents(ctx, spec, students)
	if err != nil {
		return nil, err
	}
	return r.RenderSheet(ctx, spec, inputs)
}
