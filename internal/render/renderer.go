// Package render is the entry point of the card engine: it fetches the
// template background, fits photos, builds QR codes, lays out fields and
// hands the result to the raster and PDF backends.
package render

import (
	"context"
	"image"
	"strings"
	"time"

	"github.com/mylxsw/asteria/log"

	"github.com/youruser/idcardapp/internal/cards"
	"github.com/youruser/idcardapp/internal/fonts"
	imagepkg "github.com/youruser/idcardapp/internal/image"
	"github.com/youruser/idcardapp/internal/layout"
	"github.com/youruser/idcardapp/internal/metrics"
	"github.com/youruser/idcardapp/internal/pdf"
	"github.com/youruser/idcardapp/internal/photo"
	"github.com/youruser/idcardapp/internal/shaper"
	"github.com/youruser/idcardapp/internal/template"
)

// ImageFetcher loads an image from a URL or path.
type ImageFetcher interface {
	Fetch(ctx context.Context, ref string) (image.Image, error)
}

type Options struct {
	Fonts   *fonts.Registry
	Fetcher ImageFetcher
	Photos  *photo.Processor
	QR      *imagepkg.QRGenerator
	Quality int
	Workers int
}

// Renderer is safe for concurrent use. Each render takes its own font
// family from the shared registry.
type Renderer struct {
	fonts   *fonts.Registry
	fetcher ImageFetcher
	photos  *photo.Processor
	qr      *imagepkg.QRGenerator
	quality int
	workers int
}

func New(opt Options) *Renderer {
	r := &Renderer{
		fonts:   opt.Fonts,
		fetcher: opt.Fetcher,
		photos:  opt.Photos,
		qr:      opt.QR,
		quality: opt.Quality,
		workers: opt.Workers,
	}
	if r.fonts == nil {
		r.fonts = fonts.NewRegistry("", "", "")
	}
	if r.fetcher == nil {
		r.fetcher = imagepkg.NewFetcher(10 * time.Second)
	}
	if r.photos == nil {
		r.photos = &photo.Processor{}
	}
	if r.qr == nil {
		r.qr = &imagepkg.QRGenerator{}
	}
	if r.quality <= 0 || r.quality > 100 {
		r.quality = 95
	}
	if r.workers <= 0 {
		r.workers = 4
	}
	return r
}

// CardInput is everything that varies between cards of one template.
// Fields must be in display order. Photo may be nil (no photo drawn);
// an empty QRPayload draws no QR code.
type CardInput struct {
	Name      string
	Fields    []template.Field
	Photo     image.Image
	QRPayload string
}

// Card is a rendered card in both formats.
type Card struct {
	Image *image.NRGBA
	JPEG  []byte
	PDF   []byte
}

// GetPhotoFitted fits raw photo bytes to w×h and returns a JPEG.
func (r *Renderer) GetPhotoFitted(ctx context.Context, data []byte, w, h int, removeBackground bool, bg template.Color) (out []byte, err error) {
	defer func() { metrics.Render("photo", err) }()
	return r.photos.FitBytes(ctx, data, w, h, removeBackground, bg, r.quality)
}

// ShapeText prepares text for drawing in language. direction is "rtl"
// (or "R") for a right-to-left paragraph, anything else is left-to-right.
func (r *Renderer) ShapeText(text, language, direction string) string {
	return ShapeText(text, language, direction)
}

func ShapeText(text, language, direction string) string {
	base := shaper.BaseL
	switch strings.ToLower(direction) {
	case "rtl", "r":
		base = shaper.BaseR
	}
	return shaper.Shape(text, language, base)
}

// RenderCard draws one card as JPEG and single-page PDF.
func (r *Renderer) RenderCard(ctx context.Context, spec *template.Spec, in CardInput) (card *Card, err error) {
	defer func() { metrics.Render("card", err) }()

	bg, err := r.background(ctx, spec)
	if err != nil {
		return nil, err
	}

	family := r.fonts.Family(spec.Font.FontRegular, spec.Font.FontBold)
	defer family.Close()

	res := layout.New(spec, family).Layout(in.Fields)
	ph := r.fitPhoto(ctx, spec, in.Photo)
	qr := r.qrImage(spec, in.QRPayload)

	img, err := imagepkg.ComposeCard(spec, res.Commands, family, imagepkg.CardAssets{Background: bg, Photo: ph, QR: qr})
	if err != nil {
		return nil, &Failure{Asset: "template", Err: err}
	}
	jpg, err := imagepkg.EncodeJPEG(img, r.quality)
	if err != nil {
		return nil, err
	}
	doc, err := pdf.RenderCard(spec, family, bg, pdf.Card{Commands: res.Commands, Photo: ph, QR: qr}, r.quality)
	if err != nil {
		return nil, err
	}
	return &Card{Image: img, JPEG: jpg, PDF: doc}, nil
}

// RenderStudentCard prepares a student's card input and renders it.
func (r *Renderer) RenderStudentCard(ctx context.Context, spec *template.Spec, s cards.Student) (*Card, error) {
	return r.RenderCard(ctx, spec, r.PrepareStudent(ctx, spec, s))
}

// PrepareStudent builds the card input for a student. The photo is
// fetched and fitted here; when it cannot be loaded the placeholder is
// used. A QR payload that cannot be built is left out.
func (r *Renderer) PrepareStudent(ctx context.Context, spec *template.Spec, s cards.Student) CardInput {
	in := CardInput{Name: s.Name, Fields: cards.RenderFields(spec, s)}

	ps := spec.Photo
	if s.Photo != "" {
		img, err := r.fetcher.Fetch(ctx, s.Photo)
		if err != nil {
			log.WithFields(log.Fields{"student": s.Name, "photo": s.Photo}).Warningf("photo unavailable, using placeholder: %v", err)
			metrics.Fallback("photo")
			in.Photo = photo.Placeholder(ps.Width, ps.Height)
		} else {
			in.Photo = r.photos.Process(ctx, img, ps.Width, ps.Height, ps.RemoveBackground, ps.BackgroundColor)
		}
	}

	payload, err := cards.QRPayload(spec, s)
	if err != nil {
		log.WithFields(log.Fields{"student": s.Name}).Warningf("qr payload failed, card has no QR: %v", err)
		metrics.Fallback("qr")
	}
	in.QRPayload = payload
	return in
}

func (r *Renderer) background(ctx context.Context, spec *template.Spec) (image.Image, error) {
	bg, err := r.fetcher.Fetch(ctx, spec.Background)
	if err != nil {
		log.WithFields(log.Fields{"template": spec.ID, "background": spec.Background}).Errorf("template background unavailable: %v", err)
		return nil, &Failure{Asset: "template", Err: err}
	}
	return bg, nil
}

// fitPhoto brings a photo not yet of the box size through the processor.
func (r *Renderer) fitPhoto(ctx context.Context, spec *template.Spec, img image.Image) image.Image {
	if img == nil {
		return nil
	}
	ps := spec.Photo
	if b := img.Bounds(); b.Dx() == ps.Width && b.Dy() == ps.Height {
		return img
	}
	return r.photos.Process(ctx, img, ps.Width, ps.Height, ps.RemoveBackground, ps.BackgroundColor)
}

func (r *Renderer) qrImage(spec *template.Spec, payload string) image.Image {
	if !spec.QR.Enable || payload == "" {
		return nil
	}
	return r.qr.Generate(payload, spec.QR, spec.QR.Size)
}
