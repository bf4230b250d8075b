package imagepkg

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/pkg/errors"

	"github.com/youruser/idcardapp/internal/fonts"
	"github.com/youruser/idcardapp/internal/layout"
	"github.com/youruser/idcardapp/internal/template"
)

// CardAssets are the decoded images of one card. Photo and QR may be nil
// and are then skipped.
type CardAssets struct {
	Background image.Image
	Photo      image.Image
	QR         image.Image
}

// ComposeCard draws a card in template pixels: background scaled to the
// card, text, rounded photo, then QR. The result has no transparency.
func ComposeCard(spec *template.Spec, cmds []layout.Command, family *fonts.Family, assets CardAssets) (*image.NRGBA, error) {
	if assets.Background == nil {
		return nil, errors.New("card background is missing")
	}
	w, h := spec.CardWidth, spec.CardHeight

	bg := imaging.Resize(assets.Background, w, h, imaging.Lanczos)
	dc := gg.NewContextForImage(imaging.Overlay(imaging.New(w, h, color.White), bg, image.Pt(0, 0), 1.0))

	for _, c := range cmds {
		if c.Text == "" {
			continue
		}
		dc.SetFontFace(family.Face(c.Bold, c.Size))
		dc.SetColor(c.Color.RGBA())
		dc.DrawString(c.Text, c.X, c.Baseline)
	}

	canvas := imaging.Clone(dc.Image())

	if assets.Photo != nil {
		ps := spec.Photo
		photo := assets.Photo
		if photo.Bounds().Dx() != ps.Width || photo.Bounds().Dy() != ps.Height {
			photo = imaging.Fill(photo, ps.Width, ps.Height, imaging.Center, imaging.Lanczos)
		}
		mask := RoundedMask(ps.Width, ps.Height, ps.Radii())
		box := image.Rect(ps.X, ps.Y, ps.X+ps.Width, ps.Y+ps.Height)
		draw.DrawMask(canvas, box, photo, photo.Bounds().Min, mask, image.Point{}, draw.Over)
	}

	if assets.QR != nil {
		q := spec.QR
		qrImg := assets.QR
		if qrImg.Bounds().Dx() != q.Size || qrImg.Bounds().Dy() != q.Size {
			qrImg = imaging.Resize(qrImg, q.Size, q.Size, imaging.Lanczos)
		}
		canvas = imaging.Paste(canvas, qrImg, image.Pt(q.X, q.Y))
	}

	return flatten(canvas), nil
}

// flatten composites onto white so JPEG never sees alpha.
func flatten(img image.Image) *image.NRGBA {
	b := img.Bounds()
	return imaging.Overlay(imaging.New(b.Dx(), b.Dy(), color.White), img, image.Pt(0, 0), 1.0)
}

// EncodeJPEG encodes img at quality (1-100). Transparent pixels come out
// white.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = 95
	}
	if o, ok := img.(interface{ Opaque() bool }); !ok || !o.Opaque() {
		img = flatten(img)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, errors.Wrap(err, "encode jpeg")
	}
	return buf.Bytes(), nil
}
