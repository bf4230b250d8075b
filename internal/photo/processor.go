// Package photo fits a student photo into the card's photo box: EXIF
// orientation, optional background replacement, face-centred crop with
// white padding, and a plain centre crop when anything goes wrong.
package photo

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"time"

	"github.com/disintegration/imaging"
	"github.com/mylxsw/asteria/log"
	"github.com/pkg/errors"

	"github.com/youruser/idcardapp/internal/metrics"
	"github.com/youruser/idcardapp/internal/template"
)

var (
	ErrNoFace    = errors.New("no face detected")
	ErrEmptyCrop = errors.New("crop window is empty")
)

// Crop geometry: the face fills 45% of the crop height and its centre sits
// 51% of the way down, leaving headroom for caps and turbans.
const (
	FaceToCropRatio = 0.45
	FaceCenterY     = 0.51
)

// Face is a detected face rectangle in source pixels.
type Face struct {
	Rect  image.Rectangle
	Score float64
}

// FaceDetector finds faces in an image.
type FaceDetector interface {
	Detect(img image.Image) ([]Face, error)
}

// BackgroundRemover returns the foreground of img with a transparent
// background.
type BackgroundRemover interface {
	Remove(ctx context.Context, img image.Image) (image.Image, error)
}

// Processor is safe for concurrent use when its detector and remover are.
type Processor struct {
	Detector FaceDetector
	Remover  BackgroundRemover

	// Timeout bounds a background removal call.
	Timeout time.Duration
}

// Process returns img cropped and resized to exactly w×h. It never fails:
// every error degrades to the centre crop.
func (p *Processor) Process(ctx context.Context, img image.Image, w, h int, removeBackground bool, bg template.Color) *image.NRGBA {
	if w <= 0 || h <= 0 {
		return imaging.New(1, 1, color.White)
	}
	src := Flatten(img)

	if removeBackground {
		src = p.replaceBackground(ctx, src, bg)
	}

	out, err := p.smartCrop(src, w, h)
	if err != nil {
		log.WithFields(log.Fields{"width": w, "height": h}).Debugf("face crop unavailable, centre crop: %v", err)
		metrics.Fallback("face")
		return CenterCrop(src, w, h)
	}
	return out
}

// FitBytes decodes photo bytes (applying EXIF orientation), processes them
// and returns a JPEG. Undecodable input yields the placeholder photo.
func (p *Processor) FitBytes(ctx context.Context, data []byte, w, h int, removeBackground bool, bg template.Color, quality int) ([]byte, error) {
	var out image.Image
	img, err := Decode(data)
	if err != nil {
		log.WithFields(log.Fields{"size": len(data)}).Warningf("photo decode failed, using placeholder: %v", err)
		metrics.Fallback("photo")
		out = Placeholder(w, h)
	} else {
		out = p.Process(ctx, img, w, h, removeBackground, bg)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, errors.Wrap(err, "encode fitted photo")
	}
	return buf.Bytes(), nil
}

// Decode decodes any supported image format and applies EXIF orientation.
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(err, "decode photo")
	}
	return img, nil
}

// Flatten composites img onto white, dropping any transparency.
func Flatten(img image.Image) *image.NRGBA {
	b := img.Bounds()
	canvas := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0)
}

// Placeholder is the light grey box drawn when a photo is unavailable.
func Placeholder(w, h int) *image.NRGBA {
	if w <= 0 || h <= 0 {
		w, h = 1, 1
	}
	return imaging.New(w, h, color.NRGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff})
}

// CenterCrop crops the longer side symmetrically to the w:h aspect and
// resizes to exactly w×h.
func CenterCrop(img image.Image, w, h int) *image.NRGBA {
	return imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos)
}

func (p *Processor) replaceBackground(ctx context.Context, src *image.NRGBA, bg template.Color) *image.NRGBA {
	if p.Remover == nil {
		log.Warningf("background removal requested but no remover is configured")
		metrics.Fallback("background_removal")
		return src
	}

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	fg, err := p.Remover.Remove(ctx, src)
	if err != nil {
		log.WithFields(log.Fields{"bg": bg.Hex()}).Warningf("background removal failed, keeping original: %v", err)
		metrics.Fallback("background_removal")
		return src
	}

	// The canvas keeps the source size so the crop never meets empty margins.
	b := src.Bounds()
	canvas := imaging.New(b.Dx(), b.Dy(), bg.RGBA())
	fb := fg.Bounds()
	offset := image.Pt((b.Dx()-fb.Dx())/2, (b.Dy()-fb.Dy())/2)
	return imaging.Overlay(canvas, fg, offset, 1.0)
}

func (p *Processor) smartCrop(src *image.NRGBA, w, h int) (out *image.NRGBA, err error) {
	if p.Detector == nil {
		return nil, ErrNoFace
	}
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, errors.Errorf("face crop panicked: %v", r)
		}
	}()

	faces, err := p.Detector.Detect(src)
	if err != nil {
		return nil, errors.Wrap(err, "detect faces")
	}
	if len(faces) == 0 {
		return nil, ErrNoFace
	}

	best := faces[0]
	for _, f := range faces[1:] {
		if f.Score > best.Score {
			best = f
		}
	}
	return CropAroundFace(src, best.Rect, w, h)
}

// CropAroundFace crops src so that face takes FaceToCropRatio of the crop
// height with its centre at FaceCenterY, at the exact w:h aspect, padding
// with white where the window leaves the image.
func CropAroundFace(src image.Image, face image.Rectangle, w, h int) (*image.NRGBA, error) {
	if face.Dy() <= 0 || face.Dx() <= 0 {
		return nil, ErrEmptyCrop
	}
	sb := src.Bounds()
	cx := face.Min.X - sb.Min.X + face.Dx()/2
	cy := face.Min.Y - sb.Min.Y + face.Dy()/2

	cropH := int(float64(face.Dy()) / FaceToCropRatio)
	cropW := int(float64(cropH) * float64(w) / float64(h))
	if cropW <= 0 || cropH <= 0 {
		return nil, ErrEmptyCrop
	}

	x1 := cx - cropW/2
	y1 := cy - int(float64(cropH)*FaceCenterY)
	x2, y2 := x1+cropW, y1+cropH

	padL, padT := max(0, -x1), max(0, -y1)
	padR, padB := max(0, x2-sb.Dx()), max(0, y2-sb.Dy())

	var base image.Image = src
	if padL+padT+padR+padB > 0 {
		padded := imaging.New(sb.Dx()+padL+padR, sb.Dy()+padT+padB, color.White)
		base = imaging.Paste(padded, src, image.Pt(padL, padT))
		x1, x2 = x1+padL, x2+padL
		y1, y2 = y1+padT, y2+padT
	} else if sb.Min != (image.Point{}) {
		base = imaging.Clone(src)
	}

	crop := imaging.Crop(base, image.Rect(x1, y1, x2, y2))
	if crop.Bounds().Empty() {
		return nil, ErrEmptyCrop
	}
	return imaging.Resize(crop, w, h, imaging.Lanczos), nil
}
