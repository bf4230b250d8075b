package imagepkg

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/mylxsw/asteria/log"
	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/font/basicfont"

	"github.com/youruser/idcardapp/internal/metrics"
	"github.com/youruser/idcardapp/internal/template"
	"github.com/youruser/idcardapp/internal/util"
)

// ModuleDrawer paints one dark module into the current path.
type ModuleDrawer interface {
	Module(dc *gg.Context, x, y, size float64)
}

type squareModule struct{}

func (squareModule) Module(dc *gg.Context, x, y, size float64) {
	dc.DrawRectangle(x, y, size, size)
}

type roundedModule struct{}

func (roundedModule) Module(dc *gg.Context, x, y, size float64) {
	dc.DrawRoundedRectangle(x, y, size, size, size*0.35)
}

type circleModule struct{}

func (circleModule) Module(dc *gg.Context, x, y, size float64) {
	dc.DrawCircle(x+size/2, y+size/2, size/2)
}

// DrawerFor returns the drawer for a style name; unknown styles are square.
func DrawerFor(style string) ModuleDrawer {
	switch style {
	case "rounded":
		return roundedModule{}
	case "circle":
		return circleModule{}
	default:
		return squareModule{}
	}
}

// QRGenerator renders styled QR codes. Logo paths are resolved against
// LogoDir and, when Roots is set, must stay inside one of them.
type QRGenerator struct {
	LogoDir string
	Roots   []string
}

// Generate always returns a size×size image: the styled code, else a plain
// black-on-white code, else a placeholder reading "QR Error".
func (g *QRGenerator) Generate(payload string, style template.QRSettings, size int) *image.NRGBA {
	if size <= 0 {
		size = 120
	}

	img, err := g.styled(payload, style, size)
	if err == nil {
		return img
	}
	log.WithFields(log.Fields{"style": style.Style, "size": size}).Warningf("styled QR failed, trying plain code: %v", err)
	metrics.Fallback("qr")

	img, err = plainQR(payload, size)
	if err == nil {
		return img
	}
	log.WithFields(log.Fields{"size": size}).Warningf("plain QR failed, using placeholder: %v", err)
	return qrPlaceholder(size)
}

// GeneratePNG returns Generate's image as PNG bytes.
func (g *QRGenerator) GeneratePNG(payload string, style template.QRSettings, size int) ([]byte, error) {
	return EncodePNG(g.Generate(payload, style, size))
}

func (g *QRGenerator) styled(payload string, style template.QRSettings, size int) (out *image.NRGBA, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("qr render panicked: %v", r)
		}
	}()

	code, err := qrcode.New(payload, qrcode.Low)
	if err != nil {
		return nil, errors.Wrap(err, "encode qr")
	}
	code.DisableBorder = true
	bitmap := code.Bitmap()
	n := len(bitmap)
	if n == 0 {
		return nil, errors.New("empty qr bitmap")
	}

	border := style.Border
	if border < 0 {
		border = 0
	}
	total := n + 2*border

	module := float64(size / total)
	if module < 1 {
		module = float64(size) / float64(total)
	}
	offset := (float64(size) - module*float64(total)) / 2

	dc := gg.NewContext(size, size)
	dc.SetColor(style.BackColor.RGBA())
	dc.Clear()

	drawer := DrawerFor(style.Style)
	for row := range bitmap {
		for col, dark := range bitmap[row] {
			if !dark {
				continue
			}
			x := offset + float64(col+border)*module
			y := offset + float64(row+border)*module
			drawer.Module(dc, x, y, module)
		}
	}
	dc.SetColor(style.FillColor.RGBA())
	dc.Fill()

	img := imaging.Clone(dc.Image())
	if style.IncludeLogo && style.LogoPath != "" {
		img = g.addLogo(img, style.LogoPath, size)
	}
	return img, nil
}

func (g *QRGenerator) addLogo(img *image.NRGBA, path string, size int) *image.NRGBA {
	if !filepath.IsAbs(path) && g.LogoDir != "" {
		path = filepath.Join(g.LogoDir, path)
	}
	if !util.Within(path, g.Roots) {
		log.WithFields(log.Fields{"logo": path}).Warningf("QR logo outside asset roots, skipping")
		metrics.Fallback("logo")
		return img
	}
	logo, err := imaging.Open(path)
	if err != nil {
		log.WithFields(log.Fields{"logo": path}).Warningf("QR logo unavailable, skipping: %v", err)
		metrics.Fallback("logo")
		return img
	}

	logoSize := size / 5
	if logoSize <= 0 {
		return img
	}
	logo = imaging.Resize(logo, logoSize, logoSize, imaging.Lanczos)
	pos := image.Pt((size-logoSize)/2, (size-logoSize)/2)
	return imaging.Overlay(img, logo, pos, 1.0)
}

func plainQR(payload string, size int) (*image.NRGBA, error) {
	code, err := qr.Encode(payload, qr.L, qr.Auto)
	if err != nil {
		return nil, errors.Wrap(err, "encode plain qr")
	}
	scaled, err := barcode.Scale(code, size, size)
	if err != nil {
		return nil, errors.Wrap(err, "scale plain qr")
	}
	return imaging.Clone(scaled), nil
}

func qrPlaceholder(size int) *image.NRGBA {
	dc := gg.NewContext(size, size)
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetColor(color.Black)
	dc.SetFontFace(basicfont.Face7x13)
	dc.DrawString("QR Error", 10, 10+float64(basicfont.Face7x13.Ascent))
	return imaging.Clone(dc.Image())
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, errors.Wrap(err, "encode png")
	}
	return buf.Bytes(), nil
}
