package imagepkg

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/fogleman/gg"
)

// RoundedMask builds an alpha mask for a w×h photo with independent corner
// radii [top_left, top_right, bottom_right, bottom_left]. Each rounded
// corner is cut out as an r×r block and the quarter disc is painted back,
// so corners with different radii never touch each other.
func RoundedMask(w, h int, radii [4]int) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	draw.Draw(mask, mask.Bounds(), image.Opaque, image.Point{}, draw.Src)

	limit := w
	if h < limit {
		limit = h
	}
	limit /= 2

	for corner, r := range radii {
		if r > limit {
			r = limit
		}
		if r <= 0 {
			continue
		}

		var block image.Rectangle
		var from image.Point
		switch corner {
		case 0:
			block = image.Rect(0, 0, r, r)
			from = image.Pt(0, 0)
		case 1:
			block = image.Rect(w-r, 0, w, r)
			from = image.Pt(r, 0)
		case 2:
			block = image.Rect(w-r, h-r, w, h)
			from = image.Pt(r, r)
		case 3:
			block = image.Rect(0, h-r, r, h)
			from = image.Pt(0, r)
		}

		draw.Draw(mask, block, image.Transparent, image.Point{}, draw.Src)
		draw.Draw(mask, block, disc(r), from, draw.Over)
	}
	return mask
}

// disc is a filled circle of radius r on a transparent 2r×2r square.
func disc(r int) image.Image {
	dc := gg.NewContext(2*r, 2*r)
	dc.DrawCircle(float64(r), float64(r), float64(r))
	dc.SetColor(color.White)
	dc.Fill()
	return dc.Image()
}
