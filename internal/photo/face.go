package photo

import (
	"image"
	"os"

	"github.com/disintegration/imaging"
	pigo "github.com/esimov/pigo/core"
	"github.com/pkg/errors"
)

// minQuality drops weak cascade hits.
const minQuality = 5.0

// PigoDetector detects frontal faces with a pigo cascade. The unpacked
// classifier is read-only, so one detector serves every render.
type PigoDetector struct {
	classifier *pigo.Pigo
}

// NewPigoDetector loads the facefinder cascade at path.
func NewPigoDetector(path string) (*PigoDetector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read face cascade %s", path)
	}
	return NewPigoDetectorFromBytes(data)
}

// NewPigoDetectorFromBytes unpacks a cascade already in memory.
func NewPigoDetectorFromBytes(cascade []byte) (*PigoDetector, error) {
	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, errors.Wrap(err, "unpack face cascade")
	}
	return &PigoDetector{classifier: classifier}, nil
}

func (d *PigoDetector) Detect(img image.Image) ([]Face, error) {
	src := imaging.Clone(img)
	cols, rows := src.Bounds().Dx(), src.Bounds().Dy()
	if cols == 0 || rows == 0 {
		return nil, nil
	}

	maxSize := cols
	if rows < maxSize {
		maxSize = rows
	}
	params := pigo.CascadeParams{
		MinSize:     20,
		MaxSize:     maxSize,
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: pigo.ImageParams{
			Pixels: pigo.RgbToGrayscale(src),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := d.classifier.RunCascade(params, 0.0)
	dets = d.classifier.ClusterDetections(dets, 0.2)

	faces := make([]Face, 0, len(dets))
	for _, det := range dets {
		if det.Q < minQuality {
			continue
		}
		half := det.Scale / 2
		faces = append(faces, Face{
			Rect:  image.Rect(det.Col-half, det.Row-half, det.Col+half, det.Row+half),
			Score: float64(det.Q),
		})
	}
	return faces, nil
}
