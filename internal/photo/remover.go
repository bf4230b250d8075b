package photo

import (
	"bytes"
	"context"
	"image"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"gopkg.in/resty.v1"

	"github.com/youruser/idcardapp/internal/util"
)

// HTTPRemover posts the photo as PNG to a background-removal service and
// expects a PNG with transparency back. One attempt per call.
type HTTPRemover struct {
	URL    string
	client *resty.Client
}

func NewHTTPRemover(url string, timeout time.Duration) *HTTPRemover {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPRemover{URL: url, client: util.RestyClient(timeout)}
}

func (r *HTTPRemover) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, errors.Wrap(err, "encode photo for background removal")
	}

	resp, err := r.client.R().
		SetContext(ctx).
		SetFileReader("file", "photo.png", &buf).
		Post(r.URL)
	if err != nil {
		return nil, errors.Wrap(err, "background removal request")
	}
	if !resp.IsSuccess() {
		return nil, errors.Errorf("background removal failed: [%d %s]", resp.StatusCode(), resp.Status())
	}

	fg, err := imaging.Decode(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, errors.Wrap(err, "decode background removal result")
	}

	// keep the foreground aligned with the source
	sb := img.Bounds()
	if fg.Bounds().Dx() != sb.Dx() || fg.Bounds().Dy() != sb.Dy() {
		fg = imaging.Resize(fg, sb.Dx(), sb.Dy(), imaging.Lanczos)
	}
	return fg, nil
}
