package imagepkg

import (
	"bytes"
	"context"
	"image"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"gopkg.in/resty.v1"

	"github.com/youruser/idcardapp/internal/util"
)

// ErrForbidden is returned for references outside the allowed roots or
// hosts.
var ErrForbidden = errors.New("image reference not allowed")

// Fetcher loads images from http(s) URLs or local paths.
type Fetcher struct {
	client *resty.Client
	roots  []string
	hosts  []string
}

func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{client: util.RestyClient(timeout)}
}

// Restrict limits local reads to the given directories and downloads to
// the given hosts. An empty list leaves that side unrestricted.
func (f *Fetcher) Restrict(roots, hosts []string) *Fetcher {
	f.roots = roots
	f.hosts = hosts
	return f
}

// FetchBytes returns the raw bytes behind ref.
func (f *Fetcher) FetchBytes(ctx context.Context, ref string) ([]byte, error) {
	if ref == "" {
		return nil, errors.New("empty image reference")
	}
	if !f.allowed(ref) {
		return nil, errors.Wrap(ErrForbidden, ref)
	}
	if isURL(ref) {
		data, err := util.GetBytes(ctx, f.client, ref)
		if err != nil {
			return nil, errors.Wrapf(err, "download %s", ref)
		}
		return data, nil
	}
	data, err := os.ReadFile(ref)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", ref)
	}
	return data, nil
}

// Fetch downloads or reads ref and decodes it with EXIF orientation applied.
func (f *Fetcher) Fetch(ctx context.Context, ref string) (image.Image, error) {
	data, err := f.FetchBytes(ctx, ref)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", ref)
	}
	return img, nil
}

func (f *Fetcher) allowed(ref string) bool {
	if !isURL(ref) {
		return util.Within(ref, f.roots)
	}
	if len(f.hosts) == 0 {
		return true
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	for _, h := range f.hosts {
		if strings.EqualFold(u.Hostname(), h) {
			return true
		}
	}
	return false
}

func isURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
