package photo_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youruser/idcardapp/internal/photo"
	"github.com/youruser/idcardapp/internal/template"
)

type stubDetector struct {
	faces []photo.Face
	err   error
}

func (s stubDetector) Detect(image.Image) ([]photo.Face, error) {
	return s.faces, s.err
}

type stubRemover struct {
	fg  image.Image
	err error
}

func (s stubRemover) Remove(context.Context, image.Image) (image.Image, error) {
	return s.fg, s.err
}

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

func solid(w, h int, c color.Color) *image.NRGBA {
	return imaging.New(w, h, c)
}

func assertColor(t *testing.T, want color.NRGBA, got color.Color) {
	t.Helper()
	r, g, b, _ := got.RGBA()
	assert.InDelta(t, int(want.R), int(r>>8), 8)
	assert.InDelta(t, int(want.G), int(g>>8), 8)
	assert.InDelta(t, int(want.B), int(b>>8), 8)
}

func TestProcess_AlwaysExactSize(t *testing.T) {
	sources := []image.Image{
		solid(400, 300, red),
		solid(100, 800, red),
		solid(50, 50, red),
		solid(3000, 200, red),
	}
	processors := []*photo.Processor{
		{},
		{Detector: stubDetector{}},
		{Detector: stubDetector{err: errors.New("model offline")}},
		{Detector: stubDetector{faces: []photo.Face{{Rect: image.Rect(0, 0, 30, 30), Score: 1}}}},
		{Detector: stubDetector{faces: []photo.Face{{Rect: image.Rect(5, 5, 5, 5), Score: 1}}}},
	}

	for _, src := range sources {
		for _, p := range processors {
			out := p.Process(context.Background(), src, 260, 313, false, template.White)
			assert.Equal(t, 260, out.Bounds().Dx())
			assert.Equal(t, 313, out.Bounds().Dy())
		}
	}
}

func TestProcess_PicksHighestScoringFace(t *testing.T) {
	src := solid(400, 200, red)
	src = imaging.Paste(src, solid(200, 200, blue), image.Pt(200, 0))

	p := &photo.Processor{Detector: stubDetector{faces: []photo.Face{
		{Rect: image.Rect(80, 80, 120, 120), Score: 2},
		{Rect: image.Rect(280, 80, 320, 120), Score: 9},
	}}}
	out := p.Process(context.Background(), src, 260, 313, false, template.White)
	assertColor(t, blue, out.At(130, 156))
}

func TestCropAroundFace_PadsWithWhite(t *testing.T) {
	src := solid(200, 200, red)
	out, err := photo.CropAroundFace(src, image.Rect(0, 0, 40, 40), 100, 120)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 120), out.Bounds())

	// the window starts left of and above the image
	assertColor(t, color.NRGBA{R: 255, G: 255, B: 255}, out.At(0, 0))
	assertColor(t, red, out.At(99, 119))
}

func TestCropAroundFace_Geometry(t *testing.T) {
	// face centred in a large image: no padding, so the result is all source
	src := solid(1000, 1000, blue)
	out, err := photo.CropAroundFace(src, image.Rect(450, 450, 550, 550), 260, 313)
	require.NoError(t, err)
	assert.Equal(t, 260, out.Bounds().Dx())
	assertColor(t, blue, out.At(0, 0))
	assertColor(t, blue, out.At(259, 312))
}

func TestCropAroundFace_EmptyFace(t *testing.T) {
	_, err := photo.CropAroundFace(solid(10, 10, red), image.Rectangle{}, 10, 10)
	assert.ErrorIs(t, err, photo.ErrEmptyCrop)
}

func TestProcess_BackgroundReplaced(t *testing.T) {
	transparent := imaging.New(300, 300, color.NRGBA{})
	p := &photo.Processor{Remover: stubRemover{fg: transparent}}

	out := p.Process(context.Background(), solid(300, 300, red), 100, 100, true, template.Color{B: 255})
	assertColor(t, blue, out.At(50, 50))
}

func TestProcess_BackgroundRemovalFailureKeepsOriginal(t *testing.T) {
	p := &photo.Processor{Remover: stubRemover{err: errors.New("timeout")}, Timeout: time.Second}

	out := p.Process(context.Background(), solid(300, 300, red), 100, 100, true, template.Color{B: 255})
	assert.Equal(t, 100, out.Bounds().Dx())
	assertColor(t, red, out.At(50, 50))
}

func TestProcess_NoRemoverConfigured(t *testing.T) {
	p := &photo.Processor{}
	out := p.Process(context.Background(), solid(300, 300, red), 80, 80, true, template.White)
	assertColor(t, red, out.At(40, 40))
}

func TestProcess_FlattensAlphaOntoWhite(t *testing.T) {
	src := imaging.New(100, 100, color.NRGBA{})
	out := (&photo.Processor{}).Process(context.Background(), src, 50, 50, false, template.White)
	assertColor(t, color.NRGBA{R: 255, G: 255, B: 255}, out.At(25, 25))
}

func TestFitBytes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, solid(640, 480, red), imaging.PNG))

	p := &photo.Processor{}
	data, err := p.FitBytes(context.Background(), buf.Bytes(), 260, 313, false, template.White, 95)
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 260, 313), img.Bounds())
}

func TestFitBytes_UndecodableGivesPlaceholder(t *testing.T) {
	p := &photo.Processor{}
	data, err := p.FitBytes(context.Background(), []byte("definitely not an image"), 120, 150, false, template.White, 95)
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 120, 150), img.Bounds())
}

func TestHTTPRemover(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, _, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		_, _ = io.Copy(io.Discard, f)

		w.Header().Set("Content-Type", "image/png")
		_ = imaging.Encode(w, imaging.New(10, 10, color.NRGBA{}), imaging.PNG)
	}))
	defer srv.Close()

	r := photo.NewHTTPRemover(srv.URL, time.Second)
	fg, err := r.Remove(context.Background(), solid(20, 30, red))
	require.NoError(t, err)
	assert.Equal(t, 20, fg.Bounds().Dx())
	assert.Equal(t, 30, fg.Bounds().Dy())
}

func TestHTTPRemover_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := photo.NewHTTPRemover(srv.URL, time.Second).Remove(context.Background(), solid(5, 5, red))
	assert.Error(t, err)
}
