package imagepkg_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youruser/idcardapp/internal/fonts"
	imagepkg "github.com/youruser/idcardapp/internal/image"
	"github.com/youruser/idcardapp/internal/layout"
	"github.com/youruser/idcardapp/internal/template"
)

func near(t *testing.T, want, got color.NRGBA) {
	t.Helper()
	assert.InDelta(t, int(want.R), int(got.R), 2)
	assert.InDelta(t, int(want.G), int(got.G), 2)
	assert.InDelta(t, int(want.B), int(got.B), 2)
}

func alphaAt(m *image.Alpha, x, y int) uint8 {
	return m.AlphaAt(x, y).A
}

func TestRoundedMask_NoRadiiIsOpaque(t *testing.T) {
	m := imagepkg.RoundedMask(260, 313, [4]int{0, 0, 0, 0})
	for y := 0; y < 313; y++ {
		for x := 0; x < 260; x++ {
			require.Equal(t, uint8(255), alphaAt(m, x, y))
		}
	}
}

func TestRoundedMask_IndependentCorners(t *testing.T) {
	m := imagepkg.RoundedMask(200, 100, [4]int{30, 0, 10, 0})

	// top-left: tip cut, inscribed disc kept
	assert.Equal(t, uint8(0), alphaAt(m, 0, 0))
	assert.Equal(t, uint8(0), alphaAt(m, 3, 3))
	assert.Equal(t, uint8(255), alphaAt(m, 20, 20))
	assert.Equal(t, uint8(255), alphaAt(m, 29, 29))

	// square corners untouched
	assert.Equal(t, uint8(255), alphaAt(m, 199, 0))
	assert.Equal(t, uint8(255), alphaAt(m, 0, 99))

	// bottom-right has its own radius
	assert.Equal(t, uint8(0), alphaAt(m, 199, 99))
	assert.Equal(t, uint8(255), alphaAt(m, 193, 93))
	assert.Equal(t, uint8(255), alphaAt(m, 170, 99))

	assert.Equal(t, uint8(255), alphaAt(m, 100, 50))
}

func TestRoundedMask_RadiusClamped(t *testing.T) {
	m := imagepkg.RoundedMask(40, 40, [4]int{500, 500, 500, 500})
	assert.Equal(t, uint8(0), alphaAt(m, 0, 0))
	assert.Equal(t, uint8(255), alphaAt(m, 20, 20))
	assert.Equal(t, uint8(255), alphaAt(m, 20, 1))
}

func qrStyle(style string) template.QRSettings {
	q := template.DefaultQR()
	q.Style = style
	return q
}

func TestQRGenerator_Sizes(t *testing.T) {
	g := &imagepkg.QRGenerator{}
	for _, style := range []string{"square", "rounded", "circle", "gapped"} {
		for _, payload := range []string{"TEST123", "", " ", "https://example.com/verify/abcdef0123"} {
			img := g.Generate(payload, qrStyle(style), 120)
			assert.Equal(t, image.Rect(0, 0, 120, 120), img.Bounds(), "%s %q", style, payload)
		}
	}
}

func TestQRGenerator_Colours(t *testing.T) {
	g := &imagepkg.QRGenerator{}
	q := qrStyle("circle")
	q.BackColor = template.Color{R: 250, G: 240, B: 200}
	q.FillColor = template.Color{B: 120}

	img := g.Generate("TEST123", q, 120)

	// the quiet zone carries the back colour
	assert.Equal(t, color.NRGBA{R: 250, G: 240, B: 200, A: 255}, img.NRGBAAt(1, 1))

	var dark int
	for y := 0; y < 120; y++ {
		for x := 0; x < 120; x++ {
			if img.NRGBAAt(x, y) == (color.NRGBA{B: 120, A: 255}) {
				dark++
			}
		}
	}
	assert.Greater(t, dark, 0)
}

func TestQRGenerator_Logo(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, imaging.Save(imaging.New(50, 50, color.NRGBA{R: 255, A: 255}), filepath.Join(dir, "logo.png")))

	g := &imagepkg.QRGenerator{LogoDir: dir}
	q := qrStyle("square")
	q.IncludeLogo = true
	q.LogoPath = "logo.png"

	img := g.Generate("TEST123", q, 120)
	near(t, color.NRGBA{R: 255, A: 255}, img.NRGBAAt(60, 60))

	q.LogoPath = "missing.png"
	img = g.Generate("TEST123", q, 120)
	assert.Equal(t, 120, img.Bounds().Dx())

	other := filepath.Join(t.TempDir(), "logo.png")
	require.NoError(t, imaging.Save(imaging.New(50, 50, color.NRGBA{R: 255, A: 255}), other))
	g.Roots = []string{dir}
	q.LogoPath = other
	c := g.Generate("TEST123", q, 120).NRGBAAt(60, 60)
	assert.Equal(t, c.R, c.G, "logo outside the roots must not be drawn")
}

func TestQRGenerator_PNG(t *testing.T) {
	data, err := (&imagepkg.QRGenerator{}).GeneratePNG("TEST123", qrStyle("rounded"), 200)
	require.NoError(t, err)
	img, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
}

func testSpec() *template.Spec {
	spec := template.Default(template.Landscape)
	spec.Photo.RadiusTopLeft = 40
	spec.QR.Enable = true
	spec.QR.X, spec.QR.Y = 50, 50
	return spec
}

func composeTestCard(t *testing.T, spec *template.Spec) *image.NRGBA {
	t.Helper()
	fam := fonts.NewRegistry(t.TempDir(), "", "").Family("", "")
	defer fam.Close()

	res := layout.New(spec, fam).Layout([]template.Field{
		{Name: "name", Label: "NAME", Value: "John Doe", Order: 10},
		{Name: "address", Label: "ADDRESS", Value: "123 Long Street Name, Apartment 4B, Big City District", Order: 60},
	})

	img, err := imagepkg.ComposeCard(spec, res.Commands, fam, imagepkg.CardAssets{
		Background: imaging.New(500, 300, color.NRGBA{G: 200, A: 255}),
		Photo:      imaging.New(260, 313, color.NRGBA{R: 255, A: 255}),
		QR:         (&imagepkg.QRGenerator{}).Generate("TEST123", spec.QR, spec.QR.Size),
	})
	require.NoError(t, err)
	return img
}

func TestComposeCard(t *testing.T) {
	spec := testSpec()
	img := composeTestCard(t, spec)

	assert.Equal(t, image.Rect(0, 0, 1015, 661), img.Bounds())

	// photo centre is the photo, its rounded corner tip shows the background
	near(t, color.NRGBA{R: 255, A: 255}, img.NRGBAAt(725+130, 200+156))
	near(t, color.NRGBA{G: 200, A: 255}, img.NRGBAAt(725, 200))

	// qr quiet zone sits at qr_x, qr_y
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, img.NRGBAAt(51, 51))

	// some text pixels were drawn in the value column
	var inked bool
	for y := 275; y < 325 && !inked; y++ {
		for x := 280; x < 500; x++ {
			if c := img.NRGBAAt(x, y); c.G < 150 {
				inked = true
				break
			}
		}
	}
	assert.True(t, inked)
}

func TestComposeCard_Deterministic(t *testing.T) {
	spec := testSpec()
	a, err := imagepkg.EncodeJPEG(composeTestCard(t, spec), 95)
	require.NoError(t, err)
	b, err := imagepkg.EncodeJPEG(composeTestCard(t, spec), 95)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestComposeCard_MissingBackground(t *testing.T) {
	fam := fonts.NewRegistry(t.TempDir(), "", "").Family("", "")
	_, err := imagepkg.ComposeCard(testSpec(), nil, fam, imagepkg.CardAssets{})
	assert.Error(t, err)
}

func TestFetcher(t *testing.T) {
	var png bytes.Buffer
	require.NoError(t, imaging.Encode(&png, imaging.New(12, 8, color.White), imaging.PNG))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/photo.png" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(png.Bytes())
	}))
	defer srv.Close()

	f := imagepkg.NewFetcher(time.Second)

	img, err := f.Fetch(context.Background(), srv.URL+"/photo.png")
	require.NoError(t, err)
	assert.Equal(t, 12, img.Bounds().Dx())

	_, err = f.Fetch(context.Background(), srv.URL+"/missing.png")
	assert.Error(t, err)

	local := filepath.Join(t.TempDir(), "bg.png")
	require.NoError(t, imaging.Save(imaging.New(7, 7, color.Black), local))
	img, err = f.Fetch(context.Background(), local)
	require.NoError(t, err)
	assert.Equal(t, 7, img.Bounds().Dy())

	_, err = f.Fetch(context.Background(), "")
	assert.Error(t, err)
}

func TestFetcher_Restricted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected download of %s", r.URL.Path)
	}))
	defer srv.Close()

	root := t.TempDir()
	inside := filepath.Join(root, "bg.png")
	require.NoError(t, imaging.Save(imaging.New(5, 5, color.Black), inside))
	outside := filepath.Join(t.TempDir(), "secret.png")
	require.NoError(t, imaging.Save(imaging.New(5, 5, color.White), outside))

	f := imagepkg.NewFetcher(time.Second).Restrict([]string{root}, []string{"cdn.example.com"})

	img, err := f.Fetch(context.Background(), inside)
	require.NoError(t, err)
	assert.Equal(t, 5, img.Bounds().Dx())

	for _, ref := range []string{
		outside,
		filepath.Join(root, "..", filepath.Base(filepath.Dir(outside)), "secret.png"),
		srv.URL + "/photo.png",
	} {
		_, err = f.Fetch(context.Background(), ref)
		assert.True(t, errors.Is(err, imagepkg.ErrForbidden), ref)
	}
}
