package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youruser/idcardapp/internal/api"
	"github.com/youruser/idcardapp/internal/fonts"
	imagepkg "github.com/youruser/idcardapp/internal/image"
	"github.com/youruser/idcardapp/internal/render"
)

type stubFetcher map[string]image.Image

func (s stubFetcher) Fetch(_ context.Context, ref string) (image.Image, error) {
	if img, ok := s[ref]; ok {
		return img, nil
	}
	return nil, errors.Errorf("no image %q", ref)
}

const templateJSON = `{
    "id": "green-valley",
    "school_name": "Green Valley",
    "background": "bg.png",
    "card_orientation": "landscape",
    "qr_settings": {"enable_qr": true, "qr_style": "rounded"},
    "fields": [{"field_name": "roll_no", "field_label": "ROLL", "field_type": "text", "is_required": true, "display_order": 15}]
}`

func newServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "green-valley.json"), []byte(templateJSON), 0o644))

	r := render.New(render.Options{
		Fonts:   fonts.NewRegistry(t.TempDir(), "", ""),
		Fetcher: stubFetcher{"bg.png": imaging.New(1015, 661, color.White)},
	})
	engine := gin.New()
	api.RegisterRoutes(engine, api.NewHandler(r, nil, dir))
	return engine
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func student(name, roll string) map[string]any {
	return map[string]any{
		"id": "S1", "name": name, "father_name": "Imran Khan", "class": "5",
		"address": "12 Main St", "custom": map[string]string{"roll_no": roll},
	}
}

func TestHealth(t *testing.T) {
	rec := do(t, newServer(t), "GET", "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCard_JPEG(t *testing.T) {
	rec := do(t, newServer(t), "POST", "/api/card", map[string]any{
		"template_id": "green-valley",
		"student":     student("Ali Khan", "17"),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))

	img, err := imaging.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 1015, img.Bounds().Dx())
}

func TestCard_InlineTemplatePDF(t *testing.T) {
	rec := do(t, newServer(t), "POST", "/api/card", map[string]any{
		"template": json.RawMessage(templateJSON),
		"student":  student("Ali Khan", "17"),
		"format":   "pdf",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestCard_TemplateErrors(t *testing.T) {
	srv := newServer(t)

	rec := do(t, srv, "POST", "/api/card", map[string]any{"template_id": "nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, "POST", "/api/card", map[string]any{"template_id": "../green-valley"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, "POST", "/api/card", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, "POST", "/api/card", map[string]any{"template": json.RawMessage(`{"background": "missing.png"}`)})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"asset":"template"`)
}

func TestCard_BackgroundOutsideAssetRoots(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	inside := filepath.Join(dir, "bg.png")
	require.NoError(t, imaging.Save(imaging.New(1015, 661, color.White), inside))
	outside := filepath.Join(t.TempDir(), "private.png")
	require.NoError(t, imaging.Save(imaging.New(1015, 661, color.Black), outside))

	r := render.New(render.Options{
		Fonts:   fonts.NewRegistry(t.TempDir(), "", ""),
		Fetcher: imagepkg.NewFetcher(time.Second).Restrict([]string{dir}, nil),
	})
	srv := gin.New()
	api.RegisterRoutes(srv, api.NewHandler(r, nil, dir))

	inline := func(bg string) json.RawMessage {
		data, err := json.Marshal(map[string]string{"background": bg})
		require.NoError(t, err)
		return data
	}

	rec := do(t, srv, "POST", "/api/card", map[string]any{"template": inline(inside), "student": student("Ali Khan", "17")})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, srv, "POST", "/api/card", map[string]any{"template": inline(outside), "student": student("Ali Khan", "17")})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "not allowed")
}

func TestSheet(t *testing.T) {
	srv := newServer(t)

	rec := do(t, srv, "POST", "/api/sheet", map[string]any{
		"template_id": "green-valley",
		"students":    []any{student("Ali Khan", "17"), student("Sara", ""), student("", "3")},
		"grid_rows":   2,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "1", rec.Header().Get("X-Row-Errors"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec = do(t, srv, "POST", "/api/sheet", map[string]any{
		"template_id": "green-valley",
		"students":    []any{student("Sara", "")},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "roll_no")
}

func TestPhotoFit(t *testing.T) {
	var photo bytes.Buffer
	require.NoError(t, imaging.Encode(&photo, imaging.New(300, 200, color.NRGBA{B: 255, A: 255}), imaging.PNG))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("photo", "me.png")
	require.NoError(t, err)
	_, err = fw.Write(photo.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("width", "120"))
	require.NoError(t, mw.WriteField("height", "160"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/photo/fit", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	newServer(t).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	img, err := imaging.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 120, 160), img.Bounds())
}

func TestPhotoFit_MissingFile(t *testing.T) {
	rec := do(t, newServer(t), "POST", "/api/photo/fit", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShape(t *testing.T) {
	rec := do(t, newServer(t), "GET", "/api/shape?text=Hello&language=english", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"text":"Hello"}`, rec.Body.String())
}

func TestQR(t *testing.T) {
	rec := do(t, newServer(t), "GET", "/api/qr?text=TEST123&size=150&style=circle&fill=%23003366", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	img, err := imaging.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 150, img.Bounds().Dx())
}

func TestMetrics(t *testing.T) {
	rec := do(t, newServer(t), "GET", "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
