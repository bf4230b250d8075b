package api

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mylxsw/asteria/log"
	"github.com/pkg/errors"

	"github.com/youruser/idcardapp/internal/cards"
	imagepkg "github.com/youruser/idcardapp/internal/image"
	"github.com/youruser/idcardapp/internal/render"
	"github.com/youruser/idcardapp/internal/template"
)

// Handler serves the card engine over HTTP.
type Handler struct {
	Renderer     *render.Renderer
	QR           *imagepkg.QRGenerator
	TemplatesDir string
}

func NewHandler(r *render.Renderer, qr *imagepkg.QRGenerator, templatesDir string) *Handler {
	if qr == nil {
		qr = &imagepkg.QRGenerator{}
	}
	return &Handler{Renderer: r, QR: qr, TemplatesDir: templatesDir}
}

// templateRef selects a template either inline or by id.
type templateRef struct {
	Template   json.RawMessage `json:"template"`
	TemplateID string          `json:"template_id"`
}

func (h *Handler) loadTemplate(ref templateRef) (*template.Spec, int, error) {
	if len(ref.Template) > 0 && string(ref.Template) != "null" {
		spec, err := template.Parse(ref.Template)
		if err != nil {
			return nil, http.StatusBadRequest, err
		}
		return spec, 0, nil
	}
	id := strings.TrimSpace(ref.TemplateID)
	if id == "" || filepath.Base(id) != id {
		return nil, http.StatusBadRequest, errors.New("template or template_id is required")
	}
	spec, err := template.Load(filepath.Join(h.TemplatesDir, id+".json"))
	if err != nil {
		if errors.Cause(err) == template.ErrTemplateNotFound {
			return nil, http.StatusNotFound, err
		}
		return nil, http.StatusInternalServerError, err
	}
	return spec, 0, nil
}

func renderError(c *gin.Context, err error) {
	var failure *render.Failure
	if errors.As(err, &failure) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "asset": failure.Asset})
		return
	}
	log.Errorf("render error: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// health
func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// card renders one student's card as JPEG, or PDF with format=pdf.
func (h *Handler) card(c *gin.Context) {
	var req struct {
		templateRef
		Student cards.Student `json:"student"`
		Format  string        `json:"format"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	spec, status, err := h.loadTemplate(req.templateRef)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	card, err := h.Renderer.RenderStudentCard(c.Request.Context(), spec, req.Student)
	if err != nil {
		renderError(c, err)
		return
	}
	if strings.EqualFold(req.Format, "pdf") {
		c.Data(http.StatusOK, "application/pdf", card.PDF)
		return
	}
	c.Data(http.StatusOK, "image/jpeg", card.JPEG)
}

// sheet renders valid students onto print sheets. Rows that fail
// validation are reported in X-Row-Errors; when none are left the row
// errors are returned as JSON.
func (h *Handler) sheet(c *gin.Context) {
	var req struct {
		templateRef
		Students []cards.Student    `json:"students"`
		Filter   cards.FilterOptions `json:"filter"`
		Rows     int                 `json:"grid_rows"`
		Cols     int                 `json:"grid_cols"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	spec, status, err := h.loadTemplate(req.templateRef)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	if req.Rows > 0 {
		spec.GridRows = req.Rows
	}
	if req.Cols > 0 {
		spec.GridCols = req.Cols
	}

	students, rowErrs := cards.Validate(cards.Filter(req.Students, req.Filter), spec)
	if len(students) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no printable students", "row_errors": rowErrs})
		return
	}

	doc, err := h.Renderer.RenderStudentSheet(c.Request.Context(), spec, students)
	if err != nil {
		renderError(c, err)
		return
	}
	c.Header("X-Row-Errors", strconv.Itoa(len(rowErrs)))
	c.Data(http.StatusOK, "application/pdf", doc)
}

// photoFit takes a multipart "photo" and returns it fitted as JPEG.
func (h *Handler) photoFit(c *gin.Context) {
	fh, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	fp, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer fp.Close()
	data, err := io.ReadAll(fp)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	def := template.DefaultPhoto(template.Landscape)
	width := formInt(c, "width", def.Width)
	height := formInt(c, "height", def.Height)
	remove, _ := strconv.ParseBool(c.PostForm("remove_background"))
	bg := template.ParseColorOr(c.DefaultPostForm("bg_color", "#ffffff"), template.White)

	out, err := h.Renderer.GetPhotoFitted(c.Request.Context(), data, width, height, remove, bg)
	if err != nil {
		renderError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/jpeg", out)
}

// shape returns text prepared for drawing.
func (h *Handler) shape(c *gin.Context) {
	text := c.Query("text")
	lang := c.DefaultQuery("language", "english")
	dir := c.DefaultQuery("direction", "ltr")
	c.JSON(http.StatusOK, gin.H{"text": h.Renderer.ShapeText(text, lang, dir)})
}

// qr endpoint returns a PNG of a QR for "text" query param
func (h *Handler) qr(c *gin.Context) {
	text := c.Query("text")
	size := 400
	if v, err := strconv.Atoi(c.Query("size")); err == nil && v > 0 && v <= 2000 {
		size = v
	}
	style := template.DefaultQR()
	if s := c.Query("style"); s != "" {
		style.Style = s
	}
	if v := c.Query("fill"); v != "" {
		style.FillColor = template.ParseColorOr(v, template.Black)
	}
	if v := c.Query("back"); v != "" {
		style.BackColor = template.ParseColorOr(v, template.White)
	}

	b, err := h.QR.GeneratePNG(text, style, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}

func formInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.PostForm(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
