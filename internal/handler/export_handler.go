package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/paperdesk/internal/middleware"
	"github.com/stemsi/paperdesk/internal/model"
	"github.com/stemsi/paperdesk/internal/response"
	"github.com/stemsi/paperdesk/internal/service"
	"github.com/stemsi/paperdesk/internal/validator"
)

// Text preview width limits, in columns.
const (
	defaultTextWidth = 80
	minTextWidth     = 40
	maxTextWidth     = 200
)

// ExportHandler renders papers and answer keys into documents.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// bindPrint reads the optional print request body. An empty body asks for
// the paper itself with the school's default header.
func bindPrint(c *gin.Context) (model.PrintRequest, bool) {
	var req model.PrintRequest
	if c.Request.ContentLength == 0 {
		return req, true
	}
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return req, false
	}
	return req, true
}

// Print godoc
// POST /api/v1/papers/:id/print
// Returns a self-printing HTML page of the paper or its answer key.
func (h *ExportHandler) Print(c *gin.Context) {
	req, ok := bindPrint(c)
	if !ok {
		return
	}

	out, err := h.exports.Print(c.Request.Context(), c.Param("id"), req, middleware.GetSchool(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, out.ContentType, out.Body)
}

// PDF godoc
// POST /api/v1/papers/:id/pdf
// Downloads the paper or its answer key as an A4 PDF.
func (h *ExportHandler) PDF(c *gin.Context) {
	req, ok := bindPrint(c)
	if !ok {
		return
	}
	h.writePDF(c, req)
}

// AnswerKeyPDF godoc
// GET /api/v1/papers/:id/answer-key/pdf
// Downloads the answer key with the school's default header.
func (h *ExportHandler) AnswerKeyPDF(c *gin.Context) {
	h.writePDF(c, model.PrintRequest{IsAnswerKey: true})
}

// Text godoc
// POST /api/v1/papers/:id/text?width=80
// Returns a plain-text rendering wrapped at the requested width.
func (h *ExportHandler) Text(c *gin.Context) {
	width := defaultTextWidth
	if raw := c.Query("width"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < minTextWidth || n > maxTextWidth {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
				"width": "width must be between " + strconv.Itoa(minTextWidth) + " and " + strconv.Itoa(maxTextWidth),
			})
			return
		}
		width = n
	}

	req, ok := bindPrint(c)
	if !ok {
		return
	}

	out, err := h.exports.Text(c.Request.Context(), c.Param("id"), req, middleware.GetSchool(c), width)
	if err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, out.ContentType, out.Body)
}

func (h *ExportHandler) writePDF(c *gin.Context, req model.PrintRequest) {
	out, err := h.exports.PDF(c.Request.Context(), c.Param("id"), req, middleware.GetSchool(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+out.Filename+`"`)
	c.Data(http.StatusOK, out.ContentType, out.Body)
}
