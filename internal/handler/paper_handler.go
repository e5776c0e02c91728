package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/paperdesk/internal/model"
	"github.com/stemsi/paperdesk/internal/response"
	"github.com/stemsi/paperdesk/internal/service"
	"github.com/stemsi/paperdesk/internal/validator"
)

// maxImportBytes caps the body of an import request.
const maxImportBytes = 8 << 20

// exportFilename is the attachment name of a papers backup.
const exportFilename = "question-papers.json"

// PaperHandler serves generation, the saved paper list and working copy edits.
type PaperHandler struct {
	papers *service.PaperService
}

// NewPaperHandler creates a new PaperHandler.
func NewPaperHandler(papers *service.PaperService) *PaperHandler {
	return &PaperHandler{papers: papers}
}

// ─── Collection ────────────────────────────────────────────────────────

// Generate godoc
// POST /api/v1/papers/generate
// Generates a question paper and caches it.
func (h *PaperHandler) Generate(c *gin.Context) {
	var req model.GenerationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	paper, err := h.papers.GeneratePaper(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, paper)
}

// List godoc
// GET /api/v1/papers
// Lists every cached paper, oldest first.
func (h *PaperHandler) List(c *gin.Context) {
	response.Success(c, http.StatusOK, h.papers.ListPapers(c.Request.Context()))
}

// StorageInfo godoc
// GET /api/v1/papers/storage-info
func (h *PaperHandler) StorageInfo(c *gin.Context) {
	response.Success(c, http.StatusOK, h.papers.StorageInfo(c.Request.Context()))
}

// Export godoc
// GET /api/v1/papers/export
// Downloads the cached papers as a JSON array.
func (h *PaperHandler) Export(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", h.papers.ExportPapers(c.Request.Context()))
}

// Import godoc
// POST /api/v1/papers/import
// Merges a JSON array of papers into the cache. Existing ids are kept.
func (h *PaperHandler) Import(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	if err := h.papers.ImportPapers(c.Request.Context(), data); err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, h.papers.StorageInfo(c.Request.Context()))
}

// ClearAll godoc
// DELETE /api/v1/papers
// Removes every cached paper. Answer keys are left alone.
func (h *PaperHandler) ClearAll(c *gin.Context) {
	h.papers.ClearAllPapers(c.Request.Context())
	response.Success(c, http.StatusOK, gin.H{})
}

// ─── Single paper ──────────────────────────────────────────────────────

// Get godoc
// GET /api/v1/papers/:id
// Returns the working copy of a paper, loading it from the cache or the service.
func (h *PaperHandler) Get(c *gin.Context) {
	paper, err := h.papers.OpenPaper(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"paper":     paper,
		"selection": h.papers.Selection(paper.ID),
	})
}

// Delete godoc
// DELETE /api/v1/papers/:id
// Removes a paper together with its answer key.
func (h *PaperHandler) Delete(c *gin.Context) {
	if !h.papers.DeletePaper(c.Request.Context(), c.Param("id")) {
		response.Fail(c, http.StatusNotFound, response.ErrPaperNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// Save godoc
// POST /api/v1/papers/:id/save
// Persists the working copy to the cache.
func (h *PaperHandler) Save(c *gin.Context) {
	saved, err := h.papers.SaveWorkingCopy(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, saved)
}

// AnswerKey godoc
// GET /api/v1/papers/:id/answer-key
// Returns the answer key, generating and caching it on a miss.
func (h *PaperHandler) AnswerKey(c *gin.Context) {
	key, err := h.papers.ResolveAnswerKey(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, key)
}

// ─── Questions ─────────────────────────────────────────────────────────

// ReplaceQuestion godoc
// POST /api/v1/papers/:id/sections/:section/questions/:question/replace
// Asks the service for a new question at that position.
func (h *PaperHandler) ReplaceQuestion(c *gin.Context) {
	ref, ok := questionRef(c)
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidIndex)
		return
	}

	q, err := h.papers.ReplaceQuestion(c.Request.Context(), c.Param("id"), ref)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, q)
}

// EditQuestion godoc
// PUT /api/v1/papers/:id/sections/:section/questions/:question
// Overwrites a question's text, options and answer. Marks are kept.
func (h *PaperHandler) EditQuestion(c *gin.Context) {
	ref, ok := questionRef(c)
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidIndex)
		return
	}

	var req model.EditQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.papers.EditQuestion(c.Request.Context(), c.Param("id"), ref, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, q)
}

// ─── Selection ─────────────────────────────────────────────────────────

// Selection godoc
// GET /api/v1/papers/:id/selection
func (h *PaperHandler) Selection(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"selection": h.papers.Selection(c.Param("id"))})
}

// ToggleSelection godoc
// POST /api/v1/papers/:id/selection
// Adds the question to the selection, or removes it if already selected.
func (h *PaperHandler) ToggleSelection(c *gin.Context) {
	var ref model.QuestionRef
	if fields := validator.Bind(c, &ref); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	id := c.Param("id")
	selected, err := h.papers.ToggleSelection(c.Request.Context(), id, ref)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"selected":  selected,
		"selection": h.papers.Selection(id),
	})
}

// ClearSelection godoc
// DELETE /api/v1/papers/:id/selection
func (h *PaperHandler) ClearSelection(c *gin.Context) {
	h.papers.ClearSelection(c.Param("id"))
	response.Success(c, http.StatusOK, gin.H{"selection": []model.QuestionRef{}})
}

// ReplaceSelected godoc
// POST /api/v1/papers/:id/replace-selected
// Replaces every selected question in order and reports per-question failures.
func (h *PaperHandler) ReplaceSelected(c *gin.Context) {
	res, err := h.papers.ReplaceSelected(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}
