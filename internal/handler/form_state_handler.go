package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/paperdesk/internal/middleware"
	"github.com/stemsi/paperdesk/internal/model"
	"github.com/stemsi/paperdesk/internal/response"
	"github.com/stemsi/paperdesk/internal/service"
)

// FormStateHandler keeps the last generation form between visits.
type FormStateHandler struct {
	forms *service.FormStateService
}

// NewFormStateHandler creates a new FormStateHandler.
func NewFormStateHandler(forms *service.FormStateService) *FormStateHandler {
	return &FormStateHandler{forms: forms}
}

// Get godoc
// GET /api/v1/form-state
// Returns the saved form, with the board taken from the logged-in school. Data is null when nothing is saved.
func (h *FormStateHandler) Get(c *gin.Context) {
	response.Success(c, http.StatusOK, h.forms.Load(c.Request.Context(), middleware.GetSchool(c)))
}

// Put godoc
// PUT /api/v1/form-state
func (h *FormStateHandler) Put(c *gin.Context) {
	var state model.FormState
	if err := c.ShouldBindJSON(&state); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	h.forms.Save(c.Request.Context(), &state)
	response.Success(c, http.StatusOK, state)
}

// Delete godoc
// DELETE /api/v1/form-state
func (h *FormStateHandler) Delete(c *gin.Context) {
	h.forms.Clear(c.Request.Context())
	response.Success(c, http.StatusOK, gin.H{})
}
