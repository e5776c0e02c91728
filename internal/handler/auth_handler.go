package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/paperdesk/internal/middleware"
	"github.com/stemsi/paperdesk/internal/model"
	"github.com/stemsi/paperdesk/internal/remote"
	"github.com/stemsi/paperdesk/internal/response"
	"github.com/stemsi/paperdesk/internal/service"
	"github.com/stemsi/paperdesk/internal/validator"
)

// AuthHandler handles the school login lifecycle.
type AuthHandler struct {
	sessions *service.SessionService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(sessions *service.SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// Login godoc
// POST /api/v1/auth/login
// Checks the school's credentials with the auth service and returns a session token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.sessions.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		var apiErr *remote.APIError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden) {
			response.FailWithMessage(c, http.StatusUnauthorized, response.ErrInvalidCredentials, apiErr.Message)
			return
		}
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, res)
}

// Logout godoc
// POST /api/v1/auth/logout
// Ends the current session.
func (h *AuthHandler) Logout(c *gin.Context) {
	sess := middleware.GetSession(c)
	if sess == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	h.sessions.Logout(c.Request.Context(), sess)
	response.Success(c, http.StatusOK, gin.H{})
}

// Me godoc
// GET /api/v1/auth/me
// Returns the school bound to the current session.
func (h *AuthHandler) Me(c *gin.Context) {
	school := middleware.GetSchool(c)
	if school == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"school":   school,
		"is_admin": school.IsAdmin(),
	})
}

// Verify godoc
// POST /api/v1/auth/verify
// Re-checks the account with the auth service. A failed check ends the session.
func (h *AuthHandler) Verify(c *gin.Context) {
	sess := middleware.GetSession(c)
	if sess == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	school, err := h.sessions.Verify(c.Request.Context(), sess)
	if err != nil {
		var apiErr *remote.APIError
		if errors.Is(err, service.ErrSessionNotFound) || errors.As(err, &apiErr) {
			response.Fail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
			return
		}
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"school":   school,
		"is_admin": school.IsAdmin(),
	})
}
