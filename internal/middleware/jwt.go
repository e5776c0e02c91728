package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/paperdesk/internal/response"
	"github.com/stemsi/paperdesk/internal/service"
)

// RequireSession validates the bearer token, loads the session it names and
// stores it in the Gin context.
func RequireSession(sessions *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractToken(c)
		if tokenStr == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		sess, err := sessions.Hydrate(c.Request.Context(), tokenStr)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrSessionNotFound):
				response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
			case errors.Is(err, service.ErrInvalidToken):
				response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			default:
				_ = c.Error(err)
				response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
			}
			return
		}

		c.Set(ContextKeySession, sess)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	// Fallback for print windows opened with window.open, which cannot send headers.
	return c.Query("token")
}
