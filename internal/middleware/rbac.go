package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/paperdesk/internal/response"
)

// RequireAdmin allows the request only for administrator schools.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		school := GetSchool(c)
		if school == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}
		if !school.IsAdmin() {
			response.AbortFail(c, http.StatusForbidden, response.ErrAdminAccessOnly)
			return
		}
		c.Next()
	}
}
