package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/stemsi/paperdesk/internal/model"
)

// ContextKeySession is the Gin context key for the logged-in session.
const ContextKeySession = "session"

// GetSession retrieves the session stored by RequireSession.
func GetSession(c *gin.Context) *model.Session {
	val, exists := c.Get(ContextKeySession)
	if !exists {
		return nil
	}
	sess, ok := val.(*model.Session)
	if !ok {
		return nil
	}
	return sess
}

// GetSchool returns the school of the logged-in session, or nil.
func GetSchool(c *gin.Context) *model.SchoolData {
	if sess := GetSession(c); sess != nil {
		return sess.School
	}
	return nil
}
