package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookreviews/internal/web"
	"bookreviews/pkg/logger"
)

const CtxSessionKey = "auth_session"

// LoadSession attaches the current session, if any, to the context. It never
// rejects a request.
func LoadSession(sessions *Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := sessions.Current(c)
		switch {
		case err == nil:
			c.Set(CtxSessionKey, sess)
			c.Set(web.CtxUsernameKey, sess.Username)
		case !errors.Is(err, ErrNoSession):
			logger.Log.WithError(err).Warn("load session failed")
		}
		c.Next()
	}
}

// RequireUser redirects anonymous requests to the login page and rejects
// requests whose :username path segment names someone else.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := GetSession(c)
		if sess == nil {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		if u := c.Param("username"); u != "" && u != sess.Username {
			web.Error(c, http.StatusForbidden, "You can only browse as yourself")
			c.Abort()
			return
		}
		c.Next()
	}
}

func GetSession(c *gin.Context) *Session {
	v, ok := c.Get(CtxSessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*Session)
	return sess
}
