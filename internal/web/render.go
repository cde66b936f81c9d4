package web

import (
	"embed"
	"html/template"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// CtxUsernameKey holds the logged-in username once a session is loaded.
const CtxUsernameKey = "session_username"

// Templates parses every page template. Each file is registered under its
// base name (e.g. "book_page.html").
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}

// Render renders the named page, exposing the session user as current_user.
func Render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["current_user"]; !ok {
		data["current_user"] = c.GetString(CtxUsernameKey)
	}
	c.HTML(status, name, data)
}

// Error renders the generic error page with a user-visible message.
func Error(c *gin.Context, status int, message string) {
	Render(c, status, "error.html", gin.H{"message": message})
}

// NoCache disables client and proxy caching of every response.
func NoCache() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		c.Header("Expires", "0")
		c.Header("Pragma", "no-cache")
		c.Next()
	}
}
