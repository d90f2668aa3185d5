package handler

import (
	_ "embed"
	"html/template"

	"github.com/gin-gonic/gin"
)

//go:embed error.html
var errorPage string

var errorTmpl = template.Must(template.New("auth_error").Parse(errorPage))

// renderError shows the authentication error view with a human-readable
// message. The underlying cause is logged, never shown.
func (h *Handler) renderError(c *gin.Context, status int, message string) {
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")

	if err := errorTmpl.Execute(c.Writer, map[string]string{"Message": message}); err != nil {
		h.log.ErrorContext(c.Request.Context(), "failed to render auth error view", "error", err)
	}
}
