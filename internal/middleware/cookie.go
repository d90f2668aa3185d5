package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/DEFRA/assurance-frontend-sub000/internal/session"
)

// CookieEmitter turns a queued session id into a Set-Cookie header just
// before the first byte of the response is written. Emission is deferred
// to a single stage so every id-minting path (visitor creation, login)
// shares one cookie write.
func CookieEmitter(opts session.CookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer = &cookieWriter{
			ResponseWriter: c.Writer,
			c:              c,
			opts:           opts,
		}
		c.Next()
	}
}

type cookieWriter struct {
	gin.ResponseWriter
	c       *gin.Context
	opts    session.CookieOptions
	emitted bool
}

func (w *cookieWriter) emit() {
	if w.emitted || w.Written() {
		return
	}
	w.emitted = true

	if pc, ok := session.QueuedCookie(w.c); ok {
		session.SetCookie(w.ResponseWriter, pc.ID, pc.TTL, w.opts)
	}
}

func (w *cookieWriter) WriteHeader(code int) {
	w.emit()
	w.ResponseWriter.WriteHeader(code)
}

func (w *cookieWriter) WriteHeaderNow() {
	w.emit()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *cookieWriter) Write(b []byte) (int, error) {
	w.emit()
	return w.ResponseWriter.Write(b)
}

func (w *cookieWriter) WriteString(s string) (int, error) {
	w.emit()
	return w.ResponseWriter.WriteString(s)
}
