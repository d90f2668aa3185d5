package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/DEFRA/assurance-frontend-sub000/internal/auth"
	"github.com/DEFRA/assurance-frontend-sub000/internal/session"
)

// Visitor is the pre-authentication stage: any request arriving without
// a session cookie (excluded paths aside) gets an anonymous visitor
// record and a queued cookie. The request proceeds even when creation
// fails.
func Visitor(lifecycle *auth.Lifecycle) gin.HandlerFunc {
	return func(c *gin.Context) {
		hasCookie := session.FromRequest(c.Request) != ""

		id, ttl := lifecycle.EnsureVisitor(c.Request.Context(), hasCookie, requestInfo(c))
		if id != "" {
			session.QueueCookie(c, id, ttl)
		}

		c.Next()
	}
}

func requestInfo(c *gin.Context) auth.RequestInfo {
	return auth.RequestInfo{
		Path:      c.Request.URL.Path,
		Referer:   c.Request.Referer(),
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	}
}
