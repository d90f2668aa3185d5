package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/DEFRA/assurance-frontend-sub000/internal/auth"
	"github.com/DEFRA/assurance-frontend-sub000/internal/session"
)

const (
	credentialsKey    = "auth.credentials"
	sessionExpiredKey = "auth.sessionExpired"
)

// Auth is the validation stage: it resolves the session cookie through
// the lifecycle engine and attaches the outcome to the request context.
// It never rejects a request itself; route groups opt into enforcement
// with RequireAuth.
func Auth(lifecycle *auth.Lifecycle) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := lifecycle.Validate(
			c.Request.Context(),
			session.FromRequest(c.Request),
			requestInfo(c),
		)

		if res.Credentials != nil {
			c.Set(credentialsKey, res.Credentials)
		}
		if res.SessionExpired {
			c.Set(sessionExpiredKey, true)
		}

		c.Next()
	}
}

// RequireAuth guards a route group: unauthenticated requests are sent to
// login with the current path as the post-login target.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Credentials(c) != nil {
			c.Next()
			return
		}

		target := "/auth/login?redirectTo=" + url.QueryEscape(c.Request.URL.Path)
		c.Redirect(http.StatusFound, target)
		c.Abort()
	}
}

// Credentials returns the resolved credentials for this request, or nil
// when it is anonymous.
func Credentials(c *gin.Context) *auth.Credentials {
	v, ok := c.Get(credentialsKey)
	if !ok {
		return nil
	}
	creds, ok := v.(*auth.Credentials)
	if !ok {
		return nil
	}
	return creds
}

// BearerToken returns the access token for outbound API calls with any
// "Bearer " prefix stripped, or the empty string when anonymous.
func BearerToken(c *gin.Context) string {
	creds := Credentials(c)
	if creds == nil {
		return ""
	}
	return creds.BearerToken()
}

// SessionExpired reports whether validation found the upstream identity
// provider session ended; callers may prompt a fresh login rather than
// treating the request as a plain denial.
func SessionExpired(c *gin.Context) bool {
	v, ok := c.Get(sessionExpiredKey)
	if !ok {
		return false
	}
	expired, ok := v.(bool)
	return ok && expired
}
