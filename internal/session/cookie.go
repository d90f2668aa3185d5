package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieName is the single cookie slot shared by all session phases. The
// value is an opaque store key; nothing sensitive lives in the cookie.
const CookieName = "assurance-session"

// CookieOptions defines how session cookies are issued.
type CookieOptions struct {
	Path     string
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
}

// normalize applies safe defaults without breaking callers
func (o CookieOptions) normalize() CookieOptions {
	if o.Path == "" {
		o.Path = "/"
	}
	if !o.HttpOnly {
		o.HttpOnly = true
	}
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteLaxMode
	}
	return o
}

// SetCookie issues the session cookie to the client.
func SetCookie(w http.ResponseWriter, id string, ttl time.Duration, opts CookieOptions) {
	opts = opts.normalize()

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     opts.Path,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: opts.HttpOnly,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}

// ClearCookie removes the session cookie from the client.
func ClearCookie(w http.ResponseWriter, opts CookieOptions) {
	opts = opts.normalize()

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     opts.Path,
		MaxAge:   -1,
		HttpOnly: opts.HttpOnly,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}

// FromRequest returns the session id carried by the request cookie, or
// the empty string when no cookie is present.
func FromRequest(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie == nil {
		return ""
	}
	return cookie.Value
}

const pendingCookieKey = "session.pendingCookie"

// PendingCookie is a freshly minted session id waiting to be turned into
// a Set-Cookie header by the emit middleware. Centralizing emission keeps
// a single write path regardless of which stage minted the id.
type PendingCookie struct {
	ID  string
	TTL time.Duration
}

// QueueCookie stashes a newly minted id on the request context. A later
// queue within the same request wins (login supersedes visitor creation).
func QueueCookie(c *gin.Context, id string, ttl time.Duration) {
	c.Set(pendingCookieKey, PendingCookie{ID: id, TTL: ttl})
}

// QueuedCookie returns the pending cookie for this request, if any.
func QueuedCookie(c *gin.Context) (PendingCookie, bool) {
	v, ok := c.Get(pendingCookieKey)
	if !ok {
		return PendingCookie{}, false
	}
	pc, ok := v.(PendingCookie)
	return pc, ok
}
