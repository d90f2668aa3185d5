package auth

import (
	"strings"
	"time"

	"github.com/DEFRA/assurance-frontend-sub000/internal/session"
)

// Credentials is the resolved identity handed to route handlers for an
// authenticated request. It contains facts only, no decisions.
type Credentials struct {
	SessionID      string
	User           session.User
	Token          string
	RefreshToken   string
	TokenExpiresAt time.Time
	ExpiresAt      time.Time
}

// BearerToken returns the stored access token with any "Bearer " prefix
// stripped (case-insensitive), ready for use in outbound API calls.
func (c *Credentials) BearerToken() string {
	token := c.Token
	if len(token) >= 7 && strings.EqualFold(token[:7], "bearer ") {
		token = token[7:]
	}
	return strings.TrimSpace(token)
}

// Result is the outcome of per-request session validation.
//
// SessionExpired distinguishes "the identity provider ended the upstream
// session" from a generic denial, so callers can prompt re-login instead
// of rendering an error.
type Result struct {
	IsValid        bool
	SessionExpired bool
	Credentials    *Credentials
}

// RequestInfo carries the request facts the lifecycle needs. Handlers
// never hand the engine a raw *http.Request.
type RequestInfo struct {
	Path      string
	Referer   string
	UserAgent string
	IPAddress string
}

func credentialsFrom(id string, rec *session.Record) *Credentials {
	a := rec.Authenticated
	return &Credentials{
		SessionID:      id,
		User:           a.User,
		Token:          a.Token,
		RefreshToken:   a.RefreshToken,
		TokenExpiresAt: a.TokenExpiresAt,
		ExpiresAt:      rec.ExpiresAt,
	}
}
