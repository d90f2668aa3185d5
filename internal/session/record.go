package session

import (
	"time"
)

// Kind identifies which lifecycle phase a stored record is in.
type Kind string

const (
	// KindAuthPending marks a login flow that has been started and is
	// waiting for the identity provider callback.
	KindAuthPending Kind = "auth_pending"
	// KindAuthenticated marks a logged-in user session.
	KindAuthenticated Kind = "authenticated"
	// KindVisitor marks an anonymous tracked visit.
	KindVisitor Kind = "visitor"
)

// Record is the session entry stored under a single cache key (the cookie
// value). Exactly one variant pointer is set, selected by Kind. Phase
// transitions are destructive overwrites of the whole record.
type Record struct {
	Kind      Kind      `json:"kind"`
	ExpiresAt time.Time `json:"expires_at"`

	AuthPending   *AuthPending   `json:"auth_pending,omitempty"`
	Authenticated *Authenticated `json:"authenticated,omitempty"`
	Visitor       *Visitor       `json:"visitor,omitempty"`
}

// AuthPending holds the state of an in-flight OAuth authorization-code
// flow. The PKCE verifier never leaves the store.
type AuthPending struct {
	State        string `json:"state"`
	CodeVerifier string `json:"code_verifier"`
	RedirectTo   string `json:"redirect_to"`
}

// User is the identity derived from verified ID-token claims.
type User struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

// HasRole reports whether the user carries the given role.
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Authenticated holds a logged-in user together with the upstream tokens.
// ExpiresAt on the record bounds the local session; TokenExpiresAt bounds
// the access token and drives proactive refresh.
type Authenticated struct {
	User           User      `json:"user"`
	Token          string    `json:"token"`
	RefreshToken   string    `json:"refresh_token,omitempty"`
	TokenExpiresAt time.Time `json:"token_expires_at"`
}

// Visitor is an anonymous tracked visit sharing the cookie and key space
// with authenticated sessions.
type Visitor struct {
	ID           string    `json:"id"`
	FirstVisit   time.Time `json:"first_visit"`
	LastActivity time.Time `json:"last_activity"`
	PageViews    int       `json:"page_views"`
	UserAgent    string    `json:"user_agent,omitempty"`
	IPAddress    string    `json:"ip_address,omitempty"`
}

// NewAuthPending builds the record written when login is initiated.
func NewAuthPending(state, codeVerifier, redirectTo string, ttl time.Duration) *Record {
	return &Record{
		Kind:      KindAuthPending,
		ExpiresAt: time.Now().Add(ttl),
		AuthPending: &AuthPending{
			State:        state,
			CodeVerifier: codeVerifier,
			RedirectTo:   redirectTo,
		},
	}
}

// NewAuthenticated builds the record that replaces an AuthPending entry
// after a successful token exchange.
func NewAuthenticated(user User, token, refreshToken string, tokenExpires time.Time, ttl time.Duration) *Record {
	return &Record{
		Kind:      KindAuthenticated,
		ExpiresAt: time.Now().Add(ttl),
		Authenticated: &Authenticated{
			User:           user,
			Token:          token,
			RefreshToken:   refreshToken,
			TokenExpiresAt: tokenExpires,
		},
	}
}

// NewVisitor builds an anonymous tracking record. The first page view is
// counted at creation time.
func NewVisitor(id, userAgent, ipAddress string, ttl time.Duration) *Record {
	now := time.Now()
	return &Record{
		Kind:      KindVisitor,
		ExpiresAt: now.Add(ttl),
		Visitor: &Visitor{
			ID:           id,
			FirstVisit:   now,
			LastActivity: now,
			PageViews:    1,
			UserAgent:    userAgent,
			IPAddress:    ipAddress,
		},
	}
}

// Expired reports whether the record's local expiry has passed.
func (r *Record) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// Valid reports whether the variant pointer matches the declared Kind.
// A record failing this check indicates a corrupt store entry.
func (r *Record) Valid() bool {
	switch r.Kind {
	case KindAuthPending:
		return r.AuthPending != nil
	case KindAuthenticated:
		return r.Authenticated != nil
	case KindVisitor:
		return r.Visitor != nil
	}
	return false
}
