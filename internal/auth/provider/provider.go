package provider

import (
	"context"
	"errors"
	"time"

	"github.com/DEFRA/assurance-frontend-sub000/internal/session"
)

// ErrSessionExpired reports that the identity provider has ended the
// upstream session: the refresh token was rejected as invalid_grant.
// Callers use this to distinguish "log in again" from a transient outage.
var ErrSessionExpired = errors.New("identity provider session expired")

// TokenSet is the normalized result of a token-endpoint call. Profile is
// populated on code exchange (from verified ID-token claims) and left
// zero on refresh, where only the tokens rotate.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
	Profile      session.User
}

// IdentityProvider wraps the external OIDC provider. Implementations
// return token and identity facts only and must not touch the session
// store.
type IdentityProvider interface {
	// AuthCodeURL returns the authorization URL for the given state
	// nonce and PKCE challenge.
	AuthCodeURL(state, codeChallenge string) string

	// Exchange redeems the authorization code, verifies the ID token,
	// and returns the token set with the user profile.
	Exchange(ctx context.Context, code, codeVerifier string) (*TokenSet, error)

	// Refresh obtains a fresh access token. Returns ErrSessionExpired
	// when the provider classifies the refresh token as invalid_grant.
	Refresh(ctx context.Context, refreshToken string) (*TokenSet, error)

	// EndSessionURL returns the provider's RP-initiated logout URL, or
	// the empty string when the provider does not advertise one.
	EndSessionURL(postLogoutRedirect string) string
}
