package oidc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/DEFRA/assurance-frontend-sub000/internal/auth/provider"
	"github.com/DEFRA/assurance-frontend-sub000/internal/session"
)

// Config carries the OIDC client settings discovered from the
// environment.
type Config struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// Provider implements provider.IdentityProvider against any OIDC issuer
// supporting discovery (the assurance stack runs Azure AD / Keycloak
// depending on environment).
type Provider struct {
	oauthConfig        *oauth2.Config
	verifier           *oidc.IDTokenVerifier
	endSessionEndpoint string
}

// New initializes the provider using OIDC discovery on the issuer URL.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.Issuer == "" || cfg.ClientID == "" || cfg.RedirectURL == "" {
		return nil, errors.New("oidc config missing required fields")
	}

	oidcProvider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to init oidc provider: %w", err)
	}

	verifier := oidcProvider.Verifier(&oidc.Config{
		ClientID: cfg.ClientID,
	})

	// end_session_endpoint is optional discovery metadata.
	var discovery struct {
		EndSessionEndpoint string `json:"end_session_endpoint"`
	}
	_ = oidcProvider.Claims(&discovery)

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     oidcProvider.Endpoint(),
		Scopes:       scopes,
	}

	return &Provider{
		oauthConfig:        oauthCfg,
		verifier:           verifier,
		endSessionEndpoint: discovery.EndSessionEndpoint,
	}, nil
}

// AuthCodeURL builds the authorization URL with PKCE parameters.
func (p *Provider) AuthCodeURL(state, codeChallenge string) string {
	return p.oauthConfig.AuthCodeURL(
		state,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

// Exchange redeems the authorization code and returns verified identity
// facts. No session decisions are made here.
func (p *Provider) Exchange(ctx context.Context, code, codeVerifier string) (*provider.TokenSet, error) {
	token, err := p.oauthConfig.Exchange(
		ctx,
		code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("provider did not return id_token")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("id_token verification failed: %w", err)
	}

	var claims rawClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("id_token claims parse failed: %w", err)
	}

	profile, err := claims.profile()
	if err != nil {
		return nil, err
	}

	return &provider.TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
		Profile:      profile,
	}, nil
}

// Refresh redeems the refresh token for a new token set. invalid_grant
// responses are mapped to provider.ErrSessionExpired; everything else is
// reported as-is so callers can treat it as transient.
func (p *Provider) Refresh(ctx context.Context, refreshToken string) (*provider.TokenSet, error) {
	src := p.oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	token, err := src.Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.ErrorCode == "invalid_grant" {
			return nil, fmt.Errorf("%w: %v", provider.ErrSessionExpired, err)
		}
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}

	return &provider.TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
	}, nil
}

// EndSessionURL returns the RP-initiated logout URL when the issuer
// advertises one.
func (p *Provider) EndSessionURL(postLogoutRedirect string) string {
	if p.endSessionEndpoint == "" {
		return ""
	}
	if postLogoutRedirect == "" {
		return p.endSessionEndpoint
	}

	u, err := url.Parse(p.endSessionEndpoint)
	if err != nil {
		return p.endSessionEndpoint
	}
	q := u.Query()
	q.Set("post_logout_redirect_uri", postLogoutRedirect)
	q.Set("client_id", p.oauthConfig.ClientID)
	u.RawQuery = q.Encode()
	return u.String()
}

// rawClaims is the wire shape of the ID-token claims this service reads.
// roles arrives as either a single string or a list depending on the
// identity provider's mapper configuration.
type rawClaims struct {
	Subject           string          `json:"sub"`
	Email             string          `json:"email"`
	PreferredUsername string          `json:"preferred_username"`
	Name              string          `json:"name"`
	Roles             json.RawMessage `json:"roles"`
}

func (c rawClaims) profile() (session.User, error) {
	if c.Subject == "" {
		return session.User{}, errors.New("id_token missing sub claim")
	}

	email := c.Email
	if email == "" {
		email = c.PreferredUsername
	}

	return session.User{
		ID:    c.Subject,
		Email: email,
		Name:  c.Name,
		Roles: NormalizeRoles(c.Roles),
	}, nil
}

// NormalizeRoles accepts a roles claim encoded as a JSON string or list
// and always returns a list, never nil.
func NormalizeRoles(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		if list == nil {
			return []string{}
		}
		return list
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return []string{single}
	}

	return []string{}
}
