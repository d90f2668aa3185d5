package oidc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/DEFRA/assurance-frontend-sub000/internal/auth/provider"
)

func TestNormalizeRoles(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"list", `["admin","editor"]`, []string{"admin", "editor"}},
		{"single string", `"admin"`, []string{"admin"}},
		{"empty string", `""`, []string{}},
		{"empty list", `[]`, []string{}},
		{"null", `null`, []string{}},
		{"absent", ``, []string{}},
		{"unexpected shape", `{"x":1}`, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeRoles(json.RawMessage(tt.raw))
			require.NotNil(t, got, "roles must never be nil")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClaimsProfile(t *testing.T) {
	t.Run("email preferred", func(t *testing.T) {
		c := rawClaims{Subject: "sub-1", Email: "a@example.com", PreferredUsername: "a.user", Name: "A User"}
		profile, err := c.profile()
		require.NoError(t, err)
		assert.Equal(t, "a@example.com", profile.Email)
		assert.Equal(t, []string{}, profile.Roles)
	})

	t.Run("falls back to preferred_username", func(t *testing.T) {
		c := rawClaims{Subject: "sub-1", PreferredUsername: "a.user"}
		profile, err := c.profile()
		require.NoError(t, err)
		assert.Equal(t, "a.user", profile.Email)
	})

	t.Run("missing sub rejected", func(t *testing.T) {
		_, err := rawClaims{Email: "a@example.com"}.profile()
		assert.Error(t, err)
	})
}

func refreshTestProvider(tokenURL string) *Provider {
	return &Provider{
		oauthConfig: &oauth2.Config{
			ClientID: "client-1",
			Endpoint: oauth2.Endpoint{TokenURL: tokenURL},
		},
	}
}

func TestRefreshSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "rt-old", r.Form.Get("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-new",
			"token_type":    "Bearer",
			"expires_in":    3600,
			"refresh_token": "rt-new",
		})
	}))
	defer ts.Close()

	p := refreshTestProvider(ts.URL)
	set, err := p.Refresh(context.Background(), "rt-old")
	require.NoError(t, err)
	assert.Equal(t, "access-new", set.AccessToken)
	assert.Equal(t, "rt-new", set.RefreshToken)
	assert.False(t, set.Expiry.IsZero())
}

func TestRefreshInvalidGrant(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":             "invalid_grant",
			"error_description": "Session not active",
		})
	}))
	defer ts.Close()

	p := refreshTestProvider(ts.URL)
	_, err := p.Refresh(context.Background(), "rt-dead")
	assert.ErrorIs(t, err, provider.ErrSessionExpired)
}

func TestRefreshTransientFailureNotExpired(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	p := refreshTestProvider(ts.URL)
	_, err := p.Refresh(context.Background(), "rt")
	require.Error(t, err)
	assert.NotErrorIs(t, err, provider.ErrSessionExpired)
}

func TestAuthCodeURLCarriesPKCE(t *testing.T) {
	p := &Provider{
		oauthConfig: &oauth2.Config{
			ClientID:    "client-1",
			RedirectURL: "https://assurance.example/auth",
			Endpoint:    oauth2.Endpoint{AuthURL: "https://idp.example/authorize"},
			Scopes:      []string{"openid", "profile", "email"},
		},
	}

	u := p.AuthCodeURL("state-1", "challenge-1")
	assert.Contains(t, u, "state=state-1")
	assert.Contains(t, u, "code_challenge=challenge-1")
	assert.Contains(t, u, "code_challenge_method=S256")
	assert.Contains(t, u, "response_type=code")
}

func TestEndSessionURL(t *testing.T) {
	t.Run("no endpoint", func(t *testing.T) {
		p := &Provider{oauthConfig: &oauth2.Config{}}
		assert.Empty(t, p.EndSessionURL("https://assurance.example"))
	})

	t.Run("with endpoint", func(t *testing.T) {
		p := &Provider{
			oauthConfig:        &oauth2.Config{ClientID: "client-1"},
			endSessionEndpoint: "https://idp.example/logout",
		}
		u := p.EndSessionURL("https://assurance.example")
		assert.Contains(t, u, "https://idp.example/logout")
		assert.Contains(t, u, "post_logout_redirect_uri=https%3A%2F%2Fassurance.example")
		assert.Contains(t, u, "client_id=client-1")
	})
}
