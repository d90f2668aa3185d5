package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OIDC_ISSUER", "https://idp.example/realms/assurance")
	t.Setenv("OIDC_CLIENT_ID", "assurance-frontend")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, []string{"openid", "profile", "email"}, cfg.OIDCScopes)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 4*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 24*time.Hour, cfg.VisitorTTL)
	assert.Equal(t, 10*time.Minute, cfg.LoginTTL)
	assert.True(t, cfg.SecureCookies)
	assert.False(t, cfg.IsProduction())
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("OIDC_ISSUER", "")
	t.Setenv("OIDC_CLIENT_ID", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("OIDC_ISSUER", "https://idp.example")
	t.Setenv("OIDC_CLIENT_ID", "client-1")
	t.Setenv("APP_ENV", "production")
	t.Setenv("OIDC_SCOPES", "openid email")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("SECURE_COOKIES", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"openid", "email"}, cfg.OIDCScopes)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.SecureCookies)
}

func TestRedirectURL(t *testing.T) {
	cfg := Config{BaseURL: "https://assurance.example"}
	assert.Equal(t, "https://assurance.example/auth", cfg.RedirectURL())
}
