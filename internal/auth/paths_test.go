package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsExcludedPath(t *testing.T) {
	excluded := []string{
		"/favicon.ico",
		"/robots.txt",
		"/health",
		"/api/health",
		"/auth/logout",
		"/public/app.css",
		"/assets/images/logo.png",
	}
	for _, p := range excluded {
		assert.True(t, IsExcludedPath(p), p)
	}

	included := []string{
		"/",
		"/projects",
		"/auth",
		"/auth/login",
		"/healthz",
		"/publications",
	}
	for _, p := range included {
		assert.False(t, IsExcludedPath(p), p)
	}
}
