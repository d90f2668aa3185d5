package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"plain token", "abc123", "abc123"},
		{"bearer prefix", "Bearer abc123", "abc123"},
		{"lowercase prefix", "bearer abc123", "abc123"},
		{"mixed case prefix", "BeArEr abc123", "abc123"},
		{"prefix only once", "Bearer Bearer abc", "Bearer abc"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Credentials{Token: tt.token}
			assert.Equal(t, tt.want, c.BearerToken())
		})
	}
}
