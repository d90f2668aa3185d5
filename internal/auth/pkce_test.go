package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPKCE(t *testing.T) {
	verifier, challenge, err := newPKCE()
	require.NoError(t, err)
	require.NotEmpty(t, verifier)

	hash := sha256.Sum256([]byte(verifier))
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(hash[:]), challenge)

	verifier2, _, err := newPKCE()
	require.NoError(t, err)
	assert.NotEqual(t, verifier, verifier2)
}
