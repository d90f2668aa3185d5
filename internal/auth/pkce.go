package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// newPKCE generates a PKCE verifier/challenge pair (RFC 7636, S256).
// The verifier stays in the AuthPending store record until the callback;
// only the challenge is sent to the identity provider.
func newPKCE() (verifier, challenge string, err error) {
	b := make([]byte, 32)
	if _, err = rand.Read(b); err != nil {
		return "", "", err
	}

	verifier = base64.RawURLEncoding.EncodeToString(b)

	hash := sha256.Sum256([]byte(verifier))
	challenge = base64.RawURLEncoding.EncodeToString(hash[:])

	return verifier, challenge, nil
}
