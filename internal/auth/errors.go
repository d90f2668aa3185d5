package auth

import "errors"

// Protocol errors terminal for an in-flight login attempt. The handler
// maps these onto the authentication error view.
var (
	// ErrStateMissing means the callback carried no state parameter.
	ErrStateMissing = errors.New("auth: missing state parameter")

	// ErrStateMismatch means the callback state did not match the nonce
	// stored when login was initiated.
	ErrStateMismatch = errors.New("auth: state mismatch")

	// ErrCodeMissing means the callback carried no authorization code.
	ErrCodeMissing = errors.New("auth: missing authorization code")

	// ErrLoginNotFound means no pending login record exists for the
	// session cookie presented on the callback.
	ErrLoginNotFound = errors.New("auth: no pending login for session")
)
