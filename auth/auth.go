// Package auth implements credential storage and opaque session tokens for
// the household's users.
package auth

import "errors"

// Authentication faults. Storage failures are wrapped separately so handlers
// can distinguish the caller's fault from the system's fault.
var (
	// ErrUserPasswordMismatch is returned when the username is unknown or
	// the password is wrong; callers cannot tell which.
	ErrUserPasswordMismatch = errors.New("user/password mismatch")

	// ErrUnknownToken is returned when a presented token is malformed or
	// has no session.
	ErrUnknownToken = errors.New("unknown token")

	// ErrMissingToken is returned when a request carries no token at all.
	ErrMissingToken = errors.New("missing token")
)
