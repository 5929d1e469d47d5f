package service

import "errors"

// Handler-visible error taxonomy. Handlers map these to status codes with
// errors.Is; anything unmatched becomes a generic 500.
var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken deliberately covers "never existed", "expired" and
	// "already used" alike so callers cannot probe token state.
	ErrInvalidToken = errors.New("invalid or expired reset token")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrRateLimited  = errors.New("too many requests")
)
