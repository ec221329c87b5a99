package shared

import "errors"

var (
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionNotFound occurs when a bearer token resolves to no session.
	ErrSessionNotFound = errors.New("session not found")
)
