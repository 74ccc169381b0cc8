// errors.go defines sentinel error values for authentication and
// authorization failures shared across handlers and middleware.
package auth

import "errors"

var (
	// ErrUnauthenticated indicates that no usable identity claims were
	// presented with the request.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrUnauthorized indicates the authenticated principal lacks the
	// privilege for the attempted action (export, saved-search mutation).
	ErrUnauthorized = errors.New("operation not permitted")
)
