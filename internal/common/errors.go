// Package common defines shared constants and sentinel errors used across
// the gateway layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Client-caused errors: forged/stale repository keys, traversal
	// attempts, malformed repository identifiers.
	ErrorValidation = errors.New("validation error")

	// Auth errors. The HTTP layer collapses all of these into a bare 401;
	// the distinction only matters for operator diagnostics.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrTokenNotBase64 = errors.New("token was not base64 encoded")
	ErrTokenNotUTF8   = errors.New("encoded token was not utf-8")
	ErrTokenMalformed = errors.New("token missing username:password separator")

	// Server-side failures. Neither is ever retried by the gateway.
	ErrorStorage  = errors.New("storage error")
	ErrorUpstream = errors.New("upstream error")
)
