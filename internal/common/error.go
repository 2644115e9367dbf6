// Package common defines shared constants and sentinel errors used across
// the user directory, its storage backends and the CLI. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Directory errors.
	ErrDuplicateIdentity = errors.New("user with this email already exists")
	ErrIdentityNotFound  = errors.New("user not found")
	ErrInvalidCredential = errors.New("invalid credential")

	// Session errors.
	ErrNoSession    = errors.New("no active session")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Storage wiring errors.
	ErrUnknownBackend = errors.New("unknown storage backend")
)
