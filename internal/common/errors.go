// Package common defines shared constants and sentinel errors used across
// the studyvault server layers. Callers should use errors.Is to match these
// values; components wrap them with context via fmt.Errorf("...: %w").
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrConflict   = errors.New("conflict")

	// Input errors, user-correctable.
	ErrValidation = errors.New("validation error")

	// Backing-store failures. Both are potentially retryable by the caller.
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrPersistence        = errors.New("persistence error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
