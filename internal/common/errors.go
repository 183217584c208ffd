// Package common defines shared constants and sentinel errors used across
// the layers of the exhibit service. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal  = errors.New("internal error")
	ErrorForbidden = errors.New("forbidden")

	// ErrVersionConflict signals that an optimistic-concurrency write lost
	// the race: the stored version no longer matches the one the caller read.
	ErrVersionConflict = errors.New("version conflict")

	// ErrorConflict covers non-version conflicts: a duplicate active invite,
	// or a response to an invite that was already decided.
	ErrorConflict = errors.New("conflict")

	// Upload pipeline errors.
	ErrorValidation = errors.New("validation error")
	ErrorUpload     = errors.New("upload error")
	ErrorStorage    = errors.New("storage error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
