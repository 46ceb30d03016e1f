package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrStore wraps connectivity and query failures of the submission store.
	ErrStore = errors.New("store error")

	// ErrConstraintViolation reports an expected uniqueness collision
	// (duplicate digest or duplicate identity). Callers treat it as a
	// duplicate, not as a failure.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrInvalidDigest is returned for values that are not a hex SHA-256.
	ErrInvalidDigest = errors.New("invalid digest")
)
