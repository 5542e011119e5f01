package domain

import "errors"

// Domain-specific errors for business logic validation.
var (
	// ErrNotFound is returned when an id is absent or belongs to another kind.
	ErrNotFound = errors.New("task not found")

	// ErrInvalidReference is returned when a subtask points at an epic that
	// has no id or is not stored.
	ErrInvalidReference = errors.New("invalid epic reference")

	// ErrSchedulingConflict is returned when a time window overlaps another task's window.
	ErrSchedulingConflict = errors.New("scheduling conflict")

	// ErrValidationRejected is returned when an admission check declines a create or update.
	ErrValidationRejected = errors.New("validation rejected")
)
