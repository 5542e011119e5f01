package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/mtlprog/kanban/internal/domain"
)

// Validator is an admission check consulted on every create, update and import.
// Register and Deregister keep any index the check maintains in sync with the store.
type Validator interface {
	Validate(e domain.Entity) error
	Register(e domain.Entity)
	Deregister(id int)
}

// DefaultMaxDuration is the longest window FieldValidator admits by default.
const DefaultMaxDuration = 31 * 24 * time.Hour

// FieldValidator rejects records with malformed fields.
type FieldValidator struct {
	maxDuration time.Duration
}

// NewFieldValidator creates a new FieldValidator. A maxDuration of zero or
// less means DefaultMaxDuration.
func NewFieldValidator(maxDuration time.Duration) *FieldValidator {
	if maxDuration <= 0 {
		maxDuration = DefaultMaxDuration
	}
	return &FieldValidator{maxDuration: maxDuration}
}

// Validate checks name, status and duration. The duration cap bounds the
// number of buckets the scheduler claims for one record.
func (v *FieldValidator) Validate(e domain.Entity) error {
	meta := e.Meta()

	if meta.Name == "" {
		return fmt.Errorf("%w: %s %d has an empty name", domain.ErrValidationRejected, e.Kind(), meta.ID)
	}

	// Epic status is derived and always valid
	if e.Kind() != domain.KindEpic && !e.State().IsValid() {
		return fmt.Errorf("%w: %s %d has invalid status %q", domain.ErrValidationRejected, e.Kind(), meta.ID, e.State())
	}

	if d := e.Window().Duration; d != nil && *d < 0 {
		return fmt.Errorf("%w: %s %d has negative duration %s", domain.ErrValidationRejected, e.Kind(), meta.ID, *d)
	} else if d != nil && *d > v.maxDuration {
		return fmt.Errorf("%w: %s %d duration %s exceeds %s", domain.ErrValidationRejected, e.Kind(), meta.ID, *d, v.maxDuration)
	}

	return nil
}

// Register is a no-op; FieldValidator keeps no index.
func (v *FieldValidator) Register(domain.Entity) {}

// Deregister is a no-op; FieldValidator keeps no index.
func (v *FieldValidator) Deregister(int) {}

// isDomainError reports whether err already carries one of the domain error kinds.
func isDomainError(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrInvalidReference) ||
		errors.Is(err, domain.ErrSchedulingConflict) ||
		errors.Is(err, domain.ErrValidationRejected)
}
