// Package storage defines how the task store is persisted.
//
// Backends exchange a domain.Snapshot. Records are flattened into Record
// values so that every backend shares one field layout.
package storage

import (
	"context"
	"errors"

	"github.com/mtlprog/kanban/internal/domain"
)

var (
	// ErrCorrupt is returned when persisted data cannot be decoded.
	ErrCorrupt = errors.New("corrupt persisted data")

	// ErrUnavailable wraps failures to reach or write the backend.
	ErrUnavailable = errors.New("storage unavailable")
)

// Backend loads and saves a full snapshot of the store.
type Backend interface {
	// Load returns the persisted snapshot, or an empty one if nothing was saved yet.
	Load(ctx context.Context) (domain.Snapshot, error)
	// Save replaces the persisted snapshot.
	Save(ctx context.Context, snap domain.Snapshot) error
}
