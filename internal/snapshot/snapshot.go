// Package snapshot is the persistence port for the entity store: one JSON
// object, written whole on every mutation, read whole at startup.
package snapshot

import (
	"context"
	"errors"

	"khakhra/backend/internal/domain"
)

// StorageKey is the fixed slot the snapshot lives under, regardless of
// backend. It matches the storage key of the original browser deployment.
const StorageKey = "khakhra_manager_data_v1"

// ErrNotFound is returned by Load when no snapshot has been persisted yet.
// A corrupt or unreadable snapshot is reported the same way: the caller's
// only recovery is the seed dataset, so there is no partial-recovery path.
var ErrNotFound = errors.New("snapshot not found")

type Store interface {
	Load(ctx context.Context) (*domain.Snapshot, error)
	Save(ctx context.Context, snap *domain.Snapshot) error
}

// Noop discards saves and never finds a snapshot. Used when persistence is
// disabled and as the default in tests.
type Noop struct{}

func (Noop) Load(_ context.Context) (*domain.Snapshot, error) {
	return nil, ErrNotFound
}

func (Noop) Save(_ context.Context, _ *domain.Snapshot) error {
	return nil
}
