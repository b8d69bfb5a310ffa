package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// SnapshotStore persists layout snapshots under caller-chosen IDs.
type SnapshotStore interface {
	// Save persists the snapshot for id, replacing any previous one.
	Save(ctx context.Context, id string, snap *domain.Snapshot) error

	// Load retrieves the snapshot for id.
	// Returns domain.ErrSnapshotNotFound if it does not exist.
	Load(ctx context.Context, id string) (*domain.Snapshot, error)

	// Delete removes the snapshot for id.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of every stored snapshot.
	List(ctx context.Context) ([]string, error)
}
