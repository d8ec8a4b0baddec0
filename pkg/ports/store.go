package ports

import (
	"context"

	"github.com/aretw0/beatbox/pkg/domain"
)

// CheckpointStore defines the interface for persisting paused traversals.
// This enables "Stop & Resume" of long expansions across requests and processes.
type CheckpointStore interface {
	// Save persists the checkpoint under the given ID.
	Save(ctx context.Context, id string, cp *domain.Checkpoint) error

	// Load retrieves the checkpoint for a given ID.
	// Returns domain.ErrCheckpointNotFound if it does not exist.
	Load(ctx context.Context, id string) (*domain.Checkpoint, error)

	// Delete removes the checkpoint. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of stored checkpoints.
	List(ctx context.Context) ([]string, error)
}
