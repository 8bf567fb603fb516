// Package catalog supplies read-only exercise and equipment-ownership
// snapshots to the import pipeline.
package catalog

import (
	"context"

	"github.com/przemyslaw-muller/allworkouts/internal/domain"
)

// Provider exposes the two read-only inputs the pipeline consumes per call.
// Implementations must return point-in-time snapshots; nothing in this module
// caches across calls.
type Provider interface {
	Exercises(ctx context.Context) ([]domain.CanonicalExercise, error)
	OwnedEquipment(ctx context.Context, userID string) ([]string, error)
}
