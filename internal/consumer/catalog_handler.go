package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/przemyslaw-muller/allworkouts/internal/domain"
	"github.com/przemyslaw-muller/allworkouts/internal/events"
)

// CatalogStore is the projection target: the in-memory catalog in dev, the
// Postgres catalog in production.
type CatalogStore interface {
	Upsert(ctx context.Context, ex domain.CanonicalExercise) error
	Delete(ctx context.Context, id string) error
}

// CatalogHandler projects exercise catalog events into the local store.
type CatalogHandler struct {
	store CatalogStore
}

// NewCatalogHandler constructs a handler backed by the provided store.
func NewCatalogHandler(store CatalogStore) Handler {
	return &CatalogHandler{store: store}
}

// Handle applies exercise.upserted and exercise.deleted events; everything
// else on the topic is ignored.
func (h *CatalogHandler) Handle(ctx context.Context, msg Message) error {
	payload := msg.Payload
	// Handle Confluent Schema Registry wire format (magic byte + 4-byte schema id)
	if len(payload) >= 5 && payload[0] == 0x00 {
		payload = payload[5:]
	}

	switch msg.Headers["event_type"] {
	case "exercise.upserted":
		var evt events.ExerciseUpserted
		if err := json.Unmarshal(payload, &evt); err != nil {
			return fmt.Errorf("decode exercise.upserted: %w", err)
		}
		if strings.TrimSpace(evt.ExerciseID) == "" || strings.TrimSpace(evt.Name) == "" {
			return fmt.Errorf("exercise.upserted missing id or name (offset=%d)", msg.Offset)
		}
		return h.store.Upsert(ctx, domain.CanonicalExercise{
			ID:                    evt.ExerciseID,
			Name:                  evt.Name,
			PrimaryMuscleGroups:   evt.PrimaryMuscleGroups,
			SecondaryMuscleGroups: evt.SecondaryMuscleGroups,
			RequiredEquipment:     evt.RequiredEquipment,
			Synonyms:              evt.Synonyms,
		})
	case "exercise.deleted":
		var evt events.ExerciseDeleted
		if err := json.Unmarshal(payload, &evt); err != nil {
			return fmt.Errorf("decode exercise.deleted: %w", err)
		}
		if strings.TrimSpace(evt.ExerciseID) == "" {
			return fmt.Errorf("exercise.deleted missing id (offset=%d)", msg.Offset)
		}
		return h.store.Delete(ctx, evt.ExerciseID)
	default:
		return nil
	}
}
