package catalog

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/przemyslaw-muller/allworkouts/internal/domain"
)

// InMemoryCatalog stores exercises and equipment ownership in memory for
// local development and tests. The catalog-event projector mutates it; the
// pipeline only reads snapshots.
type InMemoryCatalog struct {
	mu        sync.RWMutex
	exercises map[string]domain.CanonicalExercise
	equipment map[string][]string
}

// NewInMemoryCatalog constructs a catalog populated with a small seed set.
func NewInMemoryCatalog() *InMemoryCatalog {
	c := &InMemoryCatalog{
		exercises: make(map[string]domain.CanonicalExercise),
		equipment: make(map[string][]string),
	}
	c.seed()
	return c
}

func (c *InMemoryCatalog) seed() {
	for _, ex := range []domain.CanonicalExercise{
		{
			ID:                    "barbell-bench-press",
			Name:                  "Barbell Bench Press",
			PrimaryMuscleGroups:   []string{"chest"},
			SecondaryMuscleGroups: []string{"triceps", "shoulders"},
			RequiredEquipment:     []string{"barbell", "bench"},
			Synonyms:              []string{"Bench Press", "Flat Bench"},
		},
		{
			ID:                  "bodyweight-squat",
			Name:                "Bodyweight Squat",
			PrimaryMuscleGroups: []string{"legs"},
			SecondaryMuscleGroups: []string{"glutes"},
		},
		{
			ID:                    "conventional-deadlift",
			Name:                  "Conventional Deadlift",
			PrimaryMuscleGroups:   []string{"back"},
			SecondaryMuscleGroups: []string{"legs", "glutes"},
			RequiredEquipment:     []string{"barbell"},
			Synonyms:              []string{"Deadlift"},
		},
	} {
		c.exercises[ex.ID] = ex
	}
}

// Exercises returns a name-sorted snapshot copy.
func (c *InMemoryCatalog) Exercises(ctx context.Context) ([]domain.CanonicalExercise, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.CanonicalExercise, 0, len(c.exercises))
	for _, ex := range c.exercises {
		out = append(out, ex)
	}
	slices.SortFunc(out, func(a, b domain.CanonicalExercise) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

// OwnedEquipment returns the equipment ids recorded for the user.
func (c *InMemoryCatalog) OwnedEquipment(ctx context.Context, userID string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	owned := c.equipment[userID]
	out := make([]string, len(owned))
	copy(out, owned)
	return out, nil
}

// Upsert replaces or inserts an exercise. Used by the event projector.
func (c *InMemoryCatalog) Upsert(ctx context.Context, ex domain.CanonicalExercise) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exercises[ex.ID] = ex
	return nil
}

// Delete removes an exercise.
func (c *InMemoryCatalog) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.exercises, id)
	return nil
}

// SetOwnedEquipment records a user's equipment set.
func (c *InMemoryCatalog) SetOwnedEquipment(userID string, equipmentIDs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.equipment[userID] = slices.Clone(equipmentIDs)
}
