// Package events defines the catalog event payloads consumed by the projector.
package events

import "time"

// ExerciseUpserted is emitted by the catalog-management service when an
// exercise is created or updated.
type ExerciseUpserted struct {
	ExerciseID            string    `json:"exercise_id"`
	Name                  string    `json:"name"`
	PrimaryMuscleGroups   []string  `json:"primary_muscle_groups"`
	SecondaryMuscleGroups []string  `json:"secondary_muscle_groups"`
	RequiredEquipment     []string  `json:"required_equipment"`
	Synonyms              []string  `json:"synonyms"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// ExerciseDeleted is emitted when an exercise is removed from the catalog.
type ExerciseDeleted struct {
	ExerciseID string    `json:"exercise_id"`
	DeletedAt  time.Time `json:"deleted_at"`
}
