// Package domain holds the core types shared by the import pipeline and the
// exercise-matching engine.
package domain

import (
	"slices"
	"strings"
)

// CanonicalExercise is an entry in the controlled exercise vocabulary. It is
// read-only inside this module; the catalog-management service owns mutation.
type CanonicalExercise struct {
	ID                    string   `json:"id"`
	Name                  string   `json:"name"`
	PrimaryMuscleGroups   []string `json:"primary_muscle_groups"`
	SecondaryMuscleGroups []string `json:"secondary_muscle_groups,omitempty"`
	RequiredEquipment     []string `json:"required_equipment,omitempty"`
	Synonyms              []string `json:"synonyms,omitempty"`
}

// MuscleGroups returns the deduplicated union of primary and secondary groups.
func (e CanonicalExercise) MuscleGroups() []string {
	set := make(map[string]struct{}, len(e.PrimaryMuscleGroups)+len(e.SecondaryMuscleGroups))
	for _, g := range e.PrimaryMuscleGroups {
		if clean := strings.TrimSpace(g); clean != "" {
			set[clean] = struct{}{}
		}
	}
	for _, g := range e.SecondaryMuscleGroups {
		if clean := strings.TrimSpace(g); clean != "" {
			set[clean] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for g := range set {
		out = append(out, g)
	}
	slices.Sort(out)
	return out
}

// Performable reports whether a user owning the given equipment set can do the
// exercise. Exercises with no equipment requirements are always performable.
func (e CanonicalExercise) Performable(owned map[string]struct{}) bool {
	for _, eq := range e.RequiredEquipment {
		if _, ok := owned[eq]; !ok {
			return false
		}
	}
	return true
}

// EquipmentSet turns an owned-equipment list into a lookup set.
func EquipmentSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if clean := strings.TrimSpace(id); clean != "" {
			set[clean] = struct{}{}
		}
	}
	return set
}
