// Package extraction wraps the external text-understanding service that turns
// free-form workout text into draft plan structure. The service is an
// untrusted oracle: it can return nothing, malformed fields, or fail outright,
// and every one of those is an ordinary condition for the caller.
package extraction

import (
	"context"
	"errors"
)

// ErrExtractionFailed wraps service errors, timeouts, and unusable output.
// The caller decides whether to offer a retry; this package never retries.
var ErrExtractionFailed = errors.New("workout extraction failed")

// RawItem is one proposed exercise line as written by the user. Zero values
// mean the extractor did not supply the field; the assembler fills defaults.
type RawItem struct {
	OriginalText string `json:"original_text"`
	Sets         int    `json:"sets"`
	RepsMin      int    `json:"reps_min"`
	RepsMax      int    `json:"reps_max"`
	RestSeconds  int    `json:"rest_seconds"`
	Notes        string `json:"notes,omitempty"`
	Sequence     int    `json:"sequence"`
}

// RawWorkout groups items under one workout-day label.
type RawWorkout struct {
	Name      string    `json:"name"`
	DayNumber int       `json:"day_number"`
	Items     []RawItem `json:"items"`
}

// Extraction is the validated draft the adapter hands to the assembler.
// Unmatched holds extractor output that could not be read as an exercise
// line; it is preserved verbatim so a reviewer can add it by hand.
type Extraction struct {
	PlanName    string       `json:"plan_name"`
	Description string       `json:"description,omitempty"`
	Workouts    []RawWorkout `json:"workouts"`
	Unmatched   []string     `json:"unmatched"`
}

// Items counts exercise lines across all workouts.
func (e Extraction) Items() int {
	total := 0
	for _, w := range e.Workouts {
		total += len(w.Items)
	}
	return total
}

// Request carries the user text plus an optional hint listing the equipment
// the user owns, which the service may use to phrase its draft.
type Request struct {
	Text          string
	EquipmentHint []string
}

// Extractor is the boundary to the external service.
type Extractor interface {
	Extract(ctx context.Context, req Request) (Extraction, error)
}
