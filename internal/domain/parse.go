package domain

// ConfidenceTier buckets a match score into a reviewer-facing trust level.
type ConfidenceTier string

// Confidence tiers, highest first.
const (
	ConfidenceHigh   ConfidenceTier = "high"
	ConfidenceMedium ConfidenceTier = "medium"
	ConfidenceLow    ConfidenceTier = "low"
)

// WarningKind is the closed set of soft-failure signals the pipeline emits.
type WarningKind string

const (
	WarningLowConfidence     WarningKind = "low_confidence"
	WarningNoMatch           WarningKind = "no_match"
	WarningAmbiguous         WarningKind = "ambiguous"
	WarningEquipmentMismatch WarningKind = "equipment_mismatch"
)

// Warning flags an item that deserves reviewer attention. ExerciseIndex points
// into ParseResult.Exercises; -1 marks a plan-level warning.
type Warning struct {
	Kind          WarningKind `json:"kind"`
	Message       string      `json:"message"`
	ExerciseIndex int         `json:"exercise_index"`
}

// MatchCandidate is one ranked catalog exercise proposed for a written name.
// Score is string similarity in [0,1]; Overlap is muscle-group overlap in [0,1]
// and only populated on substitution results.
type MatchCandidate struct {
	ExerciseID            string   `json:"exercise_id"`
	Name                  string   `json:"name"`
	Score                 float64  `json:"score"`
	Overlap               float64  `json:"overlap,omitempty"`
	PrimaryMuscleGroups   []string `json:"primary_muscle_groups"`
	SecondaryMuscleGroups []string `json:"secondary_muscle_groups,omitempty"`
	RequiredEquipment     []string `json:"required_equipment,omitempty"`
	Performable           bool     `json:"performable"`
}

// SetScheme is the resolved sets/reps/rest prescription for one exercise.
type SetScheme struct {
	Sets        int `json:"sets"`
	RepsMin     int `json:"reps_min"`
	RepsMax     int `json:"reps_max"`
	RestSeconds int `json:"rest_seconds"`
}

// ParsedExercise is the reviewable unit the pipeline hands back to the caller.
// BestMatch is nil when no candidate cleared the acceptance floor. Alternatives
// are sorted score descending, name ascending, and never contain the best id.
type ParsedExercise struct {
	OriginalText string          `json:"original_text"`
	Workout      string          `json:"workout"`
	DayNumber    int             `json:"day_number"`
	Sequence     int             `json:"sequence"`
	BestMatch    *MatchCandidate `json:"best_match,omitempty"`
	Alternatives []MatchCandidate `json:"alternatives"`
	Scheme       SetScheme       `json:"scheme"`
	Notes        string          `json:"notes,omitempty"`
	Confidence   ConfidenceTier  `json:"confidence"`
	Warnings     []Warning       `json:"warnings,omitempty"`
}

// ConfidenceSummary counts parsed exercises per tier for the review UI header.
type ConfidenceSummary struct {
	High      int `json:"high"`
	Medium    int `json:"medium"`
	Low       int `json:"low"`
	Unmatched int `json:"unmatched"`
}

// ParseResult is the full output of one import invocation. Soft failures live
// in Warnings and UnmatchedText; nothing here is persisted by this module.
type ParseResult struct {
	PlanName      string            `json:"plan_name"`
	Description   string            `json:"description,omitempty"`
	RawText       string            `json:"raw_text"`
	Exercises     []ParsedExercise  `json:"exercises"`
	Warnings      []Warning         `json:"warnings"`
	UnmatchedText []string          `json:"unmatched_text"`
	Summary       ConfidenceSummary `json:"summary"`
}
