// Package importer orchestrates the workout-plan import pipeline: extraction,
// exercise matching, equipment-aware ranking, and draft assembly.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/przemyslaw-muller/allworkouts/internal/catalog"
	"github.com/przemyslaw-muller/allworkouts/internal/domain"
	"github.com/przemyslaw-muller/allworkouts/internal/extraction"
	"github.com/przemyslaw-muller/allworkouts/internal/matching"
	"github.com/przemyslaw-muller/allworkouts/internal/observability"
)

// Input bound violations, rejected before the extraction service is invoked.
var (
	ErrInputTooShort = errors.New("workout text too short")
	ErrInputTooLong  = errors.New("workout text too long")
)

// Defaults are the scheme values applied when the extractor left a field
// blank. They are caller policy, injected rather than baked in.
type Defaults struct {
	Sets        int
	RepsMin     int
	RepsMax     int
	RestSeconds int
}

// DefaultScheme returns the stock prescription: 3 sets of 8-12, 60s rest.
func DefaultScheme() Defaults {
	return Defaults{Sets: 3, RepsMin: 8, RepsMax: 12, RestSeconds: 60}
}

// Config bundles assembler policy.
type Config struct {
	MinInputLen       int
	MaxInputLen       int
	ExtractionTimeout time.Duration
	Defaults          Defaults
	Matching          matching.Config
}

// DefaultConfig returns production policy values.
func DefaultConfig() Config {
	return Config{
		MinInputLen:       20,
		MaxInputLen:       10000,
		ExtractionTimeout: 120 * time.Second,
		Defaults:          DefaultScheme(),
		Matching:          matching.DefaultConfig(),
	}
}

// Assembler runs the import pipeline. It is stateless across invocations;
// each Parse works on fresh snapshots and is safe to run concurrently.
type Assembler struct {
	catalog   catalog.Provider
	extractor extraction.Extractor
	cfg       Config
	logger    *log.Logger
}

// Option configures assembler behaviour.
type Option func(*Assembler)

// WithLogger sets a custom logger.
func WithLogger(l *log.Logger) Option {
	return func(a *Assembler) { a.logger = l }
}

// New constructs an Assembler.
func New(provider catalog.Provider, extractor extraction.Extractor, cfg Config, opts ...Option) *Assembler {
	if cfg.MinInputLen <= 0 {
		cfg = DefaultConfig()
	}
	a := &Assembler{catalog: provider, extractor: extractor, cfg: cfg, logger: log.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Parse converts free-form workout text into a reviewable draft plan. Soft
// failures (unmatched items, ambiguity, missing equipment) come back as data
// on the result; only input bounds, catalog problems, and extraction failure
// surface as errors.
func (a *Assembler) Parse(ctx context.Context, userID, text string) (domain.ParseResult, error) {
	if len(text) < a.cfg.MinInputLen {
		return domain.ParseResult{}, fmt.Errorf("%w: need at least %d characters", ErrInputTooShort, a.cfg.MinInputLen)
	}
	if len(text) > a.cfg.MaxInputLen {
		return domain.ParseResult{}, fmt.Errorf("%w: limit is %d characters", ErrInputTooLong, a.cfg.MaxInputLen)
	}

	exercises, err := a.catalog.Exercises(ctx)
	if err != nil {
		return domain.ParseResult{}, fmt.Errorf("load catalog: %w", err)
	}
	if len(exercises) == 0 {
		return domain.ParseResult{}, matching.ErrNoCatalog
	}
	matcher := matching.NewMatcher(exercises, a.cfg.Matching)

	ownedList, err := a.catalog.OwnedEquipment(ctx, userID)
	if err != nil {
		return domain.ParseResult{}, fmt.Errorf("load equipment: %w", err)
	}
	owned := domain.EquipmentSet(ownedList)

	extractCtx, cancel := context.WithTimeout(ctx, a.cfg.ExtractionTimeout)
	defer cancel()

	started := time.Now()
	extracted, err := a.extractor.Extract(extractCtx, extraction.Request{Text: text, EquipmentHint: ownedList})
	observability.RecordExtraction(time.Since(started), err == nil)
	if err != nil {
		return domain.ParseResult{}, err
	}

	result := domain.ParseResult{
		PlanName:      extracted.PlanName,
		Description:   extracted.Description,
		RawText:       text,
		Exercises:     []domain.ParsedExercise{},
		Warnings:      []domain.Warning{},
		UnmatchedText: append([]string{}, extracted.Unmatched...),
	}

	if extracted.Items() == 0 {
		// Partial failure, not an error: the caller prompts the user to
		// reformat, with the original text preserved on the result.
		result.Warnings = append(result.Warnings, domain.Warning{
			Kind:          domain.WarningNoMatch,
			Message:       "no exercises could be extracted from the text",
			ExerciseIndex: -1,
		})
		return result, nil
	}

	for _, workout := range extracted.Workouts {
		for _, item := range workout.Items {
			parsed, err := a.buildExercise(matcher, owned, workout, item, len(result.Exercises))
			if err != nil {
				return domain.ParseResult{}, err
			}
			result.Warnings = append(result.Warnings, parsed.Warnings...)
			result.Exercises = append(result.Exercises, parsed)
		}
	}

	for _, parsed := range result.Exercises {
		switch {
		case parsed.BestMatch == nil:
			result.Summary.Unmatched++
		case parsed.Confidence == domain.ConfidenceHigh:
			result.Summary.High++
		case parsed.Confidence == domain.ConfidenceMedium:
			result.Summary.Medium++
		default:
			result.Summary.Low++
		}
	}
	observability.RecordParse(result.Summary)

	a.logger.Printf("parsed plan %q: %d exercises (%d high, %d medium, %d low, %d unmatched), %d unmatched fragments",
		result.PlanName, len(result.Exercises), result.Summary.High, result.Summary.Medium,
		result.Summary.Low, result.Summary.Unmatched, len(result.UnmatchedText))

	return result, nil
}

func (a *Assembler) buildExercise(matcher *matching.Matcher, owned map[string]struct{}, workout extraction.RawWorkout, item extraction.RawItem, index int) (domain.ParsedExercise, error) {
	parsed := domain.ParsedExercise{
		OriginalText: item.OriginalText,
		Workout:      workout.Name,
		DayNumber:    workout.DayNumber,
		Sequence:     item.Sequence,
		Alternatives: []domain.MatchCandidate{},
		Scheme:       a.resolveScheme(item),
		Notes:        item.Notes,
		Confidence:   domain.ConfidenceLow,
	}

	cands, err := matcher.Candidates(item.OriginalText)
	if err != nil {
		return domain.ParsedExercise{}, err
	}

	cfg := matcher.Config()
	warn := func(kind domain.WarningKind, msg string) {
		parsed.Warnings = append(parsed.Warnings, domain.Warning{Kind: kind, Message: msg, ExerciseIndex: index})
	}

	if len(cands) == 0 || cands[0].Score < cfg.AcceptFloor {
		warn(domain.WarningNoMatch, fmt.Sprintf("no catalog exercise matches %q", item.OriginalText))
		return parsed, nil
	}

	ambiguous := matcher.Ambiguous(cands)
	topByScore := cands[0]

	ranked := matching.RankByEquipment(cands, owned)
	var best domain.MatchCandidate
	found := false
	for _, c := range ranked {
		if c.Score >= cfg.AcceptFloor {
			best = c
			found = true
			break
		}
	}
	if !found {
		warn(domain.WarningNoMatch, fmt.Sprintf("no catalog exercise matches %q", item.OriginalText))
		return parsed, nil
	}

	parsed.BestMatch = &best
	parsed.Confidence = cfg.Tier(best.Score)

	for _, c := range ranked {
		if c.ExerciseID == best.ExerciseID || c.Score < cfg.AcceptFloor {
			continue
		}
		parsed.Alternatives = append(parsed.Alternatives, c)
	}

	if parsed.Confidence == domain.ConfidenceLow {
		warn(domain.WarningLowConfidence, fmt.Sprintf("match for %q is low confidence (%.2f)", item.OriginalText, best.Score))
	}
	if ambiguous && len(cands) > 1 {
		warn(domain.WarningAmbiguous, fmt.Sprintf("%q and %q score within %.2f of each other", cands[0].Name, cands[1].Name, cfg.AmbiguityDelta))
	}
	if !candidatePerformable(topByScore, owned) {
		if best.ExerciseID != topByScore.ExerciseID {
			warn(domain.WarningEquipmentMismatch, fmt.Sprintf("%q needs equipment you don't own; suggesting %q instead", topByScore.Name, best.Name))
		} else {
			warn(domain.WarningEquipmentMismatch, fmt.Sprintf("%q needs equipment you don't own", best.Name))
		}
	}
	return parsed, nil
}

func (a *Assembler) resolveScheme(item extraction.RawItem) domain.SetScheme {
	def := a.cfg.Defaults
	scheme := domain.SetScheme{
		Sets:        item.Sets,
		RepsMin:     item.RepsMin,
		RepsMax:     item.RepsMax,
		RestSeconds: item.RestSeconds,
	}
	if scheme.Sets <= 0 {
		scheme.Sets = def.Sets
	}
	if scheme.RepsMin <= 0 && scheme.RepsMax <= 0 {
		scheme.RepsMin = def.RepsMin
		scheme.RepsMax = def.RepsMax
	} else if scheme.RepsMin <= 0 {
		scheme.RepsMin = scheme.RepsMax
	} else if scheme.RepsMax < scheme.RepsMin {
		scheme.RepsMax = scheme.RepsMin
	}
	if scheme.RestSeconds <= 0 {
		scheme.RestSeconds = def.RestSeconds
	}
	return scheme
}

func candidatePerformable(c domain.MatchCandidate, owned map[string]struct{}) bool {
	for _, eq := range c.RequiredEquipment {
		if _, ok := owned[eq]; !ok {
			return false
		}
	}
	return true
}
