// Package matching maps free-text exercise names to ranked catalog candidates
// and recommends substitutes by muscle-group overlap.
package matching

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/przemyslaw-muller/allworkouts/internal/domain"
)

// ErrNoCatalog indicates the catalog snapshot was empty. This is a
// configuration failure, not a soft no-match.
var ErrNoCatalog = errors.New("exercise catalog is empty")

// Config carries the scoring policy. The threshold values are tuning choices
// carried over from the production matcher; override them per deployment
// rather than editing code.
type Config struct {
	// HighThreshold and MediumThreshold split scores into confidence tiers.
	HighThreshold   float64
	MediumThreshold float64
	// AcceptFloor is the minimum score at which a best match is offered at
	// all. Below it the item is reported as unmatched.
	AcceptFloor float64
	// AmbiguityDelta flags the top match as ambiguous when the runner-up
	// scores within this distance.
	AmbiguityDelta float64
	// TopK bounds how many candidates are retained per written name.
	TopK int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		HighThreshold:   0.90,
		MediumThreshold: 0.70,
		AcceptFloor:     0.50,
		AmbiguityDelta:  0.05,
		TopK:            5,
	}
}

// Tier classifies a similarity score.
func (c Config) Tier(score float64) domain.ConfidenceTier {
	switch {
	case score >= c.HighThreshold:
		return domain.ConfidenceHigh
	case score >= c.MediumThreshold:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

// Matcher scores written exercise names against a fixed catalog snapshot.
// It is immutable after construction and safe for concurrent use.
type Matcher struct {
	cfg     Config
	entries []entry
}

type entry struct {
	exercise domain.CanonicalExercise
	keys     []nameKey
}

type nameKey struct {
	sorted string
	tokens map[string]struct{}
}

// NewMatcher builds a matcher over the catalog snapshot. Duplicate exercise
// ids are a catalog invariant break and panic rather than degrade silently.
func NewMatcher(catalog []domain.CanonicalExercise, cfg Config) *Matcher {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultConfig().TopK
	}

	seen := make(map[string]struct{}, len(catalog))
	entries := make([]entry, 0, len(catalog))
	for _, ex := range catalog {
		if _, dup := seen[ex.ID]; dup {
			panic(fmt.Sprintf("matching: duplicate exercise id %q in catalog", ex.ID))
		}
		seen[ex.ID] = struct{}{}

		keys := make([]nameKey, 0, 1+len(ex.Synonyms))
		keys = append(keys, keyFor(ex.Name))
		for _, syn := range ex.Synonyms {
			keys = append(keys, keyFor(syn))
		}
		entries = append(entries, entry{exercise: ex, keys: keys})
	}

	// Name order up front keeps tie-breaks deterministic regardless of how
	// the provider ordered the snapshot.
	slices.SortFunc(entries, func(a, b entry) int {
		return strings.Compare(a.exercise.Name, b.exercise.Name)
	})

	return &Matcher{cfg: cfg, entries: entries}
}

// Config returns the scoring policy the matcher was built with.
func (m *Matcher) Config() Config { return m.cfg }

// Candidates returns up to TopK catalog candidates for the written name,
// sorted score descending with ties broken by name ascending. An empty input
// yields an empty slice; an empty catalog yields ErrNoCatalog.
func (m *Matcher) Candidates(text string) ([]domain.MatchCandidate, error) {
	if len(m.entries) == 0 {
		return nil, ErrNoCatalog
	}

	input := keyFor(text)
	if input.sorted == "" {
		return nil, nil
	}

	cands := make([]domain.MatchCandidate, 0, len(m.entries))
	for _, e := range m.entries {
		best := 0.0
		for _, k := range e.keys {
			if s := similarity(input, k); s > best {
				best = s
			}
		}
		cands = append(cands, candidateFor(e.exercise, best))
	}

	slices.SortStableFunc(cands, byScoreThenName)

	if len(cands) > m.cfg.TopK {
		cands = cands[:m.cfg.TopK]
	}
	return cands, nil
}

// Ambiguous reports whether the top two candidates score within the
// configured delta. Ambiguity does not change the tier; it is an independent
// second-look signal.
func (m *Matcher) Ambiguous(cands []domain.MatchCandidate) bool {
	if len(cands) < 2 {
		return false
	}
	return cands[0].Score-cands[1].Score < m.cfg.AmbiguityDelta
}

func candidateFor(ex domain.CanonicalExercise, score float64) domain.MatchCandidate {
	return domain.MatchCandidate{
		ExerciseID:            ex.ID,
		Name:                  ex.Name,
		Score:                 score,
		PrimaryMuscleGroups:   ex.PrimaryMuscleGroups,
		SecondaryMuscleGroups: ex.SecondaryMuscleGroups,
		RequiredEquipment:     ex.RequiredEquipment,
	}
}

func byScoreThenName(a, b domain.MatchCandidate) int {
	if a.Score != b.Score {
		if a.Score > b.Score {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Name, b.Name)
}

// Common gym shorthand expanded before scoring.
var abbreviations = map[string]string{
	"db":  "dumbbell",
	"bb":  "barbell",
	"kb":  "kettlebell",
	"ohp": "overhead press",
	"rdl": "romanian deadlift",
	"lat": "lateral",
	"ext": "extension",
}

func keyFor(raw string) nameKey {
	tokens := strings.Fields(normalize(raw))
	expanded := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if full, ok := abbreviations[tok]; ok {
			expanded = append(expanded, strings.Fields(full)...)
			continue
		}
		expanded = append(expanded, tok)
	}

	slices.Sort(expanded)
	set := make(map[string]struct{}, len(expanded))
	for _, tok := range expanded {
		set[tok] = struct{}{}
	}
	return nameKey{sorted: strings.Join(expanded, " "), tokens: set}
}

// normalize lowercases, drops punctuation, and collapses whitespace.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// similarity scores two normalized names in [0,1]. Token order is ignored;
// a name whose tokens are a subset of the other's (e.g. "bench press" inside
// "barbell bench press") scores at least 0.90, scaled by how much of the
// longer name it covers.
func similarity(a, b nameKey) float64 {
	if a.sorted == b.sorted {
		return 1.0
	}

	score := levenshteinSimilarity(a.sorted, b.sorted)

	inter := 0
	for tok := range a.tokens {
		if _, ok := b.tokens[tok]; ok {
			inter++
		}
	}
	if inter > 0 && (inter == len(a.tokens) || inter == len(b.tokens)) {
		union := len(a.tokens) + len(b.tokens) - inter
		if subset := 0.90 + 0.10*float64(inter)/float64(union); subset > score {
			score = subset
		}
	}
	return score
}

func levenshteinSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := max(len(a), len(b))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein(a, b))/float64(maxLen)
}

func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
