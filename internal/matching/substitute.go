package matching

import (
	"errors"

	"github.com/przemyslaw-muller/allworkouts/internal/domain"
)

// ErrExerciseNotFound indicates the substitution target is not in the catalog.
var ErrExerciseNotFound = errors.New("exercise not found")

// DefaultSubstituteLimit caps how many alternatives a substitution query returns.
const DefaultSubstituteLimit = 10

// Substitutes ranks catalog alternatives for the given exercise by
// muscle-group overlap (Jaccard over the union of primary and secondary
// groups). The exercise itself and zero-overlap entries are excluded. The same
// equipment demotion policy as name matching applies, keyed on overlap.
func Substitutes(catalog []domain.CanonicalExercise, exerciseID string, owned map[string]struct{}, limit int) ([]domain.MatchCandidate, error) {
	if limit <= 0 {
		limit = DefaultSubstituteLimit
	}

	var original *domain.CanonicalExercise
	for i := range catalog {
		if catalog[i].ID == exerciseID {
			original = &catalog[i]
			break
		}
	}
	if original == nil {
		return nil, ErrExerciseNotFound
	}

	target := make(map[string]struct{})
	for _, g := range original.MuscleGroups() {
		target[g] = struct{}{}
	}

	cands := make([]domain.MatchCandidate, 0, len(catalog))
	for _, ex := range catalog {
		if ex.ID == exerciseID {
			continue
		}
		overlap := jaccard(target, ex.MuscleGroups())
		if overlap == 0 {
			continue
		}
		c := candidateFor(ex, 0)
		c.Overlap = overlap
		cands = append(cands, c)
	}

	ranked := rank(cands, owned, func(c domain.MatchCandidate) float64 { return c.Overlap })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func jaccard(target map[string]struct{}, groups []string) float64 {
	if len(target) == 0 || len(groups) == 0 {
		return 0
	}
	inter := 0
	for _, g := range groups {
		if _, ok := target[g]; ok {
			inter++
		}
	}
	union := len(target) + len(groups) - inter
	return float64(inter) / float64(union)
}
