package matching

import (
	"slices"
	"strings"

	"github.com/przemyslaw-muller/allworkouts/internal/domain"
)

// RankByEquipment re-sorts candidates so that exercises the user can actually
// perform come first. Candidates needing unowned equipment are demoted, never
// removed — the demoted one may still be the correct match and the reviewer
// decides. The sort is stable on (performable desc, score desc, name asc) and
// the input slice is not mutated.
func RankByEquipment(cands []domain.MatchCandidate, owned map[string]struct{}) []domain.MatchCandidate {
	return rank(cands, owned, func(c domain.MatchCandidate) float64 { return c.Score })
}

func rank(cands []domain.MatchCandidate, owned map[string]struct{}, key func(domain.MatchCandidate) float64) []domain.MatchCandidate {
	out := make([]domain.MatchCandidate, len(cands))
	for i, c := range cands {
		c.Performable = performable(c, owned)
		out[i] = c
	}

	slices.SortStableFunc(out, func(a, b domain.MatchCandidate) int {
		if a.Performable != b.Performable {
			if a.Performable {
				return -1
			}
			return 1
		}
		if ka, kb := key(a), key(b); ka != kb {
			if ka > kb {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

func performable(c domain.MatchCandidate, owned map[string]struct{}) bool {
	for _, eq := range c.RequiredEquipment {
		if _, ok := owned[eq]; !ok {
			return false
		}
	}
	return true
}
