package ranking

import (
	"sort"

	"github.com/custodia-labs/megafile/internal/core/domain"
)

// Select ranks scored matches and applies the relevance policy of mode.
// Matches without score or without a matched token are never returned.
// The input slice is not modified.
func Select(scored []domain.SearchMatch, mode domain.SearchMode, policy domain.SelectionPolicy) []domain.SearchMatch {
	ranked := make([]domain.SearchMatch, 0, len(scored))
	for i := range scored {
		if scored[i].Score > 0 && scored[i].MatchedTokens > 0 {
			ranked = append(ranked, scored[i])
		}
	}
	if len(ranked) == 0 {
		return []domain.SearchMatch{}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := &ranked[i], &ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		if !a.OperationCreatedAt.Equal(b.OperationCreatedAt) {
			return a.OperationCreatedAt.After(b.OperationCreatedAt)
		}
		return a.DocumentID < b.DocumentID
	})

	if mode == domain.SearchModeBroad {
		return capMatches(ranked, policy.Limit())
	}

	minScore := max(policy.MinScore, ranked[0].Score-policy.ScoreSlack)
	minTokens := max(policy.MinTokens, ranked[0].MatchedTokens-policy.TokenSlack)

	kept := ranked[:0]
	for _, m := range ranked {
		if m.Score >= minScore && m.MatchedTokens >= minTokens {
			kept = append(kept, m)
		}
	}
	return capMatches(kept, policy.Limit())
}

func capMatches(matches []domain.SearchMatch, limit int) []domain.SearchMatch {
	if len(matches) > limit {
		return matches[:limit]
	}
	return matches
}
