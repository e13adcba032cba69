package types

import "sort"

// Keyword tiers
const (
	TierHigh   = "high"
	TierMedium = "medium"
	TierLow    = "low"
)

// KeywordHit records how often one keyword matched a sample
type KeywordHit struct {
	Keyword string `json:"keyword"`
	Tier    string `json:"tier"`
	Count   int    `json:"count"`
}

// ScoreEntry is the score of one category against one file
type ScoreEntry struct {
	Category string       `json:"category"`
	Score    int          `json:"score"`
	Matches  []KeywordHit `json:"matches,omitempty"`
}

// MatchedKeywords returns the distinct keywords that contributed to the score.
func (e ScoreEntry) MatchedKeywords() []string {
	out := make([]string, 0, len(e.Matches))
	for _, m := range e.Matches {
		out = append(out, m.Keyword)
	}
	return out
}

// ScoreTable holds one entry per category, ordered by score descending and
// category ascending on ties.
type ScoreTable []ScoreEntry

// Sort orders the table in place.
func (t ScoreTable) Sort() {
	sort.SliceStable(t, func(i, j int) bool {
		if t[i].Score != t[j].Score {
			return t[i].Score > t[j].Score
		}
		return t[i].Category < t[j].Category
	})
}

// Top returns the highest and second-highest scores. Missing entries count as zero.
func (t ScoreTable) Top() (top ScoreEntry, second int) {
	if len(t) == 0 {
		return ScoreEntry{}, 0
	}
	if len(t) > 1 {
		second = t[1].Score
	}
	return t[0], second
}

// AllZero reports whether no category scored.
func (t ScoreTable) AllZero() bool {
	for _, e := range t {
		if e.Score != 0 {
			return false
		}
	}
	return true
}

// Score returns the score of a category, or zero if absent.
func (t ScoreTable) Score(category string) int {
	for _, e := range t {
		if e.Category == category {
			return e.Score
		}
	}
	return 0
}
