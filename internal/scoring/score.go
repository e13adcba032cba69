// Package scoring computes weighted keyword scores of a text sample against
// every configured category.
package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/jonathan/novel-sorter/internal/config"
	"github.com/jonathan/novel-sorter/internal/types"
)

type keyword struct {
	text   string // normalized
	label  string // as configured
	tier   string
	weight int
}

type category struct {
	id         string
	multiplier float64
	keywords   []keyword
}

// Scorer holds a normalized keyword table. It is immutable and safe for
// concurrent use.
type Scorer struct {
	categories []category
	capped     bool
}

// NewScorer prepares the keyword table of a configuration.
func NewScorer(cls config.Classification) *Scorer {
	s := &Scorer{capped: cls.Scoring.DuplicateMode == config.DuplicateCapped}

	ids := make([]string, 0, len(cls.Categories))
	for id := range cls.Categories {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		cat := cls.Categories[id]
		c := category{id: id, multiplier: cat.Multiplier}
		if c.multiplier == 0 {
			c.multiplier = 1
		}
		tiers := []struct {
			name   string
			weight int
			words  []string
		}{
			{types.TierHigh, cls.Weights.High, cat.HighWeight},
			{types.TierMedium, cls.Weights.Medium, cat.MediumWeight},
			{types.TierLow, cls.Weights.Low, cat.LowWeight},
		}
		for _, tier := range tiers {
			for _, w := range tier.words {
				norm := Normalize(w)
				if norm == "" {
					continue
				}
				c.keywords = append(c.keywords, keyword{text: norm, label: w, tier: tier.name, weight: tier.weight})
			}
		}
		s.categories = append(s.categories, c)
	}
	return s
}

// Score is a convenience for NewScorer(cls).Score(sample).
func Score(sample types.Sample, cls config.Classification) types.ScoreTable {
	return NewScorer(cls).Score(sample)
}

// Score returns one entry per category, zero scores included, sorted by
// score descending then category id ascending. Every keyword occurrence adds
// its tier weight times the category multiplier; in capped mode a keyword
// counts at most once per fragment.
func (s *Scorer) Score(sample types.Sample) types.ScoreTable {
	texts := make([]string, len(sample.Fragments))
	for i, f := range sample.Fragments {
		texts[i] = Normalize(f.Text)
	}

	table := make(types.ScoreTable, 0, len(s.categories))
	for _, c := range s.categories {
		entry := types.ScoreEntry{Category: c.id}
		points := 0.0
		for _, kw := range c.keywords {
			count := 0
			for _, text := range texts {
				n := strings.Count(text, kw.text)
				if s.capped && n > 1 {
					n = 1
				}
				count += n
			}
			if count == 0 {
				continue
			}
			points += float64(count*kw.weight) * c.multiplier
			entry.Matches = append(entry.Matches, types.KeywordHit{Keyword: kw.label, Tier: kw.tier, Count: count})
		}
		entry.Score = int(math.Round(points))
		table = append(table, entry)
	}
	table.Sort()
	return table
}
