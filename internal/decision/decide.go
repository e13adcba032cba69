// Package decision turns a score table into a classification decision.
package decision

import (
	"fmt"
	"strings"

	"github.com/jonathan/novel-sorter/internal/config"
	"github.com/jonathan/novel-sorter/internal/types"
)

// Pending reasons
const (
	ReasonNoMatches      = "no keyword matches"
	ReasonBelowSecondary = "score below secondary threshold"
)

// Decide applies the thresholds to a score table. The table need not be
// sorted. Decide is pure.
func Decide(table types.ScoreTable, th config.Thresholds) types.Decision {
	sorted := make(types.ScoreTable, len(table))
	copy(sorted, table)
	sorted.Sort()

	if sorted.AllZero() {
		return types.Pending{Reason: ReasonNoMatches}
	}

	top, second := sorted.Top()
	if top.Score >= th.DirectClassification && top.Score-second >= th.ScoreDifference {
		return types.DirectClassify{Category: top.Category, Score: top.Score}
	}

	if top.Score >= th.SecondaryCheck {
		var candidates []types.ScoreEntry
		for _, e := range sorted {
			if e.Score > 0 && top.Score-e.Score < th.ScoreDifference {
				candidates = append(candidates, e)
			}
		}
		// a zero difference threshold still keeps the leader
		if len(candidates) == 0 {
			candidates = append(candidates, top)
		}
		d := types.SecondaryCheck{Candidates: candidates}
		d.Reason = Rationale(d)
		return d
	}

	return types.Pending{Reason: ReasonBelowSecondary}
}

// Rationale renders a decision for humans, e.g. "A(18) vs B(16)".
func Rationale(d types.Decision) string {
	switch d := d.(type) {
	case types.DirectClassify:
		return fmt.Sprintf("%s(%d)", d.Category, d.Score)
	case types.SecondaryCheck:
		parts := make([]string, len(d.Candidates))
		for i, c := range d.Candidates {
			parts[i] = fmt.Sprintf("%s(%d)", c.Category, c.Score)
		}
		return strings.Join(parts, " vs ")
	case types.Pending:
		return d.Reason
	}
	return ""
}
