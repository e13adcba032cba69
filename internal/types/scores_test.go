package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreTable_SortOrdersByScoreThenCategory(t *testing.T) {
	table := ScoreTable{
		{Category: "10-科幻", Score: 4},
		{Category: "05-都市", Score: 9},
		{Category: "02-奇幻", Score: 4},
		{Category: "01-玄幻", Score: 0},
	}

	table.Sort()

	assert.Equal(t, []string{"05-都市", "02-奇幻", "10-科幻", "01-玄幻"},
		[]string{table[0].Category, table[1].Category, table[2].Category, table[3].Category})
}

func TestScoreTable_Top(t *testing.T) {
	table := ScoreTable{{Category: "a", Score: 18}, {Category: "b", Score: 16}}
	top, second := table.Top()
	assert.Equal(t, "a", top.Category)
	assert.Equal(t, 18, top.Score)
	assert.Equal(t, 16, second)

	single := ScoreTable{{Category: "a", Score: 3}}
	_, second = single.Top()
	assert.Equal(t, 0, second)

	top, second = ScoreTable{}.Top()
	assert.Equal(t, ScoreEntry{}, top)
	assert.Equal(t, 0, second)
}

func TestScoreTable_AllZeroAndScore(t *testing.T) {
	table := ScoreTable{{Category: "a"}, {Category: "b"}}
	assert.True(t, table.AllZero())

	table[1].Score = 2
	assert.False(t, table.AllZero())
	assert.Equal(t, 2, table.Score("b"))
	assert.Equal(t, 0, table.Score("missing"))
}

func TestScoreEntry_MatchedKeywords(t *testing.T) {
	entry := ScoreEntry{
		Category: "10-科幻",
		Score:    7,
		Matches: []KeywordHit{
			{Keyword: "星际", Tier: TierHigh, Count: 2},
			{Keyword: "太空", Tier: TierMedium, Count: 1},
		},
	}
	assert.Equal(t, []string{"星际", "太空"}, entry.MatchedKeywords())
}
