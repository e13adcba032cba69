package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/novel-sorter/internal/config"
	"github.com/jonathan/novel-sorter/internal/types"
)

func testClassification() config.Classification {
	cfg := config.Default()
	return cfg.Classification()
}

func sampleOf(texts ...string) types.Sample {
	var s types.Sample
	for i, t := range texts {
		s.Fragments = append(s.Fragments, types.Fragment{Offset: i * 1000, Text: t})
	}
	return s
}

func TestScore_WeightsPerTier(t *testing.T) {
	// 星际 high(3) x2, 太空 medium(2) x1, 外星 low(1) x1
	table := Score(sampleOf("星际舰队穿越太空，星际战争中遇见外星人。"), testClassification())

	require.Len(t, table, 4)
	assert.Equal(t, "10-科幻", table[0].Category)
	assert.Equal(t, 9, table[0].Score)
	assert.Equal(t, []string{"星际", "太空", "外星"}, table[0].MatchedKeywords())
	assert.Equal(t, 2, table[0].Matches[0].Count)
	assert.Equal(t, types.TierHigh, table[0].Matches[0].Tier)
}

func TestScore_ZeroEntriesIncludedAndOrdered(t *testing.T) {
	table := Score(sampleOf("nothing relevant here"), testClassification())

	require.Len(t, table, 4)
	assert.True(t, table.AllZero())
	assert.Equal(t, []string{"01-玄幻", "02-奇幻", "05-都市", "10-科幻"},
		[]string{table[0].Category, table[1].Category, table[2].Category, table[3].Category})
}

func TestScore_AdditiveAcrossFragments(t *testing.T) {
	cls := testClassification()
	one := Score(sampleOf("修炼"), cls).Score("01-玄幻")
	two := Score(sampleOf("修炼", "修炼修炼"), cls).Score("01-玄幻")

	assert.Equal(t, 3, one)
	assert.Equal(t, 9, two)
}

func TestScore_CappedMode(t *testing.T) {
	cls := testClassification()
	cls.Scoring.DuplicateMode = config.DuplicateCapped

	score := Score(sampleOf("修炼修炼修炼", "修炼"), cls).Score("01-玄幻")
	assert.Equal(t, 6, score)
}

func TestScore_MultiplierRounds(t *testing.T) {
	cls := config.Classification{
		Weights: config.Weights{High: 3, Medium: 2, Low: 1},
		Categories: map[string]config.Category{
			"a": {HighWeight: []string{"x"}, Multiplier: 1.5},
			"b": {LowWeight: []string{"y"}},
		},
	}

	table := Score(sampleOf("x y"), cls)
	assert.Equal(t, 5, table.Score("a")) // 4.5 rounds half away from zero
	assert.Equal(t, 1, table.Score("b")) // unset multiplier counts as 1
}

func TestScore_CaseAndWhitespaceInsensitive(t *testing.T) {
	cls := config.Classification{
		Weights:    config.Weights{High: 3, Medium: 2, Low: 1},
		Categories: map[string]config.Category{"10-scifi": {HighWeight: []string{"Star  Ship"}}},
	}

	table := Score(sampleOf("the STAR\n\tship lands"), cls)
	assert.Equal(t, 3, table.Score("10-scifi"))
}

func TestScore_Monotonic(t *testing.T) {
	cls := testClassification()
	base := "少年在都市中重生，获得系统。"
	prev := Score(sampleOf(base), cls)

	for _, kw := range []string{"签到", "魔法", "机甲", "强者", "商战"} {
		base += kw
		next := Score(sampleOf(base), cls)
		for _, entry := range prev {
			assert.GreaterOrEqual(t, next.Score(entry.Category), entry.Score, "adding %q lowered %s", kw, entry.Category)
		}
		prev = next
	}
}

func TestWithFilename(t *testing.T) {
	cls := testClassification()
	s := WithFilename(sampleOf("普通的开头"), "/lib/00-pending/星际机甲.txt", cls.Scoring)

	require.Len(t, s.Fragments, 2)
	assert.Equal(t, FilenameOffset, s.Fragments[1].Offset)
	assert.Equal(t, "星际机甲", s.Fragments[1].Text)
	assert.Equal(t, 6, Score(s, cls).Score("10-科幻"))

	off := false
	cls.Scoring.IncludeFilename = &off
	s = WithFilename(sampleOf("普通的开头"), "/lib/星际机甲.txt", cls.Scoring)
	assert.Len(t, s.Fragments, 1)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a b c", Normalize("  A \n\t B   C  "))
	assert.Equal(t, "", Normalize(strings.Repeat(" ", 5)))
	assert.Equal(t, "斗气 大陆", Normalize("斗气　大陆"))
}
