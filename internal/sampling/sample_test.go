package sampling

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/novel-sorter/internal/config"
)

func longText(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteRune(rune('一' + i%500))
	}
	return sb.String()
}

func TestSample_ShortTextIsWhole(t *testing.T) {
	text := "短篇小说"
	s := Sample(text, Options{HeadChars: 10, FragmentCount: 3, FragmentSize: 5})

	require.Len(t, s.Fragments, 1)
	assert.Equal(t, text, s.Fragments[0].Text)
	assert.Equal(t, 0, s.Fragments[0].Offset)
}

func TestSample_Empty(t *testing.T) {
	assert.Empty(t, Sample("", Options{HeadChars: 10}).Fragments)
}

func TestSample_HeadAndFragments(t *testing.T) {
	text := longText(10000)
	opts := Options{HeadChars: 3000, FragmentCount: 3, FragmentSize: 500, Seed: 42}

	s := Sample(text, opts)
	require.Len(t, s.Fragments, 4)

	runes := []rune(text)
	assert.Equal(t, string(runes[:3000]), s.Fragments[0].Text)

	prevEnd := 3000
	for _, f := range s.Fragments[1:] {
		assert.Equal(t, 500, utf8.RuneCountInString(f.Text))
		assert.GreaterOrEqual(t, f.Offset, prevEnd, "fragments must not overlap")
		assert.Equal(t, string(runes[f.Offset:f.Offset+500]), f.Text)
		prevEnd = f.Offset + 500
	}
	assert.LessOrEqual(t, prevEnd, 10000)
	assert.Equal(t, 4500, s.Len())
}

func TestSample_Deterministic(t *testing.T) {
	text := longText(20000)
	opts := Options{HeadChars: 100, FragmentCount: 4, FragmentSize: 50, Seed: 7}

	assert.Equal(t, Sample(text, opts), Sample(text, opts))

	other := Sample(text, Options{HeadChars: 100, FragmentCount: 4, FragmentSize: 50, Seed: 8})
	assert.Len(t, other.Fragments, 5)
}

func TestSample_RemainderTooShortForWindows(t *testing.T) {
	text := longText(120)
	s := Sample(text, Options{HeadChars: 100, FragmentCount: 3, FragmentSize: 10})

	require.Len(t, s.Fragments, 2)
	assert.Equal(t, 100, s.Fragments[1].Offset)
	assert.Equal(t, 20, utf8.RuneCountInString(s.Fragments[1].Text))
}

func TestSample_NoHead(t *testing.T) {
	text := longText(1000)
	s := Sample(text, Options{FragmentCount: 2, FragmentSize: 100, Seed: 1})

	require.Len(t, s.Fragments, 2)
	assert.Less(t, s.Fragments[0].Offset, 500)
	assert.GreaterOrEqual(t, s.Fragments[1].Offset, 500)
}

func TestFromConfig(t *testing.T) {
	opts := FromConfig(config.Default().Processing.TextExtraction)
	assert.Equal(t, Options{HeadChars: 3000, FragmentCount: 3, FragmentSize: 500, Seed: 42}, opts)
}
