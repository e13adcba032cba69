// Package sampling extracts a bounded, deterministic sample from decoded text
// for keyword scoring.
package sampling

import (
	"math/rand/v2"
	"unicode/utf8"

	"github.com/jonathan/novel-sorter/internal/config"
	"github.com/jonathan/novel-sorter/internal/types"
)

// Options controls the shape of a sample. Sizes are in runes.
type Options struct {
	HeadChars     int
	FragmentCount int
	FragmentSize  int
	Seed          uint64
}

// FromConfig maps the text extraction settings onto Options.
func FromConfig(te config.TextExtraction) Options {
	return Options{
		HeadChars:     te.BeginChars,
		FragmentCount: te.RandomFragmentCount,
		FragmentSize:  te.RandomFragmentSize,
		Seed:          te.Seed,
	}
}

// Sample returns the first HeadChars runes of text followed by FragmentCount
// fragments of FragmentSize runes, one from each of FragmentCount equal
// windows over the rest of the text. The position inside each window is
// drawn from a PCG stream seeded by Seed and the text length, so the same
// text always yields the same sample. Fragments never overlap.
func Sample(text string, opts Options) types.Sample {
	total := utf8.RuneCountInString(text)
	if total == 0 {
		return types.Sample{}
	}

	head := max(opts.HeadChars, 0)
	if total <= head {
		return types.Sample{Fragments: []types.Fragment{{Offset: 0, Text: text}}}
	}

	c := cursor{text: text}
	var fragments []types.Fragment
	if head > 0 {
		fragments = append(fragments, types.Fragment{Offset: 0, Text: c.slice(0, head)})
	}

	count, size := opts.FragmentCount, opts.FragmentSize
	if count <= 0 || size <= 0 {
		return types.Sample{Fragments: fragments}
	}

	rest := total - head
	if rest <= count*size {
		// not enough text for separate windows, keep all of it
		fragments = append(fragments, types.Fragment{Offset: head, Text: c.slice(head, total)})
		return types.Sample{Fragments: fragments}
	}

	rng := rand.New(rand.NewPCG(opts.Seed, uint64(total)))
	window := rest / count
	for i := 0; i < count; i++ {
		start := head + i*window
		if slack := window - size; slack > 0 {
			start += rng.IntN(slack + 1)
		}
		fragments = append(fragments, types.Fragment{Offset: start, Text: c.slice(start, start+size)})
	}
	return types.Sample{Fragments: fragments}
}

// cursor maps increasing rune offsets to byte offsets in one forward pass.
type cursor struct {
	text  string
	runes int
	bytes int
}

func (c *cursor) seek(runeOffset int) int {
	for c.runes < runeOffset && c.bytes < len(c.text) {
		_, n := utf8.DecodeRuneInString(c.text[c.bytes:])
		c.bytes += n
		c.runes++
	}
	return c.bytes
}

// slice returns the runes [from, to). Calls must not move backwards.
func (c *cursor) slice(from, to int) string {
	b0 := c.seek(from)
	b1 := c.seek(to)
	return c.text[b0:b1]
}
