package encoding

import (
	"unicode"
	"unicode/utf8"
)

// textStats summarises a decoded text for the plausibility checks.
type textStats struct {
	total       int
	replacement int
	control     int
	nul         int
	script      int
}

func inspect(text string, script *unicode.RangeTable) textStats {
	var s textStats
	for _, r := range text {
		s.total++
		switch {
		case r == utf8.RuneError:
			s.replacement++
		case r == 0:
			s.nul++
			s.control++
		case r == '\n' || r == '\r' || r == '\t' || r == '\f':
		case unicode.IsControl(r):
			s.control++
		}
		if script != nil && unicode.Is(script, r) {
			s.script++
		}
	}
	return s
}

// plausible rejects text where more than half of the runes are replacement
// or control characters.
func (s textStats) plausible() bool {
	if s.total == 0 {
		return true
	}
	return (s.replacement+s.control)*2 <= s.total
}

// clean reports whether a decode lost nothing.
func (s textStats) clean() bool {
	return s.replacement == 0 && s.nul == 0 && s.plausible()
}

// lossyAcceptable reports whether a decode with replacements is still usable:
// a strict majority of runes survived and, if a script is expected, at least
// one rune of it is present.
func (s textStats) lossyAcceptable(scriptExpected bool) bool {
	if s.total == 0 || !s.plausible() {
		return false
	}
	if (s.total-s.replacement)*2 <= s.total {
		return false
	}
	return !scriptExpected || s.script > 0
}

// goodRatio is the share of runes that are not replacement characters.
func (s textStats) goodRatio() float64 {
	if s.total == 0 {
		return 1
	}
	return float64(s.total-s.replacement) / float64(s.total)
}
