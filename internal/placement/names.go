package placement

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxNameBytes is the longest file name produced, leaving room for a
// collision suffix below the common 255 byte limit.
const MaxNameBytes = 240

// HoldingName returns the name a file gets in the holding directory:
// "<stem>[<rationale>]<ext>", with characters unsafe in file names replaced
// and the result bounded to MaxNameBytes.
func HoldingName(base, rationale string) string {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	tag := "[" + Sanitize(rationale) + "]"

	if len(stem)+len(tag)+len(ext) > MaxNameBytes {
		room := MaxNameBytes - len(ext) - len(tag)
		if room < MaxNameBytes/2 {
			// keep at least half of the name for the original stem
			room = MaxNameBytes / 2
			tag = "[" + truncate(Sanitize(rationale), MaxNameBytes-len(ext)-room-2) + "]"
		}
		stem = truncate(stem, room)
	}
	return stem + tag + ext
}

// Sanitize replaces path separators, reserved characters and control
// characters with '_'.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			return '_'
		case unicode.IsControl(r):
			return '_'
		}
		return r
	}, s)
}

// truncate cuts s to at most n bytes on a rune boundary.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// OriginalName undoes HoldingName: it drops a trailing "[...]" tag from the
// stem of base. Names without a tag are returned unchanged.
func OriginalName(base string) string {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if !strings.HasSuffix(stem, "]") {
		return base
	}
	open := strings.LastIndex(stem, "[")
	if open <= 0 {
		return base
	}
	return stem[:open] + ext
}
