package scoring

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/jonathan/novel-sorter/internal/config"
	"github.com/jonathan/novel-sorter/internal/types"
)

// Normalize lower-cases text and collapses every run of whitespace into a
// single space.
func Normalize(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	space := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		space = false
		sb.WriteRune(unicode.ToLower(r))
	}
	return sb.String()
}

// FilenameOffset marks the fragment holding the file name.
const FilenameOffset = -1

// WithFilename appends the stem of path as an extra fragment when the
// configuration scores file names.
func WithFilename(sample types.Sample, path string, scoring config.Scoring) types.Sample {
	if !scoring.FilenameScored() || path == "" {
		return sample
	}
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		return sample
	}
	fragments := make([]types.Fragment, 0, len(sample.Fragments)+1)
	fragments = append(fragments, sample.Fragments...)
	fragments = append(fragments, types.Fragment{Offset: FilenameOffset, Text: stem})
	return types.Sample{Fragments: fragments}
}
