// Package types provides type definitions for structured data used throughout the novel-sorter system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "unicode/utf8"

// RawFile is a file as read from disk before any decoding.
type RawFile struct {
	Path    string `json:"path"`
	Content []byte `json:"-"`
	Size    int64  `json:"size"`
}

// DecodeMethod records how a DecodedText was obtained
type DecodeMethod string

// Decode methods
const (
	MethodCanonical DecodeMethod = "canonical" // already valid UTF-8
	MethodBOM       DecodeMethod = "bom"       // byte order mark
	MethodDetector  DecodeMethod = "detector"  // statistical detection, strict decode
	MethodStrict    DecodeMethod = "strict"    // fallback candidate, strict decode
	MethodLossy     DecodeMethod = "lossy"     // fallback candidate, lossy decode
)

// DecodedText is UTF-8 text recovered from a RawFile.
type DecodedText struct {
	Text       string       `json:"-"`
	Encoding   string       `json:"encoding"`
	Confidence float64      `json:"confidence"` // 0-1
	Method     DecodeMethod `json:"method"`
}

// Canonical reports whether the source bytes were already canonical UTF-8,
// i.e. no rewrite of the file is needed.
func (d DecodedText) Canonical() bool {
	return d.Method == MethodCanonical
}

// Fragment is a contiguous slice of decoded text. Offset is measured in runes.
type Fragment struct {
	Offset int    `json:"offset"`
	Text   string `json:"text"`
}

// Sample is the bounded set of fragments used for scoring.
type Sample struct {
	Fragments []Fragment `json:"fragments"`
}

// Len returns the total number of runes across all fragments.
func (s Sample) Len() int {
	n := 0
	for _, f := range s.Fragments {
		n += utf8.RuneCountInString(f.Text)
	}
	return n
}
