package encoding

import (
	"bytes"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/novel-sorter/internal/charset"
	"github.com/jonathan/novel-sorter/internal/config"
	"github.com/jonathan/novel-sorter/internal/types"
)

// Confidence assigned to decodes that did not come from the detector.
const (
	exactConfidence    = 1.0
	fallbackConfidence = 0.8
)

// Resolver turns raw bytes into canonical UTF-8 text. It holds no mutable
// state and is safe for concurrent use.
type Resolver struct {
	detector      Detector
	minConfidence float64
	supported     map[string]bool
	candidates    []*charset.Charset
	script        *unicode.RangeTable
}

// NewResolver builds a Resolver from the encoding section of the
// configuration. A nil detector skips statistical detection and goes straight
// to the fallback candidates.
func NewResolver(cfg config.Encoding, detector Detector) (*Resolver, error) {
	r := &Resolver{
		detector:      detector,
		minConfidence: cfg.MinConfidence,
		supported:     make(map[string]bool, len(cfg.SupportedEncodings)),
		script:        cfg.Script(),
	}
	for _, label := range cfg.SupportedEncodings {
		cs, ok := charset.Lookup(label)
		if !ok {
			return nil, &config.InvalidError{Problems: []string{fmt.Sprintf("unknown encoding %q", label)}}
		}
		r.supported[cs.Name] = true
	}
	for _, label := range cfg.DetectionEncodings {
		cs, ok := charset.Lookup(label)
		if !ok {
			return nil, &config.InvalidError{Problems: []string{fmt.Sprintf("unknown encoding %q", label)}}
		}
		r.candidates = append(r.candidates, cs)
	}
	return r, nil
}

// Candidates returns the names of the fallback encodings in trial order.
func (r *Resolver) Candidates() []string {
	names := make([]string, len(r.candidates))
	for i, cs := range r.candidates {
		names[i] = cs.Name
	}
	return names
}

// Resolve decodes data. It reports ok=false when no candidate yields a
// plausible text; it never guesses.
func (r *Resolver) Resolve(data []byte) (types.DecodedText, bool) {
	if decoded, ok := r.fromBOM(data); ok {
		return decoded, true
	}

	if utf8.Valid(data) && bytes.IndexByte(data, 0) < 0 {
		text := string(data)
		if inspect(text, nil).plausible() {
			return types.DecodedText{
				Text:       text,
				Encoding:   "utf-8",
				Confidence: exactConfidence,
				Method:     types.MethodCanonical,
			}, true
		}
	}

	if decoded, ok := r.fromDetector(data); ok {
		return decoded, true
	}

	for _, cs := range r.candidates {
		if decoded, ok := r.attempt(cs, data); ok {
			return decoded, true
		}
	}
	return types.DecodedText{}, false
}

var boms = []struct {
	mark  []byte
	label string
}{
	// UTF-32LE must be checked before UTF-16LE, they share a prefix
	{[]byte{0xFF, 0xFE, 0x00, 0x00}, "utf-32le"},
	{[]byte{0x00, 0x00, 0xFE, 0xFF}, "utf-32be"},
	{[]byte{0xEF, 0xBB, 0xBF}, "utf-8"},
	{[]byte{0xFF, 0xFE}, "utf-16le"},
	{[]byte{0xFE, 0xFF}, "utf-16be"},
}

func (r *Resolver) fromBOM(data []byte) (types.DecodedText, bool) {
	for _, b := range boms {
		if !bytes.HasPrefix(data, b.mark) {
			continue
		}
		cs, _ := charset.Lookup(b.label)
		text := cs.Decode(data[len(b.mark):])
		if !inspect(text, nil).clean() {
			return types.DecodedText{}, false
		}
		return types.DecodedText{
			Text:       text,
			Encoding:   cs.Name,
			Confidence: exactConfidence,
			Method:     types.MethodBOM,
		}, true
	}
	return types.DecodedText{}, false
}

func (r *Resolver) fromDetector(data []byte) (types.DecodedText, bool) {
	if r.detector == nil {
		return types.DecodedText{}, false
	}
	det, ok := r.detector.Detect(data)
	if !ok || det.Confidence < r.minConfidence {
		return types.DecodedText{}, false
	}
	cs, ok := charset.Lookup(det.Charset)
	if !ok || !r.supported[cs.Name] {
		return types.DecodedText{}, false
	}
	text := cs.Decode(data)
	if !inspect(text, nil).clean() {
		return types.DecodedText{}, false
	}
	return types.DecodedText{
		Text:       text,
		Encoding:   cs.Name,
		Confidence: det.Confidence,
		Method:     types.MethodDetector,
	}, true
}

// attempt tries one fallback candidate: strict first, then lossy.
func (r *Resolver) attempt(cs *charset.Charset, data []byte) (types.DecodedText, bool) {
	text := cs.Decode(data)
	stats := inspect(text, r.script)

	if stats.clean() {
		return types.DecodedText{
			Text:       text,
			Encoding:   cs.Name,
			Confidence: fallbackConfidence,
			Method:     types.MethodStrict,
		}, true
	}
	if stats.lossyAcceptable(r.script != nil) {
		return types.DecodedText{
			Text:       text,
			Encoding:   cs.Name,
			Confidence: fallbackConfidence * stats.goodRatio(),
			Method:     types.MethodLossy,
		}, true
	}
	return types.DecodedText{}, false
}
