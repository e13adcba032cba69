package encoding

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/novel-sorter/internal/types"
)

// Problem kinds reported by Analyze
const (
	ProblemNone          = ""
	ProblemUnresolved    = "unresolved"
	ProblemLegacy        = "legacy_encoding"
	ProblemLossy         = "lossy_decode"
	ProblemLowConfidence = "low_confidence"
	ProblemUnreadable    = "unreadable"
)

// FileReport describes the encoding state of one file without changing it.
type FileReport struct {
	Path             string             `json:"path"`
	Name             string             `json:"name"`
	Size             int64              `json:"size"`
	DetectedEncoding string             `json:"detected_encoding,omitempty"`
	Confidence       float64            `json:"confidence"`
	Method           types.DecodeMethod `json:"method,omitempty"`
	HasProblem       bool               `json:"has_problem"`
	ProblemType      string             `json:"problem_type,omitempty"`
	Detail           string             `json:"detail,omitempty"`
	CanFix           bool               `json:"can_fix"`
}

// ReadFile loads a file for resolution.
func ReadFile(path string) (types.RawFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.RawFile{}, &Error{Message: fmt.Sprintf("failed to read %s", path), Cause: err}
	}
	return types.RawFile{Path: path, Content: data, Size: int64(len(data))}, nil
}

// Analyze reports whether a file needs repair and whether repair can succeed.
func (r *Resolver) Analyze(path string) FileReport {
	report := FileReport{Path: path, Name: filepath.Base(path)}

	raw, err := ReadFile(path)
	if err != nil {
		report.HasProblem = true
		report.ProblemType = ProblemUnreadable
		report.Detail = err.Error()
		return report
	}
	report.Size = raw.Size

	decoded, ok := r.Resolve(raw.Content)
	if !ok {
		report.HasProblem = true
		report.ProblemType = ProblemUnresolved
		report.Detail = fmt.Sprintf("no plausible decoding among %d candidates", len(r.candidates))
		return report
	}

	report.DetectedEncoding = decoded.Encoding
	report.Confidence = decoded.Confidence
	report.Method = decoded.Method
	if decoded.Canonical() {
		return report
	}

	report.HasProblem = true
	report.CanFix = true
	switch {
	case decoded.Method == types.MethodLossy:
		report.ProblemType = ProblemLossy
		report.Detail = fmt.Sprintf("readable as %s with replacements (%.2f)", decoded.Encoding, decoded.Confidence)
	case decoded.Confidence < r.minConfidence:
		report.ProblemType = ProblemLowConfidence
		report.Detail = fmt.Sprintf("%s at confidence %.2f", decoded.Encoding, decoded.Confidence)
	default:
		report.ProblemType = ProblemLegacy
		report.Detail = fmt.Sprintf("non-target encoding (%s)", decoded.Encoding)
	}
	return report
}
