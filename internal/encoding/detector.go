package encoding

import "github.com/gogs/chardet"

// detectSampleSize bounds how many leading bytes the statistical detector sees.
const detectSampleSize = 64 * 1024

// Detection is a statistical guess at the charset of some bytes.
type Detection struct {
	Charset    string
	Confidence float64 // 0-1
}

// Detector guesses the charset of raw bytes.
type Detector interface {
	Detect(data []byte) (Detection, bool)
}

// ChardetDetector is the default Detector, backed by the ICU-derived
// recognizers of github.com/gogs/chardet.
type ChardetDetector struct{}

// NewChardetDetector creates a ChardetDetector.
func NewChardetDetector() *ChardetDetector {
	return &ChardetDetector{}
}

// Detect implements Detector.
func (ChardetDetector) Detect(data []byte) (Detection, bool) {
	if len(data) == 0 {
		return Detection{}, false
	}
	if len(data) > detectSampleSize {
		data = data[:detectSampleSize]
	}
	// a fresh detector per call keeps Detect safe for concurrent use
	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil || result.Charset == "" {
		return Detection{}, false
	}
	return Detection{
		Charset:    result.Charset,
		Confidence: float64(result.Confidence) / 100,
	}, true
}
