package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/novel-sorter/internal/encoding"
)

// File names of the encoding scan
const (
	ScanPrefix      = "encoding_scan_report"
	FixPrefix       = "encoding_fix_report"
	ProblemListName = "encoding_problems_current.json"
)

// Scan is the full report of an encoding scan
type Scan struct {
	ScanTime   time.Time             `json:"scan_time"`
	ScanDir    string                `json:"scan_dir"`
	TotalFiles int                   `json:"total_files"`
	Problems   []encoding.FileReport `json:"problem_files"`
	Valid      []encoding.FileReport `json:"valid_files"`
}

// ProblemList is the current set of files needing repair
type ProblemList struct {
	Timestamp      string                `json:"timestamp"`
	ScanDir        string                `json:"scan_dir"`
	ProblemFiles   []encoding.FileReport `json:"problem_files"`
	TotalProblems  int                   `json:"total_problems"`
	ScanReportFile string                `json:"scan_report_file"`
}

// NewScan splits file reports into problems and valid files.
func NewScan(scanDir string, reports []encoding.FileReport, now time.Time) Scan {
	s := Scan{
		ScanTime:   now,
		ScanDir:    scanDir,
		TotalFiles: len(reports),
		Problems:   []encoding.FileReport{},
		Valid:      []encoding.FileReport{},
	}
	for _, r := range reports {
		if r.HasProblem {
			s.Problems = append(s.Problems, r)
		} else {
			s.Valid = append(s.Valid, r)
		}
	}
	return s
}

// WriteScan writes the scan report and replaces the current problem list.
// It returns the path of the scan report.
func WriteScan(logsDir string, scan Scan) (string, error) {
	reportPath, err := writeJSON(logsDir, ScanPrefix, scan.ScanTime, scan)
	if err != nil {
		return "", err
	}
	list := ProblemList{
		Timestamp:      scan.ScanTime.Format(TimestampLayout),
		ScanDir:        scan.ScanDir,
		ProblemFiles:   scan.Problems,
		TotalProblems:  len(scan.Problems),
		ScanReportFile: reportPath,
	}
	if err := replaceJSON(filepath.Join(logsDir, ProblemListName), list); err != nil {
		return reportPath, err
	}
	return reportPath, nil
}

// LoadProblemList reads the current problem list. It returns
// ErrNoProblemList when no scan has been recorded.
func LoadProblemList(logsDir string) (*ProblemList, error) {
	path := filepath.Join(logsDir, ProblemListName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoProblemList
		}
		return nil, &Error{Message: fmt.Sprintf("failed to read %s", path), Cause: err}
	}
	var list ProblemList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, &Error{Message: fmt.Sprintf("failed to parse %s", path), Cause: err}
	}
	return &list, nil
}

// FixEntry is the result of repairing one listed file
type FixEntry struct {
	Path       string `json:"path"`
	Status     string `json:"status"` // repaired, canonical, failed
	Encoding   string `json:"encoding,omitempty"`
	BackupPath string `json:"backup_path,omitempty"`
	Verified   bool   `json:"verified"`
	Error      string `json:"error,omitempty"`
}

// Fix is the report of a repair pass over the problem list
type Fix struct {
	FixTime  time.Time  `json:"fix_time"`
	Total    int        `json:"total"`
	Repaired int        `json:"repaired"`
	Failed   int        `json:"failed"`
	Verified int        `json:"verified"`
	Files    []FixEntry `json:"files"`
}

// Add records one entry and updates the counters.
func (f *Fix) Add(e FixEntry) {
	f.Total++
	switch e.Status {
	case "repaired":
		f.Repaired++
	case "failed":
		f.Failed++
	}
	if e.Verified {
		f.Verified++
	}
	f.Files = append(f.Files, e)
}

// WriteFix writes a repair report into logsDir.
func WriteFix(logsDir string, fix Fix) (string, error) {
	if fix.Files == nil {
		fix.Files = []FixEntry{}
	}
	return writeJSON(logsDir, FixPrefix, fix.FixTime, fix)
}
