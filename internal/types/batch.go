package types

import (
	"time"

	"github.com/google/uuid"
)

// FileStatus is the final state of one file in a batch run
type FileStatus string

// File statuses
const (
	StatusClassified FileStatus = "classified"
	StatusSecondary  FileStatus = "secondary_check"
	StatusPending    FileStatus = "pending"
	StatusFailed     FileStatus = "failed"
)

// FileOutcome is the audit record for one file
type FileOutcome struct {
	Path           string       `json:"path"`
	Status         FileStatus   `json:"status"`
	Category       string       `json:"category,omitempty"`
	Candidates     []ScoreEntry `json:"candidates,omitempty"`
	Reason         string       `json:"reason,omitempty"`
	Destination    string       `json:"destination,omitempty"`
	Encoding       string       `json:"encoding,omitempty"`
	Confidence     float64      `json:"confidence,omitempty"`
	EncodingFixed  bool         `json:"encoding_fixed"`
	BackupPath     string       `json:"backup_path,omitempty"`
	AlreadyInPlace bool         `json:"already_in_place,omitempty"`
	TopScore       int          `json:"top_score"`
	Error          string       `json:"error,omitempty"`
}

// BatchResult aggregates one batch run
type BatchResult struct {
	RunID          uuid.UUID      `json:"run_id"`
	LibraryDir     string         `json:"library_dir"`
	StartedAt      time.Time      `json:"started_at"`
	FinishedAt     time.Time      `json:"finished_at"`
	Total          int            `json:"total"`
	Processed      int            `json:"processed"`
	Classified     int            `json:"classified"`
	SecondaryCheck int            `json:"secondary_check"`
	Pending        int            `json:"pending"`
	Failed         int            `json:"failed"`
	EncodingFixed  int            `json:"encoding_fixed"`
	PerCategory    map[string]int `json:"per_category"`
	Outcomes       []FileOutcome  `json:"outcomes"`
	DryRun         bool           `json:"dry_run,omitempty"`
	Cancelled      bool           `json:"cancelled,omitempty"`
}

// NewBatchResult creates an empty result for a new run.
func NewBatchResult(libraryDir string, total int) *BatchResult {
	return &BatchResult{
		RunID:       uuid.New(),
		LibraryDir:  libraryDir,
		StartedAt:   time.Now(),
		Total:       total,
		PerCategory: make(map[string]int),
		Outcomes:    make([]FileOutcome, 0, total),
	}
}

// Record adds one file outcome and updates the counters.
func (r *BatchResult) Record(o FileOutcome) {
	r.Processed++
	switch o.Status {
	case StatusClassified:
		r.Classified++
		r.PerCategory[o.Category]++
	case StatusSecondary:
		r.SecondaryCheck++
	case StatusPending:
		r.Pending++
	case StatusFailed:
		r.Failed++
	}
	if o.EncodingFixed {
		r.EncodingFixed++
	}
	r.Outcomes = append(r.Outcomes, o)
}
