package db

import (
	"time"

	"github.com/google/uuid"
)

// Run statuses
const (
	RunStatusCompleted = "completed"
	RunStatusCancelled = "cancelled"
	RunStatusDryRun    = "dry_run"
)

// Run represents a stored classification run
type Run struct {
	ID             uuid.UUID      `json:"id"`
	LibraryDir     string         `json:"library_dir"`
	Status         string         `json:"status"`
	StartedAt      time.Time      `json:"started_at"`
	FinishedAt     *time.Time     `json:"finished_at,omitempty"`
	Total          int            `json:"total"`
	Processed      int            `json:"processed"`
	Classified     int            `json:"classified"`
	SecondaryCheck int            `json:"secondary_check"`
	Pending        int            `json:"pending"`
	Failed         int            `json:"failed"`
	EncodingFixed  int            `json:"encoding_fixed"`
	PerCategory    map[string]int `json:"per_category"`
}

// outcomeColumns are the file_outcomes columns written by SaveBatch, in
// the order produced by outcomeRows.
var outcomeColumns = []string{
	"run_id", "seq", "path", "status", "category", "reason", "destination",
	"encoding", "confidence", "encoding_fixed", "top_score", "candidates", "error",
}
