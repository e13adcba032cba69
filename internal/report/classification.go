package report

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/novel-sorter/internal/config"
	"github.com/jonathan/novel-sorter/internal/types"
)

// ClassificationPrefix names classification report files.
const ClassificationPrefix = "classification_report"

// Summary holds the counters of one run
type Summary struct {
	RunID          uuid.UUID      `json:"run_id"`
	StartedAt      time.Time      `json:"started_at"`
	FinishedAt     time.Time      `json:"finished_at"`
	DurationMillis int64          `json:"duration_ms"`
	Total          int            `json:"total"`
	Processed      int            `json:"processed"`
	Classified     int            `json:"classified"`
	SecondaryCheck int            `json:"secondary_check"`
	Pending        int            `json:"pending"`
	Failed         int            `json:"failed"`
	EncodingFixed  int            `json:"encoding_fixed"`
	PerCategory    map[string]int `json:"per_category"`
	DryRun         bool           `json:"dry_run"`
	Cancelled      bool           `json:"cancelled"`
}

// ConfigInfo records the settings a run used
type ConfigInfo struct {
	LibraryDir    string            `json:"library_dir"`
	Thresholds    config.Thresholds `json:"thresholds"`
	Weights       config.Weights    `json:"weights"`
	Categories    []string          `json:"categories"`
	DuplicateMode string            `json:"duplicate_mode"`
	Seed          uint64            `json:"seed"`
}

// Classification is the on-disk report of a batch run
type Classification struct {
	Summary       Summary             `json:"summary"`
	ProcessingLog []types.FileOutcome `json:"processing_log"`
	ConfigInfo    ConfigInfo          `json:"config_info"`
}

// NewClassification builds the report of a finished batch.
func NewClassification(result *types.BatchResult, cfg config.Config) Classification {
	categories := make([]string, 0, len(cfg.Categories))
	for id := range cfg.Categories {
		categories = append(categories, id)
	}
	slices.Sort(categories)

	outcomes := result.Outcomes
	if outcomes == nil {
		outcomes = []types.FileOutcome{}
	}

	return Classification{
		Summary: Summary{
			RunID:          result.RunID,
			StartedAt:      result.StartedAt,
			FinishedAt:     result.FinishedAt,
			DurationMillis: result.FinishedAt.Sub(result.StartedAt).Milliseconds(),
			Total:          result.Total,
			Processed:      result.Processed,
			Classified:     result.Classified,
			SecondaryCheck: result.SecondaryCheck,
			Pending:        result.Pending,
			Failed:         result.Failed,
			EncodingFixed:  result.EncodingFixed,
			PerCategory:    result.PerCategory,
			DryRun:         result.DryRun,
			Cancelled:      result.Cancelled,
		},
		ProcessingLog: outcomes,
		ConfigInfo: ConfigInfo{
			LibraryDir:    cfg.Paths.LibraryDir,
			Thresholds:    cfg.Thresholds,
			Weights:       cfg.Weights,
			Categories:    categories,
			DuplicateMode: cfg.Scoring.DuplicateMode,
			Seed:          cfg.Processing.TextExtraction.Seed,
		},
	}
}

// WriteClassification writes the report of a batch into logsDir and returns
// its path.
func WriteClassification(logsDir string, result *types.BatchResult, cfg config.Config) (string, error) {
	return writeJSON(logsDir, ClassificationPrefix, result.StartedAt, NewClassification(result, cfg))
}
