package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jonathan/novel-sorter/internal/config"
	"github.com/jonathan/novel-sorter/internal/ingestion"
)

// RecentReportCount is how many past classification reports Statistics
// summarizes.
const RecentReportCount = 5

// Statistics is a snapshot of the library's current state
type Statistics struct {
	PendingFiles  int            `json:"pending_files"`
	HoldingFiles  int            `json:"holding_files"`
	Categories    map[string]int `json:"categories"`
	RecentReports []RecentReport `json:"recent_reports"`
}

// RecentReport summarizes one past run
type RecentReport struct {
	File    string  `json:"file"`
	Summary Summary `json:"summary"`
}

// CollectStatistics counts text files in the pending, holding and
// category directories and reads the most recent classification reports.
func CollectStatistics(cfg config.Config) (*Statistics, error) {
	stats := &Statistics{
		Categories:    make(map[string]int, len(cfg.Categories)),
		RecentReports: []RecentReport{},
	}

	var err error
	if stats.PendingFiles, err = countText(cfg.PendingPath()); err != nil {
		return nil, err
	}
	if stats.HoldingFiles, err = countText(cfg.HoldingPath()); err != nil {
		return nil, err
	}
	for id := range cfg.Categories {
		n, err := countText(cfg.CategoryPath(id))
		if err != nil {
			return nil, err
		}
		stats.Categories[id] = n
	}

	recent, err := recentClassifications(cfg.LogsPath(), RecentReportCount)
	if err != nil {
		return nil, err
	}
	stats.RecentReports = recent
	return stats, nil
}

func countText(dir string) (int, error) {
	files, err := ingestion.ListTextFiles(dir, false)
	if err != nil {
		return 0, &Error{Message: "failed to list " + dir, Cause: err}
	}
	return len(files), nil
}

// recentClassifications returns up to n reports, newest first. Unreadable
// reports are skipped.
func recentClassifications(logsDir string, n int) ([]RecentReport, error) {
	entries, err := os.ReadDir(logsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RecentReport{}, nil
		}
		return nil, &Error{Message: "failed to read " + logsDir, Cause: err}
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, ClassificationPrefix+"_") || filepath.Ext(name) != ".json" {
			continue
		}
		names = append(names, name)
	}
	// Timestamped names sort chronologically.
	slices.Sort(names)
	slices.Reverse(names)

	out := []RecentReport{}
	for _, name := range names {
		if len(out) == n {
			break
		}
		data, err := os.ReadFile(filepath.Join(logsDir, name))
		if err != nil {
			continue
		}
		var c Classification
		if err := json.Unmarshal(data, &c); err != nil {
			continue
		}
		out = append(out, RecentReport{File: name, Summary: c.Summary})
	}
	return out, nil
}
