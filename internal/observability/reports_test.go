package observability

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jonathan/novel-sorter/internal/db"
	"github.com/jonathan/novel-sorter/internal/report"
	"github.com/jonathan/novel-sorter/internal/types"
)

func TestPrintStatistics(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintStatistics(&report.Statistics{
		PendingFiles: 4,
		HoldingFiles: 1,
		Categories:   map[string]int{"10-科幻": 3, "01-玄幻": 2},
		RecentReports: []report.RecentReport{{
			File:    "classification_report_20260101_000000.json",
			Summary: report.Summary{StartedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Processed: 9, Classified: 5},
		}},
	})
	output := buf.String()

	assert.Contains(t, output, "Pending:  4")
	assert.Contains(t, output, "Sorted:   5")
	assert.Contains(t, output, "01-玄幻: 2")
	assert.Contains(t, output, "2026-01-01 00:00:00  processed 9, classified 5")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("01-玄幻")), bytes.Index(buf.Bytes(), []byte("10-科幻")))
}

func TestPrintStatistics_NoRuns(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintStatistics(&report.Statistics{Categories: map[string]int{}})
	assert.Contains(t, buf.String(), "No classification runs recorded")

	buf.Reset()
	NewPrinter(&buf).PrintStatistics(nil)
	assert.Empty(t, buf.String())
}

func TestPrintFixSummary(t *testing.T) {
	var buf bytes.Buffer
	fix := report.Fix{}
	fix.Add(report.FixEntry{Path: "/lib/a.txt", Status: "repaired", Verified: true})
	fix.Add(report.FixEntry{Path: "/lib/b.txt", Status: "failed", Error: "unresolved"})

	NewPrinter(&buf).PrintFixSummary(fix)
	output := buf.String()

	assert.Contains(t, output, "Repaired:  1")
	assert.Contains(t, output, "Failed:    1")
	assert.Contains(t, output, "/lib/b.txt: unresolved")
	assert.NotContains(t, output, "All listed files")
}

func TestPrintRuns(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRuns(nil)
	assert.Contains(t, buf.String(), "No stored runs")

	buf.Reset()
	id := uuid.MustParse("6f1c2b52-3a4e-4f55-9a51-0c7d2f1e8a11")
	p.PrintRuns([]db.Run{{
		ID:         id,
		Status:     db.RunStatusCompleted,
		StartedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Processed:  3,
		Classified: 2,
		Failed:     1,
	}})
	assert.Contains(t, buf.String(), id.String()+"  2026-03-01 12:00:00  completed")
	assert.Contains(t, buf.String(), "processed 3, classified 2, secondary 0, pending 0, failed 1")
}

func TestPrintRun(t *testing.T) {
	var buf bytes.Buffer
	run := &db.Run{
		ID:          uuid.New(),
		LibraryDir:  "/lib",
		Status:      db.RunStatusCancelled,
		Total:       3,
		Processed:   2,
		PerCategory: map[string]int{"10-科幻": 1},
	}
	NewPrinter(&buf).PrintRun(run, []types.FileOutcome{
		{Path: "/lib/00-pending/a.txt", Status: types.StatusClassified, Category: "10-科幻"},
		{Path: "/lib/00-pending/b.txt", Status: types.StatusPending, Reason: "no keyword matches"},
	})
	output := buf.String()

	assert.Contains(t, output, "Status:    cancelled")
	assert.Contains(t, output, "Processed: 2 of 3")
	assert.Contains(t, output, "10-科幻: 1")
	assert.Contains(t, output, "/lib/00-pending/a.txt -> 10-科幻")
	assert.Contains(t, output, "/lib/00-pending/b.txt: pending (no keyword matches)")
}
