package observability

import (
	"fmt"
	"strings"

	"github.com/jonathan/novel-sorter/internal/report"
)

// PrintStatistics outputs the current state of the library.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintStatistics(stats *report.Statistics) {
	if stats == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Pending:  %d\n", stats.PendingFiles))
	sb.WriteString(fmt.Sprintf("Holding:  %d\n", stats.HoldingFiles))
	total := 0
	for _, n := range stats.Categories {
		total += n
	}
	sb.WriteString(fmt.Sprintf("Sorted:   %d\n", total))
	if len(stats.Categories) > 0 {
		sb.WriteString("\n")
		for _, cat := range sortedKeys(stats.Categories) {
			sb.WriteString(fmt.Sprintf("  %s: %d\n", cat, stats.Categories[cat]))
		}
	}
	p.printBox("LIBRARY STATISTICS", sb.String())

	if len(stats.RecentReports) == 0 {
		neutralColor.Fprintln(p.out, "No classification runs recorded")
		return
	}
	neutralColor.Fprintln(p.out, "Recent runs:")
	for _, r := range stats.RecentReports {
		s := r.Summary
		fmt.Fprintf(p.out, "  %s  processed %d, classified %d, secondary %d, pending %d, failed %d\n",
			s.StartedAt.Format("2006-01-02 15:04:05"), s.Processed, s.Classified, s.SecondaryCheck, s.Pending, s.Failed)
	}
}

// PrintFixSummary outputs the result of a repair pass.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintFixSummary(fix report.Fix) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Files:     %d\n", fix.Total))
	sb.WriteString(fmt.Sprintf("Repaired:  %d\n", fix.Repaired))
	sb.WriteString(fmt.Sprintf("Verified:  %d\n", fix.Verified))
	sb.WriteString(fmt.Sprintf("Failed:    %d\n", fix.Failed))
	p.printBox("ENCODING FIX", sb.String())

	for _, f := range fix.Files {
		if f.Status == "failed" {
			failColor.Fprint(p.out, "✗ ")
			fmt.Fprintf(p.out, "%s: %s\n", f.Path, f.Error)
		}
	}
	if fix.Failed == 0 {
		okColor.Fprintln(p.out, "All listed files are canonical UTF-8")
	}
}
