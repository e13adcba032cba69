package observability

import (
	"fmt"
	"strings"

	"github.com/jonathan/novel-sorter/internal/db"
	"github.com/jonathan/novel-sorter/internal/types"
)

const runTimeLayout = "2006-01-02 15:04:05"

// PrintRuns outputs stored runs, one line each.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintRuns(runs []db.Run) {
	if len(runs) == 0 {
		neutralColor.Fprintln(p.out, "No stored runs")
		return
	}
	for _, r := range runs {
		fmt.Fprintf(p.out, "%s  %s  %-9s processed %d, classified %d, secondary %d, pending %d, failed %d\n",
			r.ID, r.StartedAt.Format(runTimeLayout), r.Status,
			r.Processed, r.Classified, r.SecondaryCheck, r.Pending, r.Failed)
	}
}

// PrintRun outputs one stored run and its outcomes.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintRun(run *db.Run, outcomes []types.FileOutcome) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:       %s\n", run.ID))
	sb.WriteString(fmt.Sprintf("Library:   %s\n", run.LibraryDir))
	sb.WriteString(fmt.Sprintf("Status:    %s\n", run.Status))
	sb.WriteString(fmt.Sprintf("Started:   %s\n", run.StartedAt.Format(runTimeLayout)))
	sb.WriteString(fmt.Sprintf("Processed: %d of %d\n", run.Processed, run.Total))
	for _, cat := range sortedKeys(run.PerCategory) {
		sb.WriteString(fmt.Sprintf("  %s: %d\n", cat, run.PerCategory[cat]))
	}
	p.printBox("STORED RUN", sb.String())

	for _, o := range outcomes {
		switch o.Status {
		case types.StatusClassified:
			okColor.Fprint(p.out, "✓ ")
			fmt.Fprintf(p.out, "%s -> %s\n", o.Path, o.Category)
		case types.StatusFailed:
			failColor.Fprint(p.out, "✗ ")
			fmt.Fprintf(p.out, "%s: %s\n", o.Path, o.Error)
		default:
			warnColor.Fprint(p.out, "? ")
			fmt.Fprintf(p.out, "%s: %s (%s)\n", o.Path, o.Status, o.Reason)
		}
	}
}
