// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/jonathan/novel-sorter/internal/encoding"
	"github.com/jonathan/novel-sorter/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

var (
	okColor      = color.New(color.FgGreen, color.Bold)
	warnColor    = color.New(color.FgYellow, color.Bold)
	failColor    = color.New(color.FgRed, color.Bold)
	neutralColor = color.New(color.FgCyan)
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content. Widths are
// measured in terminal cells so CJK text stays aligned.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", runewidth.FillRight(runewidth.Truncate(title, inner, "..."), inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	for _, line := range lines {
		line = runewidth.Truncate(line, inner, "...")
		fmt.Fprintf(p.out, "│ %s │\n", runewidth.FillRight(line, inner))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintDecision outputs the scores and decision for one file.
func (p *Printer) PrintDecision(path string, decoded types.DecodedText, table types.ScoreTable, decision types.Decision) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Encoding: %s (%.2f, %s)\n", decoded.Encoding, decoded.Confidence, decoded.Method))
	sb.WriteString(fmt.Sprintf("Outcome:  %s\n", decision.Outcome()))
	sb.WriteString("\n")

	count := min(len(table), maxItemsToShow)
	for i := 0; i < count; i++ {
		entry := table[i]
		sb.WriteString(fmt.Sprintf("  %s: %d", entry.Category, entry.Score))
		if kws := entry.MatchedKeywords(); len(kws) > 0 {
			sb.WriteString(fmt.Sprintf(" [%s]", strings.Join(kws, ", ")))
		}
		sb.WriteString("\n")
	}
	if len(table) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(table)-maxItemsToShow))
	}

	p.printBox(path, sb.String())
}

// PrintBatchSummary outputs the counters of a finished batch.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintBatchSummary(result *types.BatchResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:             %s\n", result.RunID))
	sb.WriteString(fmt.Sprintf("Processed:       %d/%d\n", result.Processed, result.Total))
	sb.WriteString(fmt.Sprintf("Classified:      %d\n", result.Classified))
	sb.WriteString(fmt.Sprintf("Secondary check: %d\n", result.SecondaryCheck))
	sb.WriteString(fmt.Sprintf("Pending:         %d\n", result.Pending))
	sb.WriteString(fmt.Sprintf("Failed:          %d\n", result.Failed))
	sb.WriteString(fmt.Sprintf("Encoding fixed:  %d\n", result.EncodingFixed))

	if len(result.PerCategory) > 0 {
		sb.WriteString("\n")
		for _, cat := range sortedKeys(result.PerCategory) {
			sb.WriteString(fmt.Sprintf("  %s: %d\n", cat, result.PerCategory[cat]))
		}
	}

	title := "BATCH SUMMARY"
	if result.DryRun {
		title += " (dry run)"
	}
	p.printBox(title, sb.String())

	switch {
	case result.Cancelled:
		warnColor.Fprintf(p.out, "Cancelled after %d of %d files\n", result.Processed, result.Total)
	case result.Failed > 0:
		failColor.Fprintf(p.out, "%d file(s) failed, see the report for details\n", result.Failed)
	default:
		okColor.Fprintln(p.out, "All files processed")
	}
}

// PrintFailures lists the failed files of a batch.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintFailures(result *types.BatchResult) {
	for _, o := range result.Outcomes {
		if o.Status != types.StatusFailed {
			continue
		}
		failColor.Fprint(p.out, "✗ ")
		fmt.Fprintf(p.out, "%s: %s\n", o.Path, o.Error)
	}
}

// PrintScanSummary outputs the result of an encoding scan.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintScanSummary(reports []encoding.FileReport) {
	var problems, fixable int
	var sb strings.Builder
	for _, r := range reports {
		if !r.HasProblem {
			continue
		}
		problems++
		if r.CanFix {
			fixable++
		}
		if problems <= maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", r.Name, r.ProblemType))
		}
	}
	if problems > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", problems-maxItemsToShow))
	}
	header := fmt.Sprintf("Scanned: %d  Problems: %d  Fixable: %d\n", len(reports), problems, fixable)
	p.printBox("ENCODING SCAN", header+sb.String())

	if problems == 0 {
		okColor.Fprintln(p.out, "No encoding problems found")
	} else {
		warnColor.Fprintf(p.out, "%d file(s) need attention\n", problems)
	}
}

// PrintBackups lists backup files.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintBackups(backups []encoding.BackupEntry) {
	if len(backups) == 0 {
		neutralColor.Fprintln(p.out, "No backups")
		return
	}
	var total int64
	for _, b := range backups {
		total += b.Size
		fmt.Fprintf(p.out, "%s  %10d  %s\n", b.ModTime.Format("2006-01-02 15:04:05"), b.Size, b.Name)
	}
	neutralColor.Fprintf(p.out, "%d backup(s), %d bytes\n", len(backups), total)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
