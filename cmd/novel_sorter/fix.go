package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/novel-sorter/internal/encoding"
	"github.com/jonathan/novel-sorter/internal/observability"
	"github.com/jonathan/novel-sorter/internal/report"
)

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Repair the files of the last encoding scan",
	Long: `Rewrites every file on the current problem list (written by scan) as UTF-8.
Each original is copied to the backup directory first and the file is replaced
atomically. Repaired files are analyzed again to verify them.

With --dir the directory is analyzed directly instead of reading the problem list.`,
	RunE: runFix,
}

var (
	fixLibrary libraryFlags
	fixDir     string
)

func init() {
	fixLibrary.register(fixCmd)
	fixCmd.Flags().StringVar(&fixDir, "dir", "", "Analyze and repair this directory instead of the problem list")

	rootCmd.AddCommand(fixCmd)
}

func runFix(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	cfg, err := fixLibrary.load(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	resolver, err := encoding.NewResolver(cfg.Encoding, encoding.NewChardetDetector())
	if err != nil {
		return err
	}
	repairer := encoding.NewRepairer(resolver, cfg.BackupPath())

	var targets []encoding.FileReport
	listDir := fixDir
	if fixDir != "" {
		dir, err := absDir(fixDir, "")
		if err != nil {
			return err
		}
		listDir = dir
		files, err := listLibraryText(cfg, dir, true)
		if err != nil {
			return err
		}
		for _, r := range analyzeFiles(resolver, files, cfg.Processing.Workers) {
			if r.HasProblem {
				targets = append(targets, r)
			}
		}
	} else {
		list, err := report.LoadProblemList(cfg.LogsPath())
		if err != nil {
			if errors.Is(err, report.ErrNoProblemList) {
				return fmt.Errorf("%w (%s)", err, cfg.LogsPath())
			}
			return err
		}
		listDir = list.ScanDir
		targets = list.ProblemFiles
	}

	if len(targets) == 0 {
		_, _ = fmt.Fprintln(out, "No files need repair")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fix, remaining := fixTargets(ctx, repairer, resolver, targets)

	reportPath, err := report.WriteFix(cfg.LogsPath(), fix)
	if err != nil {
		return fmt.Errorf("failed to write fix report: %w", err)
	}
	// the list keeps what is still broken and what was never attempted
	if _, err := report.WriteScan(cfg.LogsPath(), report.NewScan(listDir, remaining, time.Now())); err != nil {
		return fmt.Errorf("failed to update problem list: %w", err)
	}

	observability.NewPrinter(out).PrintFixSummary(fix)
	_, _ = fmt.Fprintf(out, "Report: %s\n", reportPath)
	if skipped := len(targets) - fix.Total; skipped > 0 {
		_, _ = fmt.Fprintf(out, "Cancelled: %d file(s) left on the problem list\n", skipped)
	}

	if fix.Failed > 0 {
		return fmt.Errorf("%d file(s) could not be repaired", fix.Failed)
	}
	return nil
}

// fixTargets repairs targets in order until ctx is done. Attempted targets are
// analyzed again; the returned reports hold those followed by the targets
// never attempted, unchanged.
func fixTargets(ctx context.Context, repairer *encoding.Repairer, resolver *encoding.Resolver, targets []encoding.FileReport) (report.Fix, []encoding.FileReport) {
	fix := report.Fix{FixTime: time.Now()}
	reports := make([]encoding.FileReport, 0, len(targets))
	for i, target := range targets {
		if ctx.Err() != nil {
			log.Printf("[FIX] Cancelled with %d file(s) not attempted", len(targets)-i)
			reports = append(reports, targets[i:]...)
			break
		}
		entry := repairOne(ctx, repairer, target)
		after := resolver.Analyze(target.Path)
		entry.Verified = entry.Status != "failed" && !after.HasProblem
		fix.Add(entry)
		reports = append(reports, after)
	}
	return fix, reports
}

func repairOne(ctx context.Context, repairer *encoding.Repairer, target encoding.FileReport) report.FixEntry {
	entry := report.FixEntry{Path: target.Path}
	if !target.CanFix {
		entry.Status = "failed"
		entry.Error = fmt.Sprintf("cannot be repaired: %s", target.ProblemType)
		return entry
	}

	outcome, err := repairer.Repair(ctx, target.Path)
	if err != nil {
		entry.Status = "failed"
		entry.Error = err.Error()
		return entry
	}
	entry.Status = string(outcome.Status)
	entry.Encoding = outcome.Encoding
	entry.BackupPath = outcome.BackupPath
	return entry
}
