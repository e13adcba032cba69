package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/novel-sorter/internal/config"
	"github.com/jonathan/novel-sorter/internal/encoding"
	"github.com/jonathan/novel-sorter/internal/ingestion"
	"github.com/jonathan/novel-sorter/internal/observability"
	"github.com/jonathan/novel-sorter/internal/report"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Report files that are not canonical UTF-8",
	Long: `Scans the library (or --dir) for text files and reports which need an encoding
repair and whether the repair can succeed. No file is modified. The problem list
written to the logs directory is the input of the fix command.`,
	RunE: runScan,
}

var (
	scanLibrary libraryFlags
	scanDir     string
	scanFlat    bool
)

func init() {
	scanLibrary.register(scanCmd)
	scanCmd.Flags().StringVar(&scanDir, "dir", "", "Directory to scan (defaults to the library)")
	scanCmd.Flags().BoolVar(&scanFlat, "no-recursive", false, "Only scan the top level of the directory")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	cfg, err := scanLibrary.load(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	dir, err := absDir(scanDir, cfg.Paths.LibraryDir)
	if err != nil {
		return err
	}

	resolver, err := encoding.NewResolver(cfg.Encoding, encoding.NewChardetDetector())
	if err != nil {
		return err
	}

	files, err := listLibraryText(cfg, dir, !scanFlat)
	if err != nil {
		return err
	}
	reports := analyzeFiles(resolver, files, cfg.Processing.Workers)

	scan := report.NewScan(dir, reports, time.Now())
	reportPath, err := report.WriteScan(cfg.LogsPath(), scan)
	if err != nil {
		return fmt.Errorf("failed to write scan report: %w", err)
	}

	observability.NewPrinter(out).PrintScanSummary(reports)
	_, _ = fmt.Fprintf(out, "Report: %s\n", reportPath)
	return nil
}

// listLibraryText lists text files under dir, leaving out backups and logs.
func listLibraryText(cfg config.Config, dir string, recursive bool) ([]string, error) {
	all, err := ingestion.ListTextFiles(dir, recursive)
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(all))
	for _, f := range all {
		if withinAny(f, cfg.BackupPath(), cfg.LogsPath()) {
			continue
		}
		files = append(files, f)
	}
	return files, nil
}

// analyzeFiles runs Analyze over files on a bounded pool, keeping input order.
func analyzeFiles(resolver *encoding.Resolver, files []string, workers int) []encoding.FileReport {
	reports := make([]encoding.FileReport, len(files))
	g := new(errgroup.Group)
	g.SetLimit(max(workers, 1))
	for i, f := range files {
		g.Go(func() error {
			reports[i] = resolver.Analyze(f)
			return nil
		})
	}
	_ = g.Wait()
	return reports
}
