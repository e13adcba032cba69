package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/novel-sorter/internal/db"
	"github.com/jonathan/novel-sorter/internal/ingestion"
	"github.com/jonathan/novel-sorter/internal/observability"
	"github.com/jonathan/novel-sorter/internal/pipeline"
	"github.com/jonathan/novel-sorter/internal/placement"
	"github.com/jonathan/novel-sorter/internal/report"
	"github.com/jonathan/novel-sorter/internal/types"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify pending novels into category directories",
	Long: `Processes the files in the pending directory: repairs non-UTF-8 encodings,
scores a sample of each file against the keyword categories and moves it into
its category, into the review directory, or leaves it pending.

Configuration can be loaded from a file using --config. Command-line flags
override config file values.`,
	RunE: runClassify,
}

var (
	classifyLibrary     libraryFlags
	classifyDir         string
	classifyLimit       int
	classifyWorkers     int
	classifyDryRun      bool
	classifyVerbose     bool
	classifyDatabaseURL string
)

func init() {
	classifyLibrary.register(classifyCmd)
	classifyCmd.Flags().StringVar(&classifyDir, "dir", "", "Directory to classify (defaults to the library's pending directory)")
	classifyCmd.Flags().IntVar(&classifyLimit, "limit", 0, "Maximum number of files to process (defaults to processing.batch_size)")
	classifyCmd.Flags().IntVarP(&classifyWorkers, "workers", "w", 0, "Parallel analysis workers (defaults to processing.workers)")
	classifyCmd.Flags().BoolVar(&classifyDryRun, "dry-run", false, "Compute decisions without modifying any file")
	classifyCmd.Flags().BoolVarP(&classifyVerbose, "verbose", "v", false, "Print the scores and decision of every file")

	// Database URL for run persistence
	classifyCmd.Flags().StringVar(&classifyDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	cfg, err := classifyLibrary.load(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("limit") {
		cfg.Processing.BatchSize = classifyLimit
	}
	if cmd.Flags().Changed("workers") {
		cfg.Processing.Workers = classifyWorkers
	}

	placer := placement.New()
	coordinator, err := pipeline.NewCoordinator(cfg, pipeline.WithOutput(out), pipeline.WithPlacer(placer))
	if err != nil {
		return err
	}

	inputDir, err := absDir(classifyDir, cfg.PendingPath())
	if err != nil {
		return err
	}

	// Listing pending files normalizes their extensions, which a dry run
	// must not do.
	var files []string
	if classifyDryRun {
		files, err = ingestion.ListTextFiles(inputDir, false)
	} else {
		files, err = ingestion.ListPending(inputDir, placer)
	}
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", inputDir, err)
	}

	if len(files) == 0 {
		_, _ = fmt.Fprintf(out, "No text files in %s\n", inputDir)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := pipeline.RunOptions{
		Files:   files,
		DryRun:  classifyDryRun,
		Verbose: classifyVerbose,
	}

	var bar *observability.ProgressBar
	if !classifyVerbose && isTerminal(out) {
		bar = observability.NewProgressBar(out)
		opts.OnProgress = func(e pipeline.ProgressEvent) {
			bar.Update(e.Processed, e.Total, filepath.Base(e.Path))
		}
	}

	result, err := coordinator.Run(ctx, opts)
	if bar != nil {
		bar.Done()
	}
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}

	printer := observability.NewPrinter(out)
	printer.PrintBatchSummary(result)
	printer.PrintFailures(result)

	reportPath, err := report.WriteClassification(cfg.LogsPath(), result, cfg)
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Report: %s\n", reportPath)

	databaseURL := classifyDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv(databaseURLEnv)
	}
	if databaseURL != "" {
		if err := saveRun(databaseURL, result); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "Saved to database (run: %s)\n", result.RunID)
	}

	return nil
}

// saveRun stores a finished batch. It uses its own context so an
// interrupted batch is still recorded.
func saveRun(databaseURL string, result *types.BatchResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := database.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := database.SaveBatch(ctx, result); err != nil {
		return err
	}
	log.Printf("[DB] Saved run %s with %d outcome(s)", result.RunID, len(result.Outcomes))
	return nil
}
