package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/novel-sorter/internal/db"
	"github.com/jonathan/novel-sorter/internal/observability"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect classification runs stored in the database",
	Long: `Runs are stored by 'classify' when --db-url or DATABASE_URL is set.
These commands read them back.`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent runs, newest first",
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a run and its per-file outcomes",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var errNoDatabase = errors.New("no database configured, use --db-url or " + databaseURLEnv)

var (
	runsDatabaseURL string
	runsLimit       int
)

func init() {
	runsCmd.PersistentFlags().StringVar(&runsDatabaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	runsListCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum number of runs to list")

	runsCmd.AddCommand(runsListCmd, runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

// openRuns connects to the run database named by --db-url or the environment.
func openRuns(ctx context.Context) (*db.DB, error) {
	databaseURL := runsDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv(databaseURLEnv)
	}
	if databaseURL == "" {
		return nil, errNoDatabase
	}
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	if runsLimit <= 0 {
		return fmt.Errorf("--limit must be positive, got %d", runsLimit)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	database, err := openRuns(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := database.ListRuns(ctx, runsLimit)
	if err != nil {
		return err
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintRuns(runs)
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	runID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", args[0], err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	database, err := openRuns(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	run, err := database.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %s not found", runID)
	}
	outcomes, err := database.OutcomesForRun(ctx, runID)
	if err != nil {
		return err
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintRun(run, outcomes)
	return nil
}
