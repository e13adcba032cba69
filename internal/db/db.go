// Package db provides optional PostgreSQL persistence for classification runs.
package db

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/novel-sorter/internal/types"
)

//go:embed schema.sql
var schemaSQL string

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the run tables if they do not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// RunStatus returns the stored status of a batch result.
func RunStatus(result *types.BatchResult) string {
	switch {
	case result.Cancelled:
		return RunStatusCancelled
	case result.DryRun:
		return RunStatusDryRun
	default:
		return RunStatusCompleted
	}
}

// SaveBatch stores a run and its per-file outcomes in one transaction.
// Saving the same run again replaces its outcomes.
func (db *DB) SaveBatch(ctx context.Context, result *types.BatchResult) error {
	perCategory, err := json.Marshal(result.PerCategory)
	if err != nil {
		return fmt.Errorf("failed to marshal category counts: %w", err)
	}
	rows, err := outcomeRows(result)
	if err != nil {
		return err
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var finished *time.Time
	if !result.FinishedAt.IsZero() {
		finished = &result.FinishedAt
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO classification_runs
		   (id, library_dir, status, started_at, finished_at, total, processed,
		    classified, secondary_check, pending, failed, encoding_fixed, per_category)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (id) DO UPDATE SET
		   status = $3, finished_at = $5, total = $6, processed = $7, classified = $8,
		   secondary_check = $9, pending = $10, failed = $11, encoding_fixed = $12,
		   per_category = $13`,
		result.RunID, result.LibraryDir, RunStatus(result), result.StartedAt, finished,
		result.Total, result.Processed, result.Classified, result.SecondaryCheck,
		result.Pending, result.Failed, result.EncodingFixed, perCategory,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM file_outcomes WHERE run_id = $1`, result.RunID); err != nil {
		return fmt.Errorf("failed to clear outcomes: %w", err)
	}

	if len(rows) > 0 {
		n, err := tx.CopyFrom(ctx, pgx.Identifier{"file_outcomes"}, outcomeColumns, pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("failed to save outcomes: %w", err)
		}
		if int(n) != len(rows) {
			return fmt.Errorf("saved %d of %d outcomes", n, len(rows))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// outcomeRows converts outcomes to file_outcomes rows.
func outcomeRows(result *types.BatchResult) ([][]any, error) {
	rows := make([][]any, 0, len(result.Outcomes))
	for i, o := range result.Outcomes {
		var candidates []byte
		if len(o.Candidates) > 0 {
			var err error
			candidates, err = json.Marshal(o.Candidates)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal candidates of %s: %w", o.Path, err)
			}
		}
		rows = append(rows, []any{
			result.RunID, int32(i), o.Path, string(o.Status),
			nullable(o.Category), nullable(o.Reason), nullable(o.Destination),
			nullable(o.Encoding), o.Confidence, o.EncodingFixed, int32(o.TopScore),
			candidates, nullable(o.Error),
		})
	}
	return rows, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// GetRun retrieves a run by ID, or nil if it does not exist
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM classification_runs WHERE id = $1`, runID)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns retrieves the most recent runs
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+runColumns+` FROM classification_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// OutcomesForRun retrieves the stored outcomes of a run in processing order
func (db *DB) OutcomesForRun(ctx context.Context, runID uuid.UUID) ([]types.FileOutcome, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT path, status, COALESCE(category, ''), COALESCE(reason, ''),
		        COALESCE(destination, ''), COALESCE(encoding, ''), COALESCE(confidence, 0),
		        encoding_fixed, top_score, candidates, COALESCE(error, '')
		 FROM file_outcomes WHERE run_id = $1 ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []types.FileOutcome
	for rows.Next() {
		var o types.FileOutcome
		var status string
		var candidates []byte
		if err := rows.Scan(&o.Path, &status, &o.Category, &o.Reason, &o.Destination,
			&o.Encoding, &o.Confidence, &o.EncodingFixed, &o.TopScore, &candidates, &o.Error); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		o.Status = types.FileStatus(status)
		if len(candidates) > 0 {
			if err := json.Unmarshal(candidates, &o.Candidates); err != nil {
				return nil, fmt.Errorf("failed to parse candidates of %s: %w", o.Path, err)
			}
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

const runColumns = `id, library_dir, status, started_at, finished_at, total, processed,
	classified, secondary_check, pending, failed, encoding_fixed, per_category`

func scanRun(row pgx.Row) (*Run, error) {
	var run Run
	var perCategory []byte
	err := row.Scan(&run.ID, &run.LibraryDir, &run.Status, &run.StartedAt, &run.FinishedAt,
		&run.Total, &run.Processed, &run.Classified, &run.SecondaryCheck, &run.Pending,
		&run.Failed, &run.EncodingFixed, &perCategory)
	if err != nil {
		return nil, err
	}
	if len(perCategory) > 0 {
		if err := json.Unmarshal(perCategory, &run.PerCategory); err != nil {
			return nil, fmt.Errorf("failed to parse category counts: %w", err)
		}
	}
	return &run, nil
}
