// Package pipeline orchestrates a classification batch: read, resolve,
// sample, score and decide in parallel, then repair and move sequentially.
package pipeline

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/novel-sorter/internal/config"
	"github.com/jonathan/novel-sorter/internal/decision"
	"github.com/jonathan/novel-sorter/internal/encoding"
	"github.com/jonathan/novel-sorter/internal/observability"
	"github.com/jonathan/novel-sorter/internal/placement"
	"github.com/jonathan/novel-sorter/internal/sampling"
	"github.com/jonathan/novel-sorter/internal/scoring"
	"github.com/jonathan/novel-sorter/internal/types"
)

// ProgressEvent represents a progress update during a batch
type ProgressEvent struct {
	Processed int              `json:"processed"`
	Total     int              `json:"total"`
	Path      string           `json:"path"`
	Status    types.FileStatus `json:"status"`
	Message   string           `json:"message,omitempty"`
}

// ProgressCallback is called after each file is applied
type ProgressCallback func(event ProgressEvent)

// RunOptions holds configuration for running a batch
type RunOptions struct {
	Files      []string
	Limit      int // 0 uses processing.batch_size; both 0 means all files
	Workers    int // 0 uses processing.workers
	DryRun     bool
	Verbose    bool
	OnProgress ProgressCallback
}

// Coordinator runs batches against one library and configuration.
type Coordinator struct {
	cfg        config.Config
	resolver   *encoding.Resolver
	repairer   *encoding.Repairer
	scorer     *scoring.Scorer
	placer     *placement.Placer
	sampleOpts sampling.Options
	printer    *observability.Printer
}

// Option customises a Coordinator
type Option func(*coordinatorOptions)

type coordinatorOptions struct {
	detector    encoding.Detector
	detectorSet bool
	out         io.Writer
	placer      *placement.Placer
}

// WithDetector replaces the statistical detector. nil disables detection.
func WithDetector(d encoding.Detector) Option {
	return func(o *coordinatorOptions) {
		o.detector = d
		o.detectorSet = true
	}
}

// WithOutput sets where verbose output is written.
func WithOutput(w io.Writer) Option {
	return func(o *coordinatorOptions) {
		o.out = w
	}
}

// WithPlacer shares a Placer with other callers moving into the same library.
func WithPlacer(p *placement.Placer) Option {
	return func(o *coordinatorOptions) {
		o.placer = p
	}
}

// NewCoordinator validates cfg and prepares the stages. An invalid
// configuration returns a *config.InvalidError and nothing is touched.
func NewCoordinator(cfg config.Config, opts ...Option) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := coordinatorOptions{out: io.Discard}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.detectorSet {
		o.detector = encoding.NewChardetDetector()
	}
	if o.placer == nil {
		o.placer = placement.New()
	}

	resolver, err := encoding.NewResolver(cfg.Encoding, o.detector)
	if err != nil {
		return nil, err
	}

	return &Coordinator{
		cfg:        cfg,
		resolver:   resolver,
		repairer:   encoding.NewRepairer(resolver, cfg.BackupPath()),
		scorer:     scoring.NewScorer(cfg.Classification()),
		placer:     o.placer,
		sampleOpts: sampling.FromConfig(cfg.Processing.TextExtraction),
		printer:    observability.NewPrinter(o.out),
	}, nil
}

// Config returns the configuration the coordinator was built with.
func (c *Coordinator) Config() config.Config {
	return c.cfg
}

// analysis is the read-only result for one file
type analysis struct {
	path     string
	raw      []byte
	decoded  types.DecodedText
	table    types.ScoreTable
	decision types.Decision
	err      error
}

// Run processes the files of opts. Per-file failures are recorded in the
// result and never abort the batch. When ctx is cancelled the files applied
// so far are returned with Cancelled set.
func (c *Coordinator) Run(ctx context.Context, opts RunOptions) (*types.BatchResult, error) {
	files := opts.Files
	limit := opts.Limit
	if limit == 0 {
		limit = c.cfg.Processing.BatchSize
	}
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = c.cfg.Processing.Workers
	}
	workers = max(workers, 1)

	result := types.NewBatchResult(c.cfg.Paths.LibraryDir, len(files))
	result.DryRun = opts.DryRun

	log.Printf("[PIPELINE] Run %s: %d file(s), %d worker(s), dry run %v", result.RunID, len(files), workers, opts.DryRun)

	// analysis runs ahead of the mutating stage by at most one window
	window := workers * 2
	for start := 0; start < len(files) && !result.Cancelled; start += window {
		if ctx.Err() != nil {
			result.Cancelled = true
			break
		}
		end := min(start+window, len(files))
		analyses := c.analyzeAll(ctx, files[start:end], workers)

		for _, a := range analyses {
			if ctx.Err() != nil {
				result.Cancelled = true
				break
			}
			outcome := c.apply(a, opts.DryRun)
			result.Record(outcome)

			if opts.Verbose && a.err == nil {
				c.printer.PrintDecision(a.path, a.decoded, a.table, a.decision)
			}
			if opts.OnProgress != nil {
				opts.OnProgress(ProgressEvent{
					Processed: result.Processed,
					Total:     result.Total,
					Path:      a.path,
					Status:    outcome.Status,
					Message:   outcome.Reason,
				})
			}
		}
	}

	result.FinishedAt = time.Now()
	if result.Cancelled {
		log.Printf("[PIPELINE] Run %s cancelled after %d/%d file(s)", result.RunID, result.Processed, result.Total)
	}
	return result, nil
}

// analyzeAll runs the read-only stages for files on a bounded pool. The
// returned slice is in input order.
func (c *Coordinator) analyzeAll(ctx context.Context, files []string, workers int) []analysis {
	out := make([]analysis, len(files))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				out[i] = analysis{path: path, err: err}
				return nil
			}
			out[i] = c.analyze(path)
			return nil
		})
	}
	_ = g.Wait() // per-file errors live in the analyses

	return out
}

func (c *Coordinator) analyze(path string) analysis {
	a := analysis{path: path}

	raw, err := encoding.ReadFile(path)
	if err != nil {
		a.err = err
		return a
	}
	a.raw = raw.Content

	decoded, ok := c.resolver.Resolve(raw.Content)
	if !ok {
		a.err = &encoding.UnresolvedError{Path: path, Tried: c.resolver.Candidates()}
		return a
	}
	a.decoded = decoded

	sample := sampling.Sample(decoded.Text, c.sampleOpts)
	// the holding tag names categories, so it must not score for them
	named := filepath.Join(filepath.Dir(path), placement.OriginalName(filepath.Base(path)))
	sample = scoring.WithFilename(sample, named, c.cfg.Scoring)
	a.table = c.scorer.Score(sample)
	a.decision = decision.Decide(a.table, c.cfg.Thresholds)
	return a
}

// apply repairs and moves one analysed file.
func (c *Coordinator) apply(a analysis, dryRun bool) types.FileOutcome {
	outcome := types.FileOutcome{Path: a.path}
	if a.err != nil {
		log.Printf("[PIPELINE] %s: %v", filepath.Base(a.path), a.err)
		outcome.Status = types.StatusFailed
		outcome.Error = a.err.Error()
		return outcome
	}

	outcome.Encoding = a.decoded.Encoding
	outcome.Confidence = a.decoded.Confidence
	if len(a.table) > 0 {
		outcome.TopScore = a.table[0].Score
	}

	var dir, name string
	base := filepath.Base(a.path)
	switch d := a.decision.(type) {
	case types.DirectClassify:
		outcome.Status = types.StatusClassified
		outcome.Category = d.Category
		outcome.Reason = decision.Rationale(d)
		dir, name = c.cfg.CategoryPath(d.Category), base
	case types.SecondaryCheck:
		outcome.Status = types.StatusSecondary
		outcome.Candidates = d.Candidates
		outcome.Reason = d.Reason
		dir, name = c.cfg.HoldingPath(), placement.HoldingName(base, d.Reason)
	case types.Pending:
		outcome.Status = types.StatusPending
		outcome.Reason = d.Reason
	}

	alreadyPlaced := dir != "" && placement.InDir(a.path, dir)
	if dryRun {
		switch {
		case alreadyPlaced:
			outcome.AlreadyInPlace = true
			outcome.Destination = a.path
		case dir != "":
			outcome.Destination = filepath.Join(dir, name)
		}
		return outcome
	}

	current := a.path
	if !a.decoded.Canonical() {
		repaired, err := c.repairer.Apply(current, a.raw, a.decoded)
		if err != nil {
			log.Printf("[PIPELINE] %s: %v", base, err)
			outcome.Status = types.StatusFailed
			outcome.Error = err.Error()
			return outcome
		}
		outcome.EncodingFixed = repaired.Status == encoding.StatusRepaired
		outcome.BackupPath = repaired.BackupPath
	}

	switch {
	case dir == "":
	case alreadyPlaced:
		outcome.AlreadyInPlace = true
		outcome.Destination = current
	default:
		dest, err := c.placer.Place(current, dir, name)
		if err != nil {
			log.Printf("[PIPELINE] %s: %v", base, err)
			outcome.Status = types.StatusFailed
			outcome.Error = err.Error()
			return outcome
		}
		outcome.Destination = dest
	}
	return outcome
}
