// Package pipeline sequences the ingestion run: fetch ZIP deliveries from
// the mailbox, extract them into the processing directory, fold the new
// files into the master workbooks. Steps run strictly in order; a run is
// idempotent because the aggregation step consults the ingestion ledger.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"npaicli/internal/aggregate"
	"npaicli/internal/archive"
	"npaicli/internal/config"
	"npaicli/internal/mail"
)

// State carries data from one step to the next within a single run.
type State struct {
	ZipPaths  []string
	Extracted []string
}

// Step is one unit of the pipeline.
type Step interface {
	ID() string
	Name() string
	Execute(ctx context.Context, state *State) error
}

// Runner executes steps sequentially, emitting structured progress events
// for whatever observer is attached to the logger.
type Runner struct {
	steps  []Step
	logger *slog.Logger
}

// NewRunner builds a runner over the given steps.
func NewRunner(logger *slog.Logger, steps ...Step) *Runner {
	return &Runner{steps: steps, logger: logger}
}

// Run executes every step in order, stopping at the first failure.
func (r *Runner) Run(ctx context.Context) error {
	state := &State{}
	for _, step := range r.steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		r.logger.Info("step starting",
			slog.String("step", step.ID()),
			slog.String("name", step.Name()))

		if err := step.Execute(ctx, state); err != nil {
			stepErr := newStepError(step.ID(), err)
			r.logger.Error("step failed",
				slog.String("step", step.ID()),
				slog.String("type", string(stepErr.Type)),
				slog.String("error", err.Error()))
			return stepErr
		}

		r.logger.Info("step complete",
			slog.String("step", step.ID()),
			slog.Duration("elapsed", time.Since(start)))
	}
	return nil
}

// NewIngestionRunner assembles the standard fetch → extract → aggregate
// run. A nil fetcher skips the mailbox and works from whatever ZIPs are
// already on disk.
func NewIngestionRunner(cfg *config.Config, fetcher mail.Fetcher, forceFull bool, logger *slog.Logger) *Runner {
	steps := []Step{}
	if fetcher != nil {
		steps = append(steps, &fetchStep{fetcher: fetcher, destDir: cfg.Paths.TempZipDir})
	}
	steps = append(steps,
		&extractStep{zipDir: cfg.Paths.TempZipDir, destDir: cfg.Paths.ProcessedDir, logger: logger},
		&aggregateStep{engine: aggregate.New(cfg.Paths, cfg.Aggregate, logger), forceFull: forceFull},
	)
	return NewRunner(logger, steps...)
}

type fetchStep struct {
	fetcher mail.Fetcher
	destDir string
}

func (s *fetchStep) ID() string   { return "fetch" }
func (s *fetchStep) Name() string { return "Fetch mailbox attachments" }

func (s *fetchStep) Execute(ctx context.Context, state *State) error {
	paths, err := s.fetcher.FetchZIPs(ctx, s.destDir)
	if err != nil {
		return err
	}
	state.ZipPaths = paths
	return nil
}

type extractStep struct {
	zipDir  string
	destDir string
	logger  *slog.Logger
}

func (s *extractStep) ID() string   { return "extract" }
func (s *extractStep) Name() string { return "Extract ZIP archives" }

func (s *extractStep) Execute(ctx context.Context, state *State) error {
	// ZIPs dropped into the directory by hand are picked up alongside the
	// freshly fetched ones.
	zips := state.ZipPaths
	if len(zips) == 0 {
		found, err := listZips(s.zipDir)
		if err != nil {
			return err
		}
		zips = found
	}
	state.Extracted = archive.ExtractAll(zips, s.destDir, s.logger)
	return nil
}

type aggregateStep struct {
	engine    *aggregate.Engine
	forceFull bool
}

func (s *aggregateStep) ID() string   { return "aggregate" }
func (s *aggregateStep) Name() string { return "Aggregate source files" }

func (s *aggregateStep) Execute(ctx context.Context, state *State) error {
	return s.engine.Run(ctx, s.forceFull)
}
