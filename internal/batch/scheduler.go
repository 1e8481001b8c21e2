package batch

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Scheduler drives a batch: expansion, capped concurrent dispatch, and
// re-aggregation of outcomes into per-file results in input order.
type Scheduler struct {
	expander      *Expander
	processor     *Processor
	tracker       *Tracker
	maxConcurrent int
	logger        *slog.Logger
}

// SchedulerConfig configures a batch scheduler.
type SchedulerConfig struct {
	Expander      *Expander
	Processor     *Processor
	Tracker       *Tracker
	MaxConcurrent int // Units in flight at once (default 3)
	Logger        *slog.Logger
}

// NewScheduler creates a batch scheduler.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 3
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		expander:      cfg.Expander,
		processor:     cfg.Processor,
		tracker:       cfg.Tracker,
		maxConcurrent: cfg.MaxConcurrent,
		logger:        logger.With("component", "scheduler"),
	}
}

// Run processes all files and returns one FileResult per input file, in
// input order regardless of unit completion order. A unit's terminal
// failure never aborts the batch; the run always completes.
func (s *Scheduler) Run(ctx context.Context, files []DownloadedFile) []FileResult {
	results := make([]*FileResult, len(files))
	outcomes := make([][]UnitOutcome, len(files))

	// Expansion: files that cannot produce units get their result now.
	var work []Unit
	for i, f := range files {
		units, immediate := s.expander.Expand(ctx, i, f)
		if immediate != nil {
			results[i] = immediate
			continue
		}
		outcomes[i] = make([]UnitOutcome, len(units))
		work = append(work, units...)
	}

	s.tracker.Begin(len(work))
	s.logger.Info("batch started",
		"files", len(files), "units", len(work), "max_concurrent", s.maxConcurrent)

	// Dispatch under the concurrency cap. Each unit writes its own
	// outcome slot; g.Wait establishes the ordering for the fold below.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for _, u := range work {
		unit := u
		g.Go(func() error {
			out := s.processor.Process(gctx, unit)
			slot := unit.PageIndex
			if slot < 0 {
				slot = 0
			}
			outcomes[unit.FileIndex][slot] = out
			return nil
		})
	}
	// Workers never return errors; failures live in the outcomes.
	_ = g.Wait()

	for i, f := range files {
		if results[i] != nil {
			continue
		}
		results[i] = foldFile(f, outcomes[i])
	}

	final := make([]FileResult, len(files))
	for i, r := range results {
		final[i] = *r
	}

	snap := s.tracker.Snapshot()
	s.logger.Info("batch complete",
		"units", snap.TotalUnits, "succeeded", snap.Succeeded,
		"failed", snap.Failed, "retried", snap.Retried)

	return final
}

// foldFile builds one FileResult from a file's unit outcomes.
func foldFile(f DownloadedFile, outs []UnitOutcome) *FileResult {
	r := &FileResult{
		Filename:   f.Filename,
		FilePath:   f.Path,
		SourceType: string(f.MediaType),
	}

	if f.MediaType == MediaImage {
		out := outs[0]
		if out.Success() {
			r.OCRData = out.Fields
		} else {
			r.Error = out.Err
		}
		return r
	}

	// PDF: every page is accounted for, even failed ones. The top-level
	// record carries the first successful page's fields.
	r.TotalPages = len(outs)
	r.PageResults = make([]PageResult, len(outs))
	for i, out := range outs {
		pr := PageResult{Filename: out.Unit.Label()}
		if out.Success() {
			pr.OCRData = out.Fields
			if r.OCRData == nil {
				r.OCRData = out.Fields
			}
		} else {
			pr.Error = out.Err
		}
		r.PageResults[i] = pr
		r.PagesProcessed++
	}
	if r.OCRData == nil {
		r.Error = fmt.Sprintf("all %d pages failed OCR", len(outs))
	}
	return r
}
