package etl

import (
	"context"
	"time"

	"github.com/BartekS5/feedsync/pkg/logger"
	"github.com/BartekS5/feedsync/pkg/metrics"
)

// Outcome summarizes how a run ended.
type Outcome string

const (
	OutcomeSuccess     Outcome = "success"
	OutcomeEmpty       Outcome = "empty"
	OutcomeDryRun      Outcome = "dry_run"
	OutcomeFetchFailed Outcome = "fetch_failed"
	OutcomeLoadFailed  Outcome = "load_failed"
)

// Failed reports whether the outcome should fail the process.
func (o Outcome) Failed() bool {
	return o == OutcomeFetchFailed || o == OutcomeLoadFailed
}

// Report is the result of one pipeline run.
type Report struct {
	Feed        string
	Fetched     int
	Transformed int
	Skipped     int
	Loaded      int
	Outcome     Outcome
	Duration    time.Duration
}

// Pipeline runs fetch, normalize and load once for a single feed.
type Pipeline[E, R any] struct {
	Feed       string
	Fetcher    Fetcher[E]
	Normalizer Normalizer[E, R]
	Loader     Loader[R]
	DryRun     bool
	Metrics    *metrics.Run
}

func NewPipeline[E, R any](feed string, f Fetcher[E], n Normalizer[E, R], l Loader[R], dryRun bool) *Pipeline[E, R] {
	return &Pipeline[E, R]{
		Feed:       feed,
		Fetcher:    f,
		Normalizer: n,
		Loader:     l,
		DryRun:     dryRun,
		Metrics:    metrics.NewRun(feed),
	}
}

// Run executes the pipeline. A fetch failure skips normalize and load; an
// empty normalized batch skips load. Failures are returned as *StageError
// along with the report.
func (p *Pipeline[E, R]) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{Feed: p.Feed}
	logger.Infof("--- Starting %s ETL pipeline (dry run: %v) ---", p.Feed, p.DryRun)

	defer func() {
		report.Duration = time.Since(start)
		p.Metrics.Finish(!report.Outcome.Failed(), time.Now())
		logger.Infof("--- %s ETL pipeline finished: %s (fetched %d, transformed %d, skipped %d, loaded %d) in %s ---",
			p.Feed, report.Outcome, report.Fetched, report.Transformed, report.Skipped, report.Loaded,
			report.Duration.Round(time.Millisecond))
	}()

	stageStart := time.Now()
	items, err := p.Fetcher.Fetch(ctx)
	p.Metrics.ObserveStage(string(StageFetch), stageStart)
	if err != nil {
		report.Outcome = OutcomeFetchFailed
		return report, &StageError{Stage: StageFetch, Err: err}
	}
	report.Fetched = len(items)
	p.Metrics.Fetched.Add(float64(len(items)))

	stageStart = time.Now()
	records, skipped := p.Normalizer.Normalize(items)
	p.Metrics.ObserveStage(string(StageTransform), stageStart)
	report.Transformed = len(records)
	report.Skipped = len(skipped)
	p.Metrics.Transformed.Add(float64(len(records)))
	for _, s := range skipped {
		p.Metrics.Skipped.WithLabelValues(s.Reason()).Inc()
		logger.Debugf("skipped: %v", s)
	}

	if len(records) == 0 {
		logger.Warn("No usable records, skipping load.")
		report.Outcome = OutcomeEmpty
		return report, nil
	}

	if p.DryRun {
		logger.Infof("[DRY RUN] Would load %d records", len(records))
		report.Outcome = OutcomeDryRun
		return report, nil
	}

	stageStart = time.Now()
	loaded, err := p.Loader.Load(ctx, records)
	p.Metrics.ObserveStage(string(StageLoad), stageStart)
	if err != nil {
		logger.Errorf("Error during load: %v", err)
		report.Outcome = OutcomeLoadFailed
		return report, &StageError{Stage: StageLoad, Err: err}
	}
	report.Loaded = loaded
	p.Metrics.Loaded.Add(float64(loaded))
	report.Outcome = OutcomeSuccess
	return report, nil
}
