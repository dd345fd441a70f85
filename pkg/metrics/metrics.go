// Package metrics exposes per-run counters for a feed sync and pushes them
// to a Prometheus Pushgateway, the usual home for batch job metrics.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "feedsync"

// Run holds the collectors of a single pipeline run. The feed name is not a
// metric label; it becomes a Pushgateway grouping key instead.
type Run struct {
	Registry *prometheus.Registry

	Fetched     prometheus.Counter
	Transformed prometheus.Counter
	Skipped     *prometheus.CounterVec
	Loaded      prometheus.Counter
	StageTime   *prometheus.HistogramVec
	LastSuccess prometheus.Gauge
	LastRunOK   prometheus.Gauge

	feed string
}

// NewRun registers a fresh set of collectors for one run of feed.
func NewRun(feed string) *Run {
	reg := prometheus.NewRegistry()

	r := &Run{
		Registry: reg,
		feed:     feed,
		Fetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_fetched_total",
			Help:      "Items retrieved from the upstream feed.",
		}),
		Transformed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_transformed_total",
			Help:      "Items normalized into records.",
		}),
		Skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Items dropped by the normalizer, by reason.",
		}, []string{"reason"}),
		Loaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_loaded_total",
			Help:      "Records written to the target store.",
		}),
		StageTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"stage"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that did not fail.",
		}),
		LastRunOK: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 if the last run did not fail, 0 otherwise.",
		}),
	}

	reg.MustRegister(r.Fetched, r.Transformed, r.Skipped, r.Loaded, r.StageTime, r.LastSuccess, r.LastRunOK)
	return r
}

// ObserveStage records how long stage took since start.
func (r *Run) ObserveStage(stage string, start time.Time) {
	r.StageTime.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// Finish sets the outcome gauges.
func (r *Run) Finish(ok bool, at time.Time) {
	if ok {
		r.LastRunOK.Set(1)
		r.LastSuccess.Set(float64(at.Unix()))
		return
	}
	r.LastRunOK.Set(0)
}

// Push sends the registry to the Pushgateway at url under job "feedsync"
// grouped by feed.
func (r *Run) Push(ctx context.Context, url string) error {
	err := push.New(url, namespace).
		Gatherer(r.Registry).
		Grouping("feed", r.feed).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
