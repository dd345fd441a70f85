package etl

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/BartekS5/feedsync/pkg/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// memoryLoader is a full-replace in-memory store.
type memoryLoader[R any] struct {
	mu     sync.Mutex
	data   []R
	writes int
	err    error
}

func (m *memoryLoader[R]) Load(ctx context.Context, records []R) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.err != nil {
		return 0, m.err
	}
	m.data = append([]R(nil), records...)
	return len(records), nil
}

type stubFetcher[E any] struct {
	items []E
	err   error
}

func (s stubFetcher[E]) Fetch(ctx context.Context) ([]E, error) {
	return s.items, s.err
}

func TestPipelineFetchFailureSkipsLoad(t *testing.T) {
	store := &memoryLoader[models.AttackerRecord]{}
	fetchErr := &FetchError{Kind: ErrTransport, URL: "http://x", Err: errors.New("connection refused")}
	p := NewPipeline[string, models.AttackerRecord]("dshield",
		stubFetcher[string]{err: fetchErr}, NewAttackerNormalizer(), store, false)

	report, err := p.Run(context.Background())

	var se *StageError
	if !errors.As(err, &se) || se.Stage != StageFetch {
		t.Fatalf("error = %v, want fetch StageError", err)
	}
	if !errors.Is(err, ErrTransport) {
		t.Errorf("error should wrap ErrTransport: %v", err)
	}
	if store.writes != 0 {
		t.Errorf("store writes = %d, want 0", store.writes)
	}
	if report.Outcome != OutcomeFetchFailed || !report.Outcome.Failed() {
		t.Errorf("outcome = %s", report.Outcome)
	}
	if got := testutil.ToFloat64(p.Metrics.LastRunOK); got != 0 {
		t.Errorf("last_run_success = %v, want 0", got)
	}
}

func TestPipelineTransportErrorAgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	store := &memoryLoader[models.AttackerRecord]{}
	p := NewPipeline[string, models.AttackerRecord]("dshield",
		NewLineFetcher(url, NewHTTPClient(time.Second)), NewAttackerNormalizer(), store, false)

	if _, err := p.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if store.writes != 0 {
		t.Errorf("store writes = %d, want 0", store.writes)
	}
}

func TestPipelineEmptyBatchSkipsLoad(t *testing.T) {
	tests := []struct {
		name  string
		items []string
	}{
		{"nothing fetched", nil},
		{"nothing usable", []string{"garbage", "1 2 3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memoryLoader[models.AttackerRecord]{}
			p := NewPipeline[string, models.AttackerRecord]("dshield",
				stubFetcher[string]{items: tt.items}, NewAttackerNormalizer(), store, false)

			report, err := p.Run(context.Background())
			if err != nil {
				t.Fatalf("empty batch is not a failure: %v", err)
			}
			if report.Outcome != OutcomeEmpty {
				t.Errorf("outcome = %s, want empty", report.Outcome)
			}
			if store.writes != 0 {
				t.Errorf("store writes = %d, want 0", store.writes)
			}
		})
	}
}

func TestPipelineLoadFailure(t *testing.T) {
	store := &memoryLoader[models.AttackerRecord]{err: errors.New("not authorized")}
	p := NewPipeline[string, models.AttackerRecord]("dshield",
		stubFetcher[string]{items: []string{"5.6.7.8 10 2 2024-01-01 2024-01-02"}}, NewAttackerNormalizer(), store, false)

	report, err := p.Run(context.Background())
	var se *StageError
	if !errors.As(err, &se) || se.Stage != StageLoad {
		t.Fatalf("error = %v, want load StageError", err)
	}
	if report.Outcome != OutcomeLoadFailed || report.Loaded != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestPipelineDryRun(t *testing.T) {
	store := &memoryLoader[models.AttackerRecord]{}
	p := NewPipeline[string, models.AttackerRecord]("dshield",
		stubFetcher[string]{items: []string{"5.6.7.8 10 2 2024-01-01 2024-01-02"}}, NewAttackerNormalizer(), store, true)

	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.Outcome != OutcomeDryRun || report.Transformed != 1 {
		t.Errorf("report = %+v", report)
	}
	if store.writes != 0 {
		t.Errorf("dry run wrote to the store")
	}
}

func TestPipelineReportCounts(t *testing.T) {
	lines, err := DataLines(strings.NewReader(dshieldBody))
	if err != nil {
		t.Fatal(err)
	}
	store := &memoryLoader[models.AttackerRecord]{}
	p := NewPipeline[string, models.AttackerRecord]("dshield",
		stubFetcher[string]{items: lines}, NewAttackerNormalizer(), store, false)

	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// 4 data lines: 2 records, a blank line and "bad line" skipped.
	if report.Fetched != 4 || report.Transformed != 2 || report.Skipped != 2 || report.Loaded != 2 {
		t.Errorf("report = %+v", report)
	}
	if report.Outcome != OutcomeSuccess {
		t.Errorf("outcome = %s", report.Outcome)
	}
	if got := testutil.ToFloat64(p.Metrics.Skipped.WithLabelValues(ReasonShape)); got != 2 {
		t.Errorf("skipped{unrecognized_shape} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(p.Metrics.Loaded); got != 2 {
		t.Errorf("loaded = %v, want 2", got)
	}
}

func stripTimestamps(in []models.AttackerRecord) []models.AttackerRecord {
	out := make([]models.AttackerRecord, len(in))
	for i, r := range in {
		r.IngestionTimestamp = time.Time{}
		out[i] = r
	}
	return out
}

func TestPipelineIdempotent(t *testing.T) {
	srv := serve(t, http.StatusOK, "text/plain", dshieldBody)
	store := &memoryLoader[models.AttackerRecord]{}

	run := func(now time.Time) []models.AttackerRecord {
		n := &AttackerNormalizer{Now: func() time.Time { return now }}
		p := NewPipeline[string, models.AttackerRecord]("dshield",
			NewLineFetcher(srv.URL, NewHTTPClient(5*time.Second)), n, store, false)
		if _, err := p.Run(context.Background()); err != nil {
			t.Fatalf("Run: %v", err)
		}
		return append([]models.AttackerRecord(nil), store.data...)
	}

	first := run(fixedNow)
	second := run(fixedNow.Add(time.Hour))

	if len(first) != 2 || len(second) != len(first) {
		t.Fatalf("record counts %d then %d", len(first), len(second))
	}
	if !reflect.DeepEqual(stripTimestamps(first), stripTimestamps(second)) {
		t.Errorf("second run diverged:\n%+v\n%+v", first, second)
	}
	if second[0].IngestionTimestamp.Equal(first[0].IngestionTimestamp) {
		t.Errorf("ingestion timestamp should be per run")
	}
}
