package performance

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus"
)

// Fixture outcomes.
const (
	OutcomeWritten = "written"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Tracker tracks per-fixture timings for a run and mirrors them into
// prometheus collectors on its own registry.
type Tracker struct {
	mu sync.RWMutex

	started        time.Time
	FixtureTimings []FixtureTiming

	registry *prometheus.Registry
	fixtures *prometheus.CounterVec
	skipped  *prometheus.CounterVec
	rows     *prometheus.CounterVec
	duration prometheus.Histogram
}

// FixtureTiming tracks a single fixture
type FixtureTiming struct {
	Fixture  string
	Period   int
	Rows     int
	Skipped  int // facets skipped
	Duration time.Duration
	Outcome  string
	Error    string
}

func NewTracker() *Tracker {
	t := &Tracker{
		started:        time.Now(),
		FixtureTimings: make([]FixtureTiming, 0, 64),
		registry:       prometheus.NewRegistry(),
		fixtures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fplstats_fixtures_total",
				Help: "Fixtures processed, by outcome",
			},
			[]string{"outcome"},
		),
		skipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fplstats_facets_skipped_total",
				Help: "Facets skipped during extraction",
			},
			[]string{"facet", "reason"},
		),
		rows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fplstats_rows_written_total",
				Help: "Artifact rows written, by facet",
			},
			[]string{"facet"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fplstats_fixture_duration_seconds",
			Help:    "Time spent on one fixture from navigation to artifact close",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
	}
	t.registry.MustRegister(t.fixtures, t.skipped, t.rows, t.duration)
	return t
}

// Registry exposes the collectors for promhttp.
func (t *Tracker) Registry() *prometheus.Registry {
	return t.registry
}

// Reset resets all metrics
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.started = time.Now()
	t.FixtureTimings = t.FixtureTimings[:0]
	t.fixtures.Reset()
	t.skipped.Reset()
	t.rows.Reset()
}

// RecordFixture records the outcome of a single fixture
func (t *Tracker) RecordFixture(ft FixtureTiming) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.FixtureTimings = append(t.FixtureTimings, ft)
	t.fixtures.WithLabelValues(ft.Outcome).Inc()
	if ft.Outcome != OutcomeSkipped {
		t.duration.Observe(ft.Duration.Seconds())
	}
}

func (t *Tracker) RecordFacetSkip(facet, reason string) {
	t.skipped.WithLabelValues(facet, reason).Inc()
}

func (t *Tracker) RecordRows(facet string, n int) {
	if n <= 0 {
		return
	}
	t.rows.WithLabelValues(facet).Add(float64(n))
}

// Status is the JSON shape served on /status.
type Status struct {
	Uptime   string         `json:"uptime"`
	Fixtures int            `json:"fixtures"`
	Rows     int            `json:"rows"`
	Outcomes map[string]int `json:"outcomes"`
	Last     *FixtureStatus `json:"last,omitempty"`
}

type FixtureStatus struct {
	Fixture  string `json:"fixture"`
	Period   int    `json:"period"`
	Outcome  string `json:"outcome"`
	Rows     int    `json:"rows"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

// GetStatus returns a snapshot of the run so far
func (t *Tracker) GetStatus() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()

	st := Status{
		Uptime:   time.Since(t.started).Round(time.Second).String(),
		Fixtures: len(t.FixtureTimings),
		Outcomes: make(map[string]int),
	}
	for _, ft := range t.FixtureTimings {
		st.Rows += ft.Rows
		st.Outcomes[ft.Outcome]++
	}
	if n := len(t.FixtureTimings); n > 0 {
		last := t.FixtureTimings[n-1]
		st.Last = &FixtureStatus{
			Fixture:  last.Fixture,
			Period:   last.Period,
			Outcome:  last.Outcome,
			Rows:     last.Rows,
			Duration: last.Duration.Round(time.Millisecond).String(),
			Error:    last.Error,
		}
	}
	return st
}

// PrintSummary renders a per-fixture table to w and logs the totals.
func (t *Tracker) PrintSummary(w io.Writer) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.FixtureTimings) == 0 {
		slog.Info("No fixtures processed")
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Matchday", "Fixture", "Outcome", "Rows", "Skipped facets", "Duration"})

	var totalRows int
	var totalTime time.Duration
	outcomes := make(map[string]int)
	for _, ft := range t.FixtureTimings {
		tw.AppendRow(table.Row{ft.Period, ft.Fixture, ft.Outcome, ft.Rows, ft.Skipped, ft.Duration.Round(time.Millisecond)})
		totalRows += ft.Rows
		totalTime += ft.Duration
		outcomes[ft.Outcome]++
	}
	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d fixtures", len(t.FixtureTimings)), "", totalRows, "", totalTime.Round(time.Millisecond)})
	tw.Render()

	slog.Info("Run summary",
		"fixtures", len(t.FixtureTimings),
		"written", outcomes[OutcomeWritten],
		"skipped", outcomes[OutcomeSkipped],
		"failed", outcomes[OutcomeFailed],
		"rows", totalRows,
		"elapsed", time.Since(t.started).Round(time.Millisecond))
}
