// Package fbref scrapes per-player match statistics from fbref.com match
// reports, walking the league schedule one gameweek at a time.
package fbref

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tahseenmorshed/FPLStats/internal/pkg/config"
	"github.com/tahseenmorshed/FPLStats/internal/pkg/export"
	"github.com/tahseenmorshed/FPLStats/internal/pkg/models"
	"github.com/tahseenmorshed/FPLStats/internal/pkg/performance"
	"github.com/tahseenmorshed/FPLStats/internal/pkg/session"
	"github.com/tahseenmorshed/FPLStats/internal/pkg/storage"
)

// Options wires the collaborators of a Parser. Only Sink is required.
type Options struct {
	Sink    export.ArtifactSink
	Namer   export.Namer
	Mirrors []storage.RowStorage
	Tracker *performance.Tracker
}

// Parser is the run controller: it walks a range of gameweeks and drives
// one MatchPipeline per fixture, strictly one at a time.
type Parser struct {
	cfg      config.ScraperConfig
	sess     session.Session
	listing  *ListingReader
	pipeline *MatchPipeline
	tracker  *performance.Tracker
}

func NewParser(cfg config.ScraperConfig, sess session.Session, opts Options) (*Parser, error) {
	if opts.Sink == nil {
		return nil, fmt.Errorf("fbref: artifact sink is required")
	}
	if cfg.WaitTimeout <= 0 {
		return nil, fmt.Errorf("fbref: wait timeout must be positive")
	}
	listing, err := NewListingReader(sess, cfg.ScheduleURL, cfg.WaitTimeout, cfg.DetailLinkText)
	if err != nil {
		return nil, err
	}
	extractor := NewFacetExtractor(sess, cfg.WaitTimeout)
	tracker := opts.Tracker
	if tracker == nil {
		tracker = performance.NewTracker()
	}

	return &Parser{
		cfg:      cfg,
		sess:     sess,
		listing:  listing,
		pipeline: NewMatchPipeline(sess, listing, extractor, opts.Sink, opts.Namer, opts.Mirrors, cfg.WaitTimeout),
		tracker:  tracker,
	}, nil
}

func (p *Parser) GetName() string { return "fbref" }

// Tracker returns the tracker results are recorded into.
func (p *Parser) Tracker() *performance.Tracker { return p.tracker }

// RunSummary aggregates the outcome of a run.
type RunSummary struct {
	Range    models.PeriodRange
	Results  []FixtureResult
	Written  int
	Skipped  int
	Failed   int
	Rows     int
	Duration time.Duration
}

func (s *RunSummary) add(r FixtureResult) {
	s.Results = append(s.Results, r)
	s.Rows += r.Rows
	switch r.Outcome() {
	case performance.OutcomeWritten:
		s.Written++
	case performance.OutcomeSkipped:
		s.Skipped++
	case performance.OutcomeFailed:
		s.Failed++
	}
}

// Run processes every gameweek of rng in ascending order. Fixture failures
// are recorded in the summary; the returned error is a *FatalError and the
// summary still holds everything completed before it.
func (p *Parser) Run(ctx context.Context, rng models.PeriodRange) (*RunSummary, error) {
	start := time.Now()
	summary := &RunSummary{Range: rng}
	defer func() { summary.Duration = time.Since(start) }()

	if err := rng.Validate(); err != nil {
		return summary, &FatalError{Op: "validate range", Err: err}
	}

	slog.Info("fbref: run started", "start", rng.Start, "end", rng.End, "schedule", p.cfg.ScheduleURL)
	if err := p.listing.Open(ctx); err != nil {
		return summary, err
	}

	for _, period := range rng.Periods() {
		if err := ctx.Err(); err != nil {
			return summary, &FatalError{Op: "run", Err: err}
		}

		entries, err := p.listing.RowsForPeriod(ctx, period)
		if err != nil {
			return summary, err
		}
		slog.Info("fbref: processing gameweek", "period", period, "fixtures", len(entries))

		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return summary, &FatalError{Op: "run", Err: err}
			}

			res, err := p.pipeline.Process(ctx, entry)
			summary.add(res)
			p.record(res)
			if err != nil {
				slog.Error("fbref: run aborted", "period", period, "entry", entry.String(), "error", err)
				return summary, err
			}
			if res.NoDetail {
				slog.Info("fbref: fixture has no match report, skipping", "entry", entry.String())
			}
		}
	}

	slog.Info("fbref: run finished",
		"written", summary.Written,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"rows", summary.Rows,
		"duration", time.Since(start))
	return summary, nil
}

func (p *Parser) record(res FixtureResult) {
	name := res.Entry.String()
	if res.Fixture.HomeTeam != "" {
		name = res.Fixture.HomeTeam + " vs " + res.Fixture.AwayTeam
	}
	ft := performance.FixtureTiming{
		Fixture:  name,
		Period:   int(res.Entry.Period),
		Rows:     res.Rows,
		Skipped:  len(res.Skipped),
		Duration: res.Duration,
		Outcome:  res.Outcome(),
	}
	if res.Err != nil {
		ft.Error = res.Err.Error()
	}
	p.tracker.RecordFixture(ft)

	for _, fe := range res.Skipped {
		p.tracker.RecordFacetSkip(fe.Facet.Name, fe.Reason)
	}
	for facet, n := range res.FacetRows {
		p.tracker.RecordRows(facet, n)
	}
}
