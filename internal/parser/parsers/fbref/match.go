package fbref

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tahseenmorshed/FPLStats/internal/pkg/export"
	"github.com/tahseenmorshed/FPLStats/internal/pkg/models"
	"github.com/tahseenmorshed/FPLStats/internal/pkg/performance"
	"github.com/tahseenmorshed/FPLStats/internal/pkg/session"
	"github.com/tahseenmorshed/FPLStats/internal/pkg/storage"
	"github.com/tahseenmorshed/FPLStats/internal/pkg/validation"
)

// State is a step of the per-fixture pipeline.
type State int

const (
	StateAtListing State = iota
	StateDetailLoading
	StateDetailReady
	StateExtracting
	StateWriting
	StateReturningToListing
	StateFailed
)

var stateNames = [...]string{
	StateAtListing:          "AtListing",
	StateDetailLoading:      "DetailLoading",
	StateDetailReady:        "DetailReady",
	StateExtracting:         "Extracting",
	StateWriting:            "Writing",
	StateReturningToListing: "ReturningToListing",
	StateFailed:             "Failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// FixtureResult describes what happened to one listing entry.
type FixtureResult struct {
	Entry    models.FixtureEntry
	Fixture  models.FixtureContext
	Artifact string
	Rows     int
	// FacetRows counts written rows per facet name.
	FacetRows map[string]int
	Skipped   []*FacetError
	// NoDetail is set for entries without a match report; they never enter the pipeline.
	NoDetail bool
	// Err is a *FixtureError when the fixture was abandoned.
	Err      error
	Duration time.Duration
}

// Outcome maps the result to a metrics outcome label.
func (r FixtureResult) Outcome() string {
	switch {
	case r.NoDetail:
		return performance.OutcomeSkipped
	case r.Err != nil:
		return performance.OutcomeFailed
	}
	return performance.OutcomeWritten
}

// MatchPipeline takes one fixture from the listing to a closed artifact and
// back to the listing. It owns the session while a fixture is in flight.
type MatchPipeline struct {
	sess      session.Session
	listing   *ListingReader
	extractor *FacetExtractor
	sink      export.ArtifactSink
	namer     export.Namer
	mirrors   []storage.RowStorage
	validator *validation.Validator
	timeout   time.Duration
}

func NewMatchPipeline(sess session.Session, listing *ListingReader, extractor *FacetExtractor, sink export.ArtifactSink, namer export.Namer, mirrors []storage.RowStorage, timeout time.Duration) *MatchPipeline {
	if namer == nil {
		namer = export.MatchdayName
	}
	return &MatchPipeline{
		sess:      sess,
		listing:   listing,
		extractor: extractor,
		sink:      sink,
		namer:     namer,
		mirrors:   mirrors,
		validator: validation.NewValidator(),
		timeout:   timeout,
	}
}

// Process runs entry through the pipeline. Fixture failures are reported in
// the result; the returned error is non-nil only when the run must stop.
func (p *MatchPipeline) Process(ctx context.Context, entry models.FixtureEntry) (FixtureResult, error) {
	start := time.Now()
	res := FixtureResult{Entry: entry}

	if !entry.HasDetail() {
		res.NoDetail = true
		return res, nil
	}

	state := StateAtListing
	fixture, extraction, err := p.visit(ctx, entry, &state)
	res.Fixture = fixture
	if extraction != nil {
		res.Skipped = extraction.Skipped
	}

	if err == nil {
		state = StateWriting
		if err = p.validator.ValidateRows(extraction.Rows, fixture); err == nil {
			res.Artifact, res.Rows, err = p.write(fixture, extraction.Rows)
		}
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			res.Duration = time.Since(start)
			return res, &FatalError{Op: "process fixture", Err: ctxErr}
		}
		res.Err = &FixtureError{Entry: entry, State: state, Err: err}
		slog.Error("fbref: fixture failed", "entry", entry.String(), "state", state.String(), "error", err)
		state = StateFailed
	} else {
		res.FacetRows = countByFacet(extraction.Rows)
		p.mirror(ctx, fixture, extraction.Rows)
	}

	slog.Debug("fbref: returning to listing", "from", state.String())
	if err := p.listing.Return(ctx); err != nil {
		res.Duration = time.Since(start)
		return res, err
	}

	if res.Err == nil {
		slog.Info("fbref: fixture written",
			"period", fixture.Period,
			"home", fixture.HomeTeam,
			"away", fixture.AwayTeam,
			"artifact", res.Artifact,
			"rows", res.Rows,
			"skipped_facets", len(res.Skipped))
	}
	res.Duration = time.Since(start)
	return res, nil
}

// visit covers DetailLoading, DetailReady and Extracting.
func (p *MatchPipeline) visit(ctx context.Context, entry models.FixtureEntry, state *State) (models.FixtureContext, *Extraction, error) {
	fixture := models.FixtureContext{Period: entry.Period}

	*state = StateDetailLoading
	if err := p.sess.Load(ctx, entry.DetailRef); err != nil {
		return fixture, nil, fmt.Errorf("load match report: %w", err)
	}
	if err := p.sess.WaitFor(ctx, switcherSelector, p.timeout); err != nil {
		return fixture, nil, fmt.Errorf("wait for match report: %w", err)
	}

	*state = StateDetailReady
	title, err := session.First(ctx, p.sess, titleSelector)
	if err != nil {
		return fixture, nil, fmt.Errorf("read title: %w", err)
	}
	if title == nil {
		return fixture, nil, fmt.Errorf("%w: no title element", ErrTitleFormat)
	}
	text, err := title.Text(ctx)
	if err != nil {
		return fixture, nil, fmt.Errorf("read title: %w", err)
	}
	fixture.HomeTeam, fixture.AwayTeam, err = ParseTitle(text)
	if err != nil {
		return fixture, nil, err
	}

	*state = StateExtracting
	extraction, err := p.extractor.ExtractFixture(ctx, fixture)
	if err != nil {
		return fixture, nil, fmt.Errorf("extract: %w", err)
	}
	return fixture, extraction, nil
}

// write creates the artifact and always closes it, even after a failed write.
func (p *MatchPipeline) write(fixture models.FixtureContext, rows []models.FacetRow) (name string, written int, err error) {
	name = p.namer(fixture.HomeTeam, fixture.AwayTeam, fixture.Period)
	artifact, err := p.sink.Create(name)
	if err != nil {
		return name, 0, fmt.Errorf("create artifact %s: %w", name, err)
	}
	defer func() {
		if cerr := artifact.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close artifact %s: %w", name, cerr))
		}
	}()

	if err := artifact.WriteHeader(); err != nil {
		return name, 0, fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := artifact.WriteRow(row); err != nil {
			return name, written, fmt.Errorf("write row %d: %w", written, err)
		}
		written++
	}
	return name, written, nil
}

// mirror copies the written rows into every configured store. The artifact
// is already complete, so failures are only logged.
func (p *MatchPipeline) mirror(ctx context.Context, fixture models.FixtureContext, rows []models.FacetRow) {
	for _, m := range p.mirrors {
		if err := m.StoreFixtureRows(ctx, fixture, rows); err != nil {
			slog.Error("fbref: failed to mirror rows", "storage", m.Name(), "home", fixture.HomeTeam, "away", fixture.AwayTeam, "error", err)
		}
	}
}

func countByFacet(rows []models.FacetRow) map[string]int {
	counts := make(map[string]int)
	for _, r := range rows {
		counts[r.FacetName]++
	}
	return counts
}
