package fbref

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahseenmorshed/FPLStats/internal/pkg/models"
	"github.com/tahseenmorshed/FPLStats/internal/pkg/session"
	"github.com/tahseenmorshed/FPLStats/internal/pkg/session/static"
)

const detailURL = "https://fbref.com/en/matches/cc5b4244/Crystal-Palace-Liverpool"

var palaceLiverpool = models.FixtureContext{Period: 7, HomeTeam: "Crystal Palace", AwayTeam: "Liverpool"}

func loadDetail(t *testing.T, html string) (*static.Session, *FacetExtractor) {
	t.Helper()
	sess := static.New(static.Pages{detailURL: html}, static.Options{})
	require.NoError(t, sess.Load(context.Background(), detailURL))
	return sess, NewFacetExtractor(sess, time.Second)
}

func countRows(rows []models.FacetRow, team, facet string) int {
	n := 0
	for _, r := range rows {
		if r.TeamLabel == team && r.FacetName == facet {
			n++
		}
	}
	return n
}

func TestExtractFixtureAllFacets(t *testing.T) {
	sess, x := loadDetail(t, detailPage("Crystal Palace vs. Liverpool Match Report", standardPanels("Crystal Palace", "Liverpool")...))

	got, err := x.ExtractFixture(context.Background(), palaceLiverpool)
	require.NoError(t, err)
	require.Len(t, got.Blocks, 4)
	assert.Empty(t, got.Skipped)

	wantSides := []models.Side{models.SideHome, models.SideHome, models.SideAway, models.SideAway}
	for i, b := range got.Blocks {
		assert.Equal(t, wantSides[i], b.Side, "block %d", i)
	}
	assert.Equal(t, models.BlockKeeper, got.Blocks[1].Kind)

	// 4 panels x 6 facets x 2 players, separator rows dropped
	require.Len(t, got.Rows, 48)
	first := got.Rows[0]
	assert.Equal(t, models.FacetRow{
		PlayerName: "b8fd03ef Player One",
		TeamLabel:  "Crystal Palace",
		FacetName:  "Summary",
		Cells:      []string{"1", "summary"},
	}, first)
	assert.Equal(t, "Liverpool", got.Rows[len(got.Rows)-1].TeamLabel)

	// every facet activated once per panel, in order
	clicks := sess.Clicks()
	require.Len(t, clicks, 24)
	assert.Equal(t, ".assoc_stats_b8fd03ef_summary", clicks[0])
	assert.Equal(t, ".assoc_stats_b8fd03ef_passing", clicks[1])
	assert.Equal(t, ".assoc_stats_cff3d9bb_misc", clicks[23])
}

func TestExtractFixtureSkipsTimedOutFacet(t *testing.T) {
	panels := standardPanels("Crystal Palace", "Liverpool")
	panels[0].missing = map[string]bool{"passing": true}
	_, x := loadDetail(t, detailPage("Crystal Palace vs. Liverpool Match Report", panels...))

	got, err := x.ExtractFixture(context.Background(), palaceLiverpool)
	require.NoError(t, err)

	require.Len(t, got.Skipped, 1)
	skip := got.Skipped[0]
	assert.Equal(t, "Passing", skip.Facet.Name)
	assert.Equal(t, "b8fd03ef", skip.Block.BlockID)
	assert.Equal(t, ReasonTimeout, skip.Reason)

	var passing, later int
	for _, r := range got.Rows {
		if r.PlayerName == "b8fd03ef Player One" {
			switch r.FacetName {
			case "Passing":
				passing++
			case "Summary", "Pass Types", "Defensive Actions", "Possession", "Miscellaneous Stats":
				later++
			}
		}
	}
	assert.Zero(t, passing)
	assert.Equal(t, 5, later)
	// the other home panel still has passing rows
	assert.Equal(t, 2, countRows(got.Rows, "Crystal Palace", "Passing"))
}

func TestExtractFixtureSkipsMissingControl(t *testing.T) {
	html := detailPage("Crystal Palace vs. Liverpool Match Report", standardPanels("Crystal Palace", "Liverpool")...)
	html = stripControl(html, ".assoc_stats_822bd0ba_defense")
	_, x := loadDetail(t, html)

	got, err := x.ExtractFixture(context.Background(), palaceLiverpool)
	require.NoError(t, err)
	require.Len(t, got.Skipped, 1)
	assert.Equal(t, ReasonNoControl, got.Skipped[0].Reason)
	assert.Equal(t, 46, len(got.Rows))
}

// clickFailing rejects the activation of one facet control.
type clickFailing struct {
	*static.Session
	dataShow string
}

func (c *clickFailing) Click(ctx context.Context, el session.Element) error {
	if show, ok, _ := el.Attr(ctx, "data-show"); ok && show == c.dataShow {
		return errors.New("element is not clickable")
	}
	return c.Session.Click(ctx, el)
}

func TestExtractFixtureSkipsFailedActivation(t *testing.T) {
	sess, _ := loadDetail(t, detailPage("Crystal Palace vs. Liverpool Match Report", standardPanels("Crystal Palace", "Liverpool")...))
	x := NewFacetExtractor(&clickFailing{Session: sess, dataShow: ".assoc_stats_822bd0ba_possession"}, time.Second)

	got, err := x.ExtractFixture(context.Background(), palaceLiverpool)
	require.NoError(t, err)

	require.Len(t, got.Skipped, 1)
	skip := got.Skipped[0]
	assert.Equal(t, ReasonMalformed, skip.Reason)
	assert.Equal(t, "822bd0ba", skip.Block.BlockID)
	assert.Equal(t, "Possession", skip.Facet.Name)
	assert.ErrorContains(t, skip.Err, "not clickable")

	assert.Len(t, got.Rows, 46)
	// the away keeper panel still yields possession rows
	assert.Equal(t, 2, countRows(got.Rows, "Liverpool", "Possession"))
	assert.Equal(t, 4, countRows(got.Rows, "Liverpool", "Miscellaneous Stats"))
}

func TestExtractFixtureIsDeterministic(t *testing.T) {
	_, x := loadDetail(t, detailPage("Crystal Palace vs. Liverpool Match Report", standardPanels("Crystal Palace", "Liverpool")...))
	ctx := context.Background()

	first, err := x.ExtractFixture(ctx, palaceLiverpool)
	require.NoError(t, err)
	second, err := x.ExtractFixture(ctx, palaceLiverpool)
	require.NoError(t, err)

	if diff := cmp.Diff(first.Rows, second.Rows); diff != "" {
		t.Errorf("second extraction differs (-first +second):\n%s", diff)
	}
}

func TestExtractFixtureRequiresDetailPage(t *testing.T) {
	_, x := loadDetail(t, listingPage(listingRow{week: "1"}))
	_, err := x.ExtractFixture(context.Background(), palaceLiverpool)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDetailNotLoaded))
}

func TestExtractFixtureSkipsUnrecognisedPanel(t *testing.T) {
	panels := append(standardPanels("Crystal Palace", "Liverpool"), panel{kind: "player", id: "weird-id!"})
	html := detailPage("Crystal Palace vs. Liverpool Match Report", panels...)
	html = replaceOnce(html, `id="all_player_stats_weird-id!"`, `id="all_player_stats"`)
	_, x := loadDetail(t, html)

	got, err := x.ExtractFixture(context.Background(), palaceLiverpool)
	require.NoError(t, err)
	assert.Len(t, got.Blocks, 4)
}

func TestExtractFixtureUsesPanelHeading(t *testing.T) {
	// away panels rendered first
	p := standardPanels("Crystal Palace", "Liverpool")
	panels := []panel{p[2], p[3], p[0], p[1]}
	_, x := loadDetail(t, detailPage("Crystal Palace vs. Liverpool Match Report", panels...))

	got, err := x.ExtractFixture(context.Background(), palaceLiverpool)
	require.NoError(t, err)
	require.Len(t, got.Blocks, 4)
	assert.Equal(t, models.SideAway, got.Blocks[0].Side)
	assert.Equal(t, models.SideHome, got.Blocks[3].Side)
	assert.Equal(t, "Liverpool", got.Rows[0].TeamLabel)

	// without headings the position decides
	for i := range panels {
		panels[i].heading = ""
	}
	_, x = loadDetail(t, detailPage("Crystal Palace vs. Liverpool Match Report", panels...))
	got, err = x.ExtractFixture(context.Background(), palaceLiverpool)
	require.NoError(t, err)
	assert.Equal(t, "Crystal Palace", got.Rows[0].TeamLabel)
}

func TestSideFromHeading(t *testing.T) {
	manchester := models.FixtureContext{HomeTeam: "Manchester Utd", AwayTeam: "Manchester City"}
	tests := []struct {
		heading string
		fixture models.FixtureContext
		side    models.Side
		ok      bool
	}{
		{"Crystal Palace Player Stats", palaceLiverpool, models.SideHome, true},
		{"Liverpool Goalkeeper Stats", palaceLiverpool, models.SideAway, true},
		{"Liverpool", palaceLiverpool, models.SideAway, true},
		{"Crystal\u00a0Palace  Player Stats", palaceLiverpool, models.SideHome, true},
		{"Player Stats", palaceLiverpool, "", false},
		{"Crystal Palace Women Player Stats", models.FixtureContext{HomeTeam: "Crystal Palace", AwayTeam: "Crystal Palace Women"}, models.SideAway, true},
		{"Manchester City Player Stats", manchester, models.SideAway, true},
		{"", palaceLiverpool, "", false},
	}
	for _, tt := range tests {
		side, ok := SideFromHeading(tt.heading, tt.fixture)
		assert.Equal(t, tt.ok, ok, tt.heading)
		assert.Equal(t, tt.side, side, tt.heading)
	}
}
