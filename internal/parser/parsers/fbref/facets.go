package fbref

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tahseenmorshed/FPLStats/internal/pkg/models"
	"github.com/tahseenmorshed/FPLStats/internal/pkg/session"
	"github.com/tahseenmorshed/FPLStats/internal/pkg/validation"
)

// FacetExtractor reads the player rows of every stats panel and facet of a
// loaded match report page.
type FacetExtractor struct {
	sess    session.Session
	timeout time.Duration
	facets  []models.Facet
	clean   *validation.Sanitizer
}

func NewFacetExtractor(sess session.Session, timeout time.Duration) *FacetExtractor {
	return &FacetExtractor{
		sess:    sess,
		timeout: timeout,
		facets:  models.Facets,
		clean:   validation.NewSanitizer(),
	}
}

// Extraction is the result of one ExtractFixture call.
type Extraction struct {
	Blocks  []models.StatBlock
	Rows    []models.FacetRow
	Skipped []*FacetError
}

// ExtractFixture extracts every (panel, facet) pair of the current page in
// page order and facet order. Facet problems are collected in Skipped; the
// only errors returned are ErrDetailNotLoaded and context errors.
func (x *FacetExtractor) ExtractFixture(ctx context.Context, fixture models.FixtureContext) (*Extraction, error) {
	switcher, err := x.sess.Query(ctx, switcherSelector)
	if err != nil {
		return nil, errors.Join(ErrDetailNotLoaded, err)
	}
	if len(switcher) == 0 {
		return nil, ErrDetailNotLoaded
	}

	blocks, err := x.blocks(ctx, fixture)
	if err != nil {
		return nil, err
	}

	out := &Extraction{Blocks: blocks}
	for _, block := range blocks {
		for _, facet := range x.facets {
			rows, err := x.extractFacet(ctx, fixture, block, facet)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				var fe *FacetError
				if !errors.As(err, &fe) {
					fe = &FacetError{Block: block, Facet: facet, Reason: ReasonMalformed, Err: err}
				}
				slog.Warn("fbref: facet skipped",
					"fixture", fixture.HomeTeam+" vs "+fixture.AwayTeam,
					"block", block.BlockID,
					"facet", facet.Name,
					"reason", fe.Reason,
					"error", fe.Err)
				out.Skipped = append(out.Skipped, fe)
				continue
			}
			out.Rows = append(out.Rows, rows...)
		}
	}
	return out, nil
}

// blocks lists the stats panels in page order. Sides come from the panel
// heading when it names one of the two teams, otherwise from position.
func (x *FacetExtractor) blocks(ctx context.Context, fixture models.FixtureContext) ([]models.StatBlock, error) {
	divs, err := x.sess.Query(ctx, statBlockSelector)
	if err != nil {
		return nil, errors.Join(ErrDetailNotLoaded, err)
	}

	sides := models.AssignSides(len(divs))
	blocks := make([]models.StatBlock, 0, len(divs))
	for i, div := range divs {
		id, _, err := div.Attr(ctx, "id")
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("fbref: stats panel without readable id", "index", i, "error", err)
			continue
		}
		m := blockIDPattern.FindStringSubmatch(id)
		if m == nil {
			slog.Warn("fbref: stats panel id not recognised", "index", i, "id", id)
			continue
		}

		block := models.StatBlock{
			Index:   i,
			Kind:    models.BlockKind(m[1]),
			BlockID: m[2],
			Side:    sides[i],
		}
		if side, ok := x.headingSide(ctx, div, fixture); ok && side != block.Side {
			slog.Warn("fbref: panel heading disagrees with panel position",
				"block", block.BlockID, "position_side", block.Side, "heading_side", side)
			block.Side = side
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

func (x *FacetExtractor) headingSide(ctx context.Context, div session.Element, fixture models.FixtureContext) (models.Side, bool) {
	head, err := session.FindFirst(ctx, div, blockHeadSelector)
	if err != nil || head == nil {
		return "", false
	}
	text, err := head.Text(ctx)
	if err != nil {
		return "", false
	}
	return SideFromHeading(text, fixture)
}

// SideFromHeading matches a panel heading such as "Liverpool Player Stats"
// against the fixture's team names. The longer name wins when both match.
func SideFromHeading(heading string, fixture models.FixtureContext) (models.Side, bool) {
	heading = validation.NormalizeName(heading)
	names := func(team string) bool {
		return team != "" && (heading == team || strings.HasPrefix(heading, team+" "))
	}
	home, away := names(fixture.HomeTeam), names(fixture.AwayTeam)
	switch {
	case home && away:
		if len(fixture.AwayTeam) > len(fixture.HomeTeam) {
			return models.SideAway, true
		}
		if len(fixture.HomeTeam) > len(fixture.AwayTeam) {
			return models.SideHome, true
		}
		return "", false
	case home:
		return models.SideHome, true
	case away:
		return models.SideAway, true
	}
	return "", false
}

func (x *FacetExtractor) extractFacet(ctx context.Context, fixture models.FixtureContext, block models.StatBlock, facet models.Facet) ([]models.FacetRow, error) {
	control, err := session.First(ctx, x.sess, activationSelector(block.BlockID, facet.Key))
	if err != nil {
		return nil, err
	}
	if control == nil {
		return nil, &FacetError{Block: block, Facet: facet, Reason: ReasonNoControl, Err: errors.New("facet control not found")}
	}
	if err := x.sess.Click(ctx, control); err != nil {
		return nil, fmt.Errorf("activate facet: %w", err)
	}

	regionSel := regionSelector(block.BlockID, facet.Key)
	if err := x.sess.WaitFor(ctx, regionSel, x.timeout); err != nil {
		if session.IsTimeout(err) {
			return nil, &FacetError{Block: block, Facet: facet, Reason: ReasonTimeout, Err: err}
		}
		return nil, err
	}
	region, err := session.First(ctx, x.sess, regionSel)
	if err != nil {
		return nil, err
	}
	if region == nil {
		return nil, fmt.Errorf("facet region %s vanished", regionSel)
	}

	trs, err := region.Find(ctx, regionRowSelector)
	if err != nil {
		return nil, fmt.Errorf("facet rows: %w", err)
	}

	team := fixture.TeamFor(block.Side)
	rows := make([]models.FacetRow, 0, len(trs))
	for _, tr := range trs {
		nameEl, err := session.FindFirst(ctx, tr, playerNameSelector)
		if err != nil {
			return nil, fmt.Errorf("player cell: %w", err)
		}
		if nameEl == nil {
			// separator or subheader row
			continue
		}
		name, err := nameEl.Text(ctx)
		if err != nil {
			return nil, fmt.Errorf("player name: %w", err)
		}

		tds, err := tr.Find(ctx, cellSelector)
		if err != nil {
			return nil, fmt.Errorf("value cells: %w", err)
		}
		cells := make([]string, 0, len(tds))
		for _, td := range tds {
			text, err := td.Text(ctx)
			if err != nil {
				return nil, fmt.Errorf("value cell: %w", err)
			}
			cells = append(cells, text)
		}

		row := models.FacetRow{
			PlayerName: name,
			TeamLabel:  team,
			FacetName:  facet.Name,
			Cells:      cells,
		}
		x.clean.SanitizeRow(&row)
		if row.PlayerName == "" {
			continue
		}
		rows = append(rows, row)
	}
	slog.Debug("fbref: facet extracted", "block", block.BlockID, "facet", facet.Name, "rows", len(rows))
	return rows, nil
}
