package fbref

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tahseenmorshed/FPLStats/internal/pkg/models"
	"github.com/tahseenmorshed/FPLStats/internal/pkg/session"
)

// ListingReader reads fixture entries from the schedule page.
type ListingReader struct {
	sess     session.Session
	url      string
	base     *url.URL
	timeout  time.Duration
	linkText string
}

// NewListingReader creates a reader for the schedule at scheduleURL. Links in
// the match report column whose text is not linkText count as missing; an
// empty linkText accepts any link.
func NewListingReader(sess session.Session, scheduleURL string, timeout time.Duration, linkText string) (*ListingReader, error) {
	base, err := url.Parse(scheduleURL)
	if err != nil {
		return nil, fmt.Errorf("parse schedule url: %w", err)
	}
	return &ListingReader{
		sess:     sess,
		url:      scheduleURL,
		base:     base,
		timeout:  timeout,
		linkText: linkText,
	}, nil
}

// Open loads the schedule page and waits for the fixture table.
func (r *ListingReader) Open(ctx context.Context) error {
	if err := r.sess.Load(ctx, r.url); err != nil {
		return &FatalError{Op: "load listing", Err: errors.Join(ErrListingUnavailable, err)}
	}
	if err := r.sess.WaitFor(ctx, listingTableSelector, r.timeout); err != nil {
		return &FatalError{Op: "wait for listing", Err: errors.Join(ErrListingUnavailable, err)}
	}
	return nil
}

// Return goes back to the schedule page after a fixture. If history
// navigation does not bring the table back, the schedule is loaded again;
// only when that fails too is the run over.
func (r *ListingReader) Return(ctx context.Context) error {
	if r.present(ctx) {
		return nil
	}

	backErr := r.sess.Back(ctx)
	if backErr == nil {
		backErr = r.sess.WaitFor(ctx, listingTableSelector, r.timeout)
		if backErr == nil {
			return nil
		}
	}
	if err := ctx.Err(); err != nil {
		return &FatalError{Op: "return to listing", Err: err}
	}

	slog.Warn("fbref: back navigation did not restore listing, reloading", "url", r.url, "error", backErr)
	if err := r.sess.Load(ctx, r.url); err != nil {
		return &FatalError{Op: "return to listing", Err: errors.Join(ErrListingUnavailable, backErr, err)}
	}
	if err := r.sess.WaitFor(ctx, listingTableSelector, r.timeout); err != nil {
		return &FatalError{Op: "return to listing", Err: errors.Join(ErrListingUnavailable, backErr, err)}
	}
	return nil
}

func (r *ListingReader) present(ctx context.Context) bool {
	els, err := r.sess.Query(ctx, listingTableSelector)
	return err == nil && len(els) > 0
}

// RowsForPeriod returns the match rows of period in listing order, including
// rows without a match report link.
func (r *ListingReader) RowsForPeriod(ctx context.Context, period models.Period) ([]models.FixtureEntry, error) {
	all, err := r.ReadListing(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.FixtureEntry
	for _, e := range all {
		if e.HasPeriod && e.Period == period {
			out = append(out, e)
		}
	}
	return out, nil
}

// ReadListing returns every match row of the current schedule page. Rows
// whose gameweek cell is not a number have HasPeriod unset.
func (r *ListingReader) ReadListing(ctx context.Context) ([]models.FixtureEntry, error) {
	if err := r.sess.WaitFor(ctx, listingTableSelector, r.timeout); err != nil {
		return nil, &FatalError{Op: "read listing", Err: errors.Join(ErrListingUnavailable, err)}
	}
	rows, err := r.sess.Query(ctx, listingRowSelector)
	if err != nil {
		return nil, &FatalError{Op: "read listing", Err: errors.Join(ErrListingUnavailable, err)}
	}

	entries := make([]models.FixtureEntry, 0, len(rows))
	for i, row := range rows {
		entry, err := r.readRow(ctx, i, row)
		if err != nil {
			if ctx.Err() != nil {
				return nil, &FatalError{Op: "read listing", Err: ctx.Err()}
			}
			slog.Debug("fbref: unreadable listing row", "row", i, "error", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *ListingReader) readRow(ctx context.Context, i int, row session.Element) (models.FixtureEntry, error) {
	entry := models.FixtureEntry{Row: i}

	cell, err := session.FindFirst(ctx, row, periodCellSelector)
	if err != nil {
		return entry, fmt.Errorf("period cell: %w", err)
	}
	if cell != nil {
		text, err := cell.Text(ctx)
		if err != nil {
			return entry, fmt.Errorf("period text: %w", err)
		}
		if p, ok := parsePeriod(text); ok {
			entry.Period, entry.HasPeriod = p, true
		}
	}

	entry.HomeLabel = cellText(ctx, row, homeCellSelector)
	entry.AwayLabel = cellText(ctx, row, awayCellSelector)

	ref, err := r.detailRef(ctx, row)
	if err != nil {
		return entry, fmt.Errorf("match report link: %w", err)
	}
	entry.DetailRef = ref
	return entry, nil
}

func (r *ListingReader) detailRef(ctx context.Context, row session.Element) (string, error) {
	link, err := session.FindFirst(ctx, row, detailLinkSelector)
	if err != nil || link == nil {
		return "", err
	}
	if r.linkText != "" {
		text, err := link.Text(ctx)
		if err != nil {
			return "", err
		}
		if !strings.EqualFold(text, r.linkText) {
			return "", nil
		}
	}
	href, ok, err := link.Attr(ctx, "href")
	if err != nil || !ok || strings.TrimSpace(href) == "" {
		return "", err
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", err
	}
	return r.base.ResolveReference(ref).String(), nil
}

func cellText(ctx context.Context, row session.Element, selector string) string {
	el, err := session.FindFirst(ctx, row, selector)
	if err != nil || el == nil {
		return ""
	}
	text, _ := el.Text(ctx)
	return text
}

// parsePeriod accepts only non-negative decimal integers.
func parsePeriod(s string) (models.Period, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return models.Period(n), true
}
