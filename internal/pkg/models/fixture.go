package models

import "fmt"

// Period identifies a scheduling round (a gameweek on the schedule page).
type Period int

// PeriodRange is an inclusive range of periods to process.
type PeriodRange struct {
	Start Period `json:"start"`
	End   Period `json:"end"`
}

// Validate checks that the range is non-empty and non-negative.
func (r PeriodRange) Validate() error {
	if r.Start < 0 || r.End < 0 {
		return fmt.Errorf("periods must be non-negative, got [%d, %d]", r.Start, r.End)
	}
	if r.Start > r.End {
		return fmt.Errorf("start period %d is after end period %d", r.Start, r.End)
	}
	return nil
}

// Periods returns every period of the range in ascending order.
func (r PeriodRange) Periods() []Period {
	if r.Start > r.End {
		return nil
	}
	out := make([]Period, 0, int(r.End-r.Start)+1)
	for p := r.Start; p <= r.End; p++ {
		out = append(out, p)
	}
	return out
}

// FixtureEntry is one match row of the schedule listing.
// Entries are rebuilt every time the listing is read and never mutated.
type FixtureEntry struct {
	// Row is the position of the row among all match rows of the listing.
	Row int `json:"row"`

	// Period is only meaningful when HasPeriod is true.
	Period    Period `json:"period"`
	HasPeriod bool   `json:"has_period"`

	// DetailRef is the absolute URL of the match report. Empty for
	// postponed or not yet played fixtures.
	DetailRef string `json:"detail_ref,omitempty"`

	// Informational labels taken from the listing row, may be empty.
	HomeLabel string `json:"home_label,omitempty"`
	AwayLabel string `json:"away_label,omitempty"`
}

// HasDetail reports whether the fixture has a match report to visit.
func (e FixtureEntry) HasDetail() bool {
	return e.DetailRef != ""
}

// String returns a short human readable description used in logs.
func (e FixtureEntry) String() string {
	label := "?"
	if e.HomeLabel != "" || e.AwayLabel != "" {
		label = e.HomeLabel + " vs " + e.AwayLabel
	}
	if e.HasPeriod {
		return fmt.Sprintf("row %d, period %d (%s)", e.Row, e.Period, label)
	}
	return fmt.Sprintf("row %d (%s)", e.Row, label)
}

// FixtureContext is resolved once the match report page is loaded.
// Period comes from the listing entry and is authoritative.
type FixtureContext struct {
	Period   Period `json:"period"`
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
}

// TeamFor returns the team name of the given side.
func (c FixtureContext) TeamFor(side Side) string {
	if side == SideAway {
		return c.AwayTeam
	}
	return c.HomeTeam
}

// Side is the team side a stats panel belongs to.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// BlockKind is the player group of a stats panel.
type BlockKind string

const (
	BlockPlayer BlockKind = "player"
	BlockKeeper BlockKind = "keeper"
)

// StatBlock is one statistics panel of the match report page.
type StatBlock struct {
	Index   int       `json:"index"`
	Kind    BlockKind `json:"kind"`
	BlockID string    `json:"block_id"`
	Side    Side      `json:"side"`
}

// AssignSides maps panel positions to team sides: the first n/2 panels
// (integer division) are home, the rest away. This relies on the page
// rendering both home panels before the away ones.
func AssignSides(n int) []Side {
	if n <= 0 {
		return nil
	}
	cut := n / 2
	sides := make([]Side, n)
	for i := range sides {
		if i < cut {
			sides[i] = SideHome
		} else {
			sides[i] = SideAway
		}
	}
	return sides
}
