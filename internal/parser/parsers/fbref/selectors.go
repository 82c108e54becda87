package fbref

import (
	"fmt"
	"regexp"
)

// Schedule page.
const (
	// The schedule table id starts with "sched_"; match report pages also
	// carry sortable stats tables, so the id keeps the two pages apart.
	listingTableSelector = `table.stats_table.sortable[id^="sched"]`
	listingRowSelector   = `table.stats_table[id^="sched"] > tbody > tr[data-row]`
	periodCellSelector   = `th[data-stat="gameweek"]`
	homeCellSelector     = `td[data-stat="home_team"]`
	awayCellSelector     = `td[data-stat="away_team"]`
	detailLinkSelector   = `td[data-stat="match_report"] a`
)

// Match report page.
const (
	switcherSelector   = `div[id*="switcher_player_stats"]`
	titleSelector      = `h1`
	statBlockSelector  = `div[id*="all_player_stats"], div[id*="all_keeper_stats"]`
	blockHeadSelector  = `.section_heading h2`
	regionRowSelector  = `tbody tr`
	playerNameSelector = `th[data-stat="player"] a`
	cellSelector       = `td`
)

var blockIDPattern = regexp.MustCompile(`all_(player|keeper)_stats_(\w+)`)

// activationSelector is the facet tab of one panel.
func activationSelector(blockID, facetKey string) string {
	return fmt.Sprintf(`a[data-show=".assoc_stats_%s_%s"]`, blockID, facetKey)
}

// regionSelector is the container the facet table is rendered into.
func regionSelector(blockID, facetKey string) string {
	return fmt.Sprintf(`#div_stats_%s_%s`, blockID, facetKey)
}
