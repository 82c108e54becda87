package fbref

import (
	"fmt"
	"strings"

	"github.com/tahseenmorshed/FPLStats/internal/pkg/models"
)

const scheduleURL = "https://fbref.com/en/comps/9/schedule/Premier-League-Scores-and-Fixtures"

type listingRow struct {
	week     string
	home     string
	away     string
	href     string // empty: no link
	linkText string // defaults to "Match Report"
}

func listingPage(rows ...listingRow) string {
	var b strings.Builder
	b.WriteString(`<html><body><h1>2025-2026 Premier League Scores &amp; Fixtures</h1>`)
	b.WriteString(`<table class="stats_table sortable min_width" id="sched_2025-2026_9_1"><thead><tr><th data-stat="gameweek">Wk</th></tr></thead><tbody>`)
	for i, r := range rows {
		fmt.Fprintf(&b, `<tr data-row="%d"><th data-stat="gameweek">%s</th>`, i, r.week)
		fmt.Fprintf(&b, `<td data-stat="home_team"><a>%s</a></td><td data-stat="away_team"><a>%s</a></td>`, r.home, r.away)
		b.WriteString(`<td data-stat="match_report">`)
		if r.href != "" {
			text := r.linkText
			if text == "" {
				text = "Match Report"
			}
			fmt.Fprintf(&b, `<a href="%s">%s</a>`, r.href, text)
		}
		b.WriteString(`</td></tr>`)
	}
	// spacer rows have no data-row marker
	b.WriteString(`<tr class="spacer partial_table"><td colspan="3"></td></tr>`)
	b.WriteString(`</tbody></table></body></html>`)
	return b.String()
}

type panel struct {
	kind    string // player or keeper
	id      string
	heading string
	// missing lists facet keys without a rendered region
	missing map[string]bool
	// players per facet, defaults to two
	players []string
}

func detailPage(title string, panels ...panel) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<html><body><h1>%s</h1>`, title)
	b.WriteString(`<div id="switcher_player_stats_a"></div>`)
	for _, p := range panels {
		fmt.Fprintf(&b, `<div id="all_%s_stats_%s">`, p.kind, p.id)
		if p.heading != "" {
			fmt.Fprintf(&b, `<div class="section_heading"><h2>%s</h2></div>`, p.heading)
		}
		players := p.players
		if players == nil {
			players = []string{p.id + " Player One", p.id + " Player Two"}
		}
		for _, f := range models.Facets {
			fmt.Fprintf(&b, `<a data-show=".assoc_stats_%s_%s">%s</a>`, p.id, f.Key, f.Name)
		}
		for _, f := range models.Facets {
			if p.missing[f.Key] {
				continue
			}
			fmt.Fprintf(&b, `<div id="div_stats_%s_%s"><table><thead><tr><th>Player</th></tr></thead><tbody>`, p.id, f.Key)
			for i, name := range players {
				fmt.Fprintf(&b, `<tr><th data-stat="player"><a href="/en/players/x">%s</a></th><td>%d</td><td>%s</td></tr>`, name, i+1, f.Key)
				if i == 0 {
					b.WriteString(`<tr class="spacer"><th></th><td></td></tr>`)
				}
			}
			b.WriteString(`</tbody></table></div>`)
		}
		b.WriteString(`</div>`)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

// standardPanels are home outfield, home keeper, away outfield, away keeper.
func standardPanels(home, away string) []panel {
	return []panel{
		{kind: "player", id: "b8fd03ef", heading: home + " Player Stats"},
		{kind: "keeper", id: "47c64c55", heading: home + " Goalkeeper Stats"},
		{kind: "player", id: "822bd0ba", heading: away + " Player Stats"},
		{kind: "keeper", id: "cff3d9bb", heading: away + " Goalkeeper Stats"},
	}
}

func stripControl(html, dataShow string) string {
	return replaceOnce(html, fmt.Sprintf(`data-show="%s"`, dataShow), `data-show=".removed"`)
}

func replaceOnce(s, old, new string) string {
	return strings.Replace(s, old, new, 1)
}
