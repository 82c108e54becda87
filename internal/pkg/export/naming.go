package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tahseenmorshed/FPLStats/internal/pkg/models"
)

// Namer builds an artifact identifier for a fixture.
type Namer func(homeTeam, awayTeam string, period models.Period) string

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_\- ]+`)

// SanitizeFilename keeps letters, digits, spaces, underscores and hyphens,
// then turns spaces into underscores.
func SanitizeFilename(s string) string {
	s = unsafeFilenameChars.ReplaceAllString(s, "")
	return strings.ReplaceAll(strings.TrimSpace(s), " ", "_")
}

// MatchdayName is the default Namer: "Crystal_Palace_vs_Liverpool_matchday7.csv".
func MatchdayName(homeTeam, awayTeam string, period models.Period) string {
	return fmt.Sprintf("%s_vs_%s_matchday%d.csv", SanitizeFilename(homeTeam), SanitizeFilename(awayTeam), period)
}
