package validation

import (
	"regexp"
	"strings"

	"github.com/tahseenmorshed/FPLStats/internal/pkg/models"
)

var (
	controlChars = regexp.MustCompile(`[\x00-\x1F\x7F]`)
	spaceRuns    = regexp.MustCompile(`\s+`)
)

// Sanitizer normalizes text scraped from rendered pages.
type Sanitizer struct{}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{}
}

// SanitizeRow cleans the player name and cells of row in place. The team
// label is copied from the fixture, whose names are normalised once with
// NormalizeName. Cell values are only trimmed; their inner text is data and
// stays as rendered.
func (s *Sanitizer) SanitizeRow(row *models.FacetRow) {
	if row == nil {
		return
	}
	row.PlayerName = NormalizeName(row.PlayerName)
	row.FacetName = strings.TrimSpace(row.FacetName)
	for i, c := range row.Cells {
		row.Cells[i] = strings.TrimSpace(strings.ReplaceAll(c, "\u00a0", " "))
	}
}

// NormalizeName turns non-breaking spaces, control characters and whitespace
// runs into single spaces and trims the result.
func NormalizeName(name string) string {
	// Non-breaking spaces show up between first and last names.
	sanitized := strings.ReplaceAll(name, "\u00a0", " ")
	sanitized = controlChars.ReplaceAllString(sanitized, " ")
	sanitized = spaceRuns.ReplaceAllString(sanitized, " ")
	return strings.TrimSpace(sanitized)
}
