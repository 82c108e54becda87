package fbref

import (
	"fmt"
	"strings"

	"github.com/tahseenmorshed/FPLStats/internal/pkg/validation"
)

const (
	titleSeparator = " vs. "
	titleSuffix    = "Match Report"
)

// ParseTitle splits "Crystal Palace vs. Liverpool Match Report" into the
// home and away team names. Whitespace is normalised first, so the names
// match the rows and headings cleaned the same way.
func ParseTitle(title string) (home, away string, err error) {
	parts := strings.Split(validation.NormalizeName(title), titleSeparator)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("%w: %q", ErrTitleFormat, title)
	}
	home = strings.TrimSpace(parts[0])
	away = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(parts[1]), titleSuffix))
	if home == "" || away == "" {
		return "", "", fmt.Errorf("%w: %q", ErrTitleFormat, title)
	}
	return home, away, nil
}
