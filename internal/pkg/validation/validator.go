package validation

import (
	"fmt"

	"github.com/tahseenmorshed/FPLStats/internal/pkg/models"
)

// Validator checks extracted rows against the fixture they belong to.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateRow reports the first problem found in row.
func (v *Validator) ValidateRow(row models.FacetRow, fixture models.FixtureContext) error {
	if row.PlayerName == "" {
		return fmt.Errorf("player name cannot be empty")
	}
	if row.TeamLabel == "" {
		return fmt.Errorf("team label cannot be empty (player %q)", row.PlayerName)
	}
	if row.TeamLabel != fixture.HomeTeam && row.TeamLabel != fixture.AwayTeam {
		return fmt.Errorf("team label %q is neither %q nor %q", row.TeamLabel, fixture.HomeTeam, fixture.AwayTeam)
	}
	if !v.isKnownFacet(row.FacetName) {
		return fmt.Errorf("unknown facet %q", row.FacetName)
	}
	return nil
}

// ValidateRows validates every row and wraps the first failure with its index.
func (v *Validator) ValidateRows(rows []models.FacetRow, fixture models.FixtureContext) error {
	for i, row := range rows {
		if err := v.ValidateRow(row, fixture); err != nil {
			return fmt.Errorf("row %d validation failed: %w", i, err)
		}
	}
	return nil
}

func (v *Validator) isKnownFacet(name string) bool {
	for _, f := range models.Facets {
		if f.Name == name {
			return true
		}
	}
	return false
}
