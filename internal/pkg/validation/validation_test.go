package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahseenmorshed/FPLStats/internal/pkg/models"
)

var fixture = models.FixtureContext{HomeTeam: "Crystal Palace", AwayTeam: "Liverpool", Period: 7}

func TestSanitizeRow(t *testing.T) {
	row := models.FacetRow{
		PlayerName: "  Virgil van  Dijk\n",
		TeamLabel:  "Liverpool",
		FacetName:  "Summary ",
		Cells:      []string{" 4 ", "CB", "90 "},
	}
	NewSanitizer().SanitizeRow(&row)

	assert.Equal(t, models.FacetRow{
		PlayerName: "Virgil van Dijk",
		TeamLabel:  "Liverpool",
		FacetName:  "Summary",
		Cells:      []string{"4", "CB", "90"},
	}, row)
}

func TestSanitizeRowLeavesTeamLabel(t *testing.T) {
	row := models.FacetRow{PlayerName: "Eze", TeamLabel: "Crystal\u00a0Palace", FacetName: "Summary"}
	NewSanitizer().SanitizeRow(&row)
	assert.Equal(t, "Crystal\u00a0Palace", row.TeamLabel)
}

func TestNormalizeName(t *testing.T) {
	tests := map[string]string{
		"Crystal\u00a0Palace":   "Crystal Palace",
		"  Brighton  &\tHove  ": "Brighton & Hove",
		"Nott'ham Forest":       "Nott'ham Forest",
		"\u00a0":                "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeName(in), "%q", in)
	}
}

func TestSanitizeRowKeepsInnerCellText(t *testing.T) {
	row := models.FacetRow{PlayerName: "Mo\u00a0Salah", Cells: []string{"eng ENG", "\u00a012"}}
	NewSanitizer().SanitizeRow(&row)
	assert.Equal(t, "Mo Salah", row.PlayerName)
	assert.Equal(t, []string{"eng ENG", "12"}, row.Cells)

	NewSanitizer().SanitizeRow(nil)
}

func TestValidateRow(t *testing.T) {
	v := NewValidator()
	valid := models.FacetRow{PlayerName: "Eberechi Eze", TeamLabel: "Crystal Palace", FacetName: "Passing"}
	require.NoError(t, v.ValidateRow(valid, fixture))

	tests := []struct {
		name string
		row  models.FacetRow
		want string
	}{
		{"no player", models.FacetRow{TeamLabel: "Liverpool", FacetName: "Summary"}, "player name"},
		{"no team", models.FacetRow{PlayerName: "Eze", FacetName: "Summary"}, "team label cannot be empty"},
		{"foreign team", models.FacetRow{PlayerName: "Eze", TeamLabel: "Arsenal", FacetName: "Summary"}, "neither"},
		{"unknown facet", models.FacetRow{PlayerName: "Eze", TeamLabel: "Liverpool", FacetName: "Shooting"}, "unknown facet"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateRow(tt.row, fixture)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateRowsReportsIndex(t *testing.T) {
	rows := []models.FacetRow{
		{PlayerName: "Eze", TeamLabel: "Crystal Palace", FacetName: "Summary"},
		{PlayerName: "", TeamLabel: "Liverpool", FacetName: "Summary"},
	}
	err := NewValidator().ValidateRows(rows, fixture)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1")
}
