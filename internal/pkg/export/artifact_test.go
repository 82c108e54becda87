package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahseenmorshed/FPLStats/internal/pkg/models"
)

func TestFileSinkWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	sink, err := NewFileSink(dir)
	require.NoError(t, err)

	a, err := sink.Create("Crystal_Palace_vs_Liverpool_matchday7.csv")
	require.NoError(t, err)
	require.NoError(t, a.WriteHeader())
	require.NoError(t, a.WriteRow(models.FacetRow{
		PlayerName: "Eberechi Eze",
		TeamLabel:  "Crystal Palace",
		FacetName:  "Summary",
		Cells:      []string{"10", "ENG", "AM", "25-290", "90"},
	}))
	require.NoError(t, a.WriteRow(models.FacetRow{
		PlayerName: "Dean Henderson",
		TeamLabel:  "Crystal Palace",
		FacetName:  "Passing",
	}))
	require.NoError(t, a.Close())
	require.NoError(t, a.Close(), "second close is a no-op")
	assert.Error(t, a.WriteRow(models.FacetRow{}), "write after close")

	f, err := os.Open(filepath.Join(dir, a.Name()))
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, []string{"playerName", "teamLabel", "facetName", "cells"}, records[0])
	assert.Equal(t, []string{"Eberechi Eze", "Crystal Palace", "Summary", `["10","ENG","AM","25-290","90"]`}, records[1])
	assert.Equal(t, `[]`, records[2][3])

	cells, err := DecodeCells(records[1][3])
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "ENG", "AM", "25-290", "90"}, cells)
}

func TestMemorySink(t *testing.T) {
	sink := NewMemorySink()
	a, err := sink.Create("a.csv")
	require.NoError(t, err)
	require.NoError(t, a.WriteHeader())
	require.NoError(t, a.WriteRow(models.FacetRow{PlayerName: "x"}))
	require.NoError(t, a.Close())

	got, ok := sink.Get("a.csv")
	require.True(t, ok)
	assert.Equal(t, models.ArtifactHeader, got.Header)
	assert.Len(t, got.Rows, 1)
	assert.Equal(t, 1, got.Closes)
	assert.Equal(t, []string{"a.csv"}, sink.Names())
}

func TestMatchdayName(t *testing.T) {
	tests := []struct {
		home, away string
		period     models.Period
		want       string
	}{
		{"Crystal Palace", "Liverpool", 7, "Crystal_Palace_vs_Liverpool_matchday7.csv"},
		{"Nott'ham Forest", "Brighton & Hove Albion", 12, "Nottham_Forest_vs_Brighton__Hove_Albion_matchday12.csv"},
		{" Wolves ", "Spurs", 1, "Wolves_vs_Spurs_matchday1.csv"},
	}
	for _, tt := range tests {
		if got := MatchdayName(tt.home, tt.away, tt.period); got != tt.want {
			t.Errorf("MatchdayName(%q, %q, %d) = %q, want %q", tt.home, tt.away, tt.period, got, tt.want)
		}
	}
}
