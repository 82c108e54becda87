package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahseenmorshed/FPLStats/internal/pkg/config"
	"github.com/tahseenmorshed/FPLStats/internal/pkg/models"
)

func TestOpenConfiguredNone(t *testing.T) {
	cfg := config.Default()
	stores, closeAll, err := OpenConfigured(&cfg)
	require.NoError(t, err)
	assert.Empty(t, stores)
	closeAll()
}

func TestOpenConfiguredSQLite(t *testing.T) {
	cfg := config.Default()
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "rows.db")

	stores, closeAll, err := OpenConfigured(&cfg)
	require.NoError(t, err)
	defer closeAll()
	require.Len(t, stores, 1)
	assert.Equal(t, "sqlite", stores[0].Name())

	fixture := models.FixtureContext{Period: 1, HomeTeam: "Liverpool", AwayTeam: "Bournemouth"}
	rows := []models.FacetRow{{PlayerName: "Mohamed Salah", TeamLabel: "Liverpool", FacetName: "Summary", Cells: []string{"11"}}}
	require.NoError(t, stores[0].StoreFixtureRows(context.Background(), fixture, rows))
	got, err := stores[0].GetFixtureRows(context.Background(), fixture)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestOpenConfiguredFailureClosesOthers(t *testing.T) {
	cfg := config.Default()
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "missing-dir", "rows.db")
	_, _, err := OpenConfigured(&cfg)
	assert.Error(t, err)
}
