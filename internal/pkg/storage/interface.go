package storage

import (
	"context"

	"github.com/tahseenmorshed/FPLStats/internal/pkg/models"
)

// RowStorage mirrors the rows of a written artifact into a database.
type RowStorage interface {
	// StoreFixtureRows replaces the stored rows of fixture with rows.
	StoreFixtureRows(ctx context.Context, fixture models.FixtureContext, rows []models.FacetRow) error

	// GetFixtureRows returns the stored rows of fixture in extraction order.
	GetFixtureRows(ctx context.Context, fixture models.FixtureContext) ([]models.FacetRow, error)

	// Name identifies the backend in logs and metrics.
	Name() string

	// Close closes the database connection
	Close() error
}
