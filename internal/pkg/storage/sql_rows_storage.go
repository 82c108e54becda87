package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/tahseenmorshed/FPLStats/internal/pkg/config"
	"github.com/tahseenmorshed/FPLStats/internal/pkg/export"
	"github.com/tahseenmorshed/FPLStats/internal/pkg/models"
)

// Dialect selects the SQL flavour of a SQLRowStorage.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// Ensure SQLRowStorage implements RowStorage
var _ RowStorage = (*SQLRowStorage)(nil)

// SQLRowStorage stores facet rows in PostgreSQL or SQLite.
type SQLRowStorage struct {
	db      *sql.DB
	dialect Dialect
}

// NewPostgresRowStorage connects to PostgreSQL and creates the schema.
func NewPostgresRowStorage(cfg *config.PostgresConfig) (*SQLRowStorage, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	s, err := NewSQLRowStorage(ctx, db, DialectPostgres)
	if err != nil {
		db.Close()
		return nil, err
	}
	slog.Info("PostgreSQL row storage initialized")
	return s, nil
}

// NewSQLiteRowStorage opens (or creates) a SQLite database file.
func NewSQLiteRowStorage(cfg *config.SQLiteConfig) (*SQLRowStorage, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite allows a single writer; :memory: databases are per connection.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, err := NewSQLRowStorage(ctx, db, DialectSQLite)
	if err != nil {
		db.Close()
		return nil, err
	}
	slog.Info("SQLite row storage initialized", "path", cfg.Path)
	return s, nil
}

// NewSQLRowStorage wraps an open database and creates the schema.
func NewSQLRowStorage(ctx context.Context, db *sql.DB, dialect Dialect) (*SQLRowStorage, error) {
	s := &SQLRowStorage{db: db, dialect: dialect}
	if err := s.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS facet_rows (
		id SERIAL PRIMARY KEY,
		period INTEGER NOT NULL,
		home_team VARCHAR(200) NOT NULL,
		away_team VARCHAR(200) NOT NULL,
		row_index INTEGER NOT NULL,
		player_name VARCHAR(200) NOT NULL,
		team_label VARCHAR(200) NOT NULL,
		facet_name VARCHAR(100) NOT NULL,
		cells TEXT NOT NULL,
		scraped_at TIMESTAMP NOT NULL DEFAULT NOW(),
		UNIQUE(period, home_team, away_team, row_index)
	);

	CREATE INDEX IF NOT EXISTS idx_facet_rows_fixture ON facet_rows(period, home_team, away_team);
	CREATE INDEX IF NOT EXISTS idx_facet_rows_player ON facet_rows(player_name);
	`

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS facet_rows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		period INTEGER NOT NULL,
		home_team TEXT NOT NULL,
		away_team TEXT NOT NULL,
		row_index INTEGER NOT NULL,
		player_name TEXT NOT NULL,
		team_label TEXT NOT NULL,
		facet_name TEXT NOT NULL,
		cells TEXT NOT NULL,
		scraped_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(period, home_team, away_team, row_index)
	);

	CREATE INDEX IF NOT EXISTS idx_facet_rows_fixture ON facet_rows(period, home_team, away_team);
	CREATE INDEX IF NOT EXISTS idx_facet_rows_player ON facet_rows(player_name);
	`

func (s *SQLRowStorage) initSchema(ctx context.Context) error {
	query := postgresSchema
	if s.dialect == DialectSQLite {
		query = sqliteSchema
	}
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// bind rewrites $N placeholders for dialects that only understand "?".
func (s *SQLRowStorage) bind(query string) string {
	if s.dialect != DialectSQLite {
		return query
	}
	for i := 9; i >= 1; i-- {
		query = strings.ReplaceAll(query, fmt.Sprintf("$%d", i), "?")
	}
	return query
}

func (s *SQLRowStorage) Name() string { return string(s.dialect) }

// StoreFixtureRows replaces the fixture's rows in one transaction so a re-run
// never leaves a mix of old and new rows.
func (s *SQLRowStorage) StoreFixtureRows(ctx context.Context, fixture models.FixtureContext, rows []models.FacetRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.bind(`
		DELETE FROM facet_rows WHERE period = $1 AND home_team = $2 AND away_team = $3
	`), int(fixture.Period), fixture.HomeTeam, fixture.AwayTeam); err != nil {
		return fmt.Errorf("delete previous rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.bind(`
		INSERT INTO facet_rows (period, home_team, away_team, row_index, player_name, team_label, facet_name, cells)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		cells, err := export.EncodeCells(row.Cells)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, int(fixture.Period), fixture.HomeTeam, fixture.AwayTeam, i,
			row.PlayerName, row.TeamLabel, row.FacetName, cells); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLRowStorage) GetFixtureRows(ctx context.Context, fixture models.FixtureContext) ([]models.FacetRow, error) {
	rs, err := s.db.QueryContext(ctx, s.bind(`
		SELECT player_name, team_label, facet_name, cells
		FROM facet_rows
		WHERE period = $1 AND home_team = $2 AND away_team = $3
		ORDER BY row_index
	`), int(fixture.Period), fixture.HomeTeam, fixture.AwayTeam)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rs.Close()

	var out []models.FacetRow
	for rs.Next() {
		var row models.FacetRow
		var cells string
		if err := rs.Scan(&row.PlayerName, &row.TeamLabel, &row.FacetName, &cells); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if row.Cells, err = export.DecodeCells(cells); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rs.Err()
}

// Close closes the database connection
func (s *SQLRowStorage) Close() error {
	return s.db.Close()
}
