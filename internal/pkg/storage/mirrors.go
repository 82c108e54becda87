package storage

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tahseenmorshed/FPLStats/internal/pkg/config"
)

// OpenConfigured opens every row store that has a connection setting in
// cfg. The returned func closes them all.
func OpenConfigured(cfg *config.Config) ([]RowStorage, func(), error) {
	var stores []RowStorage
	closeAll := func() {
		for _, s := range stores {
			if err := s.Close(); err != nil {
				slog.Warn("Failed to close row storage", "storage", s.Name(), "error", err)
			}
		}
	}

	open := func(name string, fn func() (RowStorage, error)) error {
		s, err := fn()
		if err != nil {
			return fmt.Errorf("open %s row storage: %w", name, err)
		}
		stores = append(stores, s)
		slog.Info("Row storage enabled", "storage", s.Name())
		return nil
	}

	var errs []error
	if cfg.Postgres.DSN != "" {
		errs = append(errs, open("postgres", func() (RowStorage, error) { return NewPostgresRowStorage(&cfg.Postgres) }))
	}
	if cfg.SQLite.Path != "" {
		errs = append(errs, open("sqlite", func() (RowStorage, error) { return NewSQLiteRowStorage(&cfg.SQLite) }))
	}
	if cfg.Mongo.URI != "" {
		errs = append(errs, open("mongo", func() (RowStorage, error) { return NewMongoRowStorage(&cfg.Mongo) }))
	}

	if err := errors.Join(errs...); err != nil {
		closeAll()
		return nil, func() {}, err
	}
	return stores, closeAll, nil
}
