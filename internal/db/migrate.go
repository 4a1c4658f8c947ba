// Package db provides schema migrations and change notifications for the
// option store.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"

	"github.com/searchcraftinc/searchcraft-connect/internal/db/migrations"
	"github.com/searchcraftinc/searchcraft-connect/internal/dbpool"
)

// Migration directories inside migrations.FS.
const (
	PostgresDir = "postgres"
	SQLiteDir   = "sqlite"
)

// RunMigrations applies all pending migrations in fsys to sqlDB.
// The fsys should contain goose-annotated SQL files (e.g. "001_options.sql").
func RunMigrations(ctx context.Context, sqlDB *sql.DB, dialect goose.Dialect, log *logrus.Logger, fsys fs.FS) error {
	provider, err := goose.NewProvider(dialect, sqlDB, fsys)
	if err != nil {
		return fmt.Errorf("creating goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	for _, r := range results {
		if r.Error != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", r.Source.Version, r.Source.Path, r.Error)
		}

		log.WithFields(logrus.Fields{
			"dialect":  dialect,
			"version":  r.Source.Version,
			"file":     r.Source.Path,
			"duration": r.Duration,
		}).Info("migration applied")
	}

	if len(results) == 0 {
		log.WithField("dialect", dialect).Debug("all migrations already applied")
	}

	return nil
}

// RunPostgresMigrations applies the embedded postgres migrations through the
// pool's connection string.
func RunPostgresMigrations(ctx context.Context, pool *dbpool.Pool, log *logrus.Logger) error {
	// goose requires a *sql.DB; wrap the pool's DSN via the pgx stdlib driver.
	sqlDB, err := sql.Open("pgx", pool.ConnString())
	if err != nil {
		return fmt.Errorf("opening sql.DB for migrations: %w", err)
	}
	defer sqlDB.Close()

	fsys, err := fs.Sub(migrations.FS, PostgresDir)
	if err != nil {
		return fmt.Errorf("postgres migrations: %w", err)
	}

	return RunMigrations(ctx, sqlDB, goose.DialectPostgres, log, fsys)
}

// RunSQLiteMigrations applies the embedded sqlite migrations to sqlDB.
func RunSQLiteMigrations(ctx context.Context, sqlDB *sql.DB, log *logrus.Logger) error {
	fsys, err := fs.Sub(migrations.FS, SQLiteDir)
	if err != nil {
		return fmt.Errorf("sqlite migrations: %w", err)
	}

	return RunMigrations(ctx, sqlDB, goose.DialectSQLite3, log, fsys)
}
