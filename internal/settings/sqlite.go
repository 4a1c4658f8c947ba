package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // register the pure-Go sqlite driver

	"github.com/searchcraftinc/searchcraft-connect/internal/db"
)

// SQLiteStore keeps options in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

var _ OptionStore = (*SQLiteStore)(nil)

// OpenSQLite opens (creating if needed) the database at path and applies
// migrations.
func OpenSQLite(ctx context.Context, path string, log *logrus.Logger) (*SQLiteStore, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	pragmas := []string{
		`PRAGMA journal_mode=WAL`,
		`PRAGMA busy_timeout=5000`,
		`PRAGMA synchronous=NORMAL`,
	}
	for _, p := range pragmas {
		if _, err := sqlDB.ExecContext(ctx, p); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	if err := db.RunSQLiteMigrations(ctx, sqlDB, log); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return &SQLiteStore{db: sqlDB}, nil
}

// Get returns the stored value for name.
func (s *SQLiteStore) Get(ctx context.Context, name string) ([]byte, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM searchcraft_options WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading option %s: %w", name, err)
	}
	return []byte(value), nil
}

// Set inserts or replaces the value for name.
func (s *SQLiteStore) Set(ctx context.Context, name string, value []byte) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO searchcraft_options (name, value, updated_at)
		VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		name, string(value))
	if err != nil {
		return fmt.Errorf("writing option %s: %w", name, err)
	}
	return nil
}

// Delete removes name.
func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM searchcraft_options WHERE name = ?`, name); err != nil {
		return fmt.Errorf("deleting option %s: %w", name, err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
