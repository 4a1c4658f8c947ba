package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/searchcraftinc/searchcraft-connect/internal/dbpool"
)

// PostgresStore keeps options in a shared PostgreSQL table, for deployments
// running more than one replica.
type PostgresStore struct {
	pool *dbpool.Pool
}

var _ OptionStore = (*PostgresStore)(nil)

// NewPostgresStore creates a store on an already migrated pool.
func NewPostgresStore(pool *dbpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Get returns the stored value for name.
func (s *PostgresStore) Get(ctx context.Context, name string) ([]byte, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var value []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM searchcraft_options WHERE name = $1`, name).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading option %s: %w", name, err)
	}
	return value, nil
}

// Set inserts or replaces the value for name.
func (s *PostgresStore) Set(ctx context.Context, name string, value []byte) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO searchcraft_options (name, value, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		name, string(value))
	if err != nil {
		return fmt.Errorf("writing option %s: %w", name, err)
	}
	return nil
}

// Delete removes name.
func (s *PostgresStore) Delete(ctx context.Context, name string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if _, err := s.pool.Exec(ctx, `DELETE FROM searchcraft_options WHERE name = $1`, name); err != nil {
		return fmt.Errorf("deleting option %s: %w", name, err)
	}
	return nil
}

// Ping runs a trivial query.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.HealthCheck(ctx)
}
