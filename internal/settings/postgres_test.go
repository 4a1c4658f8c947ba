package settings

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/searchcraftinc/searchcraft-connect/internal/db"
	"github.com/searchcraftinc/searchcraft-connect/internal/dbpool"
)

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	pool, err := dbpool.NewPool(ctx, dsn, 4)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.RunPostgresMigrations(ctx, pool, testLogger()); err != nil {
		t.Fatalf("migrations: %v", err)
	}

	store := NewPostgresStore(pool)
	const name = "searchcraft_options_test"
	t.Cleanup(func() { store.Delete(context.Background(), name) })

	if err := store.Set(ctx, name, []byte(`{"index_id":"posts"}`)); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := store.Get(ctx, name)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	// JSONB re-serialises with a space after the colon.
	if string(got) != `{"index_id": "posts"}` && string(got) != `{"index_id":"posts"}` {
		t.Errorf("got %s", got)
	}

	if err := store.Delete(ctx, name); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, name); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
