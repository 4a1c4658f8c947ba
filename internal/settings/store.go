package settings

import (
	"context"
	"errors"
	"sync"
	"time"
)

const defaultQueryTimeout = 10 * time.Second

// ErrNotFound is returned by an OptionStore when the option does not exist.
var ErrNotFound = errors.New("settings: option not found")

// OptionStore is a key-value store for JSON option values.
type OptionStore interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Set(ctx context.Context, name string, value []byte) error
	Delete(ctx context.Context, name string) error
	Ping(ctx context.Context) error
}

// withTimeout creates a context with the default query timeout.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// MemoryStore keeps options in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

var _ OptionStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

// Get returns a copy of the stored value.
func (m *MemoryStore) Get(_ context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[name]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value.
func (m *MemoryStore) Set(_ context.Context, name string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[name] = append([]byte(nil), value...)
	return nil
}

// Delete removes name. Deleting a missing option is not an error.
func (m *MemoryStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, name)
	return nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(context.Context) error { return nil }
