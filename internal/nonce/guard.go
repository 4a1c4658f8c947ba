package nonce

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Guard records used nonces.
type Guard interface {
	// MarkUsed records key for ttl and reports whether this was its first use.
	MarkUsed(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// MemoryGuard keeps used nonces in process memory. Suitable for a single replica.
type MemoryGuard struct {
	mu    sync.Mutex
	used  map[string]time.Time
	now   func() time.Time
	sweep int
}

// NewMemoryGuard creates an empty MemoryGuard.
func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{used: make(map[string]time.Time), now: time.Now}
}

// sweepEvery controls how often expired entries are pruned.
const sweepEvery = 256

// MarkUsed implements Guard.
func (g *MemoryGuard) MarkUsed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()

	g.sweep++
	if g.sweep >= sweepEvery {
		g.sweep = 0
		for k, exp := range g.used {
			if now.After(exp) {
				delete(g.used, k)
			}
		}
	}

	if exp, ok := g.used[key]; ok && now.Before(exp) {
		return false, nil
	}
	g.used[key] = now.Add(ttl)
	return true, nil
}

// RedisGuard shares used nonces between replicas through Redis SETNX.
type RedisGuard struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisGuard connects to addr and verifies the connection with a PING.
func NewRedisGuard(ctx context.Context, addr, password string) (*RedisGuard, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisGuard{rdb: rdb, prefix: "searchcraft:nonce:"}, nil
}

// MarkUsed implements Guard.
func (g *RedisGuard) MarkUsed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := g.rdb.SetNX(ctx, g.prefix+key, 1, ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Ping checks the Redis connection.
func (g *RedisGuard) Ping(ctx context.Context) error {
	return g.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (g *RedisGuard) Close() error {
	return g.rdb.Close()
}
