package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	bruteForceMaxAttempts = 5
	bruteForceWindow      = 15 * time.Minute
	bruteForceLockout     = 5 * time.Minute
	bruteForceCleanup     = 60 * time.Second
	bruteForceMaxRecords  = 10000
)

type failureRecord struct {
	attempts  int
	firstFail time.Time
	lockedAt  time.Time
}

// BruteForceGuard tracks failed admin logins per client and locks out clients
// that fail too often within the tracking window.
type BruteForceGuard struct {
	mu      sync.Mutex
	records map[string]*failureRecord
	log     *logrus.Logger
	now     func() time.Time
}

// NewBruteForceGuard creates a guard. The cleanup goroutine stops when ctx is
// cancelled.
func NewBruteForceGuard(ctx context.Context, log *logrus.Logger) *BruteForceGuard {
	g := &BruteForceGuard{
		records: make(map[string]*failureRecord),
		log:     log,
		now:     time.Now,
	}
	go g.cleanupLoop(ctx)
	return g
}

// IsBlocked reports whether client is currently locked out.
func (g *BruteForceGuard) IsBlocked(client string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[client]
	if !ok || rec.lockedAt.IsZero() {
		return false
	}
	return g.now().Sub(rec.lockedAt) < bruteForceLockout
}

// RecordFailure counts one failed attempt for client.
func (g *BruteForceGuard) RecordFailure(client string) {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[client]
	if !ok || now.Sub(rec.firstFail) > bruteForceWindow {
		if !ok && len(g.records) >= bruteForceMaxRecords {
			g.evictOldest()
		}
		g.records[client] = &failureRecord{attempts: 1, firstFail: now}
		return
	}

	rec.attempts++
	if rec.attempts >= bruteForceMaxAttempts && rec.lockedAt.IsZero() {
		rec.lockedAt = now
		g.log.WithField("client_ip", client).Warn("client locked out after repeated admin auth failures")
	}
}

// Reset clears failure tracking for client after a successful login.
func (g *BruteForceGuard) Reset(client string) {
	g.mu.Lock()
	delete(g.records, client)
	g.mu.Unlock()
}

func (g *BruteForceGuard) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(bruteForceCleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.sweep()
		}
	}
}

// sweep drops expired lockouts and stale windows.
func (g *BruteForceGuard) sweep() {
	now := g.now()
	g.mu.Lock()
	defer g.mu.Unlock()

	for k, rec := range g.records {
		if !rec.lockedAt.IsZero() {
			if now.Sub(rec.lockedAt) >= bruteForceLockout {
				delete(g.records, k)
			}
			continue
		}
		if now.Sub(rec.firstFail) >= bruteForceWindow {
			delete(g.records, k)
		}
	}
}

// evictOldest removes the record with the oldest first failure.
// Caller must hold g.mu.
func (g *BruteForceGuard) evictOldest() {
	var (
		oldestKey  string
		oldestTime time.Time
	)
	for k, rec := range g.records {
		if oldestKey == "" || rec.firstFail.Before(oldestTime) {
			oldestKey, oldestTime = k, rec.firstFail
		}
	}
	delete(g.records, oldestKey)
}

// BruteForceMiddleware rejects requests from locked-out clients before any
// credential is checked.
func BruteForceMiddleware(guard *BruteForceGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		if guard.IsBlocked(c.ClientIP()) {
			respondError(c, http.StatusTooManyRequests, "rate_limited", "too many failed authentication attempts")
			return
		}
		c.Next()
	}
}
