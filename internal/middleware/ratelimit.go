// Package middleware provides HTTP middleware for the connector.
package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// maxBuckets is the maximum number of tracked clients.
const maxBuckets = 100_000

// bucketIdle is how long an untouched bucket is kept.
const bucketIdle = 10 * time.Minute

// RateLimiter is a per-client token bucket limiter.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64
	burst   float64
	now     func() time.Time
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing ratePerSec sustained requests with
// the given burst. Idle buckets are evicted until ctx is cancelled.
func NewRateLimiter(ctx context.Context, ratePerSec, burst int) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		rate:    float64(ratePerSec),
		burst:   float64(burst),
		now:     time.Now,
	}
	go rl.cleanupLoop(ctx)
	return rl
}

// Allow takes one token from key's bucket. When the bucket is empty it
// returns false and the wait until the next token.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		if len(rl.buckets) >= maxBuckets {
			return false, time.Second
		}
		b = &bucket{tokens: rl.burst, lastSeen: now}
		rl.buckets[key] = b
	}

	b.tokens = math.Min(rl.burst, b.tokens+now.Sub(b.lastSeen).Seconds()*rl.rate)
	b.lastSeen = now

	if b.tokens < 1 {
		if rl.rate <= 0 {
			return false, time.Second
		}
		wait := time.Duration((1 - b.tokens) / rl.rate * float64(time.Second))
		return false, wait
	}
	b.tokens--
	return true, 0
}

func (rl *RateLimiter) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evictIdle()
		}
	}
}

func (rl *RateLimiter) evictIdle() {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for k, b := range rl.buckets {
		if now.Sub(b.lastSeen) > bucketIdle {
			delete(rl.buckets, k)
		}
	}
}

// Handler returns Gin middleware that limits requests per client IP.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// ClientIP ignores forwarding headers: the router trusts no proxies.
		ok, wait := rl.Allow(c.ClientIP())
		if !ok {
			secs := int(math.Ceil(wait.Seconds()))
			c.Header("Retry-After", strconv.Itoa(max(secs, 1)))
			respondError(c, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")
			return
		}
		c.Next()
	}
}
