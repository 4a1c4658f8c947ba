// Package nonce issues and verifies short-lived, action-scoped CSRF tokens
// for settings forms.
//
// A nonce is an HMAC over (tick, action, subject) where a tick is half the
// configured lifetime, so a token stays valid for between one half and one
// full lifetime.
package nonce

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Verification results.
const (
	Invalid = 0
	// Fresh means the nonce was issued in the current tick.
	Fresh = 1
	// Aging means the nonce was issued in the previous tick.
	Aging = 2
)

const nonceLen = 10

// ErrReplayed is returned by Consume when a valid nonce was already used.
var ErrReplayed = errors.New("nonce: already used")

// Issuer creates and verifies nonces.
type Issuer struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
	guard    Guard
}

// Option configures an Issuer.
type Option func(*Issuer)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// WithGuard makes Consume reject nonces that were already used.
func WithGuard(g Guard) Option {
	return func(i *Issuer) { i.guard = g }
}

// New creates an Issuer.
func New(secret []byte, lifetime time.Duration, opts ...Option) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("nonce: secret must not be empty")
	}
	if lifetime < 2*time.Second {
		return nil, fmt.Errorf("nonce: lifetime must be at least 2s, got %s", lifetime)
	}

	i := &Issuer{
		secret:   append([]byte(nil), secret...),
		lifetime: lifetime,
		now:      time.Now,
	}
	for _, o := range opts {
		o(i)
	}
	return i, nil
}

// Lifetime returns the configured lifetime.
func (i *Issuer) Lifetime() time.Duration { return i.lifetime }

// tick returns the current half-lifetime counter, rounded up.
func (i *Issuer) tick() int64 {
	half := int64(i.lifetime / 2)
	now := i.now().UnixNano()
	return (now + half - 1) / half
}

func (i *Issuer) compute(tick int64, action, subject string) string {
	mac := hmac.New(sha256.New, i.secret)
	mac.Write([]byte(strconv.FormatInt(tick, 10)))
	mac.Write([]byte{'|'})
	mac.Write([]byte(action))
	mac.Write([]byte{'|'})
	mac.Write([]byte(subject))
	sum := hex.EncodeToString(mac.Sum(nil))
	return sum[len(sum)-12 : len(sum)-12+nonceLen]
}

// Create returns a nonce for action bound to subject (e.g. the admin session).
func (i *Issuer) Create(action, subject string) string {
	return i.compute(i.tick(), action, subject)
}

// Verify returns Fresh, Aging or Invalid.
func (i *Issuer) Verify(action, subject, nonce string) int {
	if len(nonce) != nonceLen {
		return Invalid
	}

	t := i.tick()
	if hmac.Equal([]byte(nonce), []byte(i.compute(t, action, subject))) {
		return Fresh
	}
	if hmac.Equal([]byte(nonce), []byte(i.compute(t-1, action, subject))) {
		return Aging
	}
	return Invalid
}

// Consume verifies nonce and, when a Guard is configured, marks it used so it
// cannot be submitted twice. It returns Invalid with ErrReplayed on reuse.
func (i *Issuer) Consume(ctx context.Context, action, subject, nonce string) (int, error) {
	result := i.Verify(action, subject, nonce)
	if result == Invalid || i.guard == nil {
		return result, nil
	}

	first, err := i.guard.MarkUsed(ctx, action+"|"+subject+"|"+nonce, i.lifetime)
	if err != nil {
		return Invalid, fmt.Errorf("nonce: marking used: %w", err)
	}
	if !first {
		return Invalid, ErrReplayed
	}
	return result, nil
}
