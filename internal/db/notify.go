package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/searchcraftinc/searchcraft-connect/internal/dbpool"
)

// validChannel matches safe PostgreSQL LISTEN channel names.
var validChannel = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

const (
	// OptionsChannel is notified by a trigger whenever an option row changes.
	OptionsChannel    = "searchcraft_options"
	initialBackoff    = 1 * time.Second
	maxBackoff        = 30 * time.Second
	backoffMultiplier = 2
)

// ChangeHandler is called with the name of each option that changed.
type ChangeHandler func(name string)

// OptionsListener subscribes to PostgreSQL LISTEN/NOTIFY on the options
// channel so that replicas sharing one database drop stale cached settings.
type OptionsListener struct {
	log     *logrus.Logger
	pool    *dbpool.Pool
	channel string
	handle  ChangeHandler
}

// NewOptionsListener creates an OptionsListener wired to the given pool.
func NewOptionsListener(log *logrus.Logger, pool *dbpool.Pool, handle ChangeHandler) *OptionsListener {
	return &OptionsListener{
		log:     log,
		pool:    pool,
		channel: OptionsChannel,
		handle:  handle,
	}
}

// Start launches the LISTEN loop in a background goroutine.
// It verifies the initial connection before returning. The background
// goroutine handles reconnection for subsequent failures.
func (b *OptionsListener) Start(ctx context.Context) error {
	if !validChannel.MatchString(b.channel) {
		return fmt.Errorf("options listener: invalid channel name %q", b.channel)
	}

	if err := b.pool.Ping(ctx); err != nil {
		return fmt.Errorf("options listener: database not reachable: %w", err)
	}

	go b.listen(ctx)

	return nil
}

// listen is the main loop that acquires a connection, subscribes to the
// channel, and processes notifications until the context is cancelled.
func (b *OptionsListener) listen(ctx context.Context) {
	backoff := initialBackoff

	for {
		if ctx.Err() != nil {
			return
		}

		err := b.subscribeAndForward(ctx)
		if err == nil || ctx.Err() != nil {
			return
		}

		b.log.WithError(err).WithField("retry_in", backoff).
			Warn("options listener connection lost, reconnecting")

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		backoff = nextBackoff(backoff)
	}
}

// subscribeAndForward acquires a connection, issues LISTEN, and blocks on
// notifications until the connection fails or the context is cancelled.
func (b *OptionsListener) subscribeAndForward(ctx context.Context) error {
	conn, err := b.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Release()

	// LISTEN requires the channel name inline (not a parameter), so we use
	// pgx.Identifier to safely quote/sanitize the channel name.
	sanitizedChannel := pgx.Identifier{b.channel}.Sanitize()
	if _, err := conn.Exec(ctx, "LISTEN "+sanitizedChannel); err != nil {
		return fmt.Errorf("executing LISTEN: %w", err)
	}

	b.log.WithField("channel", b.channel).Info("options listener started")

	for {
		// Set a 2-minute read deadline so we periodically check ctx cancellation.
		if err := conn.Conn().PgConn().Conn().SetReadDeadline(time.Now().Add(2 * time.Minute)); err != nil {
			return fmt.Errorf("setting read deadline: %w", err)
		}

		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// On timeout, loop back to check context and retry.
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}

			return fmt.Errorf("waiting for notification: %w", err)
		}

		b.handleNotification(notification)
	}
}

// handleNotification decodes one trigger payload and passes the option name on.
func (b *OptionsListener) handleNotification(n *pgconn.Notification) {
	b.log.WithFields(logrus.Fields{
		"channel": n.Channel,
		"pid":     n.PID,
	}).Debug("notification received")

	name, ok := parseOptionChange(n.Payload)
	if !ok {
		b.log.Warn("dropping notification without option name")
		return
	}

	b.handle(name)
}

// parseOptionChange extracts the option name from a trigger payload.
func parseOptionChange(payload string) (string, bool) {
	var change struct {
		Name string `json:"name"`
		Op   string `json:"op,omitempty"`
	}
	if err := json.Unmarshal([]byte(payload), &change); err != nil || change.Name == "" {
		return "", false
	}

	return change.Name, true
}

// nextBackoff doubles the current backoff duration with random jitter (±25%),
// capped at maxBackoff. Jitter prevents thundering herd on reconnect.
func nextBackoff(current time.Duration) time.Duration {
	next := current * backoffMultiplier
	if next > maxBackoff {
		next = maxBackoff
	}

	// Add ±25% jitter.
	jitter := float64(next) * (0.75 + rand.Float64()*0.5) //nolint:gosec // jitter doesn't need crypto rand.

	return time.Duration(jitter)
}
