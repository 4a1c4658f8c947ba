package ingest

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/searchcraftinc/searchcraft-connect/client"
	"github.com/searchcraftinc/searchcraft-connect/internal/metrics"
	"github.com/searchcraftinc/searchcraft-connect/internal/settings"
)

const (
	defaultQueueSize   = 1000
	defaultConcurrency = 2
	defaultBatchSize   = 100
	maxRetries         = 3
	baseRetryDelay     = 2 * time.Second
)

// OptionsLoader returns the current settings.
type OptionsLoader interface {
	Load(ctx context.Context) (settings.Options, error)
}

// ClientFactory builds an ingest-key client for the given settings.
type ClientFactory func(opts settings.Options) (*client.Client, error)

// Worker applies content events to the index asynchronously with retry.
// Events are sharded by document id so every event for one document is
// applied by the same goroutine, in submission order.
type Worker struct {
	settings    OptionsLoader
	newClient   ClientFactory
	log         *logrus.Logger
	shards      []chan Event
	concurrency int
	batchSize   int
	retryDelay  time.Duration
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithBatchSize caps how many queued events are applied in one request.
func WithBatchSize(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

// WithRetryDelay sets the base delay of the exponential backoff.
func WithRetryDelay(d time.Duration) WorkerOption {
	return func(w *Worker) { w.retryDelay = d }
}

// NewWorker creates a worker with the given queue capacity and concurrency.
// The capacity is split evenly across one queue per worker goroutine.
func NewWorker(s OptionsLoader, newClient ClientFactory, log *logrus.Logger, queueSize, concurrency int, opts ...WorkerOption) *Worker {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	shardSize := (queueSize + concurrency - 1) / concurrency
	shards := make([]chan Event, concurrency)
	for i := range shards {
		shards[i] = make(chan Event, shardSize)
	}

	w := &Worker{
		settings:    s,
		newClient:   newClient,
		log:         log,
		shards:      shards,
		concurrency: concurrency,
		batchSize:   defaultBatchSize,
		retryDelay:  baseRetryDelay,
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// DefaultClientFactory builds a client from the stored endpoint and ingest key.
func DefaultClientFactory(clientOpts ...client.Option) ClientFactory {
	return func(opts settings.Options) (*client.Client, error) {
		return client.New(opts.EndpointURL, opts.IngestKey, client.KeyTypeIngest, clientOpts...)
	}
}

// Enqueue adds an event to the queue of its document. Non-blocking; returns
// ErrQueueFull if that queue is full.
func (w *Worker) Enqueue(e Event) error {
	select {
	case w.shardFor(e.ID) <- e:
		metrics.SyncQueueDepth.Set(float64(w.QueueDepth()))
		return nil
	default:
		metrics.SyncEventsTotal.WithLabelValues(string(e.Action), "dropped").Inc()
		w.log.WithField("id", e.ID).Warn("sync queue full, dropping event")
		return ErrQueueFull
	}
}

// Submit validates and enqueues events. It implements Sink.
func (w *Worker) Submit(_ context.Context, events []Event) error {
	if err := validateAll(events); err != nil {
		return err
	}
	for i, e := range events {
		if err := w.Enqueue(e); err != nil {
			return fmt.Errorf("%w: accepted %d of %d events", err, i, len(events))
		}
	}
	return nil
}

func (w *Worker) shardFor(id string) chan Event {
	h := fnv.New32a()
	h.Write([]byte(id)) //nolint:errcheck
	return w.shards[h.Sum32()%uint32(len(w.shards))]
}

// QueueDepth returns the number of queued events across all shards.
func (w *Worker) QueueDepth() int {
	n := 0
	for _, ch := range w.shards {
		n += len(ch)
	}
	return n
}

// Run spawns N worker goroutines and blocks until the context is cancelled
// and all workers have stopped. Call in a goroutine.
func (w *Worker) Run(ctx context.Context) {
	var wg sync.WaitGroup

	w.log.WithField("concurrency", w.concurrency).Info("starting sync workers")

	for i := range w.concurrency {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w.runWorker(ctx, id)
		}(i)
	}

	wg.Wait()
	w.log.Info("all sync workers stopped")
}

// runWorker consumes shard id only.
func (w *Worker) runWorker(ctx context.Context, id int) {
	w.log.WithField("worker_id", id).Debug("sync worker started")
	events := w.shards[id]
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-events:
			batch := w.drain(events, e)
			metrics.SyncQueueDepth.Set(float64(w.QueueDepth()))
			w.process(ctx, batch)
		}
	}
}

// drain collects up to batchSize events from one shard without blocking.
func (w *Worker) drain(events <-chan Event, first Event) []Event {
	batch := []Event{first}
	for len(batch) < w.batchSize {
		select {
		case e := <-events:
			batch = append(batch, e)
		default:
			return batch
		}
	}
	return batch
}

func (w *Worker) process(ctx context.Context, batch []Event) {
	err := w.apply(ctx, batch)

	result := "ok"
	if err != nil {
		result = "failed"
		w.log.WithError(err).WithField("events", len(batch)).Error("content sync failed")
	}
	for _, e := range batch {
		metrics.SyncEventsTotal.WithLabelValues(string(e.Action), result).Inc()
	}
}

// apply pushes one batch: upserts, then deletes, then a commit.
func (w *Worker) apply(ctx context.Context, batch []Event) error {
	opts, err := w.settings.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if !opts.CanIngest() {
		return fmt.Errorf("ingest key, endpoint or index not configured")
	}

	c, err := w.newClient(opts)
	if err != nil {
		return fmt.Errorf("building client: %w", err)
	}

	p := planBatch(batch)
	index := opts.IndexID

	if len(p.upserts) > 0 {
		docs := make([]client.Document, len(p.upserts))
		for i, d := range p.upserts {
			docs[i] = d
		}
		if err := w.withRetry(ctx, "add documents", func() error {
			_, err := c.Documents().Add(ctx, index, docs)
			return err
		}); err != nil {
			return err
		}
	}

	if len(p.deletes) > 0 {
		if err := w.withRetry(ctx, "delete documents", func() error {
			_, err := c.Documents().Delete(ctx, index, p.deletes)
			return err
		}); err != nil {
			return err
		}
	}

	if err := w.withRetry(ctx, "commit", func() error {
		_, err := c.Transactions().Commit(ctx, index)
		return err
	}); err != nil {
		return err
	}

	w.log.WithFields(logrus.Fields{
		"index":    index,
		"upserted": len(p.upserts),
		"deleted":  len(p.deletes),
	}).Debug("content synced")

	return nil
}

func (w *Worker) withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := range maxRetries {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err = fn(); err == nil {
			return nil
		}
		if !retryable(err) {
			return fmt.Errorf("%s: %w", op, err)
		}

		w.log.WithError(err).WithFields(logrus.Fields{
			"op":      op,
			"attempt": attempt + 1,
		}).Warn("searchcraft request failed")

		if attempt < maxRetries-1 {
			delay := w.retryDelay * (1 << attempt) // exponential backoff
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", op, maxRetries, err)
}

// retryable reports whether a failed call may succeed if repeated: transport
// failures, rate limiting and server errors. Other 4xx are final.
func retryable(err error) bool {
	e, ok := client.AsError(err)
	if !ok {
		return false
	}
	switch e.Kind {
	case client.KindTransport:
		return true
	case client.KindAPI:
		return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
	default:
		return false
	}
}
