package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// queueFullBackoff is how long the consumer waits before re-offering a message
// the worker queue rejected.
const queueFullBackoff = 500 * time.Millisecond

// KafkaSource reads content events from a Kafka topic and submits them to a
// Sink. Offsets are committed only after the sink accepted the event.
type KafkaSource struct {
	reader *kafka.Reader
	sink   Sink
	log    *logrus.Entry
}

// NewKafkaSource creates a consumer-group reader for topic.
func NewKafkaSource(brokers []string, topic, group string, sink Sink, log *logrus.Logger) *KafkaSource {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     group,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})

	return &KafkaSource{
		reader: r,
		sink:   sink,
		log:    log.WithFields(logrus.Fields{"component": "kafka-source", "topic": topic}),
	}
}

// Run fetches and submits messages until ctx is cancelled.
func (s *KafkaSource) Run(ctx context.Context) error {
	s.log.Info("kafka source started")
	defer s.reader.Close()

	for {
		msg, err := s.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				s.log.Info("kafka source stopping")
				return nil
			}
			s.log.WithError(err).Error("failed to fetch message")
			continue
		}

		fields := logrus.Fields{"partition": msg.Partition, "offset": msg.Offset}

		if err := s.submit(ctx, msg.Value); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// Rejected events are skipped: committing moves past them.
			s.log.WithError(err).WithFields(fields).Warn("skipping event")
		}

		if err := s.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			s.log.WithError(err).WithFields(fields).Error("failed to commit message")
		}
	}
}

// submit decodes value and hands it to the sink, waiting while the queue is full.
func (s *KafkaSource) submit(ctx context.Context, value []byte) error {
	e, err := DecodeEvent(value)
	if err != nil {
		return err
	}

	for {
		err := s.sink.Submit(ctx, []Event{e})
		if !errors.Is(err, ErrQueueFull) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(queueFullBackoff):
		}
	}
}

// DecodeEvent unmarshals and validates one event.
func DecodeEvent(value []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(value, &e); err != nil {
		return Event{}, fmt.Errorf("decoding event: %w", err)
	}
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	return e, nil
}

// KafkaPublisher writes content events to a topic. Events are keyed by id so
// changes to one document stay ordered within a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    *logrus.Entry
}

// NewKafkaPublisher creates a synchronous publisher for topic.
func NewKafkaPublisher(brokers []string, topic string, log *logrus.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  3,
		RequiredAcks: kafka.RequireAll,
	}

	return &KafkaPublisher{
		writer: w,
		log:    log.WithFields(logrus.Fields{"component": "kafka-publisher", "topic": topic}),
	}
}

// Submit validates and publishes events. It implements Sink.
func (p *KafkaPublisher) Submit(ctx context.Context, events []Event) error {
	if err := validateAll(events); err != nil {
		return err
	}

	msgs, err := encodeMessages(events)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publishing to kafka: %w", err)
	}

	p.log.WithField("count", len(msgs)).Debug("events published")
	return nil
}

func encodeMessages(events []Event) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		value, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("encoding event %s: %w", e.ID, err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(e.ID), Value: value})
	}
	return msgs, nil
}

// Close flushes pending writes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
