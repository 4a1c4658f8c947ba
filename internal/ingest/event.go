// Package ingest keeps the Searchcraft index in sync with site content. Content
// changes arrive as Events (from the admin webhook or a Kafka topic) and are
// pushed to the index by a Worker using the ingest key.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Action says what happened to a piece of content.
type Action string

// Supported actions.
const (
	ActionUpsert Action = "upsert"
	ActionDelete Action = "delete"
)

// ErrQueueFull is returned when the worker queue cannot take more events.
var ErrQueueFull = errors.New("ingest: queue full")

// Event is a content change.
type Event struct {
	Action   Action         `json:"action"`
	ID       string         `json:"id"`
	Document map[string]any `json:"document,omitempty"`
}

// Validate checks that the event can be applied.
func (e Event) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("ingest: event id must not be empty")
	}
	switch e.Action {
	case ActionUpsert:
		if len(e.Document) == 0 {
			return fmt.Errorf("ingest: upsert %s has no document", e.ID)
		}
	case ActionDelete:
	default:
		return fmt.Errorf("ingest: unknown action %q for %s", e.Action, e.ID)
	}
	return nil
}

// Sink accepts content events.
type Sink interface {
	Submit(ctx context.Context, events []Event) error
}

// validateAll checks every event before any is accepted.
func validateAll(events []Event) error {
	for _, e := range events {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// plan is the net effect of a batch: the last action per id wins.
type plan struct {
	upserts []map[string]any
	deletes []string
}

func planBatch(events []Event) plan {
	last := make(map[string]int, len(events))
	for i, e := range events {
		last[e.ID] = i
	}

	var p plan
	for i, e := range events {
		if last[e.ID] != i {
			continue
		}
		switch e.Action {
		case ActionUpsert:
			doc := make(map[string]any, len(e.Document)+1)
			for k, v := range e.Document {
				doc[k] = v
			}
			doc["id"] = e.ID
			p.upserts = append(p.upserts, doc)
		case ActionDelete:
			p.deletes = append(p.deletes, e.ID)
		}
	}
	return p
}
