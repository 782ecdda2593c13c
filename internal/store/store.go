package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/alfredjeanlab/shelflog/internal/model"
)

// EventStore defines the persistence interface for the append-only event log.
type EventStore interface {
	// StoreEvent persists a new event with timestamp = now. The payload is
	// stored as an opaque JSON document; duplicate events from broker
	// redelivery are stored as distinct rows.
	StoreEvent(ctx context.Context, eventName, routingKey string, eventData json.RawMessage) error

	// EventsByCategory returns one page of events whose name matches the
	// category's prefixes, ordered by timestamp descending. lastIndex is the
	// number of events to skip; pageSize caps the page.
	EventsByCategory(ctx context.Context, cat model.Category, lastIndex, pageSize int) ([]*model.StoredEvent, error)

	// EventsOlderThan returns all events with timestamp <= cutoff, oldest
	// first. Used to archive events before a retention sweep.
	EventsOlderThan(ctx context.Context, cutoff time.Time) ([]*model.StoredEvent, error)

	// DeleteEventsOlderThan bulk-deletes every event with
	// timestamp <= now - age.
	DeleteEventsOlderThan(ctx context.Context, age time.Duration) error

	// Lifecycle
	Close() error
}
