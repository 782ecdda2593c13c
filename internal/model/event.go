package model

import (
	"encoding/json"
	"time"
)

// StoredEvent is a persisted domain event, mirroring what is published to the broker.
// The event log is append-only: rows are inserted by the consumer and bulk-deleted
// by the retention sweeper, never updated.
type StoredEvent struct {
	ID          string          `json:"id"`
	EventName   string          `json:"eventName"`
	EventData   json.RawMessage `json:"eventData"`
	RoutingKey  string          `json:"routingKey"`
	Timestamp   time.Time       `json:"timestamp"`
	ProcessedAt *time.Time      `json:"processedAt,omitempty"`
}

// EventRecord is the read-side representation of a stored event, as served
// by the HTTP API. It omits the ID and routing key.
type EventRecord struct {
	EventName   string          `json:"eventName"`
	EventData   json.RawMessage `json:"eventData"`
	Timestamp   time.Time       `json:"timestamp"`
	ProcessedAt *time.Time      `json:"processedAt,omitempty"`
}

// EventPage is one page of event records plus the cursor for the next page.
// LastIndex equals the requested lastIndex plus the number of returned events.
type EventPage struct {
	Events    []EventRecord `json:"events"`
	LastIndex int           `json:"lastIndex"`
}

// Record converts a StoredEvent to its read-side representation.
func (e *StoredEvent) Record() EventRecord {
	return EventRecord{
		EventName:   e.EventName,
		EventData:   e.EventData,
		Timestamp:   e.Timestamp,
		ProcessedAt: e.ProcessedAt,
	}
}
