// Package server exposes the stored event log over HTTP.
package server

import (
	"log/slog"

	"github.com/alfredjeanlab/shelflog/internal/store"
)

// EventsServer serves the paginated read queries over the event log.
type EventsServer struct {
	store  store.EventStore
	logger *slog.Logger
}

// NewEventsServer returns a new EventsServer backed by the given store.
func NewEventsServer(s store.EventStore, logger *slog.Logger) *EventsServer {
	return &EventsServer{store: s, logger: logger}
}
