// Package client provides a typed client for the shelflog HTTP API.
package client

import (
	"context"

	"github.com/alfredjeanlab/shelflog/internal/model"
)

// EventsClient is the interface for querying the stored event log.
type EventsClient interface {
	// BookEvents returns one page of book-related events (book.*, category.*).
	BookEvents(ctx context.Context, lastIndex, pageSize int) (*model.EventPage, error)
	// UserEvents returns one page of user-related events (reservation.*,
	// party.*, role.*).
	UserEvents(ctx context.Context, lastIndex, pageSize int) (*model.EventPage, error)
	// Health reports the server's health status string.
	Health(ctx context.Context) (string, error)
	Close() error
}
