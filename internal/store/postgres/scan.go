package postgres

import (
	"database/sql"

	"github.com/alfredjeanlab/shelflog/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanEvent scans a single row into a model.StoredEvent.
// The row must contain columns in the order defined by eventColumns.
func scanEvent(row scannable) (*model.StoredEvent, error) {
	var e model.StoredEvent
	var (
		eventData   []byte
		processedAt sql.NullTime
	)

	err := row.Scan(
		&e.ID,
		&e.EventName,
		&e.RoutingKey,
		&eventData,
		&e.Timestamp,
		&processedAt,
	)
	if err != nil {
		return nil, err
	}

	e.EventData = eventData
	if processedAt.Valid {
		t := processedAt.Time
		e.ProcessedAt = &t
	}

	return &e, nil
}

func scanEvents(rows *sql.Rows) ([]*model.StoredEvent, error) {
	var events []*model.StoredEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
