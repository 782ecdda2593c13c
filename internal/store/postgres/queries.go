package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/alfredjeanlab/shelflog/internal/idgen"
	"github.com/alfredjeanlab/shelflog/internal/model"
)

// eventColumns is the column list used for SELECT statements on the events table.
const eventColumns = `id, event_name, routing_key, event_data, timestamp, processed_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryInsertEvent(ctx context.Context, db executor, eventName, routingKey string, eventData json.RawMessage) error {
	id, err := idgen.Generate()
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = db.ExecContext(ctx, `
		INSERT INTO events (id, event_name, routing_key, event_data, timestamp, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id,
		eventName,
		routingKey,
		jsonbBytes(eventData),
		now,
		now,
	)
	return err
}

func queryEventsByCategory(ctx context.Context, db executor, cat model.Category, lastIndex, pageSize int) ([]*model.StoredEvent, error) {
	prefixes := cat.Prefixes()
	if len(prefixes) == 0 {
		return nil, fmt.Errorf("unknown event category %q", cat)
	}

	clauses := make([]string, len(prefixes))
	args := make([]any, 0, len(prefixes)+2)
	for i, p := range prefixes {
		clauses[i] = fmt.Sprintf("event_name LIKE $%d", i+1)
		args = append(args, p+"%")
	}
	args = append(args, pageSize, lastIndex)

	query := `SELECT ` + eventColumns + ` FROM events WHERE ` +
		"(" + strings.Join(clauses, " OR ") + ")" +
		fmt.Sprintf(" ORDER BY timestamp DESC LIMIT $%d OFFSET $%d", len(prefixes)+1, len(prefixes)+2)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func queryEventsOlderThan(ctx context.Context, db executor, cutoff time.Time) ([]*model.StoredEvent, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE timestamp <= $1 ORDER BY timestamp ASC`,
		cutoff,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func queryDeleteEventsOlderThan(ctx context.Context, db executor, cutoff time.Time) error {
	_, err := db.ExecContext(ctx, `DELETE FROM events WHERE timestamp <= $1`, cutoff)
	return err
}

// jsonbBytes normalizes a raw JSON document for a JSONB column; empty input
// becomes the empty object rather than NULL.
func jsonbBytes(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return []byte("{}")
	}
	return []byte(raw)
}
