// Package postgres implements the store.EventStore interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/alfredjeanlab/shelflog/internal/model"
	"github.com/alfredjeanlab/shelflog/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// EventStore implements store.EventStore backed by a PostgreSQL database.
// Events are stored as JSONB documents in an append-only table with a
// compound index on (event_name ASC, timestamp DESC) for the read paths.
type EventStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// Compile-time check that EventStore implements store.EventStore.
var _ store.EventStore = (*EventStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
// Migrations are idempotent: re-running them against an up-to-date
// database is a no-op.
func New(databaseURL string, logger *slog.Logger) (*EventStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &EventStore{db: db, logger: logger}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *EventStore) Close() error {
	return s.db.Close()
}

// StoreEvent inserts a new event row stamped with the current time.
// Failures are logged here and returned to the caller, which is expected
// to negatively acknowledge the originating message.
func (s *EventStore) StoreEvent(ctx context.Context, eventName, routingKey string, eventData json.RawMessage) error {
	if err := queryInsertEvent(ctx, s.db, eventName, routingKey, eventData); err != nil {
		s.logger.Error("failed to store event", "event", eventName, "routing_key", routingKey, "err", err)
		return err
	}
	s.logger.Info("event stored", "event", eventName, "routing_key", routingKey)
	return nil
}

func (s *EventStore) EventsByCategory(ctx context.Context, cat model.Category, lastIndex, pageSize int) ([]*model.StoredEvent, error) {
	return queryEventsByCategory(ctx, s.db, cat, lastIndex, pageSize)
}

func (s *EventStore) EventsOlderThan(ctx context.Context, cutoff time.Time) ([]*model.StoredEvent, error) {
	return queryEventsOlderThan(ctx, s.db, cutoff)
}

func (s *EventStore) DeleteEventsOlderThan(ctx context.Context, age time.Duration) error {
	return queryDeleteEventsOlderThan(ctx, s.db, time.Now().UTC().Add(-age))
}
