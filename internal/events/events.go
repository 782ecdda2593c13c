// Package events implements the domain-event pipeline: a fire-and-forget
// publisher that business services call on every mutation, and a durable
// consumer that records delivered events in the event store.
//
// Events travel over NATS JetStream. The event name doubles as the routing
// key: an event named "book.created" is published on the subject
// "<prefix>.book.created" and carried in the message "type" header. The
// stream is file-backed, so messages survive broker restarts; delivery is
// at-least-once with explicit acknowledgment.
package events

import "context"

// Event name constants, convention "<entity>.<verb>".
const (
	EventBookCreated = "book.created"
	EventBookUpdated = "book.updated"
	EventBookDeleted = "book.deleted"

	EventCategoryCreated = "category.created"
	EventCategoryUpdated = "category.updated"
	EventCategoryDeleted = "category.deleted"

	EventPartyCreated = "party.created"
	EventPartyUpdated = "party.updated"
	EventPartyDeleted = "party.deleted"

	EventRoleCreated = "role.created"
	EventRoleUpdated = "role.updated"
	EventRoleDeleted = "role.deleted"

	EventReservationCreated   = "reservation.created"
	EventReservationBorrowed  = "reservation.borrowed"
	EventReservationReturned  = "reservation.returned"
	EventReservationCancelled = "reservation.cancelled"
)

// TypeHeader carries the event name on published messages; consumers fall
// back to the routing key when it is absent.
const TypeHeader = "type"

// TimestampHeader carries the publish instant in RFC 3339 format.
const TimestampHeader = "timestamp"

// Event payload types

type BookCreated struct {
	BookID      int    `json:"BookId"`
	Title       string `json:"Title"`
	ISBN        string `json:"ISBN"`
	AuthorID    int    `json:"AuthorId"`
	CategoryID  int    `json:"CategoryId"`
	Publisher   string `json:"Publisher,omitempty"`
	TotalCopies int    `json:"TotalCopies"`
}

type BookEvent struct {
	BookID     int    `json:"BookId"`
	Title      string `json:"Title"`
	CategoryID int    `json:"CategoryId"`
}

type CategoryEvent struct {
	CategoryID int    `json:"CategoryId"`
	Name       string `json:"Name"`
}

type PartyEvent struct {
	PartyID int      `json:"PartyId"`
	Name    string   `json:"Name"`
	Email   string   `json:"Email"`
	Phone   string   `json:"Phone"`
	Address string   `json:"Address"`
	Roles   []string `json:"Roles"`
}

type ReservationEvent struct {
	ReservationID int    `json:"ReservationId"`
	BookCopyID    int    `json:"BookCopyId"`
	BookTitle     string `json:"BookTitle"`
	CopyNumber    string `json:"CopyNumber"`
	CustomerID    int    `json:"CustomerId"`
}

type RoleEvent struct {
	RoleID      int    `json:"RoleId"`
	Name        string `json:"Name"`
	Description string `json:"Description"`
}

// Publisher is the interface business services use to emit events.
// Publish is fire-and-forget: it never reports failure to the caller, so a
// broken broker cannot abort the business operation that triggered the event.
type Publisher interface {
	Publish(ctx context.Context, eventName string, payload any)
	Close() error
}
