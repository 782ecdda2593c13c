package model

import "strings"

// Category groups event names for the read queries. Events are assigned to a
// category by the prefix of their dotted name; no event name matches more
// than one category.
type Category string

const (
	// CategoryBook covers catalog events: book.* and category.*.
	CategoryBook Category = "book"
	// CategoryUser covers people events: reservation.*, party.* and role.*.
	CategoryUser Category = "user"
)

var categoryPrefixes = map[Category][]string{
	CategoryBook: {"book.", "category."},
	CategoryUser: {"reservation.", "party.", "role."},
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := categoryPrefixes[c]
	return ok
}

// Prefixes returns the event-name prefixes matched by this category.
// Unknown categories return nil.
func (c Category) Prefixes() []string {
	return categoryPrefixes[c]
}

// Matches reports whether eventName belongs to this category.
func (c Category) Matches(eventName string) bool {
	for _, p := range categoryPrefixes[c] {
		if strings.HasPrefix(eventName, p) {
			return true
		}
	}
	return false
}
