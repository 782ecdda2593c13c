package server

import (
	"net/http"
	"strconv"

	"github.com/alfredjeanlab/shelflog/internal/model"
)

// handleBookEvents handles GET /api/events/book.
func (s *EventsServer) handleBookEvents(w http.ResponseWriter, r *http.Request) {
	s.handleEvents(w, r, model.CategoryBook)
}

// handleUserEvents handles GET /api/events/user.
func (s *EventsServer) handleUserEvents(w http.ResponseWriter, r *http.Request) {
	s.handleEvents(w, r, model.CategoryUser)
}

func (s *EventsServer) handleEvents(w http.ResponseWriter, r *http.Request, cat model.Category) {
	lastIndex, pageSize, ok := paginationParams(w, r)
	if !ok {
		return
	}

	events, err := s.store.EventsByCategory(r.Context(), cat, lastIndex, pageSize)
	if err != nil {
		s.logger.Error("failed to list events", "category", cat, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}

	// Ensure events is never null in JSON output.
	records := make([]model.EventRecord, 0, len(events))
	for _, e := range events {
		records = append(records, e.Record())
	}

	writeJSON(w, http.StatusOK, model.EventPage{
		Events:    records,
		LastIndex: lastIndex + len(records),
	})
}

// paginationParams parses lastIndex (default 0) and pageSize (default 100)
// from the query string. Invalid values produce a 400 response and ok=false.
func paginationParams(w http.ResponseWriter, r *http.Request) (lastIndex, pageSize int, ok bool) {
	q := r.URL.Query()

	lastIndex = 0
	if v := q.Get("lastIndex"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "lastIndex must be a non-negative integer")
			return 0, 0, false
		}
		lastIndex = n
	}

	pageSize = 100
	if v := q.Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "pageSize must be a positive integer")
			return 0, 0, false
		}
		pageSize = n
	}

	return lastIndex, pageSize, true
}
