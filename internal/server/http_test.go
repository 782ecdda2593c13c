package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/alfredjeanlab/shelflog/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubStore serves canned events through the category read path and records
// the pagination arguments it was called with.
type stubStore struct {
	events []*model.StoredEvent
	err    error

	lastCat       model.Category
	lastLastIndex int
	lastPageSize  int
}

func (s *stubStore) StoreEvent(ctx context.Context, eventName, routingKey string, eventData json.RawMessage) error {
	return nil
}

func (s *stubStore) EventsByCategory(ctx context.Context, cat model.Category, lastIndex, pageSize int) ([]*model.StoredEvent, error) {
	s.lastCat, s.lastLastIndex, s.lastPageSize = cat, lastIndex, pageSize
	if s.err != nil {
		return nil, s.err
	}
	var matched []*model.StoredEvent
	for _, e := range s.events {
		if cat.Matches(e.EventName) {
			matched = append(matched, e)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Timestamp.After(matched[j].Timestamp) })
	if lastIndex >= len(matched) {
		return nil, nil
	}
	matched = matched[lastIndex:]
	if len(matched) > pageSize {
		matched = matched[:pageSize]
	}
	return matched, nil
}

func (s *stubStore) EventsOlderThan(ctx context.Context, cutoff time.Time) ([]*model.StoredEvent, error) {
	return nil, nil
}

func (s *stubStore) DeleteEventsOlderThan(ctx context.Context, age time.Duration) error {
	return nil
}

func (s *stubStore) Close() error { return nil }

func newTestServer(t *testing.T, st *stubStore, token string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewEventsServer(st, testLogger()).NewHTTPHandler(token))
	t.Cleanup(srv.Close)
	return srv
}

func getPage(t *testing.T, url string) (model.EventPage, int) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	var page model.EventPage
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
	}
	return page, resp.StatusCode
}

func TestBookEvents_SingleEvent(t *testing.T) {
	now := time.Now().UTC()
	st := &stubStore{events: []*model.StoredEvent{
		{ID: "ev-1", EventName: "book.created", RoutingKey: "book.created", EventData: json.RawMessage(`{"BookId":1,"Title":"X"}`), Timestamp: now, ProcessedAt: &now},
	}}
	srv := newTestServer(t, st, "")

	page, code := getPage(t, srv.URL+"/api/events/book?lastIndex=0&pageSize=10")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if len(page.Events) != 1 {
		t.Fatalf("got %d events, want 1", len(page.Events))
	}
	if page.Events[0].EventName != "book.created" {
		t.Errorf("eventName = %q, want %q", page.Events[0].EventName, "book.created")
	}
	if !strings.Contains(string(page.Events[0].EventData), `"BookId":1`) {
		t.Errorf("eventData = %s, want it to contain BookId", page.Events[0].EventData)
	}
	if page.LastIndex != 1 {
		t.Errorf("lastIndex = %d, want 1", page.LastIndex)
	}
}

func TestUserEvents_PaginationCursor(t *testing.T) {
	// 150 role.created events; two pages of 100 drain them exactly once.
	now := time.Now().UTC()
	st := &stubStore{}
	for i := 0; i < 150; i++ {
		st.events = append(st.events, &model.StoredEvent{
			ID:        fmt.Sprintf("ev-%03d", i),
			EventName: "role.created",
			Timestamp: now.Add(-time.Duration(i) * time.Second),
		})
	}
	srv := newTestServer(t, st, "")

	first, code := getPage(t, srv.URL+"/api/events/user?pageSize=100")
	if code != http.StatusOK {
		t.Fatalf("first page status = %d, want 200", code)
	}
	if len(first.Events) != 100 || first.LastIndex != 100 {
		t.Fatalf("first page: %d events, lastIndex %d; want 100, 100", len(first.Events), first.LastIndex)
	}

	second, code := getPage(t, srv.URL+fmt.Sprintf("/api/events/user?lastIndex=%d&pageSize=100", first.LastIndex))
	if code != http.StatusOK {
		t.Fatalf("second page status = %d, want 200", code)
	}
	if len(second.Events) != 50 || second.LastIndex != 150 {
		t.Fatalf("second page: %d events, lastIndex %d; want 50, 150", len(second.Events), second.LastIndex)
	}

	// Descending timestamps across the whole iteration, no repeats.
	all := append(first.Events, second.Events...)
	for i := 1; i < len(all); i++ {
		if all[i].Timestamp.After(all[i-1].Timestamp) {
			t.Fatalf("events out of order at index %d", i)
		}
	}

	third, _ := getPage(t, srv.URL+fmt.Sprintf("/api/events/user?lastIndex=%d&pageSize=100", second.LastIndex))
	if len(third.Events) != 0 || third.LastIndex != 150 {
		t.Fatalf("third page: %d events, lastIndex %d; want 0, 150", len(third.Events), third.LastIndex)
	}
}

func TestEvents_Defaults(t *testing.T) {
	st := &stubStore{}
	srv := newTestServer(t, st, "")

	if _, code := getPage(t, srv.URL+"/api/events/book"); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if st.lastLastIndex != 0 || st.lastPageSize != 100 {
		t.Errorf("store called with lastIndex=%d pageSize=%d, want 0 and 100", st.lastLastIndex, st.lastPageSize)
	}
	if st.lastCat != model.CategoryBook {
		t.Errorf("store called with category %q, want %q", st.lastCat, model.CategoryBook)
	}
}

func TestEvents_BadParams(t *testing.T) {
	srv := newTestServer(t, &stubStore{}, "")

	for _, query := range []string{
		"lastIndex=-1",
		"lastIndex=abc",
		"pageSize=0",
		"pageSize=-5",
		"pageSize=abc",
	} {
		if _, code := getPage(t, srv.URL+"/api/events/user?"+query); code != http.StatusBadRequest {
			t.Errorf("query %q: status = %d, want 400", query, code)
		}
	}
}

func TestEvents_StoreError(t *testing.T) {
	st := &stubStore{err: errors.New("connection refused")}
	srv := newTestServer(t, st, "")

	resp, err := http.Get(srv.URL + "/api/events/book")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if body["error"] == "" {
		t.Error("error body is empty")
	}
}

func TestEvents_EmptyListNotNull(t *testing.T) {
	srv := newTestServer(t, &stubStore{}, "")

	resp, err := http.Get(srv.URL + "/api/events/user")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), `"events":[]`) {
		t.Errorf("response = %s, want empty array for events", raw)
	}
}

func TestAuthMiddleware(t *testing.T) {
	srv := newTestServer(t, &stubStore{}, "sekrit")

	// No token: rejected.
	resp, err := http.Get(srv.URL + "/api/events/book")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", resp.StatusCode)
	}

	// Health is exempt.
	resp, err = http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want 200", resp.StatusCode)
	}

	// Valid bearer token: accepted.
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/events/book", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET with token: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("authenticated status = %d, want 200", resp.StatusCode)
	}

	// Wrong token: rejected.
	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/api/events/book", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET with bad token: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad-token status = %d, want 401", resp.StatusCode)
	}
}
