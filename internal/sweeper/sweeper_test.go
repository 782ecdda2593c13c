package sweeper

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alfredjeanlab/shelflog/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStore is a store.EventStore that counts retention calls and can be
// primed with expiring events and failures.
type fakeStore struct {
	mu          sync.Mutex
	deletes     int
	failDeletes int
	old         []*model.StoredEvent
	queryErr    error
}

func (f *fakeStore) StoreEvent(ctx context.Context, eventName, routingKey string, eventData json.RawMessage) error {
	return nil
}

func (f *fakeStore) EventsByCategory(ctx context.Context, cat model.Category, lastIndex, pageSize int) ([]*model.StoredEvent, error) {
	return nil, nil
}

func (f *fakeStore) EventsOlderThan(ctx context.Context, cutoff time.Time) ([]*model.StoredEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.old, nil
}

func (f *fakeStore) DeleteEventsOlderThan(ctx context.Context, age time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.failDeletes > 0 {
		f.failDeletes--
		return errors.New("simulated delete failure")
	}
	return nil
}

func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) deleteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deletes
}

// fakeDest records archive writes.
type fakeDest struct {
	mu     sync.Mutex
	writes [][]byte
	err    error
}

func (d *fakeDest) Write(ctx context.Context, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.writes = append(d.writes, data)
	return nil
}

func (d *fakeDest) writeCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.writes)
}

func waitFor(t *testing.T, d time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestSweeper_SweepsImmediatelyThenOnInterval(t *testing.T) {
	st := &fakeStore{}
	s := New(st, 50*time.Millisecond, 365*24*time.Hour, nil, testLogger())
	s.Start()
	defer s.Stop()

	// One sweep at startup plus at least one tick.
	waitFor(t, 2*time.Second, func() bool { return st.deleteCount() >= 2 })
}

func TestSweeper_ErrorDoesNotStopLoop(t *testing.T) {
	st := &fakeStore{failDeletes: 1}
	s := New(st, 50*time.Millisecond, 365*24*time.Hour, nil, testLogger())
	s.Start()
	defer s.Stop()

	// The first sweep fails; the loop still runs subsequent sweeps.
	waitFor(t, 2*time.Second, func() bool { return st.deleteCount() >= 3 })
}

func TestSweeper_StopIsPrompt(t *testing.T) {
	st := &fakeStore{}
	s := New(st, time.Hour, 365*24*time.Hour, nil, testLogger())
	s.Start()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() did not return promptly while waiting out the interval")
	}

	if got := st.deleteCount(); got != 1 {
		t.Errorf("delete count after stop = %d, want 1 (startup sweep only)", got)
	}
}

func TestSweeper_ArchivesBeforeDelete(t *testing.T) {
	old := time.Now().UTC().Add(-400 * 24 * time.Hour)
	st := &fakeStore{old: []*model.StoredEvent{
		{ID: "ev-old", EventName: "book.created", RoutingKey: "book.created", EventData: json.RawMessage(`{}`), Timestamp: old},
	}}
	dest := &fakeDest{}
	s := New(st, time.Hour, 365*24*time.Hour, dest, testLogger())
	s.Start()
	defer s.Stop()

	waitFor(t, 2*time.Second, func() bool { return st.deleteCount() >= 1 })

	if dest.writeCount() != 1 {
		t.Fatalf("archive write count = %d, want 1", dest.writeCount())
	}
	dest.mu.Lock()
	payload := string(dest.writes[0])
	dest.mu.Unlock()
	if !strings.Contains(payload, "ev-old") {
		t.Errorf("archive payload does not mention ev-old:\n%s", payload)
	}
}

func TestSweeper_ArchiveFailureSkipsDelete(t *testing.T) {
	old := time.Now().UTC().Add(-400 * 24 * time.Hour)
	st := &fakeStore{old: []*model.StoredEvent{
		{ID: "ev-old", EventName: "book.created", Timestamp: old},
	}}
	dest := &fakeDest{err: errors.New("bucket gone")}
	s := New(st, 50*time.Millisecond, 365*24*time.Hour, dest, testLogger())
	s.Start()

	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if got := st.deleteCount(); got != 0 {
		t.Errorf("delete count = %d, want 0 when archiving fails", got)
	}
}

func TestSweeper_EmptyArchiveStillSweeps(t *testing.T) {
	st := &fakeStore{}
	dest := &fakeDest{}
	s := New(st, time.Hour, 365*24*time.Hour, dest, testLogger())
	s.Start()
	defer s.Stop()

	waitFor(t, 2*time.Second, func() bool { return st.deleteCount() >= 1 })

	// Nothing to archive: no write, but the delete still happens.
	if dest.writeCount() != 0 {
		t.Errorf("archive write count = %d, want 0", dest.writeCount())
	}
}
