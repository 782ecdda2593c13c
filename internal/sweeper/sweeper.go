// Package sweeper periodically purges stored events older than the
// retention window.
package sweeper

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alfredjeanlab/shelflog/internal/archive"
	"github.com/alfredjeanlab/shelflog/internal/store"
)

// Sweeper runs a retention sweep on a fixed interval: delete every event
// older than the retention window. A failing sweep is logged and the loop
// carries on; one bad sweep never stops retention.
//
// When an archive destination is configured, expiring events are exported
// as JSONL and written there first. If the archive write fails, the delete
// is skipped for that sweep so no event is lost unarchived.
type Sweeper struct {
	store     store.EventStore
	interval  time.Duration
	retention time.Duration
	archive   archive.Destination
	logger    *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a sweeper that deletes events older than retention from the
// store every interval. dest may be nil to disable archiving.
func New(s store.EventStore, interval, retention time.Duration, dest archive.Destination, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		store:     s,
		interval:  interval,
		retention: retention,
		archive:   dest,
		logger:    logger,
	}
}

// Start begins the periodic sweep. It runs an initial sweep immediately,
// then on each tick.
func (s *Sweeper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()

	s.logger.Info("retention sweeper started", "interval", s.interval, "retention", s.retention)
}

// Stop cancels the sweeper and waits for the current sweep (if any) to finish.
func (s *Sweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("retention sweeper stopped")
}

func (s *Sweeper) run(ctx context.Context) {
	s.sweepOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *Sweeper) sweepOnce(ctx context.Context) {
	if s.archive != nil {
		if !s.archiveExpiring(ctx) {
			return
		}
	}

	if err := s.store.DeleteEventsOlderThan(ctx, s.retention); err != nil {
		s.logger.Error("retention sweep failed", "err", err)
		return
	}
	s.logger.Info("retention sweep completed", "retention", s.retention)
}

// archiveExpiring exports events past the retention cutoff to the archive
// destination. It reports whether the sweep may proceed to delete.
func (s *Sweeper) archiveExpiring(ctx context.Context) bool {
	cutoff := time.Now().UTC().Add(-s.retention)
	events, err := s.store.EventsOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("archive query failed, skipping sweep", "err", err)
		return false
	}
	if len(events) == 0 {
		return true
	}

	var buf bytes.Buffer
	if err := archive.ExportJSONL(events, &buf); err != nil {
		s.logger.Error("archive export failed, skipping sweep", "err", err)
		return false
	}
	if err := s.archive.Write(ctx, buf.Bytes()); err != nil {
		s.logger.Error("archive write failed, skipping sweep", "err", err)
		return false
	}

	s.logger.Info("archived expiring events", "events", len(events), "bytes", buf.Len())
	return true
}
