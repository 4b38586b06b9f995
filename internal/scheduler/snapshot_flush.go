// Package scheduler runs periodic background jobs on cron schedules.
package scheduler

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hnedelkov/bookshelf/internal/library"
)

// SnapshotSource produces the state to persist.
type SnapshotSource interface {
	Snapshot() library.Snapshot
}

// SnapshotSink writes a snapshot to durable storage.
type SnapshotSink interface {
	Save(library.Snapshot) error
}

// SnapshotFlushScheduler periodically writes the full library snapshot to the
// store. The change-driven task queue already persists after every mutation;
// this is the safety net that bounds data loss if those writes keep failing.
type SnapshotFlushScheduler struct {
	source   SnapshotSource
	sink     SnapshotSink
	schedule string

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

// NewSnapshotFlushScheduler creates a scheduler with a standard 5-field cron
// schedule ("0 * * * *" is hourly at minute zero).
func NewSnapshotFlushScheduler(source SnapshotSource, sink SnapshotSink, schedule string) *SnapshotFlushScheduler {
	return &SnapshotFlushScheduler{
		source:   source,
		sink:     sink,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start schedules the flush job. Returns an error if the schedule is invalid.
func (s *SnapshotFlushScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.FlushNow(); err != nil {
			log.Printf("Periodic snapshot flush failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid flush schedule '%s': %w", s.schedule, err)
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Snapshot flush scheduler started (schedule: %s)", s.schedule)
	return nil
}

// Stop halts the scheduler and waits for a running flush to finish.
func (s *SnapshotFlushScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false
	log.Printf("Snapshot flush scheduler stopped")
}

// FlushNow writes the current snapshot immediately. Also used during shutdown
// so the final state always reaches the store.
func (s *SnapshotFlushScheduler) FlushNow() error {
	start := time.Now()
	if err := s.sink.Save(s.source.Snapshot()); err != nil {
		return err
	}
	log.Printf("Snapshot flushed in %v", time.Since(start))
	return nil
}
