package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/hnedelkov/bookshelf/internal/library"
)

// SaveSnapshotTask persists the current library state. The task carries no
// payload: the processor snapshots whatever the library holds when it runs,
// so a burst of mutations collapses into writes of the latest state.
type SaveSnapshotTask struct {
	Reason string `json:"reason"`
}

// Config returns the queue configuration for snapshot persistence tasks.
func (t SaveSnapshotTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "save_snapshot",
		MaxAttempts: 3,
		Backoff:     10 * time.Second,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: true,
		},
	}
}

// SnapshotSource produces the state to persist.
type SnapshotSource interface {
	Snapshot() library.Snapshot
}

// SnapshotSink writes a snapshot to durable storage.
type SnapshotSink interface {
	Save(library.Snapshot) error
}

// SaveSnapshotProcessor creates the processor for snapshot persistence tasks.
func SaveSnapshotProcessor(source SnapshotSource, sink SnapshotSink) backlite.QueueProcessor[SaveSnapshotTask] {
	return func(ctx context.Context, task SaveSnapshotTask) error {
		if err := sink.Save(source.Snapshot()); err != nil {
			return fmt.Errorf("save snapshot (%s): %w", task.Reason, err)
		}
		return nil
	}
}

// NewSaveSnapshotQueue creates a backlite queue for snapshot persistence.
func NewSaveSnapshotQueue(source SnapshotSource, sink SnapshotSink) backlite.Queue {
	return backlite.NewQueue(SaveSnapshotProcessor(source, sink))
}
