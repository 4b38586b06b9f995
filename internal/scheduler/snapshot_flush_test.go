package scheduler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnedelkov/bookshelf/internal/library"
)

type recordingSink struct {
	saved []library.Snapshot
	err   error
}

func (r *recordingSink) Save(snap library.Snapshot) error {
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, snap)
	return nil
}

func TestSnapshotFlushScheduler_FlushNow(t *testing.T) {
	lib := library.New()
	_, err := lib.CreateShelf("Flushed")
	require.NoError(t, err)

	sink := &recordingSink{}
	s := NewSnapshotFlushScheduler(lib, sink, "0 * * * *")

	require.NoError(t, s.FlushNow())
	require.Len(t, sink.saved, 1)
	assert.Len(t, sink.saved[0].Shelves, 2)

	sink.err = errors.New("disk full")
	assert.Error(t, s.FlushNow())
}

func TestSnapshotFlushScheduler_Start(t *testing.T) {
	t.Run("rejects an invalid schedule", func(t *testing.T) {
		s := NewSnapshotFlushScheduler(library.New(), &recordingSink{}, "not a schedule")
		assert.Error(t, s.Start())
	})

	t.Run("starts and stops cleanly", func(t *testing.T) {
		s := NewSnapshotFlushScheduler(library.New(), &recordingSink{}, "0 * * * *")
		require.NoError(t, s.Start())
		require.NoError(t, s.Start()) // second start is a no-op
		s.Stop()
	})
}
