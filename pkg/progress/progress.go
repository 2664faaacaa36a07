// Package progress aggregates per-file byte progress from concurrent
// transfer tasks into a single status view. Per-file records live in a
// concurrent map with per-key exclusivity; only the aggregate counters are
// shared, and those are atomic. There is no global lock on the hot path.
package progress

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// Tracker is the concurrently-updated progress accumulator.
type Tracker struct {
	clock     clockwork.Clock
	startedAt time.Time

	files sync.Map // key → *fileState

	totalBytes     atomic.Int64
	completedBytes atomic.Int64
	totalFiles     atomic.Int64
	completedFiles atomic.Int64
}

// fileState is written by exactly one transfer task at a time and read by
// the sampler, so the mutable fields are atomics.
type fileState struct {
	key         string
	total       int64
	startedAt   time.Time
	transferred atomic.Int64
	completedAt atomic.Int64 // unix nanos, 0 while in flight
}

// NewTracker creates a tracker. A nil clock selects the wall clock.
func NewTracker(clock clockwork.Clock) *Tracker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Tracker{
		clock:     clock,
		startedAt: clock.Now(),
	}
}

// AddToTotalBytes grows the overall denominator. Executors call this right
// before a transfer begins, so the total only ever covers files that will
// actually move.
func (t *Tracker) AddToTotalBytes(delta int64) {
	t.totalBytes.Add(delta)
}

// StartFile registers a transfer that is about to move bytes.
func (t *Tracker) StartFile(key string, total int64) {
	state := &fileState{
		key:       key,
		total:     total,
		startedAt: t.clock.Now(),
	}
	t.files.Store(key, state)
	t.totalFiles.Add(1)
}

// UpdateFileProgress records the cumulative transferred byte count for key.
// Stale (non-increasing) updates are dropped so the record stays monotonic.
func (t *Tracker) UpdateFileProgress(key string, transferred int64) {
	v, ok := t.files.Load(key)
	if !ok {
		return
	}
	state := v.(*fileState)
	for {
		current := state.transferred.Load()
		if transferred <= current {
			return
		}
		if state.transferred.CompareAndSwap(current, transferred) {
			return
		}
	}
}

// CompleteFile marks key finished. Only the first call per key counts; the
// record is retained for the display grace window and evicted later.
func (t *Tracker) CompleteFile(key string) {
	v, ok := t.files.Load(key)
	if !ok {
		return
	}
	state := v.(*fileState)
	if !state.completedAt.CompareAndSwap(0, t.clock.Now().UnixNano()) {
		return
	}
	// Mark completed before publishing the bytes so a concurrent snapshot
	// never counts this file both as in-flight and as completed.
	state.transferred.Store(state.total)
	t.completedFiles.Add(1)
	t.completedBytes.Add(state.total)
}

// evict drops completed records whose grace window has passed. Display
// concern only: the aggregate counters keep their contribution.
func (t *Tracker) evict(grace time.Duration) {
	cutoff := t.clock.Now().Add(-grace).UnixNano()
	t.files.Range(func(key, v any) bool {
		state := v.(*fileState)
		if done := state.completedAt.Load(); done != 0 && done <= cutoff {
			t.files.Delete(key)
		}
		return true
	})
}

// FileSnapshot is the point-in-time view of one transfer.
type FileSnapshot struct {
	Key              string
	TotalBytes       int64
	TransferredBytes int64
	StartedAt        time.Time
	Completed        bool
	CompletedAt      time.Time
}

// Snapshot is the point-in-time aggregate view.
type Snapshot struct {
	CompletedFiles int64
	TotalFiles     int64

	// CompletedBytes counts completed files at full size plus the
	// transferred bytes of files still in flight.
	CompletedBytes int64
	TotalBytes     int64

	Percent    float64       // 0–100 against the lazily-grown total
	Throughput float64       // bytes per second of wall time since run start
	Elapsed    time.Duration // wall time since run start

	Files []FileSnapshot
}

// Snapshot computes the current aggregate view. Safe to call concurrently
// with all mutation entry points.
func (t *Tracker) Snapshot() Snapshot {
	now := t.clock.Now()
	snap := Snapshot{
		CompletedFiles: t.completedFiles.Load(),
		TotalFiles:     t.totalFiles.Load(),
		TotalBytes:     t.totalBytes.Load(),
		Elapsed:        now.Sub(t.startedAt),
	}

	// Load the completed counter before walking the records. A file still
	// in flight during the walk contributes its partial bytes; if it
	// completes afterwards its full size is not in this value yet, so it is
	// counted once either way. Loading after the walk would count such a
	// file twice and push the sum past the total.
	completed := t.completedBytes.Load()

	var inFlight int64
	t.files.Range(func(_, v any) bool {
		state := v.(*fileState)
		fs := FileSnapshot{
			Key:              state.key,
			TotalBytes:       state.total,
			TransferredBytes: state.transferred.Load(),
			StartedAt:        state.startedAt,
		}
		if done := state.completedAt.Load(); done != 0 {
			fs.Completed = true
			fs.CompletedAt = time.Unix(0, done)
			fs.TransferredBytes = state.total
		} else {
			inFlight += fs.TransferredBytes
		}
		snap.Files = append(snap.Files, fs)
		return true
	})

	snap.CompletedBytes = completed + inFlight

	if snap.TotalBytes > 0 {
		snap.Percent = float64(snap.CompletedBytes) / float64(snap.TotalBytes) * 100
	}
	if secs := snap.Elapsed.Seconds(); secs > 0 {
		snap.Throughput = float64(snap.CompletedBytes) / secs
	}

	return snap
}
