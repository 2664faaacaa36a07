package progress

import (
	"sync"
	"time"
)

const (
	// DefaultInterval is the snapshot cadence.
	DefaultInterval = 100 * time.Millisecond

	// CompletedGrace is how long a completed file stays visible in
	// snapshots before eviction.
	CompletedGrace = 2 * time.Second
)

// Sampler emits tracker snapshots on a fixed cadence and evicts completed
// records once their grace window passes.
type Sampler struct {
	tracker  *Tracker
	interval time.Duration
	grace    time.Duration

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewSampler creates a sampler over tracker. Non-positive interval or grace
// select the defaults.
func NewSampler(tracker *Tracker, interval, grace time.Duration) *Sampler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if grace <= 0 {
		grace = CompletedGrace
	}
	return &Sampler{
		tracker:  tracker,
		interval: interval,
		grace:    grace,
		done:     make(chan struct{}),
	}
}

// Start begins sampling in a background goroutine, invoking fn with a fresh
// snapshot every interval. fn runs on the sampler goroutine.
func (s *Sampler) Start(fn func(Snapshot)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := s.tracker.clock.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.done:
				// One final sample so the terminal state is rendered.
				fn(s.tracker.Snapshot())
				return
			case <-ticker.Chan():
				fn(s.tracker.Snapshot())
				s.tracker.evict(s.grace)
			}
		}
	}()
}

// Stop halts sampling after a final snapshot and waits for the sampler
// goroutine to exit. Safe to call more than once.
func (s *Sampler) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
	s.wg.Wait()
}
