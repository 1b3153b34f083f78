package ratelimit

import (
	"sync"
	"time"
)

// SlidingWindow counts calls per principal inside a trailing window and
// rejects the call that would exceed the configured maximum. It is an
// approximate sliding-window counter, not a token bucket: a burst straddling
// the window boundary can briefly exceed max/window, which is accepted.
//
// State is process-local. In a horizontally scaled deployment every instance
// counts independently and the effective limit is max * instances; move the
// counters to a shared store if cross-instance accuracy matters.
type SlidingWindow struct {
	mu     sync.Mutex
	calls  map[uint][]time.Time
	max    int
	window time.Duration
	now    func() time.Time
}

func NewSlidingWindow(max int, window time.Duration) *SlidingWindow {
	return newSlidingWindow(max, window, time.Now)
}

func newSlidingWindow(max int, window time.Duration, now func() time.Time) *SlidingWindow {
	return &SlidingWindow{
		calls:  make(map[uint][]time.Time),
		max:    max,
		window: window,
		now:    now,
	}
}

// Allow purges timestamps older than the window for principalID, then either
// records the call and returns true, or returns false without side effects
// when the window is already full.
func (s *SlidingWindow) Allow(principalID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	kept := s.calls[principalID][:0]
	for _, ts := range s.calls[principalID] {
		if now.Sub(ts) < s.window {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= s.max {
		s.calls[principalID] = kept
		return false
	}
	s.calls[principalID] = append(kept, now)
	return true
}
