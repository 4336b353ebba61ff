// Package clock provides the time sources that drive effect lifecycles.
// Effect progress is always computed from these readings, never from frame counts.
package clock

import (
	"sync"
	"time"
)

// Clock is a source of the current time.
type Clock interface {
	Now() time.Time
}

// System reads the real system clock with its monotonic component.
type System struct{}

// NewSystem creates a clock backed by time.Now.
func NewSystem() System {
	return System{}
}

// Now returns the current wall-clock time.
func (System) Now() time.Time {
	return time.Now()
}

// Manual is a controllable clock for tests and headless stepping.
type Manual struct {
	mu  sync.RWMutex
	now time.Time
}

// NewManual creates a manual clock that starts at the given time.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the current manual time.
func (m *Manual) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// Set jumps the clock to t.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}
