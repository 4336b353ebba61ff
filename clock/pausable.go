package clock

import (
	"sync"
	"time"
)

// Pausable wraps another clock and freezes game time while paused.
// Time spent paused is subtracted from every later reading, so effects
// resume exactly where they stopped.
type Pausable struct {
	mu sync.RWMutex

	base        Clock
	paused      bool
	pausedAt    time.Time
	totalPaused time.Duration
}

// NewPausable creates a pausable clock on top of base.
// A nil base uses the system clock.
func NewPausable(base Clock) *Pausable {
	if base == nil {
		base = NewSystem()
	}
	return &Pausable{base: base}
}

// Now returns game time: base time minus accumulated pauses.
func (p *Pausable) Now() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.paused {
		return p.pausedAt.Add(-p.totalPaused)
	}
	return p.base.Now().Add(-p.totalPaused)
}

// Pause freezes game time. Pausing twice is a no-op.
func (p *Pausable) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.paused {
		return
	}
	p.paused = true
	p.pausedAt = p.base.Now()
}

// Resume continues game time. Resuming a running clock is a no-op.
func (p *Pausable) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.paused {
		return
	}
	p.totalPaused += p.base.Now().Sub(p.pausedAt)
	p.paused = false
	p.pausedAt = time.Time{}
}

// IsPaused reports whether game time is frozen.
func (p *Pausable) IsPaused() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.paused
}

// TotalPaused returns the cumulative paused duration, including an active pause.
func (p *Pausable) TotalPaused() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.paused {
		return p.totalPaused + p.base.Now().Sub(p.pausedAt)
	}
	return p.totalPaused
}
