package utils

import (
	"sync"
	"time"
)

// Clock abstracts time.Now so cooldown behavior is testable.
type Clock interface {
	Now() time.Time
}

// RealClock is the production Clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// CooldownGate is a process-local once-per-interval gate. It is deliberately
// not backed by Redis: the location staleness sweep is best-effort and each
// server process keeps its own cooldown, so duplicate sweeps across processes
// are tolerated rather than coordinated.
type CooldownGate struct {
	clock    Clock
	interval time.Duration

	mu      sync.Mutex
	lastRun map[string]time.Time
}

// NewCooldownGate creates a gate with the given interval between allowed runs.
func NewCooldownGate(clock Clock, interval time.Duration) *CooldownGate {
	return &CooldownGate{
		clock:    clock,
		interval: interval,
		lastRun:  make(map[string]time.Time),
	}
}

// TryAcquire reports whether the keyed action may run now, and records the
// attempt when it may. Safe for concurrent use.
func (g *CooldownGate) TryAcquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	if last, ok := g.lastRun[key]; ok && now.Sub(last) < g.interval {
		return false
	}
	g.lastRun[key] = now
	return true
}
