package ratelimit

import (
	"sync"
	"time"
)

type windowState struct {
	count   int
	resetAt time.Time
}

// Limiter bounds the rate of write-heavy operations per actor using a fixed
// window: the counter and window boundary reset lazily the first time Allow
// is called after the previous window has ended. An actor can in principle
// burst up to 2x the limit across a window boundary; that is the documented
// fixed-window trade-off, not a sliding-window guarantee.
//
// State is in-memory and process-lifetime only.
type Limiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	actors map[string]*windowState
}

func NewLimiter(max int, window time.Duration) *Limiter {
	return &Limiter{
		max:    max,
		window: window,
		actors: make(map[string]*windowState),
	}
}

// Allow checks and consumes one unit of the actor's quota. When the quota is
// exhausted it reports false plus the wait until the window resets; the
// counter is not incremented in that case.
func (l *Limiter) Allow(actorID string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()

	state, exists := l.actors[actorID]
	if !exists || now.After(state.resetAt) {
		l.actors[actorID] = &windowState{
			count:   1,
			resetAt: now.Add(l.window),
		}
		return true, 0
	}

	if state.count >= l.max {
		return false, state.resetAt.Sub(now)
	}

	state.count++
	return true, 0
}

// Remaining reports how much quota the actor still has in the current window.
func (l *Limiter) Remaining(actorID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	state, exists := l.actors[actorID]
	if !exists || time.Now().After(state.resetAt) {
		return l.max
	}

	return l.max - state.count
}

// Cleanup drops actors whose window ended, bounding the map for long-lived
// processes with many one-off senders.
func (l *Limiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for actorID, state := range l.actors {
		if now.After(state.resetAt) {
			delete(l.actors, actorID)
		}
	}
}

// StartCleanupRoutine runs Cleanup periodically until the ticker outlives the
// process.
func (l *Limiter) StartCleanupRoutine() {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			l.Cleanup()
		}
	}()
}
