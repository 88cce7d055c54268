package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterAllowsUpToMax(t *testing.T) {
	l := NewLimiter(10, time.Minute)

	for i := 0; i < 10; i++ {
		ok, wait := l.Allow("sender-1")
		assert.True(t, ok, "call %d within quota should pass", i+1)
		assert.Equal(t, time.Duration(0), wait)
	}
}

func TestLimiterBlocksOverMax(t *testing.T) {
	l := NewLimiter(10, time.Minute)

	for i := 0; i < 10; i++ {
		l.Allow("sender-1")
	}

	ok, wait := l.Allow("sender-1")
	assert.False(t, ok)
	assert.Greater(t, wait, time.Duration(0))

	// The refused call must not consume quota or move the window.
	assert.Equal(t, 0, l.Remaining("sender-1"))
}

func TestLimiterResetsAfterWindow(t *testing.T) {
	l := NewLimiter(2, 30*time.Millisecond)

	l.Allow("sender-1")
	l.Allow("sender-1")
	ok, _ := l.Allow("sender-1")
	assert.False(t, ok)

	time.Sleep(40 * time.Millisecond)

	ok, wait := l.Allow("sender-1")
	assert.True(t, ok)
	assert.Equal(t, time.Duration(0), wait)
}

func TestLimiterIsolatesActors(t *testing.T) {
	l := NewLimiter(1, time.Minute)

	ok, _ := l.Allow("sender-1")
	assert.True(t, ok)

	ok, _ = l.Allow("sender-2")
	assert.True(t, ok)

	ok, _ = l.Allow("sender-1")
	assert.False(t, ok)
}

func TestCleanupDropsExpiredWindows(t *testing.T) {
	l := NewLimiter(1, 10*time.Millisecond)

	l.Allow("sender-1")
	time.Sleep(20 * time.Millisecond)
	l.Cleanup()

	l.mu.Lock()
	_, exists := l.actors["sender-1"]
	l.mu.Unlock()
	assert.False(t, exists)
}
