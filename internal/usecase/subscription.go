package usecase

import "sync"

// Subscription is the cancellation handle returned by the live-query
// subscribe calls. Unsubscribe is synchronous: once it returns, the remote
// listener is released and no further callback invocations happen, even if
// one was in flight when cancellation started. Callbacks run under the same
// mutex the closed flag is checked with, so Unsubscribe blocks until any
// in-flight callback finishes.
type Subscription struct {
	mu     sync.Mutex
	closed bool
	stop   func()
	done   chan struct{}
}

func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.stop()
	<-s.done
}

// deliver invokes fn unless the subscription was cancelled; it reports
// whether the pump should keep running.
func (s *Subscription) deliver(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	fn()
	return true
}
