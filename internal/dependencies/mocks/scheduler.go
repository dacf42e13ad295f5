package mocks

import (
	"sync"
	"time"

	"github.com/nmikhailov/guessnum/internal/scheduler"
)

// MockScheduler is a Scheduler that never fires on its own; tests trigger
// deadlines explicitly with Fire.
type MockScheduler struct {
	mu    sync.Mutex
	armed map[string]armedDeadline
}

type armedDeadline struct {
	d    time.Duration
	fire func()
}

// Ensure MockScheduler implements Scheduler
var _ scheduler.Scheduler = (*MockScheduler)(nil)

// NewMockScheduler creates a new MockScheduler
func NewMockScheduler() *MockScheduler {
	return &MockScheduler{armed: make(map[string]armedDeadline)}
}

// Arm records the deadline without starting a timer
func (s *MockScheduler) Arm(key string, d time.Duration, fire func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.armed[key] = armedDeadline{d: d, fire: fire}
}

// Cancel removes the recorded deadline
func (s *MockScheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.armed, key)
}

// Fire invokes the callback armed for key, if any, removing it first as the
// real scheduler does
func (s *MockScheduler) Fire(key string) {
	s.mu.Lock()
	entry, ok := s.armed[key]
	if ok {
		delete(s.armed, key)
	}
	s.mu.Unlock()

	if ok {
		entry.fire()
	}
}

// Armed reports whether a deadline is armed for key
func (s *MockScheduler) Armed(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.armed[key]
	return ok
}

// Duration returns the duration the key was armed with
func (s *MockScheduler) Duration(key string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed[key].d
}
