package scheduler

import (
	"log/slog"
	"sync"
	"time"
)

// Scheduler arms a single cancellable deadline per key. Cancellation is
// idempotent: cancelling an already-fired or already-cancelled timer is a safe
// no-op. Arming an existing key replaces its previous deadline.
type Scheduler interface {
	Arm(key string, d time.Duration, fire func())
	Cancel(key string)
}

// TimerScheduler implements Scheduler on top of time.AfterFunc
type TimerScheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	logger *slog.Logger
}

// Ensure TimerScheduler implements Scheduler
var _ Scheduler = (*TimerScheduler)(nil)

// New creates a new TimerScheduler
func New(logger *slog.Logger) *TimerScheduler {
	return &TimerScheduler{
		timers: make(map[string]*time.Timer),
		logger: logger,
	}
}

// Arm schedules fire to run after d, replacing any deadline already armed for
// the key. The callback runs on its own goroutine and is invoked at most once
// per armed deadline: a timer that loses the race against Cancel or a
// replacement Arm becomes a no-op.
func (s *TimerScheduler) Arm(key string, d time.Duration, fire func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[key]; ok {
		t.Stop()
	}

	var t *time.Timer
	t = time.AfterFunc(d, func() {
		s.mu.Lock()
		// Only fire if this timer is still the current one for the key
		if s.timers[key] != t {
			s.mu.Unlock()
			return
		}
		delete(s.timers, key)
		s.mu.Unlock()

		s.logger.Debug("deadline fired", slog.String("key", key))
		fire()
	})
	s.timers[key] = t

	s.logger.Debug("deadline armed",
		slog.String("key", key),
		slog.Duration("after", d),
	)
}

// Cancel stops the deadline for the key, if one is armed
func (s *TimerScheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
	}
}

// Active returns the number of armed deadlines
func (s *TimerScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
