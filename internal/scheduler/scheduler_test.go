package scheduler

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nmikhailov/guessnum/internal/testutil"
)

func TestArmFires(t *testing.T) {
	s := New(testutil.NopLogger())

	fired := make(chan struct{})
	s.Arm("k1", time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
	assert.Equal(t, 0, s.Active())
}

func TestCancelPreventsFiring(t *testing.T) {
	s := New(testutil.NopLogger())

	var fired atomic.Bool
	s.Arm("k1", 10*time.Millisecond, func() { fired.Store(true) })
	s.Cancel("k1")

	time.Sleep(50 * time.Millisecond)
	assert.False(t, fired.Load())
	assert.Equal(t, 0, s.Active())
}

func TestCancelIsIdempotent(t *testing.T) {
	s := New(testutil.NopLogger())

	s.Arm("k1", 10*time.Millisecond, func() {})
	s.Cancel("k1")
	s.Cancel("k1")
	s.Cancel("never-armed")
}

func TestArmReplacesExistingDeadline(t *testing.T) {
	s := New(testutil.NopLogger())

	var first, second atomic.Bool
	s.Arm("k1", time.Millisecond, func() { first.Store(true) })
	s.Arm("k1", 5*time.Millisecond, func() { second.Store(true) })

	time.Sleep(50 * time.Millisecond)
	assert.False(t, first.Load())
	assert.True(t, second.Load())
}

func TestFiresAtMostOncePerDeadline(t *testing.T) {
	s := New(testutil.NopLogger())

	var count atomic.Int32
	var wg sync.WaitGroup

	// Hammer cancel against firing; the callback must never run twice for
	// one armed deadline, whichever side wins
	for i := 0; i < 100; i++ {
		s.Arm("k1", time.Microsecond, func() { count.Add(1) })

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Cancel("k1")
		}()
		wg.Wait()
	}

	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, count.Load(), int32(100))
	assert.Equal(t, 0, s.Active())
}

func TestIndependentKeys(t *testing.T) {
	s := New(testutil.NopLogger())

	var fired atomic.Int32
	s.Arm("k1", time.Millisecond, func() { fired.Add(1) })
	s.Arm("k2", time.Millisecond, func() { fired.Add(1) })
	s.Cancel("k1")

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}
