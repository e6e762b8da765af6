package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaskFiresAfterDelay(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	var fired atomic.Int32
	s.Schedule("k", 10*time.Millisecond, func() { fired.Add(1) })

	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestReschedulingCoalesces(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	var fired atomic.Int32
	var last atomic.Int32
	for i := 1; i <= 5; i++ {
		i := i
		s.Schedule("k", 30*time.Millisecond, func() {
			fired.Add(1)
			last.Store(int32(i))
		})
		time.Sleep(5 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return fired.Load() > 0 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
	assert.Equal(t, int32(5), last.Load())
}

func TestKeysAreIndependent(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	var a, b atomic.Int32
	s.Schedule("a", 10*time.Millisecond, func() { a.Add(1) })
	s.Schedule("b", 10*time.Millisecond, func() { b.Add(1) })

	assert.Eventually(t, func() bool { return a.Load() == 1 && b.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestFlushRunsImmediately(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	var fired atomic.Int32
	s.Schedule("k", time.Hour, func() { fired.Add(1) })
	s.Flush("k")

	assert.Equal(t, int32(1), fired.Load())

	// Nothing left to fire.
	s.Flush("k")
	assert.Equal(t, int32(1), fired.Load())
}

func TestCancelDropsTask(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	var fired atomic.Int32
	s.Schedule("k", 10*time.Millisecond, func() { fired.Add(1) })
	s.Cancel("k")

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestDrainRunsPendingTasks(t *testing.T) {
	s := NewScheduler()

	var a, b atomic.Int32
	s.Schedule("a", time.Hour, func() { a.Add(1) })
	s.Schedule("b", time.Hour, func() { b.Add(1) })
	s.Drain()

	assert.Equal(t, int32(1), a.Load())
	assert.Equal(t, int32(1), b.Load())

	// Drained scheduler rejects new work.
	s.Schedule("c", time.Millisecond, func() { a.Add(1) })
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), a.Load())
}

func TestStopRejectsNewTasks(t *testing.T) {
	s := NewScheduler()

	var fired atomic.Int32
	s.Schedule("k", time.Hour, func() { fired.Add(1) })
	s.Stop()
	s.Schedule("k2", time.Millisecond, func() { fired.Add(1) })

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}
