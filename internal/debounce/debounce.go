// Package debounce provides a keyed trailing-edge task scheduler: for
// each key at most one task is pending, and scheduling again resets the
// quiet window and replaces the task.
package debounce

import (
	"sync"
	"time"
)

// Scheduler coalesces bursts of work per key. Tasks run on timer
// goroutines after the delay elapses without a newer Schedule call.
type Scheduler struct {
	mu      sync.Mutex
	pending map[string]*entry
	stopped bool
}

type entry struct {
	timer *time.Timer
	task  func()
}

func NewScheduler() *Scheduler {
	return &Scheduler{pending: make(map[string]*entry)}
}

// Schedule queues task to run after delay. A pending task for the same
// key is cancelled and replaced; only the latest task fires.
func (s *Scheduler) Schedule(key string, delay time.Duration, task func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	if prev, ok := s.pending[key]; ok {
		prev.timer.Stop()
	}

	e := &entry{task: task}
	e.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.pending[key] != e {
			s.mu.Unlock()
			return
		}
		delete(s.pending, key)
		s.mu.Unlock()
		task()
	})
	s.pending[key] = e
}

// Flush runs the pending task for key immediately, if any.
func (s *Scheduler) Flush(key string) {
	s.mu.Lock()
	e, ok := s.pending[key]
	if ok {
		e.timer.Stop()
		delete(s.pending, key)
	}
	s.mu.Unlock()

	if ok {
		e.task()
	}
}

// Cancel drops the pending task for key without running it.
func (s *Scheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.pending[key]; ok {
		e.timer.Stop()
		delete(s.pending, key)
	}
}

// Stop cancels all pending tasks and rejects new ones.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for key, e := range s.pending {
		e.timer.Stop()
		delete(s.pending, key)
	}
}

// Drain runs every pending task immediately, then stops the scheduler.
func (s *Scheduler) Drain() {
	s.mu.Lock()
	s.stopped = true
	tasks := make([]func(), 0, len(s.pending))
	for key, e := range s.pending {
		e.timer.Stop()
		tasks = append(tasks, e.task)
		delete(s.pending, key)
	}
	s.mu.Unlock()

	for _, task := range tasks {
		task()
	}
}
