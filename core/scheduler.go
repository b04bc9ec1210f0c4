package core

import (
	"sort"
	"sync"
	"time"
)

// Scheduler defers work until the UI has settled. Implementations that own
// an event loop should run fn on that loop.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

// TimerScheduler runs fn on a timer goroutine.
type TimerScheduler struct{}

func (TimerScheduler) AfterFunc(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// ManualScheduler queues work until Advance is called. Tests and headless
// hosts use it to make deferred focus deterministic.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	pending []*manualTask
}

type manualTask struct {
	at       time.Duration
	seq      int
	fn       func()
	canceled bool
}

func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) func() {
	s.mu.Lock()
	s.seq++
	task := &manualTask{at: s.now + d, seq: s.seq, fn: fn}
	s.pending = append(s.pending, task)
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		task.canceled = true
		s.mu.Unlock()
	}
}

// Advance moves the clock forward by d and runs every task that came due,
// in due order.
func (s *ManualScheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	s.now += d
	var due, rest []*manualTask
	for _, t := range s.pending {
		switch {
		case t.canceled:
		case t.at <= s.now:
			due = append(due, t)
		default:
			rest = append(rest, t)
		}
	}
	s.pending = rest
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].at != due[j].at {
			return due[i].at < due[j].at
		}
		return due[i].seq < due[j].seq
	})
	ran := 0
	for _, t := range due {
		s.mu.Lock()
		canceled := t.canceled
		s.mu.Unlock()
		if canceled {
			continue
		}
		t.fn()
		ran++
	}
	return ran
}

// Pending counts tasks that are neither run nor canceled.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.pending {
		if !t.canceled {
			n++
		}
	}
	return n
}
