package tui

import (
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// LoopScheduler runs deferred work on the bubbletea event loop once a
// program is attached, and on the timer goroutine before that.
type LoopScheduler struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func NewLoopScheduler() *LoopScheduler { return &LoopScheduler{} }

func (s *LoopScheduler) Attach(send func(tea.Msg)) {
	s.mu.Lock()
	s.send = send
	s.mu.Unlock()
}

func (s *LoopScheduler) AfterFunc(d time.Duration, fn func()) func() {
	var canceled atomic.Bool
	guarded := func() {
		if !canceled.Load() {
			fn()
		}
	}
	t := time.AfterFunc(d, func() {
		s.mu.Lock()
		send := s.send
		s.mu.Unlock()
		if send == nil {
			guarded()
			return
		}
		send(runMsg{fn: guarded})
	})
	return func() {
		canceled.Store(true)
		t.Stop()
	}
}
