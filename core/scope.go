package core

import (
	"sync"

	"go.uber.org/zap"

	"github.com/jask/a11ycoord/internal/nav"
	"github.com/jask/a11ycoord/internal/prefs"
	"github.com/jask/a11ycoord/internal/voice"
)

// Scope bundles everything one mounted screen registered so a single Close
// releases it. Individual disposers returned by the Register methods remain
// usable on their own.
type Scope struct {
	c      *Coordinator
	screen string

	mu        sync.Mutex
	disposers []func()
	closed    bool
}

func (s *Scope) Screen() string { return s.screen }

// add records dispose unless the scope is already closed, in which case it
// runs immediately so nothing outlives the screen.
func (s *Scope) add(dispose func()) func() {
	var once sync.Once
	d := func() { once.Do(dispose) }
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.c.logger.Debug("registration after scope closed", zap.String("screen", s.screen))
		d()
		return d
	}
	s.disposers = append(s.disposers, d)
	s.mu.Unlock()
	return d
}

// RegisterNode adds n to the graph. Disposal removes the node only if it was
// not re-registered by someone else in the meantime.
func (s *Scope) RegisterNode(n nav.Node) func() {
	tok := s.c.graph.Register(n)
	return s.add(func() { s.c.graph.UnregisterToken(n.ID, tok) })
}

// RegisterNodes registers nodes linked in order with nav.Chain.
func (s *Scope) RegisterNodes(nodes ...nav.Node) {
	for _, n := range nav.Chain(nodes) {
		s.RegisterNode(n)
	}
}

func (s *Scope) RegisterCommand(b voice.Binding) voice.Disposer {
	return voice.Disposer(s.add(s.c.voice.Register(b)))
}

func (s *Scope) OnPreferences(fn prefs.Listener) func() {
	return s.add(s.c.resolver.AddListener(fn))
}

// OnClose runs fn when the scope closes.
func (s *Scope) OnClose(fn func()) func() {
	return s.add(fn)
}

// FocusInitial focuses id once the coordinator's focus delay has passed.
// Closing the scope first cancels it.
func (s *Scope) FocusInitial(id string) {
	cancel := s.c.scheduler.AfterFunc(s.c.focusDelay, func() {
		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return
		}
		s.c.graph.Focus(id)
	})
	s.add(cancel)
}

// Close disposes everything in reverse registration order. Safe to call
// more than once.
func (s *Scope) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	ds := s.disposers
	s.disposers = nil
	s.mu.Unlock()

	for i := len(ds) - 1; i >= 0; i-- {
		ds[i]()
	}
	s.c.forget(s)
	s.c.logger.Debug("screen unmounted", zap.String("screen", s.screen), zap.Int("released", len(ds)))
}

func (s *Scope) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
