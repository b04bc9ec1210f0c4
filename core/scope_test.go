package core

import (
	"testing"
	"time"

	"github.com/jask/a11ycoord/internal/nav"
	"github.com/jask/a11ycoord/internal/prefs"
	"github.com/jask/a11ycoord/internal/voice"
)

func TestScopeCloseReleasesEverything(t *testing.T) {
	h := newHarness(t, prefs.PlatformWeb)
	s := h.c.Mount("checkout")
	s.RegisterNodes(
		nav.Node{ID: "name", Target: 1},
		nav.Node{ID: "card", Target: 2},
		nav.Node{ID: "pay", Target: 3},
	)
	s.RegisterCommand(voice.Binding{Phrase: "pay now", Handler: func() {}})
	notified := 0
	s.OnPreferences(func(prefs.Preferences) { notified++ })

	if !h.c.MoveFocus("name", nav.Next) || !h.c.MoveFocus("card", nav.Next) {
		t.Fatalf("expected chained traversal to work while mounted")
	}
	if h.c.OpenScopes() != 1 {
		t.Fatalf("open scopes = %d", h.c.OpenScopes())
	}

	s.Close()
	s.Close()

	if h.c.Graph().Len() != 0 {
		t.Fatalf("nodes left after close: %v", h.c.Graph().IDs())
	}
	if h.c.Dispatch("pay now") {
		t.Fatalf("command survived close")
	}
	h.c.Resolver().NotifyDeviceChanged()
	if notified != 0 {
		t.Fatalf("listener survived close")
	}
	if h.c.OpenScopes() != 0 {
		t.Fatalf("closed scope still tracked")
	}
}

func TestScopeDisposerIsIndividual(t *testing.T) {
	h := newHarness(t, prefs.PlatformWeb)
	s := h.c.Mount("list")
	dispose := s.RegisterNode(nav.Node{ID: "a", Target: 1})
	s.RegisterNode(nav.Node{ID: "b", Target: 2})
	dispose()
	dispose()
	if _, ok := h.c.Graph().Node("a"); ok {
		t.Fatalf("a should be gone")
	}
	if _, ok := h.c.Graph().Node("b"); !ok {
		t.Fatalf("b should remain")
	}
	s.Close()
}

func TestScopeCloseKeepsNodeReplacedByAnotherScreen(t *testing.T) {
	h := newHarness(t, prefs.PlatformWeb)
	old := h.c.Mount("old")
	old.RegisterNode(nav.Node{ID: "submit", Target: 1})
	next := h.c.Mount("new")
	next.RegisterNode(nav.Node{ID: "submit", Target: 2})

	old.Close()
	n, ok := h.c.Graph().Node("submit")
	if !ok || n.Target != 2 {
		t.Fatalf("new screen's node was removed: %+v ok=%v", n, ok)
	}

	oldVoice := h.c.Mount("old-voice")
	oldVoice.RegisterCommand(voice.Binding{Phrase: "go", Handler: func() {}})
	hits := 0
	next.RegisterCommand(voice.Binding{Phrase: "go", Handler: func() { hits++ }})
	oldVoice.Close()
	if !h.c.Dispatch("go") || hits != 1 {
		t.Fatalf("replacement command was removed by stale scope")
	}
}

func TestFocusInitialIsDeferred(t *testing.T) {
	h := newHarness(t, prefs.PlatformWeb)
	s := h.c.Mount("form")
	s.RegisterNode(nav.Node{ID: "first", Target: 1})
	s.FocusInitial("first")

	if len(h.els.focused) != 0 {
		t.Fatalf("focus ran before delay")
	}
	if ran := h.sched.Advance(50 * time.Millisecond); ran != 0 {
		t.Fatalf("ran %d tasks before delay elapsed", ran)
	}
	if ran := h.sched.Advance(50 * time.Millisecond); ran != 1 {
		t.Fatalf("expected focus task to run, ran %d", ran)
	}
	if len(h.els.focused) != 1 || h.els.focused[0] != 1 {
		t.Fatalf("focused = %v", h.els.focused)
	}
	s.Close()
}

func TestFocusInitialCanceledByClose(t *testing.T) {
	h := newHarness(t, prefs.PlatformWeb)
	s := h.c.Mount("form")
	s.RegisterNode(nav.Node{ID: "first", Target: 1})
	s.FocusInitial("first")
	s.Close()
	if h.sched.Pending() != 0 {
		t.Fatalf("pending focus should be canceled")
	}
	h.sched.Advance(time.Second)
	if len(h.els.focused) != 0 {
		t.Fatalf("focus ran after unmount: %v", h.els.focused)
	}
}

func TestRegisterAfterCloseIsReleasedImmediately(t *testing.T) {
	h := newHarness(t, prefs.PlatformWeb)
	s := h.c.Mount("gone")
	s.Close()
	s.RegisterNode(nav.Node{ID: "late", Target: 1})
	s.RegisterCommand(voice.Binding{Phrase: "late", Handler: func() {}})
	if h.c.Graph().Len() != 0 || h.c.Voice().Len() != 0 {
		t.Fatalf("late registrations should not outlive a closed scope")
	}
}
