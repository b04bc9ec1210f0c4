package tui

import (
	"sync"

	"github.com/jask/a11ycoord/internal/nav"
)

// Elements is the table of focusable rows currently on screen. It is the
// Focuser behind the navigation graph: focusing a ref that is not mounted
// fails, the way focusing a detached view would.
type Elements struct {
	mu      sync.Mutex
	mounted map[nav.ElementRef]bool
	focused nav.ElementRef
}

func NewElements() *Elements {
	return &Elements{mounted: map[nav.ElementRef]bool{}}
}

func (e *Elements) Mount(ref nav.ElementRef) {
	e.mu.Lock()
	e.mounted[ref] = true
	e.mu.Unlock()
}

func (e *Elements) Unmount(ref nav.ElementRef) {
	e.mu.Lock()
	delete(e.mounted, ref)
	if e.focused == ref {
		e.focused = 0
	}
	e.mu.Unlock()
}

func (e *Elements) Focus(ref nav.ElementRef) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.mounted[ref] {
		return false
	}
	e.focused = ref
	return true
}

// Focused returns the focused ref, or 0 when nothing has focus.
func (e *Elements) Focused() nav.ElementRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.focused
}
