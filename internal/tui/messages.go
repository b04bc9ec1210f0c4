package tui

import "github.com/jask/a11ycoord/internal/prefs"

// runMsg carries deferred work onto the event loop.
type runMsg struct{ fn func() }

// prefsChangedMsg is posted by the preference listener, possibly from
// another goroutine.
type prefsChangedMsg struct{}

type savedMsg struct {
	flag prefs.Flag // empty for a reset
	err  error
}

type clearStatusMsg struct{ seq int }
