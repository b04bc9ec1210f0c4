// Package device answers questions about accessibility state the operating
// system enforces. The application never writes this state; it only reads it.
package device

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var ErrUnknownFeature = errors.New("unknown device feature")

// Feature is an OS-level accessibility feature.
type Feature string

const (
	ScreenReader Feature = "screenReader"
	BoldText     Feature = "boldText"
	HighContrast Feature = "highContrast"
	ReduceMotion Feature = "reduceMotion"
	Grayscale    Feature = "grayscale"
	InvertColors Feature = "invertColors"
)

// Features lists every feature a probe can be asked about.
func Features() []Feature {
	return []Feature{ScreenReader, BoldText, HighContrast, ReduceMotion, Grayscale, InvertColors}
}

// ParseFeature matches a feature name case-insensitively.
func ParseFeature(s string) (Feature, error) {
	s = strings.TrimSpace(s)
	for _, f := range Features() {
		if strings.EqualFold(string(f), s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFeature, s)
}

// Probe queries the platform. Implementations must be cheap, side-effect free
// and callable at any time.
type Probe interface {
	Query(f Feature) bool
}

// Watcher is implemented by probes that can report OS-side changes.
// Watch blocks until ctx is done or the watch fails.
type Watcher interface {
	Watch(ctx context.Context, onChange func()) error
}

// State is a point-in-time snapshot of every feature.
type State map[Feature]bool

// Snapshot queries p once per feature.
func Snapshot(p Probe) State {
	out := make(State, 6)
	if p == nil {
		return out
	}
	for _, f := range Features() {
		out[f] = p.Query(f)
	}
	return out
}

// StaticProbe reports whatever was last Set. It backs hosts without OS
// integration and tests.
type StaticProbe struct {
	mu    sync.Mutex
	state State
}

func NewStaticProbe(initial State) *StaticProbe {
	s := &StaticProbe{state: State{}}
	for f, v := range initial {
		s.state[f] = v
	}
	return s
}

func (s *StaticProbe) Query(f Feature) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state[f]
}

func (s *StaticProbe) Set(f Feature, on bool) {
	s.mu.Lock()
	s.state[f] = on
	s.mu.Unlock()
}
