// Package prefs owns the user's accessibility toggles: the stored set, its
// persistence, and how it combines with state the OS enforces.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jask/a11ycoord/internal/device"
)

// ErrPersist wraps storage failures from Update and Reset. The in-memory
// change and listener notification have already happened when it is returned.
var ErrPersist = errors.New("persist preferences")

// Listener receives the stored preference set after every change.
type Listener func(Preferences)

type listenerEntry struct {
	id uint64
	fn Listener
}

// Resolver merges stored preferences with live device state.
type Resolver struct {
	mu        sync.Mutex
	current   Preferences
	defaults  Preferences
	listeners []listenerEntry
	nextID    uint64

	store    *Store
	probe    device.Probe
	platform Platform
	locks    LockTable
	logger   *zap.Logger
}

type ResolverOptions struct {
	Store    *Store
	Probe    device.Probe
	Platform Platform
	Locks    LockTable
	// Defaults overrides DefaultPreferences(Platform) when set.
	Defaults *Preferences
	Logger   *zap.Logger
}

func NewResolver(opts ResolverOptions) *Resolver {
	if opts.Store == nil {
		opts.Store = NewStore(NewMemoryKV())
	}
	if opts.Probe == nil {
		opts.Probe = device.NewStaticProbe(nil)
	}
	if opts.Locks == nil {
		opts.Locks = DefaultLockTable()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	defaults := DefaultPreferences(opts.Platform)
	if opts.Defaults != nil {
		defaults = *opts.Defaults
	}
	return &Resolver{
		current:  defaults,
		defaults: defaults,
		store:    opts.Store,
		probe:    opts.Probe,
		platform: opts.Platform,
		locks:    opts.Locks,
		logger:   opts.Logger,
	}
}

// Load reads the persisted set. A missing or undecodable record leaves the
// defaults in place; only a storage read failure is returned.
func (r *Resolver) Load(ctx context.Context) error {
	p, ok, err := r.store.Load(ctx)
	if err != nil {
		r.logger.Warn("loading preferences, using defaults", zap.Error(err))
		r.mu.Lock()
		r.current = r.defaults
		r.mu.Unlock()
		if errors.Is(err, ErrCorrupt) {
			return nil
		}
		return err
	}
	r.mu.Lock()
	if ok {
		r.current = p
	} else {
		r.current = r.defaults
	}
	r.mu.Unlock()
	r.logger.Debug("preferences loaded", zap.Bool("stored", ok))
	return nil
}

// Preferences returns the stored set, not the effective view.
func (r *Resolver) Preferences() Preferences {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Defaults returns the set Reset restores.
func (r *Resolver) Defaults() Preferences {
	return r.defaults
}

// Update merges patch, notifies listeners, then persists. A persistence
// failure is returned but the new values stay.
func (r *Resolver) Update(ctx context.Context, patch Patch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.current = r.current.Apply(patch)
	next := r.current
	r.mu.Unlock()

	r.notify(next)
	return r.persist(ctx, next)
}

// Reset restores the defaults; equivalent to Update with every default value.
func (r *Resolver) Reset(ctx context.Context) error {
	return r.Update(ctx, PatchOf(r.defaults))
}

func (r *Resolver) persist(ctx context.Context, p Preferences) error {
	if err := r.store.Save(ctx, p); err != nil {
		r.logger.Warn("preferences not persisted", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

// AddListener registers fn; listeners run in registration order. The
// returned function unsubscribes and is safe to call more than once.
func (r *Resolver) AddListener(fn Listener) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.listeners = append(r.listeners, listenerEntry{id: id, fn: fn})
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			for i, l := range r.listeners {
				if l.id == id {
					r.listeners = append(r.listeners[:i:i], r.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// NotifyDeviceChanged re-sends the stored set so subscribers recompute
// effective values after the OS changed something.
func (r *Resolver) NotifyDeviceChanged() {
	r.notify(r.Preferences())
}

func (r *Resolver) notify(p Preferences) {
	r.mu.Lock()
	ls := make([]listenerEntry, len(r.listeners))
	copy(ls, r.listeners)
	r.mu.Unlock()
	for _, l := range ls {
		r.call(l, p)
	}
}

func (r *Resolver) call(l listenerEntry, p Preferences) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("preference listener panicked", zap.Uint64("listener", l.id), zap.Any("panic", rec))
		}
	}()
	l.fn(p)
}

func (r *Resolver) IsScreenReaderActive() bool { return r.probe.Query(device.ScreenReader) }
func (r *Resolver) IsBoldTextActive() bool     { return r.probe.Query(device.BoldText) }
func (r *Resolver) IsHighContrastActive() bool { return r.probe.Query(device.HighContrast) }
func (r *Resolver) IsReduceMotionActive() bool { return r.probe.Query(device.ReduceMotion) }
func (r *Resolver) IsGrayscaleActive() bool    { return r.probe.Query(device.Grayscale) }
func (r *Resolver) IsInvertColorsActive() bool { return r.probe.Query(device.InvertColors) }
func (r *Resolver) DeviceState() device.State  { return device.Snapshot(r.probe) }
func (r *Resolver) Platform() Platform         { return r.platform }
func (r *Resolver) Locks() LockTable           { return r.locks }

// Effective is stored[f] OR device[f], read fresh on every call.
func (r *Resolver) Effective(f Flag) bool {
	if r.Preferences().Get(f) {
		return true
	}
	feat, ok := deviceFeature[f]
	return ok && r.probe.Query(feat)
}

// EffectivePreferences computes Effective for every flag from one device snapshot.
func (r *Resolver) EffectivePreferences() Preferences {
	stored := r.Preferences()
	dev := device.Snapshot(r.probe)
	out := stored
	for _, f := range allFlags {
		if feat, ok := deviceFeature[f]; ok && dev[feat] {
			out = out.With(f, true)
		}
	}
	return out
}

// Toggle returns the display state of the settings control for f.
func (r *Resolver) Toggle(f Flag) ToggleState {
	dev := device.Snapshot(r.probe)
	return toggleFor(f, r.Preferences().Get(f), dev, r.platform, r.locks)
}

// Toggles returns Toggle for every flag in display order.
func (r *Resolver) Toggles() []ToggleState {
	stored := r.Preferences()
	dev := device.Snapshot(r.probe)
	out := make([]ToggleState, 0, len(allFlags))
	for _, f := range allFlags {
		out = append(out, toggleFor(f, stored.Get(f), dev, r.platform, r.locks))
	}
	return out
}
