package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jask/a11ycoord/internal/device"
	"github.com/jask/a11ycoord/internal/nav"
	"github.com/jask/a11ycoord/internal/prefs"
	"github.com/jask/a11ycoord/internal/voice"
)

// ErrNotInitialized is returned by preference writes before Init has loaded
// the stored set; writing earlier would overwrite it with defaults.
var ErrNotInitialized = errors.New("coordinator not initialized")

// DefaultFocusDelay lets layout settle before initial focus runs.
const DefaultFocusDelay = 150 * time.Millisecond

type Options struct {
	Resolver   *prefs.Resolver
	Graph      *nav.Graph
	Voice      *voice.Registry
	Watcher    device.Watcher
	Scheduler  Scheduler
	FocusDelay time.Duration
	Logger     *zap.Logger
}

// Coordinator is the single process-wide accessibility façade. Screens get
// it by injection, mount a Scope, and release everything through it.
type Coordinator struct {
	resolver   *prefs.Resolver
	graph      *nav.Graph
	voice      *voice.Registry
	watcher    device.Watcher
	scheduler  Scheduler
	focusDelay time.Duration
	logger     *zap.Logger

	mu        sync.Mutex
	state     initState
	scopes    map[*Scope]struct{}
	stopWatch context.CancelFunc
	watchDone chan struct{}
}

type initState int

const (
	stateIdle initState = iota
	stateLoading
	stateReady
)

func New(opts Options) *Coordinator {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Resolver == nil {
		opts.Resolver = prefs.NewResolver(prefs.ResolverOptions{Logger: opts.Logger})
	}
	if opts.Graph == nil {
		opts.Graph = nav.NewGraph(nil, opts.Logger)
	}
	if opts.Voice == nil {
		opts.Voice = voice.NewRegistry(voice.WithLogger(opts.Logger))
	}
	if opts.Scheduler == nil {
		opts.Scheduler = TimerScheduler{}
	}
	if opts.FocusDelay <= 0 {
		opts.FocusDelay = DefaultFocusDelay
	}
	return &Coordinator{
		resolver:   opts.Resolver,
		graph:      opts.Graph,
		voice:      opts.Voice,
		watcher:    opts.Watcher,
		scheduler:  opts.Scheduler,
		focusDelay: opts.FocusDelay,
		logger:     opts.Logger,
		scopes:     map[*Scope]struct{}{},
	}
}

// Init loads stored preferences and starts watching the device, if a watcher
// was given. A storage read failure is logged and the defaults stay in
// effect. Preference writes are refused until the load has finished.
// Calling Init again, or while a load is in flight, is a no-op.
func (c *Coordinator) Init(ctx context.Context) error {
	c.mu.Lock()
	if c.state != stateIdle {
		c.mu.Unlock()
		return nil
	}
	c.state = stateLoading
	c.mu.Unlock()

	if err := c.resolver.Load(ctx); err != nil {
		c.logger.Warn("accessibility preferences unavailable, using defaults", zap.Error(err))
	}

	c.mu.Lock()
	if c.state != stateLoading {
		// torn down mid-load
		c.mu.Unlock()
		return nil
	}
	c.state = stateReady
	c.mu.Unlock()

	if c.watcher != nil {
		wctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		c.mu.Lock()
		c.stopWatch, c.watchDone = cancel, done
		c.mu.Unlock()
		go func() {
			defer close(done)
			if err := c.watcher.Watch(wctx, c.resolver.NotifyDeviceChanged); err != nil {
				c.logger.Warn("device watch stopped", zap.Error(err))
			}
		}()
	}
	c.logger.Info("accessibility coordinator ready",
		zap.String("platform", string(c.resolver.Platform())),
		zap.Duration("focus_delay", c.focusDelay))
	return nil
}

// Teardown closes every open scope, stops the device watcher and clears the
// registries. The coordinator can be initialized again afterwards.
func (c *Coordinator) Teardown() {
	c.mu.Lock()
	scopes := make([]*Scope, 0, len(c.scopes))
	for s := range c.scopes {
		scopes = append(scopes, s)
	}
	stop, done := c.stopWatch, c.watchDone
	c.stopWatch, c.watchDone = nil, nil
	c.state = stateIdle
	c.mu.Unlock()

	for _, s := range scopes {
		s.Close()
	}
	if stop != nil {
		stop()
		<-done
	}
	c.graph.Clear()
	c.voice.Clear()
	c.logger.Info("accessibility coordinator torn down", zap.Int("scopes_closed", len(scopes)))
}

// Initialized reports whether stored preferences have finished loading.
func (c *Coordinator) Initialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateReady
}

func (c *Coordinator) Resolver() *prefs.Resolver { return c.resolver }
func (c *Coordinator) Graph() *nav.Graph         { return c.graph }
func (c *Coordinator) Voice() *voice.Registry    { return c.voice }

// Preferences

func (c *Coordinator) Preferences() prefs.Preferences { return c.resolver.Preferences() }

func (c *Coordinator) UpdatePreferences(ctx context.Context, patch prefs.Patch) error {
	if !c.Initialized() {
		return ErrNotInitialized
	}
	return c.resolver.Update(ctx, patch)
}

func (c *Coordinator) ResetPreferences(ctx context.Context) error {
	if !c.Initialized() {
		return ErrNotInitialized
	}
	return c.resolver.Reset(ctx)
}

func (c *Coordinator) AddListener(fn prefs.Listener) func() { return c.resolver.AddListener(fn) }

func (c *Coordinator) IsScreenReaderActive() bool { return c.resolver.IsScreenReaderActive() }
func (c *Coordinator) IsBoldTextActive() bool     { return c.resolver.IsBoldTextActive() }
func (c *Coordinator) IsHighContrastActive() bool { return c.resolver.IsHighContrastActive() }
func (c *Coordinator) IsReduceMotionActive() bool { return c.resolver.IsReduceMotionActive() }
func (c *Coordinator) IsGrayscaleActive() bool    { return c.resolver.IsGrayscaleActive() }
func (c *Coordinator) IsInvertColorsActive() bool { return c.resolver.IsInvertColorsActive() }

func (c *Coordinator) Effective(f prefs.Flag) bool             { return c.resolver.Effective(f) }
func (c *Coordinator) EffectivePreferences() prefs.Preferences { return c.resolver.EffectivePreferences() }
func (c *Coordinator) Toggle(f prefs.Flag) prefs.ToggleState   { return c.resolver.Toggle(f) }
func (c *Coordinator) Toggles() []prefs.ToggleState            { return c.resolver.Toggles() }

// Navigation

func (c *Coordinator) RegisterNode(n nav.Node) string                { return c.graph.Register(n) }
func (c *Coordinator) UnregisterNode(id string)                      { c.graph.Unregister(id) }
func (c *Coordinator) Focus(id string) bool                          { return c.graph.Focus(id) }
func (c *Coordinator) MoveFocus(fromID string, d nav.Direction) bool { return c.graph.MoveFocus(fromID, d) }

// Voice

func (c *Coordinator) RegisterCommand(b voice.Binding) voice.Disposer { return c.voice.Register(b) }
func (c *Coordinator) Dispatch(utterance string) bool                 { return c.voice.Dispatch(utterance) }
func (c *Coordinator) Commands(query string) []voice.CommandInfo      { return c.voice.Commands(query) }

// Mount opens a Scope for a screen. Everything registered through the scope
// is released by Scope.Close, typically on unmount.
func (c *Coordinator) Mount(screenID string) *Scope {
	s := &Scope{c: c, screen: screenID}
	c.mu.Lock()
	c.scopes[s] = struct{}{}
	c.mu.Unlock()
	c.logger.Debug("screen mounted", zap.String("screen", screenID))
	return s
}

func (c *Coordinator) forget(s *Scope) {
	c.mu.Lock()
	delete(c.scopes, s)
	c.mu.Unlock()
}

// OpenScopes reports how many scopes have not been closed.
func (c *Coordinator) OpenScopes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.scopes)
}
