package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/jask/a11ycoord/core"
	"github.com/jask/a11ycoord/internal/config"
	"github.com/jask/a11ycoord/internal/database"
	"github.com/jask/a11ycoord/internal/database/repository"
	"github.com/jask/a11ycoord/internal/device"
	"github.com/jask/a11ycoord/internal/nav"
	"github.com/jask/a11ycoord/internal/prefs"
	"github.com/jask/a11ycoord/internal/tui"
	"github.com/jask/a11ycoord/internal/voice"
)

// runtime is one initialized coordinator and everything it was built from.
type runtime struct {
	coord *core.Coordinator
	els   *tui.Elements
	sched *tui.LoopScheduler
	keys  *core.KeyRegistry
	// settings is the raw sqlite table, nil for other backends.
	settings *repository.SettingsRepo
	close    func()
}

func openRuntime(ctx context.Context, cfg config.Config, logger *zap.Logger, watch bool) (*runtime, error) {
	platform := prefs.ParsePlatform(cfg.Platform)
	store, settings, closeStore, err := openStore(ctx, cfg, prefs.DefaultPreferences(platform))
	if err != nil {
		return nil, err
	}
	locks, err := cfg.LockTable()
	if err != nil {
		closeStore()
		return nil, err
	}

	var (
		probe   device.Probe
		watcher device.Watcher
	)
	if cfg.Device.StateFile != "" {
		fp := device.NewFileProbe(cfg.Device.StateFile, logger)
		probe = fp
		if watch && cfg.Device.Watch {
			watcher = fp
		}
	}

	els := tui.NewElements()
	sched := tui.NewLoopScheduler()
	coord := core.New(core.Options{
		Resolver: prefs.NewResolver(prefs.ResolverOptions{
			Store:    store,
			Probe:    probe,
			Platform: platform,
			Locks:    locks,
			Logger:   logger,
		}),
		Graph:      nav.NewGraph(els, logger),
		Voice:      voice.NewRegistry(voice.WithFuzzy(cfg.Voice.FuzzyDistance), voice.WithLogger(logger)),
		Watcher:    watcher,
		Scheduler:  sched,
		FocusDelay: cfg.Focus.InitialDelay,
		Logger:     logger,
	})
	if err := coord.Init(ctx); err != nil {
		closeStore()
		return nil, err
	}
	return &runtime{
		coord:    coord,
		els:      els,
		sched:    sched,
		keys:     core.NewKeyRegistry(core.ApplyActionKeybindings(core.DefaultKeyBindings(), cfg.Keys)),
		settings: settings,
		close: func() {
			coord.Teardown()
			closeStore()
		},
	}, nil
}

func openStore(ctx context.Context, cfg config.Config, defaults prefs.Preferences) (*prefs.Store, *repository.SettingsRepo, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return prefs.NewStore(prefs.NewMemoryKV()), nil, func() {}, nil
	case config.BackendFile:
		path := cfg.Store.FilePath
		if path == "" {
			var err error
			if path, err = prefs.DefaultFilePath(); err != nil {
				return nil, nil, nil, fmt.Errorf("preferences file: %w", err)
			}
		}
		return prefs.NewStore(prefs.NewFileKV(path)), nil, func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, nil, nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	if err := database.RunMigrations(cfg.Database.Path); err != nil {
		return nil, nil, nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open db: %w", err)
	}
	if err := database.SeedDefaults(ctx, db, defaults); err != nil {
		_ = db.Close()
		return nil, nil, nil, fmt.Errorf("seed defaults: %w", err)
	}
	repo := repository.NewSettingsRepo(db)
	return prefs.NewStore(repo), repo, func() { _ = db.Close() }, nil
}
