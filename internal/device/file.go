package device

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// bridgeFile is the document an OS bridge writes, for example:
//
//	screenReader: true
//	reduceMotion: false
type bridgeFile struct {
	ScreenReader bool `yaml:"screenReader"`
	BoldText     bool `yaml:"boldText"`
	HighContrast bool `yaml:"highContrast"`
	ReduceMotion bool `yaml:"reduceMotion"`
	Grayscale    bool `yaml:"grayscale"`
	InvertColors bool `yaml:"invertColors"`
}

// FileProbe reads device state from a YAML file kept current by a platform
// bridge process. The file is re-read on every query.
type FileProbe struct {
	Path   string
	Logger *zap.Logger
}

func NewFileProbe(path string, logger *zap.Logger) *FileProbe {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileProbe{Path: path, Logger: logger}
}

func (p *FileProbe) Query(f Feature) bool {
	st, err := p.read()
	if err != nil {
		p.Logger.Warn("device state unreadable", zap.String("path", p.Path), zap.Error(err))
		return false
	}
	return st[f]
}

func (p *FileProbe) read() (State, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return State{}, nil
		}
		return nil, err
	}
	var bf bridgeFile
	if err := yaml.Unmarshal(data, &bf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", p.Path, err)
	}
	return State{
		ScreenReader: bf.ScreenReader,
		BoldText:     bf.BoldText,
		HighContrast: bf.HighContrast,
		ReduceMotion: bf.ReduceMotion,
		Grayscale:    bf.Grayscale,
		InvertColors: bf.InvertColors,
	}, nil
}

// Write replaces the bridge file. Used by the CLI and tests to simulate the OS.
func (p *FileProbe) Write(st State) error {
	data, err := yaml.Marshal(bridgeFile{
		ScreenReader: st[ScreenReader],
		BoldText:     st[BoldText],
		HighContrast: st[HighContrast],
		ReduceMotion: st[ReduceMotion],
		Grayscale:    st[Grayscale],
		InvertColors: st[InvertColors],
	})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.Path), 0o755); err != nil {
		return err
	}
	tmp := p.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, p.Path)
}

// Watch calls onChange whenever the bridge file is created, written, renamed
// over or removed. The directory is watched so atomic replaces are seen.
func (p *FileProbe) Watch(ctx context.Context, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("device watch: %w", err)
	}
	defer w.Close()

	dir := filepath.Dir(p.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("device watch: %w", err)
	}
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("device watch %s: %w", dir, err)
	}
	target := filepath.Clean(p.Path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
				p.Logger.Debug("device state changed", zap.String("op", ev.Op.String()))
				onChange()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			p.Logger.Warn("device watch error", zap.Error(err))
		}
	}
}
