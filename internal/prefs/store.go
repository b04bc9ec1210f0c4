package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// StorageKey is the key the preference document is persisted under.
const StorageKey = "accessibility.preferences"

// ErrCorrupt marks a stored record that exists but cannot be decoded.
var ErrCorrupt = errors.New("stored preferences unreadable")

// KV is the durable key/value store preferences are written to. It is not
// required to be transactional across keys.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Store persists a Preferences document in a KV.
type Store struct {
	kv KV
}

func NewStore(kv KV) *Store { return &Store{kv: kv} }

// Load returns the stored preferences and whether a record existed.
// Fields missing from the record decode as false.
func (s *Store) Load(ctx context.Context) (Preferences, bool, error) {
	raw, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return Preferences{}, false, fmt.Errorf("load preferences: %w", err)
	}
	if !ok || raw == "" {
		return Preferences{}, false, nil
	}
	var p Preferences
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Preferences{}, false, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return p, true, nil
}

func (s *Store) Save(ctx context.Context, p Preferences) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, StorageKey, string(data))
}

// MemoryKV is an in-process KV. FailWrites makes every Set fail, which is
// how tests simulate a storage outage.
type MemoryKV struct {
	mu         sync.Mutex
	data       map[string]string
	FailWrites error
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: map[string]string{}}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.data[key] = value
	return nil
}

// SetFailure toggles simulated write failures.
func (m *MemoryKV) SetFailure(err error) {
	m.mu.Lock()
	m.FailWrites = err
	m.mu.Unlock()
}

// FileKV keeps all keys in one JSON file, rewritten atomically on each Set.
// A file that no longer parses is moved aside to path+".corrupt" by the next
// Set and replaced.
type FileKV struct {
	mu   sync.Mutex
	path string
}

func NewFileKV(path string) *FileKV { return &FileKV{path: path} }

// DefaultFilePath is the per-user location used when no path is configured.
func DefaultFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "a11ycoord", "preferences.json"), nil
}

func (f *FileKV) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := m[key]
	return v, ok, nil
}

func (f *FileKV) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, err := f.load()
	if errors.Is(err, ErrCorrupt) {
		if err := os.Rename(f.path, f.path+".corrupt"); err != nil {
			return err
		}
		m, err = map[string]string{}, nil
	}
	if err != nil {
		return err
	}
	m[key] = value
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *FileKV) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	m := map[string]string{}
	if len(data) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrCorrupt, f.path, err)
	}
	return m, nil
}
