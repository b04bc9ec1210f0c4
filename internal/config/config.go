package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jask/a11ycoord/internal/prefs"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Store    StoreConfig
	Platform string
	Focus    FocusConfig
	Voice    VoiceConfig
	Device   DeviceConfig
	Locks    map[string][]string
	Keys     map[string][]string
	Log      LogConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// StoreConfig selects where preferences are persisted.
type StoreConfig struct {
	Backend  string
	FilePath string `mapstructure:"file_path"`
}

type FocusConfig struct {
	InitialDelay time.Duration `mapstructure:"initial_delay"`
}

type VoiceConfig struct {
	FuzzyDistance int `mapstructure:"fuzzy_distance"`
}

// DeviceConfig points at the bridge file the host platform writes its
// accessibility settings to. Empty means no device settings are read.
type DeviceConfig struct {
	StateFile string `mapstructure:"state_file"`
	Watch     bool
}

type LogConfig struct {
	Level string
}

// Load reads configuration from file and env. Env var overrides use prefix A11YCOORD_.
func Load() (Config, error) {
	v := viper.New()

	home := os.Getenv("HOME")
	v.SetDefault("database.path", filepath.Join(home, ".local", "share", "a11ycoord", "a11ycoord.db"))
	v.SetDefault("store.backend", BackendSQLite)
	v.SetDefault("store.file_path", filepath.Join(home, ".config", "a11ycoord", "preferences.json"))
	v.SetDefault("platform", string(prefs.PlatformDesktop))
	v.SetDefault("focus.initial_delay", "150ms")
	v.SetDefault("voice.fuzzy_distance", 0)
	v.SetDefault("device.state_file", "")
	v.SetDefault("device.watch", true)
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("A11YCOORD_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "a11ycoord"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("A11YCOORD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects values the rest of the program cannot act on.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendSQLite, BackendFile, BackendMemory:
	default:
		return fmt.Errorf("store.backend: unknown backend %q", c.Store.Backend)
	}
	if c.Voice.FuzzyDistance < 0 {
		return fmt.Errorf("voice.fuzzy_distance: must not be negative")
	}
	if c.Focus.InitialDelay < 0 {
		return fmt.Errorf("focus.initial_delay: must not be negative")
	}
	for platform, flags := range c.Locks {
		for _, f := range flags {
			if _, err := prefs.ParseFlag(f); err != nil {
				return fmt.Errorf("locks.%s: %w", platform, err)
			}
		}
	}
	return nil
}

// LockTable returns the built-in lock table with any configured platforms
// replacing their defaults.
func (c Config) LockTable() (prefs.LockTable, error) {
	table := prefs.DefaultLockTable()
	for platform, names := range c.Locks {
		flags := make([]prefs.Flag, 0, len(names))
		for _, n := range names {
			f, err := prefs.ParseFlag(n)
			if err != nil {
				return nil, fmt.Errorf("locks.%s: %w", platform, err)
			}
			flags = append(flags, f)
		}
		table = table.WithPlatform(prefs.ParsePlatform(platform), flags)
	}
	return table, nil
}

// Path is the file Load reads and Save writes.
func Path() string {
	if p := os.Getenv("A11YCOORD_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "a11ycoord", "config.toml")
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("store.backend", cfg.Store.Backend)
	v.Set("store.file_path", cfg.Store.FilePath)
	v.Set("platform", cfg.Platform)
	v.Set("focus.initial_delay", cfg.Focus.InitialDelay.String())
	v.Set("voice.fuzzy_distance", cfg.Voice.FuzzyDistance)
	v.Set("device.state_file", cfg.Device.StateFile)
	v.Set("device.watch", cfg.Device.Watch)
	v.Set("log.level", cfg.Log.Level)
	for platform, flags := range cfg.Locks {
		v.Set("locks."+platform, flags)
	}
	for action, keys := range cfg.Keys {
		v.Set("keys."+action, keys)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
