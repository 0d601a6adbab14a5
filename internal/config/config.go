package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML configs can say "150ms" or give a
// plain number of milliseconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var ms int64
	if err := value.Decode(&ms); err != nil {
		return fmt.Errorf("invalid duration value: %w", err)
	}
	*d = Duration(time.Duration(ms) * time.Millisecond)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the daemon-level configuration. Per-folder analysis options are
// not part of it; those arrive from the host editor (see Options).
type Config struct {
	LogLevel       string   `yaml:"log_level"`
	LogFormat      string   `yaml:"log_format"`
	DatabasePath   string   `yaml:"database_path"`
	DebounceWindow Duration `yaml:"debounce_window"`
	WatcherEnabled bool     `yaml:"watcher_enabled"`
}

func Load() *Config {
	homeDir, _ := os.UserHomeDir()
	pyscopeDir := filepath.Join(homeDir, ".pyscope")

	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		DatabasePath:   filepath.Join(pyscopeDir, "snapshots.db"),
		DebounceWindow: Duration(150 * time.Millisecond),
		WatcherEnabled: true,
	}
}

// LoadFile overlays values from a YAML file on top of the defaults. A missing
// file is not an error; the defaults stand.
func LoadFile(path string) (*Config, error) {
	cfg := Load()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if cfg.DebounceWindow <= 0 {
		cfg.DebounceWindow = Duration(150 * time.Millisecond)
	}

	return cfg, nil
}

func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".pyscope", "config.yaml")
}

func (c *Config) EnsureDirectories() error {
	return os.MkdirAll(filepath.Dir(c.DatabasePath), 0700)
}
