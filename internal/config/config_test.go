package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.LogLevel != "info" {
		t.Errorf("log level default mismatch: got %q", cfg.LogLevel)
	}
	if cfg.DebounceWindow.Std() != 150*time.Millisecond {
		t.Errorf("debounce default mismatch: got %v", cfg.DebounceWindow.Std())
	}
	if !cfg.WatcherEnabled {
		t.Error("watcher must default to enabled")
	}
	if cfg.DatabasePath == "" {
		t.Error("database path must have a default")
	}
}

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("missing file must yield defaults, got %q", cfg.LogLevel)
	}
}

func TestLoadFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
log_level: debug
log_format: json
debounce_window: 300ms
watcher_enabled: false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Errorf("log overrides not applied: %q/%q", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.DebounceWindow.Std() != 300*time.Millisecond {
		t.Errorf("debounce override not applied: got %v", cfg.DebounceWindow.Std())
	}
	if cfg.WatcherEnabled {
		t.Error("watcher override not applied")
	}
	if cfg.DatabasePath == "" {
		t.Error("unset keys must keep their defaults")
	}
}

func TestLoadFileNumericDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("debounce_window: 250\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.DebounceWindow.Std() != 250*time.Millisecond {
		t.Errorf("bare numbers are milliseconds: got %v", cfg.DebounceWindow.Std())
	}
}

func TestLoadFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: [not, a, string\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Error("malformed yaml must be an error")
	}
}
