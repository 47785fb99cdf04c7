package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing config, got %v", err)
	}
	if cfg.Stopwatch.Tick != nil || cfg.Export.Dir != nil || cfg.Log.Level != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[stopwatch]
tick = "25ms"

[export]
dir = "/tmp/laps"
targets = ["file", "archive"]

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Stopwatch.Tick == nil || cfg.Stopwatch.Tick.Duration != 25*time.Millisecond {
		t.Fatalf("unexpected tick: %+v", cfg.Stopwatch.Tick)
	}
	if cfg.Export.Dir == nil || *cfg.Export.Dir != "/tmp/laps" {
		t.Fatalf("unexpected export dir: %v", cfg.Export.Dir)
	}
	if cfg.Export.Targets == nil || strings.Join(*cfg.Export.Targets, ",") != "file,archive" {
		t.Fatalf("unexpected targets: %v", cfg.Export.Targets)
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level: %v", cfg.Log.Level)
	}
	if cfg.Log.File != nil {
		t.Fatalf("expected unset log file, got %q", *cfg.Log.File)
	}
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[stopwatch]\ntick = \"fast\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[practice]\nwords = 25\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "practice.words") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	if got := ExpandHome("~/laps"); got != "/home/tester/laps" {
		t.Fatalf("unexpected expansion: %q", got)
	}
	if got := ExpandHome("/abs/laps"); got != "/abs/laps" {
		t.Fatalf("expected absolute path unchanged, got %q", got)
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")
	if got := DefaultConfigPath(); got != "/cfg/lapwatch/config.toml" {
		t.Fatalf("unexpected config path: %q", got)
	}
	if got := DefaultDBPath(); got != "/data/lapwatch/archive.db" {
		t.Fatalf("unexpected db path: %q", got)
	}
	if got := DefaultExportDir(); got != "/data/lapwatch/exports" {
		t.Fatalf("unexpected export dir: %q", got)
	}
	if got := DefaultLogPath(); got != "/state/lapwatch/lapwatch.log" {
		t.Fatalf("unexpected log path: %q", got)
	}
}
