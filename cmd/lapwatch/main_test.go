package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/lapwatch/internal/config"
	"github.com/verte-zerg/lapwatch/internal/model"
	"github.com/verte-zerg/lapwatch/internal/share"
	"github.com/verte-zerg/lapwatch/internal/stopwatch"
	"github.com/verte-zerg/lapwatch/internal/store"
)

func isolateXDG(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	return dir
}

func writeConfig(t *testing.T, body string) {
	t.Helper()
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestResolveConfigDefaults(t *testing.T) {
	isolateXDG(t)
	root := newRootCmd()
	if err := root.ParseFlags(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := resolveConfig(root)
	if err != nil {
		t.Fatalf("resolve config: %v", err)
	}
	if cfg.TickInterval != stopwatch.DefaultTickInterval {
		t.Fatalf("unexpected tick %s", cfg.TickInterval)
	}
	if len(cfg.Targets) != 1 || cfg.Targets[0] != share.TargetFile {
		t.Fatalf("unexpected targets %v", cfg.Targets)
	}
	if cfg.ExportDir != config.DefaultExportDir() {
		t.Fatalf("unexpected export dir %q", cfg.ExportDir)
	}
}

func TestResolveConfigFlagsOverrideFile(t *testing.T) {
	isolateXDG(t)
	writeConfig(t, `
[stopwatch]
tick = "50ms"

[export]
targets = ["clipboard", "archive"]

[log]
level = "debug"
`)
	root := newRootCmd()
	if err := root.ParseFlags([]string{"--tick", "20ms"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := resolveConfig(root)
	if err != nil {
		t.Fatalf("resolve config: %v", err)
	}
	if cfg.TickInterval != 20*time.Millisecond {
		t.Fatalf("expected flag tick to win, got %s", cfg.TickInterval)
	}
	if strings.Join(cfg.Targets, ",") != "clipboard,archive" {
		t.Fatalf("expected config targets, got %v", cfg.Targets)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected config log level, got %q", cfg.LogLevel)
	}
}

func TestValidateConfig(t *testing.T) {
	base := model.Config{
		TickInterval: 10 * time.Millisecond,
		ExportDir:    "/tmp/laps",
		Targets:      []string{"File, clipboard", "file"},
		LogLevel:     "info",
		LogFile:      "/tmp/lapwatch.log",
	}
	cfg := base
	if err := validateConfig(&cfg); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	if strings.Join(cfg.Targets, ",") != "file,clipboard" {
		t.Fatalf("expected normalised targets, got %v", cfg.Targets)
	}

	cases := map[string]func(*model.Config){
		"tick too small": func(c *model.Config) { c.TickInterval = 0 },
		"tick too large": func(c *model.Config) { c.TickInterval = 2 * time.Second },
		"unknown target": func(c *model.Config) { c.Targets = []string{"email"} },
		"no targets":     func(c *model.Config) { c.Targets = nil },
		"empty dir":      func(c *model.Config) { c.ExportDir = " " },
		"bad log level":  func(c *model.Config) { c.LogLevel = "loud" },
		"empty log file": func(c *model.Config) { c.LogFile = "" },
	}
	for name, mutate := range cases {
		cfg := base
		cfg.Targets = append([]string(nil), base.Targets...)
		mutate(&cfg)
		if err := validateConfig(&cfg); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestHistoryFilter(t *testing.T) {
	filter, err := historyFilter("2026-10-01", 3)
	if err != nil {
		t.Fatalf("history filter: %v", err)
	}
	if filter.Last != 3 || filter.Since == nil || filter.Since.Day() != 1 {
		t.Fatalf("unexpected filter %+v", filter)
	}
	if _, err := historyFilter("01/10/2026", 0); err == nil {
		t.Fatalf("expected error for bad date")
	}
	if _, err := historyFilter("", -1); err == nil {
		t.Fatalf("expected error for negative last")
	}
}

func TestDefaultConfigTemplateLoads(t *testing.T) {
	isolateXDG(t)
	writeConfig(t, defaultConfigTemplate())
	cfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		t.Fatalf("template should parse: %v", err)
	}
	if cfg.Stopwatch.Tick != nil || cfg.Export.Targets != nil {
		t.Fatalf("template values should all be commented out: %+v", cfg)
	}
}

func TestHistoryCommands(t *testing.T) {
	isolateXDG(t)
	snap := stopwatch.Snapshot{
		Total: 2500 * time.Millisecond,
		Laps: []stopwatch.Lap{
			{Number: 2, Duration: time.Second, Cumulative: 2500 * time.Millisecond},
			{Number: 1, Duration: 1500 * time.Millisecond, Cumulative: 1500 * time.Millisecond},
		},
	}
	exp := share.NewExport(snap, time.Date(2026, 10, 16, 9, 30, 0, 0, time.Local))
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	summary, err := st.InsertExport(context.Background(), exp.Record())
	if err != nil {
		t.Fatalf("insert export: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	out := runRoot(t, "history")
	if !strings.Contains(out, summary.Ref[:8]) || !strings.Contains(out, "Exports: 1  Laps: 2") {
		t.Fatalf("unexpected history output:\n%s", out)
	}

	out = runRoot(t, "history", "show", summary.Ref[:8], "--csv")
	if out != exp.CSV {
		t.Fatalf("expected raw CSV, got:\n%s", out)
	}

	out = runRoot(t, "history", "show", summary.Ref[:8], "--plot")
	if !strings.Contains(out, "Total Time: 00:02.50") || !strings.Contains(out, "Lap times (2 laps)") {
		t.Fatalf("unexpected show output:\n%s", out)
	}
}

func TestHistoryShowUnknownRef(t *testing.T) {
	isolateXDG(t)
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs([]string{"history", "show", "deadbeef"})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected error for unknown ref")
	}
}

func runRoot(t *testing.T, args ...string) string {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("%v failed: %v\n%s", args, err, errOut.String())
	}
	return out.String()
}
