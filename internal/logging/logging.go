// Package logging builds the structured logger shared by the CLI and the TUI.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = "info"

// ParseLevel validates a level name such as "debug" or "warn".
func ParseLevel(level string) (log.Level, error) {
	level = strings.TrimSpace(strings.ToLower(level))
	if level == "" {
		level = DefaultLevel
	}
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return 0, fmt.Errorf("invalid log level %q (expected debug, info, warn or error)", level)
	}
	return parsed, nil
}

// New returns a logger writing to w at the given level.
func New(w io.Writer, level string) (*log.Logger, error) {
	parsed, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		Level:           parsed,
		Prefix:          "lapwatch",
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	}), nil
}

// OpenFile returns a logger appending to path. Callers close the returned file.
func OpenFile(path, level string) (*log.Logger, io.Closer, error) {
	if _, err := ParseLevel(level); err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger, err := New(f, level)
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return logger, f, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
