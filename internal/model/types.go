// Package model defines shared data structures.
package model

import (
	"time"

	"github.com/verte-zerg/lapwatch/internal/stopwatch"
)

// Config defines stopwatch session settings.
type Config struct {
	TickInterval time.Duration
	ExportDir    string
	Targets      []string
	LogLevel     string
	LogFile      string
}

// HistoryFilter narrows archive listings.
type HistoryFilter struct {
	Since *time.Time
	Last  int
}

// ExportRecord is a finished export ready to be archived.
type ExportRecord struct {
	ExportedAt time.Time
	Total      time.Duration
	Laps       []stopwatch.Lap
	CSV        string
}

// ExportSummary describes an archived export.
type ExportSummary struct {
	ID         int64
	Ref        string
	ExportedAt time.Time
	LapCount   int
	Total      time.Duration
	// Average is zero when HasAverage is false.
	Average    time.Duration
	HasAverage bool
}

// ExportDetail is an archived export with its laps, newest first.
type ExportDetail struct {
	ExportSummary
	Laps []stopwatch.Lap
	CSV  string
}
