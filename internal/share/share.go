// Package share delivers exported CSV to its destinations.
package share

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/lapwatch/internal/model"
	"github.com/verte-zerg/lapwatch/internal/stopwatch"
)

// Target names accepted in config and flags.
const (
	TargetFile      = "file"
	TargetClipboard = "clipboard"
	TargetArchive   = "archive"
)

// ErrUnknownTarget is returned for an unrecognised target name.
var ErrUnknownTarget = errors.New("unknown share target")

// Export is one CSV export and the snapshot it was generated from.
type Export struct {
	CSV        string
	Snapshot   stopwatch.Snapshot
	ExportedAt time.Time
}

// NewExport captures the engine snapshot and its CSV at the given instant.
func NewExport(snap stopwatch.Snapshot, at time.Time) Export {
	return Export{CSV: snap.CSV(), Snapshot: snap, ExportedAt: at}
}

// Record converts the export into an archive record.
func (e Export) Record() model.ExportRecord {
	return model.ExportRecord{
		ExportedAt: e.ExportedAt,
		Total:      e.Snapshot.Total,
		Laps:       e.Snapshot.Laps,
		CSV:        e.CSV,
	}
}

// Target delivers an export and describes where it went.
type Target interface {
	Share(ctx context.Context, exp Export) (string, error)
}

// Multi shares to every target in order. Failures do not stop later targets.
type Multi []Target

// Share implements Target.
func (m Multi) Share(ctx context.Context, exp Export) (string, error) {
	var descs []string
	var errs []error
	for _, t := range m {
		desc, err := t.Share(ctx, exp)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		descs = append(descs, desc)
	}
	return strings.Join(descs, "; "), errors.Join(errs...)
}

// Archiver stores export records.
type Archiver interface {
	InsertExport(ctx context.Context, rec model.ExportRecord) (model.ExportSummary, error)
}

// ParseTargets normalises and de-duplicates target names.
func ParseTargets(names []string) ([]string, error) {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(names))
	for _, raw := range names {
		for _, part := range strings.Split(raw, ",") {
			name := strings.TrimSpace(strings.ToLower(part))
			if name == "" {
				continue
			}
			switch name {
			case TargetFile, TargetClipboard, TargetArchive:
			default:
				return nil, fmt.Errorf("%w: %q (expected file, clipboard or archive)", ErrUnknownTarget, name)
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("at least one share target is required")
	}
	return out, nil
}

// Build constructs a Multi target for the given names. archiver may be nil
// unless "archive" is requested.
func Build(names []string, exportDir string, archiver Archiver) (Multi, error) {
	parsed, err := ParseTargets(names)
	if err != nil {
		return nil, err
	}
	targets := make(Multi, 0, len(parsed))
	for _, name := range parsed {
		switch name {
		case TargetFile:
			targets = append(targets, NewFileTarget(exportDir))
		case TargetClipboard:
			targets = append(targets, NewClipboardTarget())
		case TargetArchive:
			if archiver == nil {
				return nil, fmt.Errorf("archive target requires an open archive")
			}
			targets = append(targets, NewArchiveTarget(archiver))
		}
	}
	return targets, nil
}

// Needs reports whether name is among the parsed target names.
func Needs(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
