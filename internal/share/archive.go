package share

import (
	"context"
	"fmt"
)

// ArchiveTarget stores exports so they can be listed with `lapwatch history`.
type ArchiveTarget struct {
	archiver Archiver
}

// NewArchiveTarget wraps an Archiver.
func NewArchiveTarget(a Archiver) *ArchiveTarget {
	return &ArchiveTarget{archiver: a}
}

// Share implements Target.
func (t *ArchiveTarget) Share(ctx context.Context, exp Export) (string, error) {
	summary, err := t.archiver.InsertExport(ctx, exp.Record())
	if err != nil {
		return "", fmt.Errorf("failed to archive export: %w", err)
	}
	ref := summary.Ref
	if len(ref) > 8 {
		ref = ref[:8]
	}
	return fmt.Sprintf("archived as %s", ref), nil
}
