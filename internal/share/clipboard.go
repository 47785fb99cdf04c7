package share

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrClipboardUnavailable is returned when no clipboard utility is installed.
var ErrClipboardUnavailable = errors.New("clipboard is not available")

// ClipboardTarget copies the CSV to the system clipboard.
type ClipboardTarget struct {
	write       func(string) error
	unsupported bool
}

// NewClipboardTarget returns a target backed by the system clipboard.
func NewClipboardTarget() *ClipboardTarget {
	return &ClipboardTarget{write: clipboard.WriteAll, unsupported: clipboard.Unsupported}
}

// Share implements Target.
func (t *ClipboardTarget) Share(ctx context.Context, exp Export) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if t.unsupported {
		return "", ErrClipboardUnavailable
	}
	if err := t.write(exp.CSV); err != nil {
		return "", fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return fmt.Sprintf("copied %d laps to clipboard", len(exp.Snapshot.Laps)), nil
}
