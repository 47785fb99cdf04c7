package share

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

const fileTimeLayout = "20060102-150405"

// FileTarget writes each export to a timestamped CSV file in Dir.
type FileTarget struct {
	Dir string
}

// NewFileTarget returns a FileTarget for dir.
func NewFileTarget(dir string) *FileTarget {
	return &FileTarget{Dir: dir}
}

// Share writes the CSV atomically and returns its path.
func (t *FileTarget) Share(ctx context.Context, exp Export) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if t.Dir == "" {
		return "", fmt.Errorf("export directory is not set")
	}
	if err := os.MkdirAll(t.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export dir: %w", err)
	}
	path, err := t.freePath(exp)
	if err != nil {
		return "", err
	}

	tmpFile, err := os.CreateTemp(t.Dir, "lapwatch-*.csv.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp export: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.WriteString(exp.CSV); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close export: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return fmt.Sprintf("saved %s", path), nil
}

// freePath picks lapwatch-<stamp>.csv, adding a counter when two exports
// land in the same second.
func (t *FileTarget) freePath(exp Export) (string, error) {
	stamp := exp.ExportedAt.Format(fileTimeLayout)
	for i := 0; i < 100; i++ {
		name := fmt.Sprintf("lapwatch-%s.csv", stamp)
		if i > 0 {
			name = fmt.Sprintf("lapwatch-%s-%d.csv", stamp, i)
		}
		path := filepath.Join(t.Dir, name)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return path, nil
			}
			return "", fmt.Errorf("failed to stat export: %w", err)
		}
	}
	return "", fmt.Errorf("too many exports for %s", stamp)
}
