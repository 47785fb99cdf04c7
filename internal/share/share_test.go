package share

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/lapwatch/internal/store"
	"github.com/verte-zerg/lapwatch/internal/stopwatch"
)

func sampleExport() Export {
	snap := stopwatch.Snapshot{
		Total: 2500 * time.Millisecond,
		Laps: []stopwatch.Lap{
			{Number: 2, Duration: time.Second, Cumulative: 2500 * time.Millisecond},
			{Number: 1, Duration: 1500 * time.Millisecond, Cumulative: 1500 * time.Millisecond},
		},
	}
	return NewExport(snap, time.Date(2026, 10, 16, 9, 30, 15, 0, time.Local))
}

func TestFileTargetWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	target := NewFileTarget(dir)
	exp := sampleExport()

	desc, err := target.Share(context.Background(), exp)
	require.NoError(t, err)

	path := filepath.Join(dir, "lapwatch-20261016-093015.csv")
	assert.Equal(t, "saved "+path, desc)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, exp.CSV, string(data))

	desc, err = target.Share(context.Background(), exp)
	require.NoError(t, err)
	assert.Equal(t, "saved "+filepath.Join(dir, "lapwatch-20261016-093015-1.csv"), desc)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temp files should be cleaned up")
}

func TestFileTargetRequiresDir(t *testing.T) {
	_, err := NewFileTarget("").Share(context.Background(), sampleExport())
	assert.Error(t, err)
}

func TestFileTargetHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFileTarget(t.TempDir()).Share(ctx, sampleExport())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClipboardTarget(t *testing.T) {
	var copied string
	target := &ClipboardTarget{write: func(s string) error {
		copied = s
		return nil
	}}
	exp := sampleExport()
	desc, err := target.Share(context.Background(), exp)
	require.NoError(t, err)
	assert.Equal(t, exp.CSV, copied)
	assert.Equal(t, "copied 2 laps to clipboard", desc)

	unsupported := &ClipboardTarget{unsupported: true}
	_, err = unsupported.Share(context.Background(), exp)
	assert.ErrorIs(t, err, ErrClipboardUnavailable)

	failing := &ClipboardTarget{write: func(string) error { return errors.New("xclip exited 1") }}
	_, err = failing.Share(context.Background(), exp)
	assert.ErrorContains(t, err, "xclip exited 1")
}

func TestArchiveTarget(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	exp := sampleExport()
	desc, err := NewArchiveTarget(st).Share(context.Background(), exp)
	require.NoError(t, err)
	assert.Contains(t, desc, "archived as ")

	ref := desc[len("archived as "):]
	detail, err := st.GetExport(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, exp.CSV, detail.CSV)
	assert.Equal(t, exp.Snapshot.Laps, detail.Laps)
}

type stubTarget struct {
	desc string
	err  error
	hits int
}

func (s *stubTarget) Share(context.Context, Export) (string, error) {
	s.hits++
	return s.desc, s.err
}

func TestMultiContinuesAfterFailure(t *testing.T) {
	failing := &stubTarget{err: errors.New("boom")}
	ok := &stubTarget{desc: "saved x.csv"}
	desc, err := Multi{failing, ok}.Share(context.Background(), sampleExport())
	assert.Equal(t, "saved x.csv", desc)
	assert.ErrorContains(t, err, "boom")
	assert.Equal(t, 1, ok.hits)

	desc, err = Multi{ok, &stubTarget{desc: "copied"}}.Share(context.Background(), sampleExport())
	require.NoError(t, err)
	assert.Equal(t, "saved x.csv; copied", desc)
}

func TestParseTargets(t *testing.T) {
	got, err := ParseTargets([]string{"File", "archive,file", " clipboard "})
	require.NoError(t, err)
	assert.Equal(t, []string{"file", "archive", "clipboard"}, got)

	_, err = ParseTargets([]string{"email"})
	assert.ErrorIs(t, err, ErrUnknownTarget)

	_, err = ParseTargets([]string{" , "})
	assert.Error(t, err)
}

func TestBuild(t *testing.T) {
	targets, err := Build([]string{"file", "clipboard"}, t.TempDir(), nil)
	require.NoError(t, err)
	assert.Len(t, targets, 2)

	_, err = Build([]string{"archive"}, t.TempDir(), nil)
	assert.Error(t, err)

	assert.True(t, Needs([]string{"file", "archive"}, TargetArchive))
	assert.False(t, Needs([]string{"file"}, TargetArchive))
}
