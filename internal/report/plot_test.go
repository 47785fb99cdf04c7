package report

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/verte-zerg/lapwatch/internal/stopwatch"
)

func sampleLaps() []stopwatch.Lap {
	return []stopwatch.Lap{
		{Number: 4, Duration: 1500 * time.Millisecond, Cumulative: 7500 * time.Millisecond},
		{Number: 3, Duration: 2 * time.Second, Cumulative: 6 * time.Second},
		{Number: 2, Duration: 1 * time.Second, Cumulative: 4 * time.Second},
		{Number: 1, Duration: 3 * time.Second, Cumulative: 3 * time.Second},
	}
}

func TestPlotLaps(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotLaps(&buf, sampleLaps(), 20, 4, false); err != nil {
		t.Fatalf("PlotLaps failed: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no color codes in output")
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 1+4+1 {
		t.Fatalf("expected title, 4 rows and legend, got %d lines:\n%s", len(lines), out)
	}
	if lines[0] != "Lap times (4 laps)" {
		t.Fatalf("unexpected title %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "00:03.00 │ ") {
		t.Fatalf("expected max label on first row, got %q", lines[1])
	}
	if !strings.HasPrefix(lines[4], "00:01.00 │ ") {
		t.Fatalf("expected min label on last row, got %q", lines[4])
	}
	for _, row := range lines[1:5] {
		plot := strings.SplitN(row, "│ ", 2)[1]
		if got := utf8.RuneCountInString(plot); got != 20 {
			t.Fatalf("expected plot width 20, got %d in %q", got, row)
		}
	}
	if !strings.Contains(lines[5], "lap (solid)") || !strings.Contains(lines[5], "running avg (dotted)") {
		t.Fatalf("unexpected legend %q", lines[5])
	}
}

func TestPlotLapsNeedsTwoLaps(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotLaps(&buf, sampleLaps()[:1], 20, 4, false); err != nil {
		t.Fatalf("PlotLaps failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestPlotLapsForcedColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	var buf bytes.Buffer
	if err := PlotLaps(&buf, sampleLaps(), 12, 3, true); err != nil {
		t.Fatalf("PlotLaps failed: %v", err)
	}
	if !strings.Contains(buf.String(), colorReset) {
		t.Fatalf("expected color codes with forced color")
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil); got != "" {
		t.Fatalf("expected empty sparkline, got %q", got)
	}
	if got := Sparkline(sampleLaps()); got != "@ +:" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	flat := []stopwatch.Lap{{Number: 2, Duration: time.Second}, {Number: 1, Duration: time.Second}}
	if got := Sparkline(flat); got != "++" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
}

func TestRunningAverage(t *testing.T) {
	got := runningAverage([]float64{3, 1, 2})
	want := []float64{3, 2, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d = %v, want %v", i, got[i], want[i])
		}
	}
}
