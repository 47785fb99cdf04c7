package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/verte-zerg/lapwatch/internal/model"
	"github.com/verte-zerg/lapwatch/internal/stopwatch"
)

const (
	fastestMark = "fastest"
	slowestMark = "slowest"
	dateLayout  = "2006-01-02 15:04"
)

// RenderHistory prints one row per archived export followed by totals.
func RenderHistory(w io.Writer, exports []model.ExportSummary) error {
	if len(exports) == 0 {
		_, err := fmt.Fprintln(w, "No exports found.")
		return err
	}
	headers := []string{"Ref", "Exported", "Laps", "Avg Lap", "Total"}
	rows := lo.Map(exports, func(e model.ExportSummary, _ int) []string {
		avg := "-"
		if e.HasAverage {
			avg = stopwatch.FormatTime(e.Average)
		}
		return []string{
			shortRef(e.Ref),
			e.ExportedAt.Local().Format(dateLayout),
			strconv.Itoa(e.LapCount),
			avg,
			stopwatch.FormatTime(e.Total),
		}
	})
	rightAlign := map[int]bool{2: true, 3: true, 4: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	laps := lo.SumBy(exports, func(e model.ExportSummary) int { return e.LapCount })
	total := lo.SumBy(exports, func(e model.ExportSummary) time.Duration { return e.Total })
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Exports: %d  Laps: %d  Time: %s\n", len(exports), laps, stopwatch.FormatTime(total))
	return err
}

// RenderLaps prints laps in ascending order with fastest/slowest marks and
// the summary lines of the CSV export.
func RenderLaps(w io.Writer, snap stopwatch.Snapshot) error {
	if len(snap.Laps) == 0 {
		if _, err := fmt.Fprintln(w, "No laps recorded."); err != nil {
			return err
		}
	} else {
		fastest, hasFastest := snap.FastestLapIndex()
		slowest, hasSlowest := snap.SlowestLapIndex()
		headers := []string{"Lap", "Lap Time", "Cumulative", ""}
		rows := make([][]string, 0, len(snap.Laps))
		for i := len(snap.Laps) - 1; i >= 0; i-- {
			lap := snap.Laps[i]
			mark := ""
			switch {
			case hasFastest && i == fastest:
				mark = fastestMark
			case hasSlowest && i == slowest:
				mark = slowestMark
			}
			rows = append(rows, []string{
				strconv.Itoa(lap.Number),
				lap.FormattedDuration(),
				lap.FormattedCumulative(),
				mark,
			})
		}
		rightAlign := map[int]bool{0: true, 1: true, 2: true}
		for _, line := range formatTable(headers, rows, rightAlign) {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}

	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	if len(snap.Laps) > 1 {
		if _, err := fmt.Fprintf(w, "Lap Trend: %s\n", Sparkline(snap.Laps)); err != nil {
			return err
		}
	}
	if avg, ok := snap.FormattedAverageLap(); ok {
		if _, err := fmt.Fprintf(w, "Average Lap Time: %s\n", avg); err != nil {
			return err
		}
	}
	if avg, ok := snap.FormattedOverallAverage(); ok {
		if _, err := fmt.Fprintf(w, "Overall Average: %s\n", avg); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Total Time: %s\n", snap.FormattedTotal())
	return err
}

func shortRef(ref string) string {
	if len(ref) <= 8 {
		return ref
	}
	return ref[:8]
}
