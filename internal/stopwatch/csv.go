package stopwatch

import (
	"encoding/csv"
	"strconv"
	"strings"
)

var csvHeader = []string{"Lap", "Lap Time", "Cumulative Time"}

// CSV renders laps oldest first, a blank separator line, then the summary rows.
func (s Snapshot) CSV() string {
	var b strings.Builder
	w := csv.NewWriter(&b)

	// Field values never contain separators or quotes, so Write cannot fail
	// against a strings.Builder.
	_ = w.Write(csvHeader)
	for i := len(s.Laps) - 1; i >= 0; i-- {
		lap := s.Laps[i]
		_ = w.Write([]string{strconv.Itoa(lap.Number), lap.FormattedDuration(), lap.FormattedCumulative()})
	}
	w.Flush()

	b.WriteString("\n")

	if avg, ok := s.FormattedAverageLap(); ok {
		_ = w.Write([]string{"Average Lap Time", avg})
	}
	if avg, ok := s.FormattedOverallAverage(); ok {
		_ = w.Write([]string{"Overall Average", avg})
	}
	_ = w.Write([]string{"Total Time", s.FormattedTotal()})
	w.Flush()

	return b.String()
}
