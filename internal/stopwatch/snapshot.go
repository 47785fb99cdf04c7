package stopwatch

import (
	"time"

	"github.com/samber/lo"
)

// Snapshot is a point-in-time copy of the engine's observable state.
// Laps are newest first.
type Snapshot struct {
	Running    bool
	Total      time.Duration
	CurrentLap time.Duration
	Laps       []Lap
}

// State reports Idle, Running or Paused for the snapshot.
func (s Snapshot) State() State {
	switch {
	case s.Running:
		return Running
	case s.Total > 0:
		return Paused
	default:
		return Idle
	}
}

// AverageLap is the mean recorded lap duration. It is absent without laps.
func (s Snapshot) AverageLap() (time.Duration, bool) {
	return averageLap(s.Laps)
}

// OverallAverage averages recorded laps together with the open lap segment,
// which only counts once it has time on it.
func (s Snapshot) OverallAverage() (time.Duration, bool) {
	return overallAverage(s.Laps, s.CurrentLap)
}

// FastestLapIndex is the index in Laps of the shortest lap. It needs two laps.
func (s Snapshot) FastestLapIndex() (int, bool) {
	return extremeLapIndex(s.Laps, less)
}

// SlowestLapIndex is the index in Laps of the longest lap. It needs two laps.
func (s Snapshot) SlowestLapIndex() (int, bool) {
	return extremeLapIndex(s.Laps, greater)
}

// FormattedTotal returns Total as MM:SS.CC.
func (s Snapshot) FormattedTotal() string {
	return FormatTime(s.Total)
}

// FormattedCurrentLap returns CurrentLap as MM:SS.CC.
func (s Snapshot) FormattedCurrentLap() string {
	return FormatTime(s.CurrentLap)
}

// FormattedAverageLap returns AverageLap as MM:SS.CC when defined.
func (s Snapshot) FormattedAverageLap() (string, bool) {
	avg, ok := s.AverageLap()
	if !ok {
		return "", false
	}
	return FormatTime(avg), true
}

// FormattedOverallAverage returns OverallAverage as MM:SS.CC when defined.
func (s Snapshot) FormattedOverallAverage() (string, bool) {
	avg, ok := s.OverallAverage()
	if !ok {
		return "", false
	}
	return FormatTime(avg), true
}

func sumDurations(laps []Lap) time.Duration {
	return lo.SumBy(laps, func(l Lap) time.Duration {
		return l.Duration
	})
}

func averageLap(laps []Lap) (time.Duration, bool) {
	if len(laps) == 0 {
		return 0, false
	}
	return sumDurations(laps) / time.Duration(len(laps)), true
}

func overallAverage(laps []Lap, current time.Duration) (time.Duration, bool) {
	count := len(laps)
	if current > 0 {
		count++
	}
	if count == 0 {
		return 0, false
	}
	return (sumDurations(laps) + current) / time.Duration(count), true
}

func less(a, b time.Duration) bool    { return a < b }
func greater(a, b time.Duration) bool { return a > b }

// extremeLapIndex scans in order and only replaces on a strict win, so the
// first occurrence of a tie is kept.
func extremeLapIndex(laps []Lap, better func(a, b time.Duration) bool) (int, bool) {
	if len(laps) < 2 {
		return 0, false
	}
	best := 0
	for i := 1; i < len(laps); i++ {
		if better(laps[i].Duration, laps[best].Duration) {
			best = i
		}
	}
	return best, true
}
