package stopwatch

import "time"

// Lap is a recorded lap. Number is its stable key within one engine lifetime.
type Lap struct {
	Number     int
	Duration   time.Duration
	Cumulative time.Duration
}

// FormattedDuration returns the lap duration as MM:SS.CC.
func (l Lap) FormattedDuration() string {
	return FormatTime(l.Duration)
}

// FormattedCumulative returns the elapsed total at the lap boundary as MM:SS.CC.
func (l Lap) FormattedCumulative() string {
	return FormatTime(l.Cumulative)
}
