package stopwatch

import (
	"fmt"
	"time"
)

// FormatTime renders d as MM:SS.CC, truncating every component.
// Minutes are zero-padded to two digits but not capped, so 125 minutes
// renders as "125:00.00".
func FormatTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int64(d / time.Minute)
	seconds := int64(d/time.Second) % 60
	hundredths := int64(d%time.Second) / int64(10*time.Millisecond)
	return fmt.Sprintf("%02d:%02d.%02d", minutes, seconds, hundredths)
}
