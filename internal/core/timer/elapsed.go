// Package timer computes elapsed-time windows for team and event timers
// and drives the live display refresh.
package timer

import (
	"fmt"
	"time"
)

// Elapsed returns (end or now) - start, floored at zero. A nil start
// yields zero.
func Elapsed(start, end *time.Time, now time.Time) time.Duration {
	if start == nil {
		return 0
	}
	stop := now
	if end != nil {
		stop = *end
	}
	d := stop.Sub(*start)
	if d < 0 {
		return 0
	}
	return d
}

// Format renders d as HH:MM:SS. Hours are not wrapped at 24.
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	hours := total / 3600
	minutes := (total / 60) % 60
	seconds := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
