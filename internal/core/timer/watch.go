package timer

import (
	"context"
	"time"

	"scouttrack/internal/core/clock"
)

// Window reports the current start and end of a timer.
type Window func() (start, end *time.Time)

// Watch emits the formatted elapsed time immediately and then every
// period. Once the window has an end time the value is frozen: it is
// emitted once more and the watch cancels itself. The returned handle
// stops the refresh early, e.g. when the viewer goes away.
func Watch(ctx context.Context, clk clock.Clock, period time.Duration, window Window, emit func(string)) *clock.Handle {
	start, end := window()
	emit(Format(Elapsed(start, end, clk.Now())))

	var h *clock.Handle
	ready := make(chan struct{})
	h = clock.Every(ctx, clk, period, func(now time.Time) {
		<-ready
		start, end := window()
		emit(Format(Elapsed(start, end, now)))
		if end != nil {
			h.Cancel()
		}
	})
	close(ready)
	if end != nil {
		h.Cancel()
	}
	return h
}
