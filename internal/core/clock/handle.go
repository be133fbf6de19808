package clock

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Handle is the cancellation token for a periodic callback started by
// Every. Once Cancel or Stop has been called the callback never runs again.
type Handle struct {
	mu        sync.Mutex // held while the callback runs
	cancelled atomic.Bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// Every calls fn every period until ctx is done or the returned handle is
// cancelled. Calls are serialised: a slow callback delays the next tick
// rather than overlapping it.
func Every(ctx context.Context, clk Clock, period time.Duration, fn func(now time.Time)) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	ticker := clk.NewTicker(period)
	go func() {
		defer close(h.done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				h.cancelled.Store(true)
				return
			case now := <-ticker.C():
				h.fire(now, fn)
			}
		}
	}()
	return h
}

func (h *Handle) fire(now time.Time, fn func(time.Time)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	// A tick may already be queued when cancellation happens.
	if h.cancelled.Load() {
		return
	}
	fn(now)
}

// Cancel stops future callbacks without waiting for one in flight. It is
// safe to call from inside the callback.
func (h *Handle) Cancel() {
	h.cancelled.Store(true)
	h.cancel()
}

// Stop cancels the handle and waits for an in-flight callback and the
// loop goroutine to finish. Do not call Stop from the callback itself;
// use Cancel there.
func (h *Handle) Stop() {
	h.Cancel()
	h.mu.Lock()
	h.mu.Unlock() //nolint:staticcheck // waits for the in-flight callback
	<-h.done
}

// Cancelled reports whether the handle has been cancelled.
func (h *Handle) Cancelled() bool {
	return h.cancelled.Load()
}

// Done is closed once the loop goroutine has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}
