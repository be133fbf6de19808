package timer

import (
	"sync"

	"scouttrack/internal/core/clock"
	"scouttrack/internal/core/model"
)

// EventTimer is the global event timer. Start always resets the window;
// Stop freezes it and keeps the start time.
type EventTimer struct {
	mu    sync.RWMutex
	clock clock.Clock
	state model.EventState
}

func NewEventTimer(clk clock.Clock) *EventTimer {
	if clk == nil {
		clk = clock.Real()
	}
	return &EventTimer{clock: clk}
}

func (t *EventTimer) Start() model.EventState {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.startLocked()
	return t.state.Clone()
}

// Stop ends a running window. Stopping an idle timer changes nothing.
func (t *EventTimer) Stop() model.EventState {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	return t.state.Clone()
}

// Toggle stops a running timer or starts a fresh one.
func (t *EventTimer) Toggle() model.EventState {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.IsRunning {
		t.stopLocked()
	} else {
		t.startLocked()
	}
	return t.state.Clone()
}

func (t *EventTimer) startLocked() {
	now := t.clock.Now()
	t.state = model.EventState{IsRunning: true, StartTime: &now}
}

func (t *EventTimer) stopLocked() {
	if !t.state.IsRunning {
		return
	}
	now := t.clock.Now()
	if t.state.StartTime != nil && now.Before(*t.state.StartTime) {
		now = *t.state.StartTime
	}
	t.state.IsRunning = false
	t.state.EndTime = &now
}

func (t *EventTimer) State() model.EventState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.Clone()
}

// Elapsed is the event's elapsed time at the current clock reading.
func (t *EventTimer) Elapsed() (elapsedTime string, frozen bool) {
	s := t.State()
	return Format(Elapsed(s.StartTime, s.EndTime, t.clock.Now())), s.EndTime != nil
}
