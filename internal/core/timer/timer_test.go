package timer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scouttrack/internal/core/clock"
)

var epoch = time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := epoch.Add(d)
	return &t
}

func TestElapsed(t *testing.T) {
	tests := []struct {
		name  string
		start *time.Time
		end   *time.Time
		now   time.Time
		want  time.Duration
	}{
		{"no start", nil, nil, epoch, 0},
		{"no start with end", nil, at(time.Hour), epoch, 0},
		{"running", at(0), nil, epoch.Add(90 * time.Second), 90 * time.Second},
		{"stopped ignores now", at(0), at(time.Minute), epoch.Add(time.Hour), time.Minute},
		{"clock behind start floors at zero", at(time.Minute), nil, epoch, 0},
		{"end before start floors at zero", at(time.Minute), at(0), epoch, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Elapsed(tt.start, tt.end, tt.now))
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00"},
		{-5 * time.Second, "00:00:00"},
		{999 * time.Millisecond, "00:00:00"},
		{61 * time.Second, "00:01:01"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
		{27*time.Hour + 3*time.Minute + 9*time.Second, "27:03:09"},
		{100 * time.Hour, "100:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.in))
		})
	}
}

func TestEventTimer_StartStopFreeze(t *testing.T) {
	clk := clock.NewFake(epoch)
	et := NewEventTimer(clk)

	s := et.Start()
	assert.True(t, s.IsRunning)
	require.NotNil(t, s.StartTime)
	assert.Nil(t, s.EndTime)

	got, frozen := et.Elapsed()
	assert.Equal(t, "00:00:00", got)
	assert.False(t, frozen)

	clk.Advance(75 * time.Second)
	got, _ = et.Elapsed()
	assert.Equal(t, "00:01:15", got)

	s = et.Stop()
	assert.False(t, s.IsRunning)
	require.NotNil(t, s.EndTime)
	assert.Equal(t, epoch, *s.StartTime)

	clk.Advance(time.Hour)
	got, frozen = et.Elapsed()
	assert.Equal(t, "00:01:15", got)
	assert.True(t, frozen)
}

func TestEventTimer_RestartResets(t *testing.T) {
	clk := clock.NewFake(epoch)
	et := NewEventTimer(clk)

	first := et.Start()
	clk.Advance(time.Minute)
	et.Stop()
	clk.Advance(time.Minute)
	second := et.Start()

	assert.True(t, second.IsRunning)
	assert.Nil(t, second.EndTime)
	require.NotNil(t, second.StartTime)
	assert.False(t, second.StartTime.Before(*first.StartTime))
	assert.Equal(t, epoch.Add(2*time.Minute), *second.StartTime)
}

func TestEventTimer_StartWhileRunningResets(t *testing.T) {
	clk := clock.NewFake(epoch)
	et := NewEventTimer(clk)

	et.Start()
	clk.Advance(time.Minute)
	s := et.Start()

	assert.True(t, s.IsRunning)
	assert.Equal(t, epoch.Add(time.Minute), *s.StartTime)
	assert.Nil(t, s.EndTime)
}

func TestEventTimer_StopIdleIsNoop(t *testing.T) {
	et := NewEventTimer(clock.NewFake(epoch))

	s := et.Stop()
	assert.False(t, s.IsRunning)
	assert.Nil(t, s.StartTime)
	assert.Nil(t, s.EndTime)
}

func TestEventTimer_Toggle(t *testing.T) {
	clk := clock.NewFake(epoch)
	et := NewEventTimer(clk)

	assert.True(t, et.Toggle().IsRunning)
	clk.Advance(time.Second)
	s := et.Toggle()
	assert.False(t, s.IsRunning)
	assert.NotNil(t, s.EndTime)
	assert.True(t, et.Toggle().IsRunning)
	assert.Nil(t, et.State().EndTime)
}

type recorder struct {
	mu     sync.Mutex
	values []string
}

func (r *recorder) emit(v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.values...)
}

func TestWatch_RefreshesUntilFrozen(t *testing.T) {
	clk := clock.NewFake(epoch)
	var mu sync.Mutex
	start, end := at(0), (*time.Time)(nil)
	window := func() (*time.Time, *time.Time) {
		mu.Lock()
		defer mu.Unlock()
		return start, end
	}
	rec := &recorder{}

	h := Watch(context.Background(), clk, time.Second, window, rec.emit)
	defer h.Stop()
	assert.Equal(t, []string{"00:00:00"}, rec.snapshot())

	clk.Advance(time.Second)
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, time.Second, time.Millisecond)

	mu.Lock()
	end = at(90 * time.Second)
	mu.Unlock()

	clk.Advance(time.Second)
	require.Eventually(t, func() bool { return h.Cancelled() }, time.Second, time.Millisecond)

	clk.Advance(time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, []string{"00:00:00", "00:00:01", "00:01:30"}, rec.snapshot())
}

func TestWatch_AlreadyFrozenEmitsOnce(t *testing.T) {
	clk := clock.NewFake(epoch)
	rec := &recorder{}
	window := func() (*time.Time, *time.Time) { return at(0), at(time.Hour) }

	h := Watch(context.Background(), clk, time.Second, window, rec.emit)
	defer h.Stop()

	assert.True(t, h.Cancelled())
	clk.Advance(time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, []string{"01:00:00"}, rec.snapshot())
}

func TestWatch_NoStartShowsZero(t *testing.T) {
	clk := clock.NewFake(epoch)
	rec := &recorder{}
	window := func() (*time.Time, *time.Time) { return nil, nil }

	h := Watch(context.Background(), clk, time.Second, window, rec.emit)
	h.Stop()

	assert.Equal(t, []string{"00:00:00"}, rec.snapshot())
}
