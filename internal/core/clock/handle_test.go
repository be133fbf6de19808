package clock

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)

func TestEvery_FiresOnEachTick(t *testing.T) {
	clk := NewFake(epoch)
	var calls atomic.Int32
	h := Every(context.Background(), clk, 2*time.Second, func(time.Time) {
		calls.Add(1)
	})
	defer h.Stop()

	for i := 1; i <= 3; i++ {
		clk.Advance(2 * time.Second)
		want := int32(i)
		require.Eventually(t, func() bool { return calls.Load() == want }, time.Second, time.Millisecond)
	}
}

func TestEvery_NoCallbackAfterStop(t *testing.T) {
	clk := NewFake(epoch)
	var calls atomic.Int32
	h := Every(context.Background(), clk, time.Second, func(time.Time) {
		calls.Add(1)
	})

	clk.Advance(time.Second)
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	h.Stop()
	assert.True(t, h.Cancelled())

	clk.Advance(time.Second)
	clk.Advance(time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestEvery_CancelFromCallback(t *testing.T) {
	clk := NewFake(epoch)
	var calls atomic.Int32
	var h *Handle
	ready := make(chan struct{})
	h = Every(context.Background(), clk, time.Second, func(time.Time) {
		<-ready
		calls.Add(1)
		h.Cancel()
	})
	close(ready)

	clk.Advance(time.Second)
	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not exit after Cancel")
	}
	clk.Advance(time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestEvery_StopsWithContext(t *testing.T) {
	clk := NewFake(epoch)
	ctx, cancel := context.WithCancel(context.Background())
	h := Every(ctx, clk, time.Second, func(time.Time) {})
	cancel()

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not exit after context cancel")
	}
	assert.True(t, h.Cancelled())
}

func TestFake_AdvanceDropsTicksForSlowReceivers(t *testing.T) {
	clk := NewFake(epoch)
	tk := clk.NewTicker(time.Second)

	clk.Advance(time.Second)
	clk.Advance(time.Second)
	clk.Advance(time.Second)

	got := <-tk.C()
	assert.Equal(t, epoch.Add(time.Second), got)
	select {
	case <-tk.C():
		t.Fatal("expected queued ticks to be dropped")
	default:
	}
	assert.Equal(t, epoch.Add(3*time.Second), clk.Now())
}
