package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scouttrack/internal/core/model"
	"scouttrack/internal/core/snapshot"
)

func TestNew_DisabledWithoutURL(t *testing.T) {
	c := New(context.Background(), "", zerolog.Nop())
	assert.False(t, c.Enabled())
}

func TestNew_DisabledOnBadURL(t *testing.T) {
	c := New(context.Background(), "not a url", zerolog.Nop())
	assert.False(t, c.Enabled())
}

func TestNew_DisabledWhenUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	c := New(ctx, "redis://127.0.0.1:1/0", zerolog.Nop())
	assert.False(t, c.Enabled())
}

func TestDisabledCacheIsNoop(t *testing.T) {
	c := New(context.Background(), "", zerolog.Nop())
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "k", 1, time.Minute))
	assert.ErrorIs(t, c.Get(ctx, "k", new(int)), redis.Nil)
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.Notify(ctx, model.Notification{ID: "n1"}))
	assert.NotPanics(t, func() { c.Observe(&snapshot.Snapshot{Version: 1}) })
	assert.NoError(t, c.Close())

	s, err := c.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestNilCacheIsDisabled(t *testing.T) {
	var c *Cache
	assert.False(t, c.Enabled())
	assert.NoError(t, c.Close())
}

func TestNewWithClient_NilClient(t *testing.T) {
	c := NewWithClient(nil, zerolog.Nop())
	assert.False(t, c.Enabled())
	assert.NoError(t, c.Notify(context.Background(), model.Notification{ID: "n1"}))
}
