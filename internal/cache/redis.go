package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"scouttrack/internal/core/model"
	"scouttrack/internal/core/snapshot"
)

const (
	SnapshotKey   = "scouttrack:snapshot:latest"
	AlertsChannel = "scouttrack:alerts"

	snapshotTTL = 10 * time.Minute
	opTimeout   = 2 * time.Second
)

// Cache mirrors the latest snapshot into Redis and publishes SOS
// notifications. A Cache without a client is disabled and every call is a
// no-op.
type Cache struct {
	client *redis.Client
	log    zerolog.Logger
}

// New connects to redisURL. An empty or unreachable URL yields a disabled
// cache, never an error.
func New(ctx context.Context, redisURL string, log zerolog.Logger) *Cache {
	log = log.With().Str("component", "cache").Logger()
	c := &Cache{log: log}

	if redisURL == "" {
		log.Info().Msg("Redis URL not provided, caching disabled")
		return c
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn().Err(err).Msg("failed to parse Redis URL, caching disabled")
		return c
	}

	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Msg("failed to connect to Redis, caching disabled")
		_ = client.Close()
		return c
	}

	log.Info().Msg("Redis cache initialized")
	c.client = client
	return c
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, log zerolog.Logger) *Cache {
	return &Cache{client: client, log: log.With().Str("component", "cache").Logger()}
}

func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

func (c *Cache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if !c.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, expiration).Err()
}

// Get decodes the value at key into dest. It returns redis.Nil when the
// key is absent or the cache is disabled.
func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	if !c.Enabled() {
		return redis.Nil
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Del(ctx, key).Err()
}

// Observe implements snapshot.Observer by storing the snapshot under
// SnapshotKey. Failures are logged.
func (c *Cache) Observe(s *snapshot.Snapshot) {
	if !c.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := c.Set(ctx, SnapshotKey, s, snapshotTTL); err != nil {
		c.log.Error().Err(err).Uint64("version", s.Version).Msg("failed to cache snapshot")
	}
}

// LatestSnapshot returns the cached snapshot, or nil when none is stored.
func (c *Cache) LatestSnapshot(ctx context.Context) (*snapshot.Snapshot, error) {
	var s snapshot.Snapshot
	err := c.Get(ctx, SnapshotKey, &s)
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Notify implements alert.Sink by publishing n on AlertsChannel.
func (c *Cache) Notify(ctx context.Context, n model.Notification) error {
	if !c.Enabled() {
		return nil
	}
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, AlertsChannel, data).Err()
}
