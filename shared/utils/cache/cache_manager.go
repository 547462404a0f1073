package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"eduadmin-backend/shared/config"
	"eduadmin-backend/shared/orgtree"
)

const (
	generationKey  = "orgdir:gen"
	snapshotPrefix = "orgdir:snapshot:"
)

var DefaultTTL = 60 * time.Second

// SnapshotCache keeps the last directory snapshot in Redis.
//
// Snapshots are stored under a key that embeds a generation counter. Writers bump the
// counter after commit, so a reader that loaded its snapshot before the commit can only
// fill the previous generation's key and never shadows the new data.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

type cachedSnapshot struct {
	Records  []orgtree.Record `json:"records"`
	CachedAt time.Time        `json:"cached_at"`
}

// NewSnapshotCache connects to Redis using cfg and verifies the connection
func NewSnapshotCache(ctx context.Context, cfg *config.Config, log *zap.Logger) (*SnapshotCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.GetRedisDB(),
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info("✅ Redis snapshot cache initialized",
		zap.String("addr", client.Options().Addr),
		zap.Int("db", cfg.GetRedisDB()))

	return NewSnapshotCacheWithClient(client, time.Duration(cfg.GetSnapshotCacheTTLSeconds())*time.Second, log), nil
}

// NewSnapshotCacheWithClient wraps an existing client
func NewSnapshotCacheWithClient(client *redis.Client, ttl time.Duration, log *zap.Logger) *SnapshotCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SnapshotCache{client: client, ttl: ttl, log: log}
}

// Generation returns the current snapshot generation
func (c *SnapshotCache) Generation(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, fmt.Errorf("cache manager not initialized")
	}
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Get returns the snapshot cached for generation gen
func (c *SnapshotCache) Get(ctx context.Context, gen int64) ([]orgtree.Record, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, snapshotKey(gen)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("❌ Snapshot cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var data cachedSnapshot
	if err := json.Unmarshal(raw, &data); err != nil {
		c.log.Warn("❌ Snapshot cache entry corrupt", zap.Error(err))
		return nil, false
	}
	return data.Records, true
}

// Set stores records as the snapshot of generation gen
func (c *SnapshotCache) Set(ctx context.Context, gen int64, records []orgtree.Record) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("cache manager not initialized")
	}

	raw, err := json.Marshal(cachedSnapshot{Records: records, CachedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := c.client.Set(ctx, snapshotKey(gen), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	c.log.Debug("🔄 Snapshot cached", zap.Int64("generation", gen), zap.Int("records", len(records)))
	return nil
}

// Invalidate moves readers to a fresh generation
func (c *SnapshotCache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("cache manager not initialized")
	}
	gen, err := c.client.Incr(ctx, generationKey).Result()
	if err != nil {
		return fmt.Errorf("failed to invalidate snapshot cache: %w", err)
	}
	c.log.Debug("🗑️ Snapshot cache invalidated", zap.Int64("generation", gen))
	return nil
}

// Close releases the Redis connection
func (c *SnapshotCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func snapshotKey(gen int64) string {
	return fmt.Sprintf("%s%d", snapshotPrefix, gen)
}
