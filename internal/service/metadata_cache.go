package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ad-tracker/video-harm-classifier-go/internal/models"
	"github.com/ad-tracker/video-harm-classifier-go/pkg/logger"
)

const (
	metadataKeyPrefix  = "video_metadata:"
	DefaultMetadataTTL = time.Hour
)

// RedisMetadataCache is a cache-aside layer for extracted metadata. With a
// nil client every lookup misses and every store is dropped.
type RedisMetadataCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisMetadataCache wraps an existing client.
func NewRedisMetadataCache(rdb *redis.Client, ttl time.Duration) *RedisMetadataCache {
	if ttl <= 0 {
		ttl = DefaultMetadataTTL
	}
	return &RedisMetadataCache{rdb: rdb, ttl: ttl}
}

// ConnectMetadataCache dials redisURL. An empty URL, a bad URL or a failed
// ping all produce a disabled cache rather than an error.
func ConnectMetadataCache(ctx context.Context, redisURL string, ttl time.Duration) *RedisMetadataCache {
	if redisURL == "" {
		logger.L().Info("Redis URL not configured, metadata caching disabled")
		return NewRedisMetadataCache(nil, ttl)
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.L().Warn("Invalid Redis URL, metadata caching disabled", zap.Error(err))
		return NewRedisMetadataCache(nil, ttl)
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.L().Warn("Redis connection failed, metadata caching disabled", zap.Error(err))
		_ = rdb.Close()
		return NewRedisMetadataCache(nil, ttl)
	}

	logger.L().Info("Connected to Redis, metadata caching enabled", zap.Duration("ttl", ttl))
	return NewRedisMetadataCache(rdb, ttl)
}

// Enabled reports whether a Redis client is attached.
func (c *RedisMetadataCache) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Get returns the cached metadata for videoURL, if any.
func (c *RedisMetadataCache) Get(ctx context.Context, videoURL string) (models.VideoMetadata, bool, error) {
	if !c.Enabled() {
		return models.VideoMetadata{}, false, nil
	}

	data, err := c.rdb.Get(ctx, metadataKey(videoURL)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.VideoMetadata{}, false, nil
	}
	if err != nil {
		return models.VideoMetadata{}, false, fmt.Errorf("failed to read cached metadata: %w", err)
	}

	var meta models.VideoMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return models.VideoMetadata{}, false, fmt.Errorf("failed to decode cached metadata: %w", err)
	}
	return meta, true, nil
}

// Set stores meta under its URL.
func (c *RedisMetadataCache) Set(ctx context.Context, meta models.VideoMetadata) error {
	if !c.Enabled() {
		return nil
	}

	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	if err := c.rdb.Set(ctx, metadataKey(meta.URL), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache metadata: %w", err)
	}
	return nil
}

// Client exposes the underlying connection, nil when disabled.
func (c *RedisMetadataCache) Client() *redis.Client {
	if !c.Enabled() {
		return nil
	}
	return c.rdb
}

// Ping checks the Redis connection. A disabled cache is always healthy.
func (c *RedisMetadataCache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

func (c *RedisMetadataCache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}

func metadataKey(videoURL string) string {
	return metadataKeyPrefix + videoURL
}
