//go:build integration
// +build integration

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/ad-tracker/video-harm-classifier-go/internal/models"
)

func setupTestRedis(t *testing.T) (string, func()) {
	if err := initTestLogger(); err != nil {
		t.Fatalf("Failed to initialize test logger: %v", err)
	}

	ctx := context.Background()

	redisContainer, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("Failed to start redis container: %v", err)
	}

	url, err := redisContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	cleanup := func() {
		if err := redisContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return url, cleanup
}

func TestRedisMetadataCache_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	url, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	c := ConnectMetadataCache(ctx, url, time.Minute)
	defer c.Close()

	require.True(t, c.Enabled())
	require.NoError(t, c.Ping(ctx))

	_, ok, err := c.Get(ctx, "https://youtu.be/abc")
	require.NoError(t, err)
	assert.False(t, ok)

	meta := models.VideoMetadata{
		URL:         "https://youtu.be/abc",
		Title:       "Cooking pasta",
		Description: "A simple recipe",
		Tags:        []string{"food", "recipe"},
		ViewCount:   42,
	}
	require.NoError(t, c.Set(ctx, meta))

	got, ok, err := c.Get(ctx, meta.URL)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, meta, got)

	ttl, err := c.rdb.TTL(ctx, metadataKey(meta.URL)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestRedisMetadataCache_CorruptEntry(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	url, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	c := ConnectMetadataCache(ctx, url, time.Minute)
	defer c.Close()

	require.NoError(t, c.rdb.Set(ctx, metadataKey("bad"), "{not json", time.Minute).Err())

	_, ok, err := c.Get(ctx, "bad")
	assert.Error(t, err)
	assert.False(t, ok)
}
