// FilePath: internal/cache/cache.go
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/espview/hub/internal/config"
	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

// ImageCache keeps the most recent compressed frame per device in Redis so
// latest-image reads skip Postgres. Cache misses and Redis outages fall
// back to the database; the cache is never authoritative.
type ImageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewImageCache connects to Redis. Returns an error only if the initial
// ping fails; transient failures later degrade to cache misses.
func NewImageCache(cfg config.RedisConfig) (*ImageCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("error connecting to Redis: %w", err)
	}

	nuts.L.Infof("[ImageCache] Connected to %s:%d", cfg.Host, cfg.Port)
	return &ImageCache{client: client, ttl: cfg.ImageTTL}, nil
}

func key(deviceID string) string {
	return "espview:latest_image:" + deviceID
}

// SetLatest stores the newest frame for a device. Failures are logged and
// swallowed; the durable copy already lives in Postgres.
func (c *ImageCache) SetLatest(ctx context.Context, deviceID string, image []byte) {
	if err := c.client.Set(ctx, key(deviceID), image, c.ttl).Err(); err != nil {
		nuts.L.Warnf("[ImageCache] Failed to cache latest image for device %s: %v", deviceID, err)
	}
}

// Latest returns the cached newest frame, or (nil, false) on miss or error.
func (c *ImageCache) Latest(ctx context.Context, deviceID string) ([]byte, bool) {
	data, err := c.client.Get(ctx, key(deviceID)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		nuts.L.Warnf("[ImageCache] Lookup failed for device %s: %v", deviceID, err)
		return nil, false
	}
	return data, true
}

// Close releases the Redis connection.
func (c *ImageCache) Close() error {
	return c.client.Close()
}
