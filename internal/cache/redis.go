package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kursadbilgin/notify-channel/internal/domain"
)

// RedisCache stores per-user notification lists in redis, shared across
// client instances of the same user.
type RedisCache struct {
	client *goredis.Client
}

func NewRedisCache(client *goredis.Client) (*RedisCache, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Save(ctx context.Context, username string, notifications []domain.Notification) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("cache is not initialized")
	}
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("username is required")
	}

	payload, err := json.Marshal(notifications)
	if err != nil {
		return fmt.Errorf("failed to encode notifications: %w", err)
	}

	if err := c.client.Set(ctx, cacheKey(username), payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to save notifications for %q: %w", username, err)
	}

	return nil
}

func (c *RedisCache) Load(ctx context.Context, username string) ([]domain.Notification, error) {
	if c == nil || c.client == nil {
		return nil, fmt.Errorf("cache is not initialized")
	}
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("username is required")
	}

	payload, err := c.client.Get(ctx, cacheKey(username)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load notifications for %q: %w", username, err)
	}

	var notifications []domain.Notification
	if err := json.Unmarshal(payload, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode cached notifications for %q: %w", username, err)
	}

	return notifications, nil
}

func cacheKey(username string) string {
	return "notifications:" + username
}
