package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/kursadbilgin/notify-channel/internal/domain"
)

const (
	notificationsBucket = "notifications"
	boltOpenTimeout     = time.Second
)

// BoltCache stores per-user notification lists in a local bolt file, the
// client-side analog of browser storage.
type BoltCache struct {
	db *bolt.DB
}

func NewBoltCache(path string) (*BoltCache, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("cache path is required")
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: boltOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache file %q: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(notificationsBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare cache bucket: %w", err)
	}

	return &BoltCache{db: db}, nil
}

func (c *BoltCache) Save(ctx context.Context, username string, notifications []domain.Notification) error {
	if c == nil || c.db == nil {
		return fmt.Errorf("cache is not initialized")
	}
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("username is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(notifications)
	if err != nil {
		return fmt.Errorf("failed to encode notifications: %w", err)
	}

	err = c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(notificationsBucket)).Put([]byte(username), payload)
	})
	if err != nil {
		return fmt.Errorf("failed to save notifications for %q: %w", username, err)
	}

	return nil
}

func (c *BoltCache) Load(ctx context.Context, username string) ([]domain.Notification, error) {
	if c == nil || c.db == nil {
		return nil, fmt.Errorf("cache is not initialized")
	}
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("username is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var payload []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket([]byte(notificationsBucket)).Get([]byte(username))
		if value != nil {
			payload = append([]byte(nil), value...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load notifications for %q: %w", username, err)
	}

	if payload == nil {
		return nil, nil
	}

	var notifications []domain.Notification
	if err := json.Unmarshal(payload, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode cached notifications for %q: %w", username, err)
	}

	return notifications, nil
}

func (c *BoltCache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}
