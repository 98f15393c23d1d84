package cache

import (
	"context"

	"github.com/kursadbilgin/notify-channel/internal/domain"
)

// Cache persists the notification store per identity so it survives client
// restarts. Implementations must treat a missing entry as an empty
// collection, not an error.
type Cache interface {
	Save(ctx context.Context, username string, notifications []domain.Notification) error
	Load(ctx context.Context, username string) ([]domain.Notification, error)
}

// Nop is used when no identity is available; cache operations are skipped
// entirely rather than written to an anonymous bucket.
type Nop struct{}

func (Nop) Save(ctx context.Context, username string, notifications []domain.Notification) error {
	return nil
}

func (Nop) Load(ctx context.Context, username string) ([]domain.Notification, error) {
	return nil, nil
}
