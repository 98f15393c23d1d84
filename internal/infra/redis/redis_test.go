package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestNewRedis(t *testing.T) {
	t.Parallel()

	server := miniredis.RunT(t)

	client, err := NewRedis("redis://" + server.Addr())
	if err != nil {
		t.Fatalf("NewRedis() error = %v", err)
	}
	defer client.Close()

	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
}

func TestNewRedisInvalidURL(t *testing.T) {
	t.Parallel()

	if _, err := NewRedis("not-a-redis-url"); err == nil {
		t.Fatal("NewRedis() with malformed url succeeded, want error")
	}
}

func TestNewRedisUnreachableServer(t *testing.T) {
	t.Parallel()

	server := miniredis.RunT(t)
	addr := server.Addr()
	server.Close()

	if _, err := NewRedis("redis://" + addr); err == nil {
		t.Fatal("NewRedis() against closed server succeeded, want error")
	}
}
