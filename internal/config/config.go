package config

import (
	"fmt"

	"github.com/Netflix/go-env"
)

// Config is the runtime configuration of the notification channel client.
// Every tunable defaults to the values the ticket-tracking backend expects,
// so an empty environment yields a working client against localhost.
type Config struct {
	ServerURL string `env:"NOTIFY_SERVER_URL,default=ws://localhost:8088/api/v1/notifications"`

	// AuthToken is the bearer token presented on connect. When empty the
	// client falls back to the OS keyring.
	AuthToken string `env:"NOTIFY_AUTH_TOKEN"`

	// CacheRedisURL selects the shared redis cache backend; when empty the
	// client persists to the local bolt file at CachePath instead.
	CacheRedisURL string `env:"NOTIFY_CACHE_REDIS_URL"`
	CachePath     string `env:"NOTIFY_CACHE_PATH,default=notify-cache.db"`

	MaxNotifications     int `env:"NOTIFY_MAX_NOTIFICATIONS,default=100"`
	MaxReconnectAttempts int `env:"NOTIFY_MAX_RECONNECT_ATTEMPTS,default=5"`
	ReconnectBaseDelayMS int `env:"NOTIFY_RECONNECT_BASE_DELAY_MS,default=3000"`
	ConnectTimeoutSec    int `env:"NOTIFY_CONNECT_TIMEOUT_SEC,default=10"`
	HeartbeatIntervalSec int `env:"NOTIFY_HEARTBEAT_INTERVAL_SEC,default=30"`

	AlertWebhookURL      string `env:"NOTIFY_ALERT_WEBHOOK_URL"`
	PushoverAppToken     string `env:"NOTIFY_PUSHOVER_APP_TOKEN"`
	PushoverUserKey      string `env:"NOTIFY_PUSHOVER_USER_KEY"`
	SoundPlayer          string `env:"NOTIFY_SOUND_PLAYER"`
	SoundDir             string `env:"NOTIFY_SOUND_DIR,default=assets/sounds"`
	AlertRateLimitPerSec int    `env:"NOTIFY_ALERT_RATE_LIMIT_PER_SEC,default=5"`

	MetricsAddr string `env:"NOTIFY_METRICS_ADDR,default=:9090"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
