package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kursadbilgin/notify-channel/internal/alert"
	"github.com/kursadbilgin/notify-channel/internal/cache"
	"github.com/kursadbilgin/notify-channel/internal/channel"
	"github.com/kursadbilgin/notify-channel/internal/config"
	"github.com/kursadbilgin/notify-channel/internal/identity"
	infraredis "github.com/kursadbilgin/notify-channel/internal/infra/redis"
	"github.com/kursadbilgin/notify-channel/internal/observability"
	"github.com/kursadbilgin/notify-channel/internal/ratelimit"
	"github.com/kursadbilgin/notify-channel/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger", zap.Error(err))
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()
	go serveMetrics(cfg.MetricsAddr, metrics, logger)

	provider, err := buildIdentityProvider(cfg)
	if err != nil {
		logger.Fatal("identity provider initialization failed", zap.Error(err))
	}
	username := provider.Username()

	cacheBackend, limiter := buildCacheAndLimiter(cfg, logger)
	if closer, ok := cacheBackend.(interface{ Close() error }); ok {
		defer closer.Close() //nolint:errcheck
	}

	notifications := store.New(cfg.MaxNotifications, cacheBackend, username, metrics, logger)

	sinks := buildSinks(cfg, logger)
	dispatcher := alert.NewDispatcher(sinks, limiter, metrics, logger)
	notifications.OnIngest(dispatcher.Notify)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notifications.Hydrate(ctx)

	policy := channel.NewPolicy(time.Duration(cfg.ReconnectBaseDelayMS)*time.Millisecond, cfg.MaxReconnectAttempts)
	manager, err := channel.NewManager(
		cfg.ServerURL,
		provider,
		notifications,
		policy,
		time.Duration(cfg.ConnectTimeoutSec)*time.Second,
		time.Duration(cfg.HeartbeatIntervalSec)*time.Second,
		metrics,
		logger,
	)
	if err != nil {
		logger.Fatal("channel manager initialization failed", zap.Error(err))
	}

	logger.Info("notify-channel started",
		zap.String("endpoint", cfg.ServerURL),
		zap.String("username", username),
		zap.Int("sinks", len(sinks)),
	)

	if err := manager.Connect(ctx); err != nil {
		// Transport failures already scheduled a retry; credential and
		// exhaustion failures need the operator.
		logger.Warn("initial connect failed", zap.Error(err))
	}

	go logNotificationStream(ctx, notifications, logger)
	go logStatusStream(ctx, manager, logger)

	<-ctx.Done()

	logger.Info("shutting down")
	manager.Disconnect()
}

func buildIdentityProvider(cfg *config.Config) (identity.Provider, error) {
	if cfg.AuthToken != "" {
		return identity.NewStatic(cfg.AuthToken), nil
	}
	return identity.OpenKeyring()
}

// buildCacheAndLimiter selects the durable cache backend: redis when
// configured, the local bolt file otherwise, no-op as the last resort. The
// alert rate limiter rides on the same redis client when present.
func buildCacheAndLimiter(cfg *config.Config, logger *zap.Logger) (cache.Cache, ratelimit.RateLimiter) {
	if cfg.CacheRedisURL != "" {
		client, err := infraredis.NewRedis(cfg.CacheRedisURL)
		if err != nil {
			logger.Fatal("redis initialization failed", zap.Error(err))
		}

		redisCache, err := cache.NewRedisCache(client)
		if err != nil {
			logger.Fatal("redis cache initialization failed", zap.Error(err))
		}

		var limiter ratelimit.RateLimiter
		if cfg.AlertRateLimitPerSec > 0 {
			alertLimiter, err := infraredis.NewAlertRateLimiter(client, cfg.AlertRateLimitPerSec)
			if err != nil {
				logger.Fatal("alert rate limiter initialization failed", zap.Error(err))
			}
			limiter = alertLimiter
		}

		return redisCache, limiter
	}

	boltCache, err := cache.NewBoltCache(cfg.CachePath)
	if err != nil {
		logger.Warn("bolt cache unavailable, notifications will not survive restarts",
			zap.String("path", cfg.CachePath),
			zap.Error(err),
		)
		return cache.Nop{}, nil
	}

	return boltCache, nil
}

func buildSinks(cfg *config.Config, logger *zap.Logger) []alert.Alerter {
	var sinks []alert.Alerter

	if cfg.AlertWebhookURL != "" {
		sink, err := alert.NewWebhookSink(cfg.AlertWebhookURL)
		if err != nil {
			logger.Warn("webhook sink disabled", zap.Error(err))
		} else {
			sinks = append(sinks, sink)
		}
	}

	if cfg.PushoverAppToken != "" && cfg.PushoverUserKey != "" {
		sink, err := alert.NewPushoverSink(cfg.PushoverAppToken, cfg.PushoverUserKey)
		if err != nil {
			logger.Warn("pushover sink disabled", zap.Error(err))
		} else {
			sinks = append(sinks, sink)
		}
	}

	if cfg.SoundPlayer != "" {
		sink, err := alert.NewSoundSink(cfg.SoundPlayer, cfg.SoundDir)
		if err != nil {
			logger.Warn("sound sink disabled", zap.Error(err))
		} else {
			sinks = append(sinks, sink)
		}
	}

	return sinks
}

func serveMetrics(addr string, metrics *observability.Metrics, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn("metrics endpoint stopped", zap.Error(err))
	}
}

func logNotificationStream(ctx context.Context, notifications *store.Store, logger *zap.Logger) {
	updates, cancel := notifications.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case snapshot, ok := <-updates:
			if !ok {
				return
			}
			logger.Info("notifications updated",
				zap.Int("total", len(snapshot)),
				zap.Int("unread", store.UnreadCount(snapshot)),
			)
		}
	}
}

func logStatusStream(ctx context.Context, manager *channel.Manager, logger *zap.Logger) {
	updates, cancel := manager.SubscribeStatus()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case status, ok := <-updates:
			if !ok {
				return
			}
			logger.Info("connection status changed",
				zap.Bool("connected", status.IsConnected),
				zap.Int("reconnect_attempts", status.ReconnectAttempts),
			)
		}
	}
}
