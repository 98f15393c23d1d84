package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ServerURL != "ws://localhost:8088/api/v1/notifications" {
		t.Errorf("ServerURL = %s, want ws://localhost:8088/api/v1/notifications", cfg.ServerURL)
	}
	if cfg.MaxNotifications != 100 {
		t.Errorf("MaxNotifications = %d, want 100", cfg.MaxNotifications)
	}
	if cfg.MaxReconnectAttempts != 5 {
		t.Errorf("MaxReconnectAttempts = %d, want 5", cfg.MaxReconnectAttempts)
	}
	if cfg.ReconnectBaseDelayMS != 3000 {
		t.Errorf("ReconnectBaseDelayMS = %d, want 3000", cfg.ReconnectBaseDelayMS)
	}
	if cfg.ConnectTimeoutSec != 10 {
		t.Errorf("ConnectTimeoutSec = %d, want 10", cfg.ConnectTimeoutSec)
	}
	if cfg.HeartbeatIntervalSec != 30 {
		t.Errorf("HeartbeatIntervalSec = %d, want 30", cfg.HeartbeatIntervalSec)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want info", cfg.LogLevel)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("NOTIFY_SERVER_URL", "wss://tickets.example.com/api/v1/notifications")
	t.Setenv("NOTIFY_MAX_RECONNECT_ATTEMPTS", "3")
	t.Setenv("NOTIFY_RECONNECT_BASE_DELAY_MS", "500")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ServerURL != "wss://tickets.example.com/api/v1/notifications" {
		t.Errorf("ServerURL = %s, want custom value", cfg.ServerURL)
	}
	if cfg.MaxReconnectAttempts != 3 {
		t.Errorf("MaxReconnectAttempts = %d, want 3", cfg.MaxReconnectAttempts)
	}
	if cfg.ReconnectBaseDelayMS != 500 {
		t.Errorf("ReconnectBaseDelayMS = %d, want 500", cfg.ReconnectBaseDelayMS)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
}

func TestLoad_OptionalSinksEmptyByDefault(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.AlertWebhookURL != "" {
		t.Errorf("AlertWebhookURL = %s, want empty", cfg.AlertWebhookURL)
	}
	if cfg.PushoverAppToken != "" {
		t.Errorf("PushoverAppToken = %s, want empty", cfg.PushoverAppToken)
	}
	if cfg.SoundPlayer != "" {
		t.Errorf("SoundPlayer = %s, want empty", cfg.SoundPlayer)
	}
}
