package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Storage.Mode != StorageRemote {
		t.Errorf("expected remote storage, got %q", cfg.Storage.Mode)
	}
	if !cfg.Venue.SongUnitPrice.Equal(decimal.NewFromInt(2)) {
		t.Errorf("expected unit price 2, got %s", cfg.Venue.SongUnitPrice)
	}
	if cfg.Venue.SaveEverySeconds != 15 {
		t.Errorf("expected save every 15s, got %d", cfg.Venue.SaveEverySeconds)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("expected redis addr localhost:6379, got %q", cfg.Redis.Addr)
	}
	if cfg.GetAPIBasePath() != "/api/v1" {
		t.Errorf("expected /api/v1, got %q", cfg.GetAPIBasePath())
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORAGE_MODE", "LOCAL")
	t.Setenv("LOCAL_STATE_DIR", "/tmp/karaoke")
	t.Setenv("SONG_UNIT_PRICE", "2.50")
	t.Setenv("EVENT_BROKER", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("JWT_EXPIRES_IN", "30m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !cfg.IsLocalMode() {
		t.Errorf("expected local mode, got %q", cfg.Storage.Mode)
	}
	if cfg.Storage.LocalStateDir != "/tmp/karaoke" {
		t.Errorf("expected /tmp/karaoke, got %q", cfg.Storage.LocalStateDir)
	}
	if !cfg.Venue.SongUnitPrice.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("expected 2.5, got %s", cfg.Venue.SongUnitPrice)
	}
	if len(cfg.Broker.KafkaBrokers) != 2 || cfg.Broker.KafkaBrokers[1] != "k2:9092" {
		t.Errorf("unexpected brokers %v", cfg.Broker.KafkaBrokers)
	}
	if cfg.JWT.JWTExpiresIn != 30*time.Minute {
		t.Errorf("expected 30m, got %s", cfg.JWT.JWTExpiresIn)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"STORAGE_MODE":       "cloud",
		"EVENT_BROKER":       "nats",
		"SONG_UNIT_PRICE":    "-1",
		"SAVE_EVERY_SECONDS": "0",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", key, value)
			}
		})
	}
}
