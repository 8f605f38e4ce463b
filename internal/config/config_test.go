package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/X-CodesTech/qAudio-sub000/internal/config"
)

func TestMustLoadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
env: prod
http:
  address: ":9090"
realtime:
  buzzer_ttl: 3s
  monitor_interval: 30s
  stale_after: 1m
  chat_history: 50
chat_log:
  dsn: "host=db user=qaudio dbname=chat"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := config.MustLoadPath(path)
	if cfg.Env != "prod" {
		t.Fatalf("expected env prod, got %s", cfg.Env)
	}
	if cfg.HTTP.Address != ":9090" {
		t.Fatalf("expected address :9090, got %s", cfg.HTTP.Address)
	}
	if cfg.Realtime.BuzzerTTL != 3*time.Second {
		t.Fatalf("expected 3s buzzer ttl, got %s", cfg.Realtime.BuzzerTTL)
	}
	if cfg.Realtime.ChatHistory != 50 {
		t.Fatalf("expected chat history 50, got %d", cfg.Realtime.ChatHistory)
	}
	if cfg.ChatLog.DSN == "" {
		t.Fatalf("expected dsn loaded")
	}
}

func TestMustLoadPathDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("env: local\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := config.MustLoadPath(path)
	if cfg.Realtime.BuzzerTTL != 10*time.Second {
		t.Fatalf("expected default 10s buzzer ttl, got %s", cfg.Realtime.BuzzerTTL)
	}
	if cfg.Realtime.MonitorInterval != 2*time.Minute || cfg.Realtime.StaleAfter != 5*time.Minute {
		t.Fatalf("unexpected liveness defaults: %+v", cfg.Realtime)
	}
	if cfg.HTTP.Address != ":8080" {
		t.Fatalf("expected default address, got %s", cfg.HTTP.Address)
	}
}
