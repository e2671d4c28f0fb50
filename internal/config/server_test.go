package config

import (
	"testing"
	"time"
)

func TestLoadServerDefaults(t *testing.T) {
	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.ReconnectGrace() != 60*time.Second {
		t.Fatalf("ReconnectGrace = %v, want 60s", cfg.ReconnectGrace())
	}
	if cfg.CleanupDelay() != time.Hour {
		t.Fatalf("CleanupDelay = %v, want 1h", cfg.CleanupDelay())
	}
	if cfg.ChatHistoryLimit != 50 {
		t.Fatalf("ChatHistoryLimit = %d, want 50", cfg.ChatHistoryLimit)
	}
}

func TestLoadServerParseTypes(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost:5432/diamond?sslmode=disable")
	t.Setenv("RECONNECT_GRACE_SECONDS", "5")
	t.Setenv("CLEANUP_DELAY_MINUTES", "30")
	t.Setenv("ALLOW_ANY_ORIGIN", "false")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.PostgresDSN == "" {
		t.Fatal("PostgresDSN not parsed")
	}
	if cfg.ReconnectGrace() != 5*time.Second {
		t.Fatalf("ReconnectGrace = %v, want 5s", cfg.ReconnectGrace())
	}
	if cfg.CleanupDelay() != 30*time.Minute {
		t.Fatalf("CleanupDelay = %v, want 30m", cfg.CleanupDelay())
	}
	if cfg.AllowAnyOrigin {
		t.Fatal("AllowAnyOrigin = true, want false")
	}
}
