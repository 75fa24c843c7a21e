package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FORTRESS_TOKEN_SECRET", "0123456789abcdef")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.DBPath != "fortress.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.RunTTL.Minutes() != 10 {
		t.Errorf("RunTTL = %v", cfg.RunTTL)
	}
	if cfg.FinishPerMinute != 10 || cfg.StartPerMinute != 30 {
		t.Errorf("rate limits = %d/%d", cfg.FinishPerMinute, cfg.StartPerMinute)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FORTRESS_TOKEN_SECRET", "0123456789abcdef")
	t.Setenv("FORTRESS_ADDR", "127.0.0.1:9999")
	t.Setenv("FORTRESS_RUN_TTL", "5m")
	t.Setenv("FORTRESS_VERIFY_WORKERS", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9999" || cfg.RunTTL.Minutes() != 5 || cfg.VerifyWorkers != 4 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("FORTRESS_TOKEN_SECRET", "short")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "TOKEN_SECRET") {
		t.Fatalf("Load with short secret = %v, want secret length error", err)
	}
}
