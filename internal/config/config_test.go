package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.ServerPort == "" {
		t.Fatalf("expected default server port")
	}
	if cfg.PostgresURL == "" {
		t.Fatalf("expected default postgres url")
	}
	if cfg.RuleRefreshMin != 5 {
		t.Fatalf("expected default rule refresh")
	}
	if cfg.StatsMaxRetries != 3 {
		t.Fatalf("expected default stats retries")
	}
	if cfg.OutboxPollSec != 5 || cfg.OutboxMaxAttempts != 5 {
		t.Fatalf("expected default outbox settings")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9000")
	t.Setenv("POSTGRES_URL", "postgres://example")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("RULE_REFRESH_MINUTES", "1")
	t.Setenv("OUTBOX_MAX_ATTEMPTS", "7")

	cfg := Load()
	if cfg.ServerPort != ":9000" {
		t.Fatalf("expected override port")
	}
	if cfg.PostgresURL != "postgres://example" {
		t.Fatalf("expected override postgres")
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Fatalf("expected override redis")
	}
	if cfg.JWTSecret != "secret" {
		t.Fatalf("expected override secret")
	}
	if cfg.RuleRefreshMin != 1 {
		t.Fatalf("expected override rule refresh")
	}
	if cfg.OutboxMaxAttempts != 7 {
		t.Fatalf("expected override outbox attempts")
	}
}
