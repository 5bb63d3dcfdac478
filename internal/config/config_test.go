package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.MatchDuration != 105*time.Minute {
		t.Fatalf("unexpected MatchDuration: %s", cfg.MatchDuration)
	}
	if cfg.NotifyDebounceWindow != 250*time.Millisecond {
		t.Fatalf("unexpected NotifyDebounceWindow: %s", cfg.NotifyDebounceWindow)
	}
	if cfg.ScorerBoardSize != 10 {
		t.Fatalf("unexpected ScorerBoardSize: %d", cfg.ScorerBoardSize)
	}
	if cfg.BacklogWorkers != 4 {
		t.Fatalf("unexpected BacklogWorkers: %d", cfg.BacklogWorkers)
	}
	if !cfg.CacheEnabled {
		t.Fatalf("expected CacheEnabled=true by default")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_WebhookRequiresURLWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("WEBHOOK_ENABLED", "true")
	t.Setenv("WEBHOOK_URL", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when WEBHOOK_ENABLED=true without WEBHOOK_URL")
	}
}

func TestLoad_WebhookConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("WEBHOOK_ENABLED", "true")
	t.Setenv("WEBHOOK_URL", "https://stats.example.com/ingest")
	t.Setenv("WEBHOOK_TOKEN", "token-123")
	t.Setenv("WEBHOOK_TIMEOUT", "7s")
	t.Setenv("WEBHOOK_RETRIES", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.WebhookEnabled {
		t.Fatalf("expected WebhookEnabled=true")
	}
	if cfg.WebhookURL != "https://stats.example.com/ingest" {
		t.Fatalf("unexpected WebhookURL: %q", cfg.WebhookURL)
	}
	if cfg.WebhookToken != "token-123" {
		t.Fatalf("unexpected WebhookToken")
	}
	if cfg.WebhookTimeout != 7*time.Second {
		t.Fatalf("unexpected WebhookTimeout: %s", cfg.WebhookTimeout)
	}
	if cfg.WebhookRetries != 4 {
		t.Fatalf("unexpected WebhookRetries: %d", cfg.WebhookRetries)
	}
}

func TestLoad_InvalidDurationsRejected(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("MATCH_DURATION", "zero")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid MATCH_DURATION")
	}
}
