package config

import (
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")
	t.Setenv("SECRET_KEY", "s3cr3t")
	t.Setenv("ACCESS_TOKEN_TTL", "2m")
	t.Setenv("REFRESH_TOKEN_TTL", "72h")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	t.Setenv("RATE_LIMIT_ME_CALLS", "7")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AccessTokenTTL != 2*time.Minute {
		t.Fatalf("AccessTokenTTL want 2m, got %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 72*time.Hour {
		t.Fatalf("RefreshTokenTTL want 72h, got %v", cfg.RefreshTokenTTL)
	}
	if cfg.RateLimitMeCalls != 7 {
		t.Fatalf("RateLimitMeCalls want 7, got %d", cfg.RateLimitMeCalls)
	}
	if len(cfg.CORSAllowOrigins) != 2 || cfg.CORSAllowOrigins[1] != "https://admin.example.com" {
		t.Fatalf("bad origins: %v", cfg.CORSAllowOrigins)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")
	t.Setenv("SECRET_KEY", "s3cr3t")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ResetTokenTTL != time.Hour {
		t.Fatalf("ResetTokenTTL want 1h, got %v", cfg.ResetTokenTTL)
	}
	if cfg.CacheUserTTL != 5*time.Minute {
		t.Fatalf("CacheUserTTL want 5m, got %v", cfg.CacheUserTTL)
	}
	if cfg.RateLimitMeCalls != 5 || cfg.RateLimitMeWindow != time.Minute {
		t.Fatalf("limiter defaults wrong: %d/%v", cfg.RateLimitMeCalls, cfg.RateLimitMeWindow)
	}
	if cfg.RedisAddress != "" {
		t.Fatalf("redis must default to unset, got %q", cfg.RedisAddress)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")
	t.Setenv("SECRET_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing SECRET_KEY")
	}
}
