package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("VETDATA_BASE_URL", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.VetDataBaseURL != "" {
		t.Fatalf("expected default vetdata base URL empty, got %s", cfg.VetDataBaseURL)
	}
	if cfg.ZoneCheckQuietPeriod != 600*time.Millisecond {
		t.Fatalf("expected default quiet period, got %s", cfg.ZoneCheckQuietPeriod)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("expected default session TTL, got %s", cfg.SessionTTL)
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Fatalf("expected no default CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("VETDATA_BASE_URL", "https://scheduling.example.com")
	t.Setenv("PRACTICE_ID", "prac-42")
	t.Setenv("ZONE_CHECK_QUIET_PERIOD", "250ms")
	t.Setenv("SESSION_TTL", "45m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://intake.example.com, https://admin.example.com")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected env override, got %s", cfg.Env)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.VetDataBaseURL != "https://scheduling.example.com" {
		t.Fatalf("expected vetdata base URL override, got %s", cfg.VetDataBaseURL)
	}
	if cfg.PracticeID != "prac-42" {
		t.Fatalf("expected practice id override, got %s", cfg.PracticeID)
	}
	if cfg.ZoneCheckQuietPeriod != 250*time.Millisecond {
		t.Fatalf("expected quiet period override, got %s", cfg.ZoneCheckQuietPeriod)
	}
	if cfg.SessionTTL != 45*time.Minute {
		t.Fatalf("expected session TTL override, got %s", cfg.SessionTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://admin.example.com" {
		t.Fatalf("expected CORS origins override, got %v", cfg.CORSAllowedOrigins)
	}
}
