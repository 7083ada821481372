package config

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.SimpaskorTimeout != 10*time.Second {
			t.Errorf("expected 10s upstream timeout, got %s", cfg.SimpaskorTimeout)
		}
		if cfg.MaxUploadBytes != 2<<20 {
			t.Errorf("expected 2MiB upload limit, got %d", cfg.MaxUploadBytes)
		}
		if cfg.SimpaskorScheduleURL != "https://simpaskor.id/api/landing_page.php" {
			t.Errorf("unexpected schedule URL %s", cfg.SimpaskorScheduleURL)
		}
	})

	t.Run("environment_overrides", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("JWT_EXPIRES_IN", "2h")
		t.Setenv("SIMPASKOR_TIMEOUT", "3s")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Port != "9090" {
			t.Errorf("expected port 9090, got %s", cfg.Port)
		}
		if cfg.JWTExpirationDur != 2*time.Hour {
			t.Errorf("expected 2h, got %s", cfg.JWTExpirationDur)
		}
		if cfg.SimpaskorTimeout != 3*time.Second {
			t.Errorf("expected 3s, got %s", cfg.SimpaskorTimeout)
		}
	})

	t.Run("invalid_duration_falls_back", func(t *testing.T) {
		t.Setenv("JWT_EXPIRES_IN", "soon")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.JWTExpirationDur != 24*time.Hour {
			t.Errorf("expected 24h fallback, got %s", cfg.JWTExpirationDur)
		}
	})
}
