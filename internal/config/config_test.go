package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SSO_SECRET", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("STATIC_DIR", "")
	t.Setenv("MAIN_APP_URL", "")

	cfg := Load()
	if cfg.ListenAddr != ":3002" {
		t.Fatalf("unexpected listen addr %q", cfg.ListenAddr)
	}
	if cfg.SSOSecret != "sso-secret" {
		t.Fatalf("unexpected secret %q", cfg.SSOSecret)
	}
	if cfg.RedisAddr != "" {
		t.Fatalf("redis should be disabled by default, got %q", cfg.RedisAddr)
	}
	if cfg.StaticDir != "public" {
		t.Fatalf("unexpected static dir %q", cfg.StaticDir)
	}
	if cfg.ClientURL != "http://localhost:3001" {
		t.Fatalf("unexpected client url %q", cfg.ClientURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SSO_SECRET", "prod-secret")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("STATIC_DIR", "/srv/whiteboard")
	t.Setenv("MAIN_APP_URL", "https://app.example.com")

	cfg := Load()
	if cfg.ListenAddr != ":9000" {
		t.Fatalf("unexpected listen addr %q", cfg.ListenAddr)
	}
	if cfg.SSOSecret != "prod-secret" {
		t.Fatalf("unexpected secret %q", cfg.SSOSecret)
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Fatalf("unexpected redis addr %q", cfg.RedisAddr)
	}
	if cfg.StaticDir != "/srv/whiteboard" {
		t.Fatalf("unexpected static dir %q", cfg.StaticDir)
	}
	if cfg.ClientURL != "https://app.example.com" {
		t.Fatalf("unexpected client url %q", cfg.ClientURL)
	}
}
