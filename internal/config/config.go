package config

import "os"

// Config holds the whiteboard service settings, all sourced from environment
// variables with development defaults.
type Config struct {
	ListenAddr string
	// SSOSecret is the HS256 secret shared with the main backend that mints
	// the SSO tokens this service verifies.
	SSOSecret string
	// RedisAddr enables the presence mirror when non-empty.
	RedisAddr string
	// StaticDir is served at / and holds the whiteboard client bundle.
	StaticDir string
	// ClientURL is the main app origin allowed by CORS.
	ClientURL string
}

func Load() Config {
	return Config{
		ListenAddr: ":" + getEnvOrDefault("PORT", "3002"),
		SSOSecret:  getEnvOrDefault("SSO_SECRET", "sso-secret"),
		RedisAddr:  os.Getenv("REDIS_ADDR"),
		StaticDir:  getEnvOrDefault("STATIC_DIR", "public"),
		ClientURL:  getEnvOrDefault("MAIN_APP_URL", "http://localhost:3001"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
