package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr         string
	DataDir      string
	LogLevel     string
	JWTSecret    string
	AccessTTL    time.Duration
	DemoEmail    string
	DemoPassword string
	PollInterval time.Duration
	ErrorBackoff time.Duration
	FetchTimeout time.Duration
}

// Load reads configuration from the environment, preloading a .env file when
// one is present.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Addr:         env("VE_SERVER_ADDR", ":8080"),
		DataDir:      env("VE_DATA_DIR", "data"),
		LogLevel:     env("VE_LOG_LEVEL", "info"),
		JWTSecret:    env("VE_JWT_SECRET", "dev-change-me"),
		AccessTTL:    envDuration("VE_ACCESS_TTL", 15*time.Minute),
		DemoEmail:    env("VE_DEMO_EMAIL", "demo@editor.local"),
		DemoPassword: env("VE_DEMO_PASSWORD", "demo123456"),
		PollInterval: envDuration("VE_WORKER_POLL_INTERVAL", time.Second),
		ErrorBackoff: envDuration("VE_WORKER_ERROR_BACKOFF", 5*time.Second),
		FetchTimeout: envDuration("VE_FETCH_TIMEOUT", 30*time.Second),
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
