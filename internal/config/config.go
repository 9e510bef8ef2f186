// Package config loads the immutable service configuration from the
// environment once at startup. Components receive it at construction time;
// nothing else in the codebase reads environment variables.
package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds every externally supplied setting.
type Config struct {
	Addr string // listen address, default :8080
	Env  string // "production" enables Secure cookie attributes

	// SessionSecret signs session tokens. Required: startup fails without it.
	SessionSecret string

	// InitToken guards the one-shot bootstrap endpoint. Optional; the
	// endpoint is disabled when empty.
	InitToken string

	PostgresDSN string // empty means in-memory account store (dev only)
	RedisAddr   string // empty means in-process rate-limit counters
}

// ErrMissingSecret is returned when VITRINA_AUTH_SECRET is not set. There is
// no insecure fallback: the process must not start without a signing secret.
var ErrMissingSecret = errors.New("config: VITRINA_AUTH_SECRET is required")

// Load reads configuration from the environment. A .env file in the working
// directory is merged in when present (development convenience).
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:          getEnv("VITRINA_ADDR", ":8080"),
		Env:           getEnv("VITRINA_ENV", "development"),
		SessionSecret: strings.TrimSpace(os.Getenv("VITRINA_AUTH_SECRET")),
		InitToken:     strings.TrimSpace(os.Getenv("VITRINA_INIT_TOKEN")),
		PostgresDSN:   os.Getenv("VITRINA_PG_DSN"),
		RedisAddr:     os.Getenv("VITRINA_REDIS_ADDR"),
	}

	if cfg.SessionSecret == "" {
		return Config{}, ErrMissingSecret
	}
	return cfg, nil
}

// Production reports whether Secure cookie attributes must be set.
func (c Config) Production() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
