package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds runtime settings for the bookstore service.
type Config struct {
	AppPort      string
	DatabaseFile string

	CacheType     string // "redis" or "memory"
	RedisAddr     string
	RedisPassword string

	SessionTTL time.Duration
}

// Load builds a Config from environment variables, falling back to
// development defaults.
func Load() Config {

	cfg := Config{
		AppPort:      getenv("APP_PORT", "8000"),
		DatabaseFile: getenv("DATABASE_FILE", "./bookstore.db"),

		CacheType:     getenv("CACHE_TYPE", "memory"),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		SessionTTL: time.Duration(getenvInt("SESSION_TTL_HOURS", 24)) * time.Hour,
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
