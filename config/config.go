package config

import (
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"

	"github.com/minhzk/smarthotel-booking/logger"
)

var loadOnce sync.Once

// LoadEnv loads environment variables from a .env file if one exists.
// Safe to call from multiple init() functions.
func LoadEnv() {
	loadOnce.Do(func() {
		if logger.InfoLogger == nil {
			logger.InitLoggers()
		}
		if err := godotenv.Load(); err != nil {
			// .env is optional in production; real env vars take over.
			logger.InfoLogger.Info("No .env file found, using environment variables")
		}
	})
}

// GetEnv returns the value of key or fallback when unset.
func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetEnvInt returns the integer value of key or fallback when unset or invalid.
func GetEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.WarnLogger.Warnf("Invalid integer for %s: %q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}
