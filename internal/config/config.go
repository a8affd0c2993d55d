// Package config reads the client's settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the client settings. It is read once at startup and treated
// as immutable.
type Config struct {
	// Backend
	APIURL string
	WebURL string

	// Session
	Home          string
	TokenOverride string
	EmailOverride string

	// HTTP
	RequestTimeout time.Duration
	RateLimit      float64
	RateBurst      int

	// Logging
	LogLevel string
}

// Load reads Config from the environment. Unparseable values fall back to
// their defaults. It only fails when no home directory can be resolved.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.APIURL = strings.TrimRight(getEnvString("SWISH_API_URL", "http://localhost:8000"), "/")
	cfg.WebURL = strings.TrimRight(getEnvString("SWISH_WEB_URL", "http://localhost:3000"), "/")

	cfg.Home = os.Getenv("SWISH_HOME")
	if cfg.Home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("config.Load: resolve home directory: %w", err)
		}
		cfg.Home = filepath.Join(home, ".swish")
	}
	cfg.TokenOverride = os.Getenv("SWISH_TOKEN")
	cfg.EmailOverride = os.Getenv("SWISH_USER_EMAIL")

	cfg.RequestTimeout = getEnvDuration("SWISH_REQUEST_TIMEOUT", 30*time.Second)
	cfg.RateLimit = getEnvFloat("SWISH_RATE_LIMIT", 5)
	cfg.RateBurst = getEnvInt("SWISH_RATE_BURST", 10)
	cfg.LogLevel = getEnvString("SWISH_LOG_LEVEL", "info")

	return cfg, nil
}

// LogPath is the file the CLI writes its logs to.
func (c *Config) LogPath() string {
	return filepath.Join(c.Home, "swish.log")
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
