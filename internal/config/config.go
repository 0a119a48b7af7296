// Package config provides runtime configuration values for the service.
package config

import (
	"os"
	"strconv"
)

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Config holds configuration knobs for HTTP server and storage.
type Config struct {
	Port        string
	DataDir     string
	Backend     string
	DatabaseURL string

	MetricsEnabled bool
	MetricsToken   string

	// CartCreateLimitPerMin caps per-IP cart creation; 0 disables the limiter.
	CartCreateLimitPerMin int
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolenv(key string, def bool) bool {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// Load collects configuration from environment with defaults.
func Load() Config {
	backend := getenv("STORE_BACKEND", BackendFile)
	if backend != BackendFile && backend != BackendPostgres {
		backend = BackendFile
	}

	return Config{
		Port:                  getenv("PORT", "8080"),
		DataDir:               getenv("DATA_DIR", "data"),
		Backend:               backend,
		DatabaseURL:           getenv("DATABASE_URL", ""),
		MetricsEnabled:        boolenv("METRICS_ENABLED", false),
		MetricsToken:          getenv("METRICS_TOKEN", ""),
		CartCreateLimitPerMin: atoienv("CART_CREATE_LIMIT_PER_MIN", 0),
	}
}
