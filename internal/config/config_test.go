package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.DataDir != "data" {
		t.Fatalf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Backend != BackendFile {
		t.Fatalf("Backend = %q", cfg.Backend)
	}
	if cfg.MetricsEnabled {
		t.Fatal("MetricsEnabled default must be false")
	}
	if cfg.CartCreateLimitPerMin != 0 {
		t.Fatalf("CartCreateLimitPerMin = %d", cfg.CartCreateLimitPerMin)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/shop")
	t.Setenv("CART_CREATE_LIMIT_PER_MIN", "5")
	t.Setenv("METRICS_ENABLED", "true")

	cfg := Load()
	if cfg.Port != "9090" || cfg.Backend != BackendPostgres || cfg.DatabaseURL == "" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.CartCreateLimitPerMin != 5 || !cfg.MetricsEnabled {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("STORE_BACKEND", "cassandra")
	t.Setenv("CART_CREATE_LIMIT_PER_MIN", "lots")
	t.Setenv("METRICS_ENABLED", "maybe")

	cfg := Load()
	if cfg.Backend != BackendFile {
		t.Fatalf("Backend = %q, want file fallback", cfg.Backend)
	}
	if cfg.CartCreateLimitPerMin != 0 || cfg.MetricsEnabled {
		t.Fatalf("cfg = %+v", cfg)
	}
}
