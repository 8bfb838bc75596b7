package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DAYTRACE_ENVIRONMENT", "DAYTRACE_BOT_TOKEN", "DAYTRACE_TIMEZONE",
		"DAYTRACE_HTTP_PORT", "DAYTRACE_DB_DRIVER", "DAYTRACE_SQLITE_PATH",
		"DAYTRACE_POSTGRES_DSN", "DAYTRACE_DISPATCH_SHARDS",
	} {
		_ = os.Unsetenv(k)
	}
	t.Setenv("DAYTRACE_DATA_DIR", t.TempDir())
}

func TestConfigLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("unexpected default driver: %s", cfg.DBDriver)
	}
	if cfg.SQLitePath == "" {
		t.Fatalf("sqlite path should be derived when unset")
	}
	if cfg.Timezone != "UTC" || cfg.Location() != time.UTC {
		t.Fatalf("unexpected default timezone: %s", cfg.Timezone)
	}
	if cfg.HTTPPort != 8080 {
		t.Fatalf("unexpected default port: %d", cfg.HTTPPort)
	}
	if cfg.GetHTTPAddr() != ":8080" {
		t.Fatalf("unexpected http addr: %s", cfg.GetHTTPAddr())
	}
}

func TestConfigLoad_EnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("DAYTRACE_DB_DRIVER", "memory")
	t.Setenv("DAYTRACE_TIMEZONE", "Europe/Berlin")
	t.Setenv("DAYTRACE_HTTP_PORT", "9999")

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.DBDriver != "memory" {
		t.Fatalf("driver override failed, got %s", cfg.DBDriver)
	}
	if cfg.Location().String() != "Europe/Berlin" {
		t.Fatalf("timezone override failed, got %s", cfg.Location())
	}
	if cfg.HTTPPort != 9999 {
		t.Fatalf("port override failed, got %d", cfg.HTTPPort)
	}
}

func TestConfigLoad_RejectsUnknownDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("DAYTRACE_DB_DRIVER", "spanner")

	if _, err := New(); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestConfigLoad_RejectsBadTimezone(t *testing.T) {
	clearEnv(t)
	t.Setenv("DAYTRACE_TIMEZONE", "Mars/Olympus")

	if _, err := New(); err == nil {
		t.Fatalf("expected error for unknown timezone")
	}
}

func TestConfigLoad_PostgresRequiresNothingUpFront(t *testing.T) {
	// DSN presence is checked by the store factory, not config load.
	clearEnv(t)
	t.Setenv("DAYTRACE_DB_DRIVER", "postgres")

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.PostgresDSN != "" {
		t.Fatalf("unexpected DSN: %s", cfg.PostgresDSN)
	}
}

func TestDataDirHonorsOverride(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	t.Setenv("DAYTRACE_DATA_DIR", dir)

	got, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir: %v", err)
	}
	if got != dir {
		t.Fatalf("DataDir override failed: got %s want %s", got, dir)
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		t.Fatalf("DataDir should create the directory: %v", err)
	}
}

func TestNewForTesting(t *testing.T) {
	cfg := NewForTesting()
	if !cfg.IsTesting() || cfg.IsProduction() {
		t.Fatalf("unexpected environment: %s", cfg.Environment)
	}
	if cfg.DBDriver != "memory" {
		t.Fatalf("testing config should use the memory driver, got %s", cfg.DBDriver)
	}
}
