package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var allKeys = []string{
	"HRDASH_HTTP_PORT",
	"HRDASH_SQLITE_DSN",
	"HRDASH_SESSION_SECRET",
	"HRDASH_SESSION_TTL",
	"HRDASH_SECURE_COOKIE",
	"HRDASH_DIRECTORY_URL",
	"HRDASH_DIRECTORY_BATCH",
	"HRDASH_DIRECTORY_TIMEOUT",
	"HRDASH_PAGE_SIZE",
	"HRDASH_ENRICHMENT_SEED",
}

// clearEnv unsets every dashboard variable and restores them after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

func TestLoader_ParseEnvironment(t *testing.T) {
	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnv(t)
		const secret = "super-secret"
		t.Setenv("HRDASH_SESSION_SECRET", secret)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 || cfg.Addr() != ":8080" {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:hrdashboard.db" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionSecret != secret || cfg.SessionTTL != 24*time.Hour || cfg.SecureCookie {
			t.Fatalf("unexpected session settings: %+v", cfg)
		}
		if cfg.DirectoryURL != "https://dummyjson.com" || cfg.DirectoryBatch != 20 || cfg.DirectoryTimeout != 0 {
			t.Fatalf("unexpected directory settings: %+v", cfg)
		}
		if cfg.PageSize != 9 || cfg.EnrichmentSeed != 0 {
			t.Fatalf("unexpected roster settings: %+v", cfg)
		}
	})

	t.Run("errors when required values are missing", func(t *testing.T) {
		clearEnv(t)

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		expected := "missing required environment variables: HRDASH_SESSION_SECRET"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("parses duration and numeric fields", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("HRDASH_SESSION_SECRET", "secret-value")
		t.Setenv("HRDASH_HTTP_PORT", "9090")
		t.Setenv("HRDASH_SQLITE_DSN", "file:/tmp/hr.db")
		t.Setenv("HRDASH_SESSION_TTL", "90m")
		t.Setenv("HRDASH_SECURE_COOKIE", "true")
		t.Setenv("HRDASH_DIRECTORY_URL", "http://localhost:4000")
		t.Setenv("HRDASH_DIRECTORY_BATCH", "50")
		t.Setenv("HRDASH_DIRECTORY_TIMEOUT", "5s")
		t.Setenv("HRDASH_PAGE_SIZE", "12")
		t.Setenv("HRDASH_ENRICHMENT_SEED", "42")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		want := Config{
			HTTPPort:         9090,
			SQLiteDSN:        "file:/tmp/hr.db",
			SessionSecret:    "secret-value",
			SessionTTL:       90 * time.Minute,
			SecureCookie:     true,
			DirectoryURL:     "http://localhost:4000",
			DirectoryBatch:   50,
			DirectoryTimeout: 5 * time.Second,
			PageSize:         12,
			EnrichmentSeed:   42,
		}
		if cfg != want {
			t.Fatalf("unexpected config:\n got %+v\nwant %+v", cfg, want)
		}
	})

	t.Run("reports invalid values by name", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("HRDASH_SESSION_SECRET", "secret-value")
		t.Setenv("HRDASH_HTTP_PORT", "-1")
		t.Setenv("HRDASH_PAGE_SIZE", "0")
		t.Setenv("HRDASH_DIRECTORY_URL", "ftp://files")

		_, err := Load()
		if err == nil {
			t.Fatal("expected validation error")
		}
		expected := "invalid environment variable values: HRDASH_HTTP_PORT, HRDASH_DIRECTORY_URL, HRDASH_PAGE_SIZE"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("wraps parse failures", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("HRDASH_SESSION_SECRET", "secret-value")
		t.Setenv("HRDASH_SESSION_TTL", "forever")

		_, err := Load()
		if err == nil || !strings.HasPrefix(err.Error(), "parse env:") {
			t.Fatalf("expected parse env error, got %v", err)
		}
	})
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("HRDASH_HTTP_PORT", "7000")

	path := filepath.Join(t.TempDir(), ".env")
	content := "HRDASH_SESSION_SECRET=from-file\nHRDASH_HTTP_PORT=6000\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv returned error: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.SessionSecret != "from-file" {
		t.Fatalf("expected secret from file, got %q", cfg.SessionSecret)
	}
	if cfg.HTTPPort != 7000 {
		t.Fatalf("existing environment must win over the file, got port %d", cfg.HTTPPort)
	}
}
