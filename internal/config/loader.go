// Package config reads dashboard settings from the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the dashboard service.
type Config struct {
	HTTPPort      int           `env:"HRDASH_HTTP_PORT" envDefault:"8080"`
	SQLiteDSN     string        `env:"HRDASH_SQLITE_DSN" envDefault:"file:hrdashboard.db"`
	SessionSecret string        `env:"HRDASH_SESSION_SECRET"`
	SessionTTL    time.Duration `env:"HRDASH_SESSION_TTL" envDefault:"24h"`
	SecureCookie  bool          `env:"HRDASH_SECURE_COOKIE" envDefault:"false"`

	DirectoryURL     string        `env:"HRDASH_DIRECTORY_URL" envDefault:"https://dummyjson.com"`
	DirectoryBatch   int           `env:"HRDASH_DIRECTORY_BATCH" envDefault:"20"`
	DirectoryTimeout time.Duration `env:"HRDASH_DIRECTORY_TIMEOUT" envDefault:"0s"`

	PageSize int `env:"HRDASH_PAGE_SIZE" envDefault:"9"`
	// EnrichmentSeed fixes the synthetic roster attributes; zero picks a random seed.
	EnrichmentSeed uint64 `env:"HRDASH_ENRICHMENT_SEED" envDefault:"0"`
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadDotEnv reads KEY=value pairs from the given files into the environment
// without overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to defaults. Missing required values and values
// outside their allowed range are reported together by variable name.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.SessionSecret = strings.TrimSpace(cfg.SessionSecret)
	cfg.SQLiteDSN = strings.TrimSpace(cfg.SQLiteDSN)
	cfg.DirectoryURL = strings.TrimSpace(cfg.DirectoryURL)

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 4)

	if cfg.SessionSecret == "" {
		missing = append(missing, "HRDASH_SESSION_SECRET")
	}
	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		invalid = append(invalid, "HRDASH_HTTP_PORT")
	}
	if cfg.SQLiteDSN == "" {
		invalid = append(invalid, "HRDASH_SQLITE_DSN")
	}
	if cfg.SessionTTL <= 0 {
		invalid = append(invalid, "HRDASH_SESSION_TTL")
	}
	if u, err := url.Parse(cfg.DirectoryURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		invalid = append(invalid, "HRDASH_DIRECTORY_URL")
	}
	if cfg.DirectoryBatch <= 0 {
		invalid = append(invalid, "HRDASH_DIRECTORY_BATCH")
	}
	if cfg.DirectoryTimeout < 0 {
		invalid = append(invalid, "HRDASH_DIRECTORY_TIMEOUT")
	}
	if cfg.PageSize <= 0 {
		invalid = append(invalid, "HRDASH_PAGE_SIZE")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
