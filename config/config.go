// Package config loads portal-cli configuration from an optional YAML
// file with PORTAL_* environment overrides. Everything has a default,
// so the tool runs with no config file at all.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all portal-cli configuration.
type Config struct {
	API    APIConfig    `koanf:"api"`
	Cache  CacheConfig  `koanf:"cache"`
	Auth   AuthConfig   `koanf:"auth"`
	Store  StoreConfig  `koanf:"store"`
	Ingest IngestConfig `koanf:"ingest"`
	Log    LogConfig    `koanf:"log"`
}

// APIConfig configures the portal API client.
type APIConfig struct {
	BaseURL string `koanf:"base_url"`
	Timeout string `koanf:"timeout"`
}

// RequestTimeout parses the configured timeout, falling back to 30s.
func (c APIConfig) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// CacheConfig configures the query cache.
type CacheConfig struct {
	TTL string `koanf:"ttl"`
}

// CacheTTL parses the configured staleness interval, falling back to 5m.
func (c CacheConfig) CacheTTL() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

// AuthConfig configures credential storage and session validation.
type AuthConfig struct {
	CredentialsPath string `koanf:"credentials_path"`
	StaleProfileTTL string `koanf:"stale_profile_ttl"`
}

// StaleTTL parses the stale-profile bound, falling back to 24h.
func (c AuthConfig) StaleTTL() time.Duration {
	d, err := time.ParseDuration(c.StaleProfileTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// StoreConfig configures the local SQLite database.
type StoreConfig struct {
	Path string `koanf:"path"`
}

// IngestConfig configures RSS ingestion.
type IngestConfig struct {
	Concurrency int `koanf:"concurrency"`
}

// LogConfig configures diagnostic logging.
type LogConfig struct {
	Level string `koanf:"level"`
}

// envKeys maps PORTAL_* environment variables onto config paths.
var envKeys = map[string]string{
	"PORTAL_API_BASE_URL":           "api.base_url",
	"PORTAL_API_TIMEOUT":            "api.timeout",
	"PORTAL_CACHE_TTL":              "cache.ttl",
	"PORTAL_AUTH_CREDENTIALS_PATH":  "auth.credentials_path",
	"PORTAL_AUTH_STALE_PROFILE_TTL": "auth.stale_profile_ttl",
	"PORTAL_STORE_PATH":             "store.path",
	"PORTAL_INGEST_CONCURRENCY":     "ingest.concurrency",
	"PORTAL_LOG_LEVEL":              "log.level",
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API:    APIConfig{BaseURL: "http://localhost:3001/api", Timeout: "30s"},
		Cache:  CacheConfig{TTL: "5m"},
		Auth:   AuthConfig{StaleProfileTTL: "24h"},
		Store:  StoreConfig{Path: defaultStorePath()},
		Ingest: IngestConfig{Concurrency: 8},
		Log:    LogConfig{Level: "info"},
	}
}

// DefaultPath returns the standard config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "portal-cli.yaml"
	}
	return filepath.Join(home, ".config", "portal-cli", "config.yaml")
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "portal-cli.db"
	}
	return filepath.Join(home, ".config", "portal-cli", "portal.db")
}

// Load reads the config file at path (the default location when path
// is empty; a missing default file is fine, a missing explicit one is
// an error), then applies PORTAL_* environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	k := koanf.New(".")

	explicit := path != ""
	if path == "" {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s not found", path)
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: "PORTAL_",
		TransformFunc: func(key, value string) (string, any) {
			// Only the known keys are honored; unknown PORTAL_*
			// variables are ignored rather than misparsed.
			return envKeys[key], value
		},
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
