// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Site identity used by templates, feeds and the sitemap.
	SiteURL         string
	SiteName        string
	SiteAuthor      string
	SiteDescription string
	GAMeasurementID string

	// Content platform (GraphQL)
	HashnodeAPIURL      string
	PublicationHost     string
	HashnodeAccessToken string

	// Shared secrets. Empty means the corresponding check is skipped.
	WebhookSecret    string
	RevalidateSecret string

	// Valkey (Redis-compatible page cache). Empty host selects the in-memory cache.
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string
	PageCacheTTL   time.Duration

	// PostgreSQL connection (optional; enables audit log and subscribers)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// S3-compatible feed mirror (optional)
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string

	// Inbound API rate limiting
	RateLimitRPS   float64
	RateLimitBurst int

	// Origins allowed to post to the newsletter endpoint. Empty allows any.
	CORSOrigins []string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. A .env file in the working directory
// is loaded first when present. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not read .env file", "error", err)
	}

	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		SiteURL:         strings.TrimRight(envOrDefault("SITE_URL", "http://localhost:8080"), "/"),
		SiteName:        envOrDefault("SITE_NAME", "devfolio"),
		SiteAuthor:      envOrDefault("SITE_AUTHOR", "devfolio"),
		SiteDescription: envOrDefault("SITE_DESCRIPTION", "Notes on software, infrastructure and the craft of building things."),
		GAMeasurementID: os.Getenv("GA_MEASUREMENT_ID"),

		HashnodeAPIURL:      envOrDefault("HASHNODE_API_URL", "https://gql.hashnode.com"),
		PublicationHost:     os.Getenv("HASHNODE_PUBLICATION_HOST"),
		HashnodeAccessToken: os.Getenv("HASHNODE_ACCESS_TOKEN"),

		WebhookSecret:    os.Getenv("HASHNODE_WEBHOOK_SECRET"),
		RevalidateSecret: os.Getenv("REVALIDATE_SECRET"),

		ValkeyHost:     os.Getenv("VALKEY_HOST"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		DBHost:     os.Getenv("POSTGRES_HOST"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "devfolio"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "devfolio"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "fsn1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "devfolio-feeds"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),
	}

	ttl, err := time.ParseDuration(envOrDefault("PAGE_CACHE_TTL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("PAGE_CACHE_TTL: %w", err)
	}
	cfg.PageCacheTTL = ttl

	rps, err := strconv.ParseFloat(envOrDefault("RATE_LIMIT_RPS", "2"), 64)
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_RPS: %w", err)
	}
	cfg.RateLimitRPS = rps

	burst, err := strconv.Atoi(envOrDefault("RATE_LIMIT_BURST", "10"))
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_BURST: %w", err)
	}
	cfg.RateLimitBurst = burst

	for _, o := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	if cfg.Env == "production" {
		if cfg.PublicationHost == "" {
			return nil, fmt.Errorf("HASHNODE_PUBLICATION_HOST must be set in production")
		}
		if os.Getenv("SITE_URL") == "" {
			return nil, fmt.Errorf("SITE_URL must be set in production")
		}
		if cfg.DBHost != "" && cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// HasDatabase reports whether PostgreSQL persistence is configured.
func (c *Config) HasDatabase() bool {
	return c.DBHost != ""
}

// HasValkey reports whether the shared Valkey page cache is configured.
func (c *Config) HasValkey() bool {
	return c.ValkeyHost != ""
}

// HasFeedMirror reports whether the S3 feed mirror is configured.
func (c *Config) HasFeedMirror() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
