// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the application configuration from environment
// variables into an immutable struct constructed once at process start and
// injected into every component that needs it.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// MinSessionSecretLength is the minimum required length for the session
// secret. AES-256 requires 32 bytes minimum for secure encryption.
const MinSessionSecretLength = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"GATEHOUSE_DB_PATH" envDefault:"./data/gatehouse.db"`
	SessionSecret string `env:"GATEHOUSE_SESSION_SECRET,required"`
	ServerHost    string `env:"GATEHOUSE_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"GATEHOUSE_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"GATEHOUSE_ENV" envDefault:"development"`
	LogLevel      string `env:"GATEHOUSE_LOG_LEVEL" envDefault:"info"`

	// SessionLifetime bounds how long a login survives without re-auth.
	SessionLifetime time.Duration `env:"GATEHOUSE_SESSION_LIFETIME" envDefault:"24h"`

	// Pepper rotation. One entry per month slot; the slot is selected by the
	// account's creation month, so entries must never be reordered once any
	// user exists.
	Peppers []string `env:"GATEHOUSE_PEPPERS,required" envSeparator:","`

	// Admin bootstrap credentials, seeded on first start.
	AdminEmail    string `env:"GATEHOUSE_ADMIN_EMAIL" envDefault:"admin@example.com"`
	AdminPassword string `env:"GATEHOUSE_ADMIN_PASSWORD,required"`

	// Per-route rate budgets, requests per second with burst.
	APIRateLimit   float64 `env:"GATEHOUSE_API_RATE_LIMIT" envDefault:"10"`
	APIRateBurst   int     `env:"GATEHOUSE_API_RATE_BURST" envDefault:"20"`
	AuthRateLimit  float64 `env:"GATEHOUSE_AUTH_RATE_LIMIT" envDefault:"0.5"`
	AuthRateBurst  int     `env:"GATEHOUSE_AUTH_RATE_BURST" envDefault:"5"`
	LoginThreshold int     `env:"GATEHOUSE_LOGIN_THRESHOLD" envDefault:"5"`

	// GeoIP configuration. Empty path disables country lookups (fail open).
	GeoIPDBPath string `env:"GATEHOUSE_GEOIP_DB_PATH"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// GeoIPEnabled returns true if a GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("GATEHOUSE_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("GATEHOUSE_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	for i, pepper := range cfg.Peppers {
		if strings.TrimSpace(pepper) == "" {
			return nil, fmt.Errorf("GATEHOUSE_PEPPERS entry %d is empty", i)
		}
	}

	if cfg.LoginThreshold <= 0 {
		return nil, fmt.Errorf("GATEHOUSE_LOGIN_THRESHOLD must be positive, got %d", cfg.LoginThreshold)
	}

	if cfg.SessionLifetime <= 0 {
		return nil, fmt.Errorf("GATEHOUSE_SESSION_LIFETIME must be positive, got %s", cfg.SessionLifetime)
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("GATEHOUSE_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character
// classes (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
