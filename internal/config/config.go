// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"PURSUE_DB_PATH" envDefault:"./data/pursue.db"`
	SessionSecret string `env:"PURSUE_SESSION_SECRET,required"`
	ServerHost    string `env:"PURSUE_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"PURSUE_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"PURSUE_ENV" envDefault:"development"`
	LogLevel      string `env:"PURSUE_LOG_LEVEL" envDefault:"info"`
	UploadsDir    string `env:"PURSUE_UPLOADS_DIR" envDefault:"./uploads"`

	// ContentBackend selects the section storage: "sql" uses the
	// site_sections table, "options" the option-bag documents kept for
	// sites migrated off WordPress.
	ContentBackend string `env:"PURSUE_CONTENT_BACKEND" envDefault:"sql"`

	// BaseURL is the externally reachable root of the site, used when
	// building the approve/deny links mailed to administrators.
	BaseURL string `env:"PURSUE_BASE_URL" envDefault:"http://localhost:8080"`

	// AdminEmails receive access-request notifications.
	AdminEmails []string `env:"PURSUE_ADMIN_EMAILS" envSeparator:","`

	// Outbound mail (best-effort; notifications are skipped when unset)
	SMTPHost string `env:"PURSUE_SMTP_HOST"`
	SMTPPort int    `env:"PURSUE_SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"PURSUE_SMTP_USER"`
	SMTPPass string `env:"PURSUE_SMTP_PASS"`
	MailFrom string `env:"PURSUE_MAIL_FROM" envDefault:"noreply@pursuegen.org"`

	// Cache configuration
	RedisURL     string `env:"PURSUE_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string `env:"PURSUE_CACHE_PREFIX" envDefault:"pursue:"` // Redis key prefix
	CacheTTL     int    `env:"PURSUE_CACHE_TTL" envDefault:"3600"`       // Default cache TTL in seconds
	CacheMaxSize int    `env:"PURSUE_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// Planning Center sync (mocked client; the schedule is real)
	PCOSyncEnabled bool `env:"PURSUE_PCO_SYNC_ENABLED" envDefault:"false"`

	// Seeding configuration
	DoSeed bool `env:"PURSUE_DO_SEED" envDefault:"false"` // Enable demo content seeding
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// MailEnabled returns true if outbound mail is configured.
func (c Config) MailEnabled() bool {
	return c.SMTPHost != "" && len(c.AdminEmails) > 0
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("PURSUE_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("PURSUE_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if cfg.ContentBackend != "sql" && cfg.ContentBackend != "options" {
		return nil, fmt.Errorf("PURSUE_CONTENT_BACKEND must be \"sql\" or \"options\", got %q", cfg.ContentBackend)
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("PURSUE_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
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
