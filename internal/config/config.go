// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

// Package config loads and validates service configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in defaults from defaultConfig()
//  2. Config File: optional YAML file (CONFIG_PATH or DefaultConfigPaths)
//  3. Environment Variables: flat names such as DATABASE_URL or APP_BASE_URL
//
// Config is immutable after Load() and safe for concurrent reads.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	App      AppConfig      `koanf:"app"`
	Database DatabaseConfig `koanf:"database"`
	Email    EmailConfig    `koanf:"email"`
	Redis    RedisConfig    `koanf:"redis"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"` // not applied to POST /newsletters
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// AppConfig holds settings about how the service is reached from outside.
type AppConfig struct {
	// BaseURL is the public URL used to build confirmation links.
	BaseURL string `koanf:"base_url"`
}

// DatabaseConfig holds PostgreSQL connection settings.
//
// URL takes precedence; otherwise the DSN is assembled from the discrete
// fields.
type DatabaseConfig struct {
	URL        string `koanf:"url"`
	Host       string `koanf:"host"`
	Port       int    `koanf:"port"`
	Username   string `koanf:"username"`
	Password   string `koanf:"password"`
	Name       string `koanf:"name"`
	RequireSSL bool   `koanf:"require_ssl"`

	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`

	// AcquireTimeout bounds how long a request waits for a pooled connection.
	AcquireTimeout time.Duration `koanf:"acquire_timeout"`

	// InitSchema creates the tables on startup when they are missing.
	InitSchema bool `koanf:"init_schema"`
}

// DSN returns the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	sslMode := "disable"
	if d.RequireSSL {
		sslMode = "require"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.Username, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + sslMode,
	}
	return u.String()
}

// Email providers.
const (
	EmailProviderPostmark = "postmark"
	EmailProviderSES      = "ses"
)

// EmailConfig holds the transactional email provider settings.
type EmailConfig struct {
	// Provider selects the backend: postmark or ses.
	Provider string `koanf:"provider"`

	// SenderEmail is the From address on every outgoing email.
	SenderEmail string `koanf:"sender_email"`

	// BaseURL and AuthorizationToken configure the Postmark-compatible API.
	BaseURL            string        `koanf:"base_url"`
	AuthorizationToken string        `koanf:"authorization_token"`
	Timeout            time.Duration `koanf:"timeout"`

	// SES settings. Empty credentials fall back to the default AWS chain.
	SESRegion          string `koanf:"ses_region"`
	SESAccessKeyID     string `koanf:"ses_access_key_id"`
	SESSecretAccessKey string `koanf:"ses_secret_access_key"`

	// BreakerMaxFailures consecutive failures open the circuit for BreakerTimeout.
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// RedisConfig holds the optional Redis connection used for publish locks.
// An empty URL selects PostgreSQL advisory locks instead.
type RedisConfig struct {
	URL string `koanf:"url"`
}

// SecurityConfig holds authentication and abuse-protection settings.
type SecurityConfig struct {
	// HMACSecret signs the error message carried in login redirects.
	HMACSecret string `koanf:"hmac_secret"`

	CORSOrigins []string `koanf:"cors_origins"`

	LoginRateLimitRequests int           `koanf:"login_rate_limit_requests"`
	LoginRateLimitWindow   time.Duration `koanf:"login_rate_limit_window"`

	// HashWorkers is the number of goroutines verifying password hashes.
	HashWorkers int `koanf:"hash_workers"`

	// PublishLockEnabled makes a second publish of an issue that is still
	// fanning out return 409 instead of sending it again. Off by default.
	PublishLockEnabled bool `koanf:"publish_lock_enabled"`

	// PublishLockTTL bounds how long an issue stays locked if the holder dies.
	PublishLockTTL time.Duration `koanf:"publish_lock_ttl"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
