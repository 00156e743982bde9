// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/zero2prod/config.yaml",
	"/etc/zero2prod/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		App: AppConfig{
			BaseURL: "http://127.0.0.1:8000",
		},
		Database: DatabaseConfig{
			Host:            "127.0.0.1",
			Port:            5432,
			Username:        "postgres",
			Password:        "password",
			Name:            "newsletter",
			RequireSSL:      false,
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			AcquireTimeout:  2 * time.Second,
			InitSchema:      true,
		},
		Email: EmailConfig{
			Provider:           EmailProviderPostmark,
			BaseURL:            "http://localhost:8025",
			Timeout:            10 * time.Second,
			SESRegion:          "us-east-1",
			BreakerMaxFailures: 5,
			BreakerTimeout:     30 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:            []string{"*"},
			LoginRateLimitRequests: 10,
			LoginRateLimitWindow:   time.Minute,
			HashWorkers:            2,
			PublishLockTTL:         10 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration from defaults, an optional YAML file and the
// environment, in that order of increasing precedence, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// DATABASE_URL -> database.url, EMAIL_AUTHORIZATION_TOKEN -> email.authorization_token
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "" when none exists.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated env values.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps flat environment variable names to koanf paths.
var envMappings = map[string]string{
	"http_host":             "server.host",
	"http_port":             "server.port",
	"port":                  "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	"app_base_url": "app.base_url",

	"database_url":               "database.url",
	"database_host":              "database.host",
	"database_port":              "database.port",
	"database_username":          "database.username",
	"database_password":          "database.password",
	"database_name":              "database.name",
	"database_require_ssl":       "database.require_ssl",
	"database_max_open_conns":    "database.max_open_conns",
	"database_max_idle_conns":    "database.max_idle_conns",
	"database_conn_max_lifetime": "database.conn_max_lifetime",
	"database_acquire_timeout":   "database.acquire_timeout",
	"database_init_schema":       "database.init_schema",

	"email_provider":              "email.provider",
	"email_sender":                "email.sender_email",
	"email_base_url":              "email.base_url",
	"email_authorization_token":   "email.authorization_token",
	"email_timeout":               "email.timeout",
	"email_ses_region":            "email.ses_region",
	"email_ses_access_key_id":     "email.ses_access_key_id",
	"email_ses_secret_access_key": "email.ses_secret_access_key",
	"email_breaker_max_failures":  "email.breaker_max_failures",
	"email_breaker_timeout":       "email.breaker_timeout",

	"redis_url": "redis.url",

	"hmac_secret":               "security.hmac_secret",
	"cors_origins":              "security.cors_origins",
	"login_rate_limit_requests": "security.login_rate_limit_requests",
	"login_rate_limit_window":   "security.login_rate_limit_window",
	"hash_workers":              "security.hash_workers",
	"publish_lock_enabled":      "security.publish_lock_enabled",
	"publish_lock_ttl":          "security.publish_lock_ttl",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc returns "" for unmapped variables so unrelated
// environment entries never reach the config.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
