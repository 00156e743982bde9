// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package config

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
)

// Validate checks that the loaded configuration is usable.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateApp,
		c.validateDatabase,
		c.validateEmail,
		c.validateSecurity,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535, got %d", c.Server.Port)
	}
	return nil
}

func (c *Config) validateApp() error {
	if err := validateHTTPURL(c.App.BaseURL); err != nil {
		return fmt.Errorf("app.base_url: %w", err)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.URL != "" {
		return nil
	}
	if c.Database.Host == "" || c.Database.Name == "" {
		return errors.New("database.url or database.host and database.name are required")
	}
	if c.Database.AcquireTimeout <= 0 {
		return errors.New("database.acquire_timeout must be positive")
	}
	return nil
}

func (c *Config) validateEmail() error {
	if _, err := mail.ParseAddress(c.Email.SenderEmail); err != nil {
		return fmt.Errorf("email.sender_email is not a valid address: %w", err)
	}

	switch strings.ToLower(c.Email.Provider) {
	case EmailProviderPostmark:
		if err := validateHTTPURL(c.Email.BaseURL); err != nil {
			return fmt.Errorf("email.base_url: %w", err)
		}
		if c.Email.AuthorizationToken == "" {
			return errors.New("email.authorization_token is required for the postmark provider")
		}
		if c.Email.Timeout <= 0 {
			return errors.New("email.timeout must be positive")
		}
	case EmailProviderSES:
		if c.Email.SESRegion == "" {
			return errors.New("email.ses_region is required for the ses provider")
		}
		if (c.Email.SESAccessKeyID == "") != (c.Email.SESSecretAccessKey == "") {
			return errors.New("email.ses_access_key_id and email.ses_secret_access_key must be set together")
		}
	default:
		return fmt.Errorf("email.provider must be %q or %q, got %q", EmailProviderPostmark, EmailProviderSES, c.Email.Provider)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if len(c.Security.HMACSecret) < 32 {
		return errors.New("security.hmac_secret must be at least 32 characters")
	}
	if c.Security.HashWorkers < 1 {
		return errors.New("security.hash_workers must be at least 1")
	}
	if c.Security.LoginRateLimitRequests < 1 || c.Security.LoginRateLimitWindow <= 0 {
		return errors.New("security.login_rate_limit_requests and login_rate_limit_window must be positive")
	}
	return nil
}

func validateHTTPURL(raw string) error {
	if raw == "" {
		return errors.New("is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("must have a host")
	}
	return nil
}
