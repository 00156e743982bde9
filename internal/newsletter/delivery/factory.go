// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package delivery

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/zero2prod/internal/config"
)

// NewChannel builds the configured provider channel wrapped in a
// BreakerChannel.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewChannel(ctx context.Context, cfg *config.EmailConfig, logger zerolog.Logger) (*BreakerChannel, error) {
	var inner Channel
	switch cfg.Provider {
	case config.EmailProviderPostmark, "":
		inner = NewPostmarkChannel(cfg.BaseURL, cfg.SenderEmail, cfg.AuthorizationToken, cfg.Timeout)
	case config.EmailProviderSES:
		ses, err := NewSESChannel(ctx, cfg.SESRegion, cfg.SESAccessKeyID, cfg.SESSecretAccessKey, cfg.SenderEmail, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		inner = ses
	default:
		return nil, fmt.Errorf("unknown email provider: %q", cfg.Provider)
	}

	return NewBreakerChannel(inner, BreakerSettings{
		MaxFailures: cfg.BreakerMaxFailures,
		Timeout:     cfg.BreakerTimeout,
	}, logger), nil
}
