// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package newsletter

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tomtom215/zero2prod/internal/logging"
	"github.com/tomtom215/zero2prod/internal/metrics"
)

// TokenStore resolves confirmation tokens and confirms subscribers.
type TokenStore interface {
	SubscriberIDFromToken(ctx context.Context, token string) (uuid.UUID, bool, error)
	ConfirmSubscriber(ctx context.Context, subscriberID uuid.UUID) error
}

// Confirmer flips pending subscribers to confirmed.
type Confirmer struct {
	store TokenStore
}

// NewConfirmer creates a Confirmer.
func NewConfirmer(store TokenStore) *Confirmer {
	return &Confirmer{store: store}
}

// Confirm marks the subscriber bound to token as confirmed. Tokens stay
// valid after use, so confirming twice succeeds both times.
func (c *Confirmer) Confirm(ctx context.Context, token string) error {
	subscriberID, found, err := c.store.SubscriberIDFromToken(ctx, token)
	if err != nil {
		return &ConfirmError{Kind: ConfirmErrorUnexpected, Err: fmt.Errorf("failed to retrieve the subscriber id: %w", err)}
	}
	if !found {
		return &ConfirmError{Kind: ConfirmErrorUnknownToken, Err: ErrUnknownToken}
	}

	if err := c.store.ConfirmSubscriber(ctx, subscriberID); err != nil {
		return &ConfirmError{Kind: ConfirmErrorUnexpected, Err: fmt.Errorf("failed to update the subscriber status: %w", err)}
	}
	metrics.SubscriptionsConfirmed.Inc()

	logging.Ctx(ctx).Info().Str("subscriber_id", subscriberID.String()).Msg("Subscriber confirmed")
	return nil
}
