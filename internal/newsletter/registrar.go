// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package newsletter

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tomtom215/zero2prod/internal/database"
	"github.com/tomtom215/zero2prod/internal/logging"
	"github.com/tomtom215/zero2prod/internal/metrics"
	"github.com/tomtom215/zero2prod/internal/models"
	"github.com/tomtom215/zero2prod/internal/newsletter/delivery"
)

// SubscriberStore persists new subscribers.
type SubscriberStore interface {
	InTx(ctx context.Context, fn func(database.SubscriberWriter) error) error
}

// Registrar accepts new subscriptions.
type Registrar struct {
	store     SubscriberStore
	channel   delivery.Channel
	templates *TemplateEngine
	baseURL   string

	// newToken is replaceable in tests.
	newToken func() (string, error)
}

// NewRegistrar creates a Registrar. baseURL is the public origin used in
// confirmation links.
func NewRegistrar(store SubscriberStore, channel delivery.Channel, templates *TemplateEngine, baseURL string) *Registrar {
	return &Registrar{
		store:     store,
		channel:   channel,
		templates: templates,
		baseURL:   baseURL,
		newToken:  GenerateSubscriptionToken,
	}
}

// Subscribe validates name and email, stores a pending subscriber with a
// fresh confirmation token, and sends the confirmation email.
//
// The subscriber and token are committed together before the email is
// sent. A send failure is reported as unexpected but the rows stay.
func (r *Registrar) Subscribe(ctx context.Context, name, email string) error {
	sub, err := models.ParseNewSubscriber(name, email)
	if err != nil {
		return &SubscribeError{Kind: SubscribeErrorValidation, Err: err}
	}

	logger := logging.CtxWith(ctx).
		Str("subscriber_email", logging.RedactEmail(sub.Email.String())).
		Logger()
	logger.Info().Msg("Adding a new subscriber")

	var (
		subscriberID uuid.UUID
		token        string
	)
	err = r.store.InTx(ctx, func(tx database.SubscriberWriter) error {
		id, err := tx.InsertSubscriber(ctx, sub)
		if err != nil {
			return err
		}
		tok, err := r.newToken()
		if err != nil {
			return err
		}
		if err := tx.StoreToken(ctx, id, tok); err != nil {
			return err
		}
		subscriberID, token = id, tok
		return nil
	})
	if err != nil {
		return &SubscribeError{Kind: SubscribeErrorUnexpected, Err: fmt.Errorf("failed to store new subscriber: %w", err)}
	}
	metrics.SubscriptionsCreated.Inc()

	if err := r.sendConfirmationEmail(ctx, sub.Email.String(), token); err != nil {
		return &SubscribeError{Kind: SubscribeErrorUnexpected, Err: err}
	}

	logger.Info().Str("subscriber_id", subscriberID.String()).Msg("New subscriber saved and confirmation email sent")
	return nil
}

func (r *Registrar) sendConfirmationEmail(ctx context.Context, recipient, token string) error {
	rendered, err := r.templates.RenderEmail(ConfirmationTemplate, map[string]any{
		"confirmation_link": ConfirmationLink(r.baseURL, token),
	})
	if err != nil {
		return fmt.Errorf("failed to render confirmation email: %w", err)
	}

	if _, err := r.channel.Send(ctx, &delivery.SendParams{
		Recipient: recipient,
		Subject:   rendered.Subject,
		BodyHTML:  rendered.BodyHTML,
		BodyText:  rendered.BodyText,
		Kind:      delivery.KindConfirmation,
	}); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}
	return nil
}
