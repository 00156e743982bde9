// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package newsletter

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tomtom215/zero2prod/internal/auth"
	"github.com/tomtom215/zero2prod/internal/distlock"
	"github.com/tomtom215/zero2prod/internal/logging"
	"github.com/tomtom215/zero2prod/internal/metrics"
	"github.com/tomtom215/zero2prod/internal/models"
	"github.com/tomtom215/zero2prod/internal/newsletter/delivery"
)

// Publish outcomes, used as a metrics label.
const (
	outcomeSuccess    = "success"
	outcomeAuthFailed = "auth_failed"
	outcomeInProgress = "in_progress"
	outcomeFailed     = "failed"
)

// CredentialChecker authenticates a publisher.
type CredentialChecker interface {
	Validate(ctx context.Context, creds auth.Credentials, event string) (uuid.UUID, error)
}

// RecipientStore lists confirmed subscribers.
type RecipientStore interface {
	ConfirmedSubscriberEmails(ctx context.Context) ([]string, error)
}

// Publisher sends an issue to every confirmed subscriber.
type Publisher struct {
	credentials CredentialChecker
	recipients  RecipientStore
	manager     *delivery.Manager
	locker      distlock.Locker
}

// NewPublisher creates a Publisher. locker may be nil, in which case
// concurrent publishes of the same issue are not deduplicated and every
// request fans out.
func NewPublisher(credentials CredentialChecker, recipients RecipientStore, manager *delivery.Manager, locker distlock.Locker) *Publisher {
	return &Publisher{
		credentials: credentials,
		recipients:  recipients,
		manager:     manager,
		locker:      locker,
	}
}

// Publish authenticates creds and fans issue out to all confirmed
// subscribers. Stored addresses that no longer parse are logged and
// skipped. Sends are sequential and the first failure aborts the rest.
func (p *Publisher) Publish(ctx context.Context, creds auth.Credentials, issue models.NewsletterIssue) error {
	userID, err := p.credentials.Validate(ctx, creds, "publish_auth")
	if err != nil {
		if auth.IsAuthError(err) {
			metrics.RecordPublish(outcomeAuthFailed)
			return &PublishError{Kind: PublishErrorAuth, Err: err}
		}
		metrics.RecordPublish(outcomeFailed)
		return &PublishError{Kind: PublishErrorUnexpected, Err: err}
	}
	ctx = auth.ContextWithSubject(ctx, &auth.Subject{UserID: userID, Username: creds.Username})

	if p.locker != nil {
		release, acquired := p.lock(ctx, issue)
		if !acquired {
			metrics.RecordPublish(outcomeInProgress)
			return &PublishError{Kind: PublishErrorInProgress, Err: ErrPublishInProgress}
		}
		defer release()
	}

	if err := p.fanOut(ctx, issue); err != nil {
		metrics.RecordPublish(outcomeFailed)
		return &PublishError{Kind: PublishErrorUnexpected, Err: err}
	}
	metrics.RecordPublish(outcomeSuccess)
	return nil
}

// lock takes the per-issue lock. acquired is false only when another
// holder owns it. A lock backend failure is logged and the publish goes
// ahead unlocked.
func (p *Publisher) lock(ctx context.Context, issue models.NewsletterIssue) (release func(), acquired bool) {
	logger := logging.Ctx(ctx)
	lock := p.locker.NewLock("publish:" + issue.Fingerprint())

	ok, err := lock.Acquire(ctx)
	if err != nil {
		logger.Warn().Err(err).Str("backend", p.locker.Backend()).Msg("Publish lock unavailable, publishing without it")
		return func() {}, true
	}
	if !ok {
		return nil, false
	}
	return func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn().Err(err).Msg("Failed to release publish lock")
		}
	}, true
}

func (p *Publisher) fanOut(ctx context.Context, issue models.NewsletterIssue) error {
	logger := logging.Ctx(ctx)

	stored, err := p.recipients.ConfirmedSubscriberEmails(ctx)
	if err != nil {
		return fmt.Errorf("failed to get confirmed subscribers: %w", err)
	}

	recipients := make([]string, 0, len(stored))
	for _, raw := range stored {
		email, err := models.ParseSubscriberEmail(raw)
		if err != nil {
			metrics.RecipientsSkipped.Inc()
			logger.Warn().
				Err(err).
				Str("subscriber_email", logging.RedactEmail(raw)).
				Msg("Skipping a confirmed subscriber. Their stored contact details are invalid")
			continue
		}
		recipients = append(recipients, email.String())
	}

	_, err = p.manager.Deliver(ctx, &delivery.DeliveryRequest{
		DeliveryID:      uuid.NewString(),
		Recipients:      recipients,
		RenderedSubject: issue.Title,
		RenderedHTML:    issue.Content.HTML,
		RenderedText:    issue.Content.Text,
	})
	if err != nil {
		return err
	}
	return nil
}

// IsInProgress reports whether err is a PublishError of kind in_progress.
func IsInProgress(err error) bool {
	var perr *PublishError
	return errors.As(err, &perr) && perr.Kind == PublishErrorInProgress
}
