// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/zero2prod/internal/logging"
)

// Manager fans one issue out to a list of recipients over a single channel.
// Sends are sequential, in recipient order, and the first failure stops the
// fan-out; recipients already sent to are not rolled back.
type Manager struct {
	channel Channel
}

// NewManager creates a delivery manager over channel.
func NewManager(channel Channel) *Manager {
	return &Manager{channel: channel}
}

// DeliveryRequest is one rendered issue and its recipients.
type DeliveryRequest struct {
	// DeliveryID correlates the log lines of one fan-out.
	DeliveryID string

	// Recipients are already-validated addresses.
	Recipients []string

	// RenderedSubject is the subject line.
	RenderedSubject string

	// RenderedHTML is the HTML content.
	RenderedHTML string

	// RenderedText is the plaintext content.
	RenderedText string
}

// DeliveryReport summarizes a fan-out.
type DeliveryReport struct {
	// DeliveryID is the unique delivery identifier.
	DeliveryID string

	// TotalRecipients is the total number of recipients.
	TotalRecipients int

	// SuccessfulDeliveries is the count of successful deliveries.
	SuccessfulDeliveries int

	// FailedRecipient is the address whose send aborted the fan-out.
	FailedRecipient string

	// Results contains per-recipient delivery results, in send order.
	Results []DeliveryResult

	// StartedAt is when delivery started.
	StartedAt time.Time

	// CompletedAt is when delivery completed.
	CompletedAt time.Time

	// DurationMS is the total delivery duration in milliseconds.
	DurationMS int64
}

// Deliver sends the issue to every recipient. The returned error wraps the
// failing send; the report is always non-nil.
func (m *Manager) Deliver(ctx context.Context, req *DeliveryRequest) (*DeliveryReport, error) {
	report := &DeliveryReport{
		DeliveryID:      req.DeliveryID,
		TotalRecipients: len(req.Recipients),
		StartedAt:       time.Now(),
	}
	logger := logging.CtxWith(ctx).
		Str("delivery_id", req.DeliveryID).
		Str("channel", m.channel.Name()).
		Logger()

	logger.Info().
		Int("recipients", len(req.Recipients)).
		Msg("Starting newsletter delivery")

	finish := func() {
		report.CompletedAt = time.Now()
		report.DurationMS = report.CompletedAt.Sub(report.StartedAt).Milliseconds()
	}

	for _, recipient := range req.Recipients {
		if err := ctx.Err(); err != nil {
			finish()
			return report, fmt.Errorf("delivery canceled: %w", err)
		}

		result, err := m.channel.Send(ctx, &SendParams{
			Recipient: recipient,
			Subject:   req.RenderedSubject,
			BodyHTML:  req.RenderedHTML,
			BodyText:  req.RenderedText,
			Kind:      KindIssue,
		})
		if result != nil {
			report.Results = append(report.Results, *result)
		}
		if err != nil {
			report.FailedRecipient = recipient
			finish()
			logger.Error().
				Err(err).
				Str("recipient", logging.RedactEmail(recipient)).
				Int("successful", report.SuccessfulDeliveries).
				Msg("Delivery failed, aborting fan-out")
			return report, fmt.Errorf("failed to send newsletter issue to %s: %w", logging.RedactEmail(recipient), err)
		}
		report.SuccessfulDeliveries++
	}

	finish()
	logger.Info().
		Int("successful", report.SuccessfulDeliveries).
		Int64("duration_ms", report.DurationMS).
		Msg("Newsletter delivery completed")
	return report, nil
}
