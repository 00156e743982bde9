// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

// Package delivery sends email through an external provider.
//
// Two providers are supported:
//   - Postmark: JSON over HTTP to {base_url}/email
//   - SES: AWS SES v2 SendEmail
//
// Every channel is wrapped in a circuit breaker that fails fast while the
// provider is down. Channels never retry; a failed send is reported to the
// caller, which decides whether to abort.
//
// Security:
//   - Provider tokens are never logged
//   - Recipient addresses are redacted in log lines
package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Channel sends one email.
type Channel interface {
	// Name returns the channel identifier (postmark, ses).
	Name() string

	// Send delivers a single email. A non-nil error means the email was not
	// accepted by the provider; the result still carries the classification.
	Send(ctx context.Context, params *SendParams) (*DeliveryResult, error)
}

// Email kinds, used as a metrics label.
const (
	KindConfirmation = "confirmation"
	KindIssue        = "issue"
)

// SendParams contains everything needed to send one email.
type SendParams struct {
	// Recipient is the destination address.
	Recipient string

	// Subject is the subject line.
	Subject string

	// BodyHTML is the HTML part.
	BodyHTML string

	// BodyText is the plaintext part.
	BodyText string

	// Kind is KindConfirmation or KindIssue.
	Kind string
}

// DeliveryResult contains the result of a delivery attempt.
type DeliveryResult struct {
	// Success indicates if delivery was successful.
	Success bool

	// Recipient is the destination address.
	Recipient string

	// DeliveredAt is when the provider accepted the email.
	DeliveredAt *time.Time

	// ErrorMessage contains error details if failed.
	ErrorMessage string

	// ErrorCode is a machine-readable error code.
	ErrorCode string

	// ExternalID is the provider message id, if returned.
	ExternalID string

	// ResponseCode is the HTTP status from HTTP-based providers.
	ResponseCode int
}

// Error codes for delivery failures.
const (
	ErrorCodeInvalidConfig     = "INVALID_CONFIG"
	ErrorCodeConnectionFailed  = "CONNECTION_FAILED"
	ErrorCodeAuthFailed        = "AUTH_FAILED"
	ErrorCodeRateLimited       = "RATE_LIMITED"
	ErrorCodeContentTooLarge   = "CONTENT_TOO_LARGE"
	ErrorCodeRecipientNotFound = "RECIPIENT_NOT_FOUND"
	ErrorCodeServerError       = "SERVER_ERROR"
	ErrorCodeTimeout           = "TIMEOUT"
	ErrorCodeCircuitOpen       = "CIRCUIT_OPEN"
	ErrorCodeUnknown           = "UNKNOWN"
)

// ErrInvalidRecipient is returned for an empty recipient address.
var ErrInvalidRecipient = errors.New("recipient address is required")

// DeliveryError describes a send the provider did not accept.
type DeliveryError struct {
	Channel    string
	Code       string
	StatusCode int
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s delivery failed (%s, status %d): %v", e.Channel, e.Code, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s delivery failed (%s): %v", e.Channel, e.Code, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// fail fills result from a DeliveryError and returns both.
func fail(result *DeliveryResult, derr *DeliveryError) (*DeliveryResult, error) {
	result.ErrorCode = derr.Code
	result.ErrorMessage = derr.Err.Error()
	result.ResponseCode = derr.StatusCode
	return result, derr
}

// classifyHTTPError classifies a transport error into an error code.
func classifyHTTPError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorCodeTimeout
	}

	errStr := err.Error()
	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline") {
		return ErrorCodeTimeout
	}
	if strings.Contains(errStr, "connection") || strings.Contains(errStr, "refused") {
		return ErrorCodeConnectionFailed
	}

	return ErrorCodeUnknown
}

// classifyHTTPStatusCode classifies an HTTP status code into an error code.
func classifyHTTPStatusCode(code int) string {
	switch {
	case code == 401 || code == 403:
		return ErrorCodeAuthFailed
	case code == 404 || code == 422:
		return ErrorCodeRecipientNotFound
	case code == 429:
		return ErrorCodeRateLimited
	case code == 413:
		return ErrorCodeContentTooLarge
	case code >= 500:
		return ErrorCodeServerError
	default:
		return ErrorCodeUnknown
	}
}
