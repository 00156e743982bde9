// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package newsletter

import "errors"

// SubscribeErrorKind classifies a failed subscription.
type SubscribeErrorKind string

const (
	SubscribeErrorValidation SubscribeErrorKind = "validation"
	SubscribeErrorUnexpected SubscribeErrorKind = "unexpected"
)

// SubscribeError is returned by Registrar.Subscribe.
type SubscribeError struct {
	Kind SubscribeErrorKind
	Err  error
}

func (e *SubscribeError) Error() string { return e.Err.Error() }
func (e *SubscribeError) Unwrap() error { return e.Err }

// ConfirmErrorKind classifies a failed confirmation.
type ConfirmErrorKind string

const (
	ConfirmErrorUnknownToken ConfirmErrorKind = "unknown_token"
	ConfirmErrorUnexpected   ConfirmErrorKind = "unexpected"
)

// ErrUnknownToken means no subscriber is bound to the presented token.
var ErrUnknownToken = errors.New("there is no subscriber associated with the provided token")

// ConfirmError is returned by Confirmer.Confirm.
type ConfirmError struct {
	Kind ConfirmErrorKind
	Err  error
}

func (e *ConfirmError) Error() string { return e.Err.Error() }
func (e *ConfirmError) Unwrap() error { return e.Err }

// PublishErrorKind classifies a failed publish.
type PublishErrorKind string

const (
	PublishErrorAuth       PublishErrorKind = "auth"
	PublishErrorInProgress PublishErrorKind = "in_progress"
	PublishErrorUnexpected PublishErrorKind = "unexpected"
)

// ErrPublishInProgress means the same issue is already being fanned out.
var ErrPublishInProgress = errors.New("this issue is already being published")

// PublishError is returned by Publisher.Publish.
type PublishError struct {
	Kind PublishErrorKind
	Err  error
}

func (e *PublishError) Error() string { return e.Err.Error() }
func (e *PublishError) Unwrap() error { return e.Err }
