// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package api

import "errors"

// Public error bodies for the confirmation endpoint.
const (
	msgInvalidToken    = "Invalid Token"
	msgUnexpectedError = "Unexpected Error"
)

// Login failure messages shown on the login page.
const (
	msgAuthenticationFailed = "Authentication failed"
	msgLoginUnexpected      = "Something went wrong. Please try again"
)

var (
	// ErrMissingField is wrapped when a required form or query field is absent.
	ErrMissingField = errors.New("missing field")

	// ErrInvalidFlashTag means a login error message failed HMAC verification.
	ErrInvalidFlashTag = errors.New("invalid flash message tag")
)
