// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package auth

import "errors"

// AuthErrorKind classifies a rejected credential.
type AuthErrorKind string

const (
	// AuthErrorMalformedHeader means the Authorization header could not be parsed.
	AuthErrorMalformedHeader AuthErrorKind = "malformed_header"

	// AuthErrorUnknownUsername means no user has the supplied username.
	AuthErrorUnknownUsername AuthErrorKind = "unknown_username"

	// AuthErrorInvalidPassword means the password did not match.
	AuthErrorInvalidPassword AuthErrorKind = "invalid_password"
)

var (
	// ErrUnknownUsername is the cause of an AuthErrorUnknownUsername.
	ErrUnknownUsername = errors.New("unknown username")

	// ErrInvalidPassword is the cause of an AuthErrorInvalidPassword.
	ErrInvalidPassword = errors.New("invalid password")
)

// AuthError is returned when a caller's credentials are rejected. Any
// other error from this package is unexpected and maps to a 500.
type AuthError struct {
	Kind AuthErrorKind
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return "authentication failed: " + string(e.Kind)
	}
	return "authentication failed: " + e.Err.Error()
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err is, or wraps, an *AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
