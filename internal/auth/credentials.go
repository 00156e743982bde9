// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/zero2prod/internal/logging"
)

// DummyPasswordHash is verified in place of a real hash when the username
// is unknown, so both failure paths spend the same argon2 cost.
const DummyPasswordHash = "$argon2id$v=19$m=15000,t=2,p=1$" +
	"gZiV/M1gPc22ElAH/Jh1Hw$" +
	"CWOrkoo7oJBQ/iyh7uJ0LO2aLEfrHwTWllSAxT0zRno"

// CredentialStore loads the stored password hash for a username.
type CredentialStore interface {
	StoredCredentials(ctx context.Context, username string) (userID uuid.UUID, passwordHash string, found bool, err error)
}

// HashVerifier checks a password against a stored PHC hash.
// *VerifierPool is the production implementation.
type HashVerifier interface {
	Verify(ctx context.Context, hash, password string) (bool, error)
}

// CredentialValidator checks Basic credentials against the users table.
type CredentialValidator struct {
	store    CredentialStore
	pool     HashVerifier
	security *logging.SecurityLogger
}

// NewCredentialValidator creates a validator that hashes on pool.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewCredentialValidator(store CredentialStore, pool HashVerifier, logger zerolog.Logger) *CredentialValidator {
	return &CredentialValidator{
		store:    store,
		pool:     pool,
		security: logging.NewSecurityLogger(logger),
	}
}

// Validate returns the user id for valid credentials. Rejected credentials
// yield an *AuthError; any other error is unexpected.
func (v *CredentialValidator) Validate(ctx context.Context, creds Credentials, event string) (uuid.UUID, error) {
	userID, hash, found, err := v.store.StoredCredentials(ctx, creds.Username)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to retrieve stored credentials: %w", err)
	}
	if !found {
		hash = DummyPasswordHash
	}

	ok, err := v.pool.Verify(ctx, hash, creds.Password)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to verify password hash: %w", err)
	}

	securityEvent := &logging.SecurityEvent{
		Event:     event,
		Username:  creds.Username,
		IPAddress: ClientIPFromContext(ctx),
	}

	switch {
	case !found:
		securityEvent.Reason = string(AuthErrorUnknownUsername)
		v.security.LogEvent(securityEvent)
		return uuid.Nil, &AuthError{Kind: AuthErrorUnknownUsername, Err: ErrUnknownUsername}
	case !ok:
		securityEvent.UserID = userID.String()
		securityEvent.Reason = string(AuthErrorInvalidPassword)
		v.security.LogEvent(securityEvent)
		return uuid.Nil, &AuthError{Kind: AuthErrorInvalidPassword, Err: ErrInvalidPassword}
	}

	securityEvent.UserID = userID.String()
	securityEvent.Success = true
	v.security.LogEvent(securityEvent)
	return userID, nil
}
