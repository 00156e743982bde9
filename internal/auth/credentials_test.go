// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package auth

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/zero2prod/internal/logging"
)

type storedUser struct {
	id   uuid.UUID
	hash string
}

type fakeCredentialStore struct {
	users map[string]storedUser
	err   error
}

func (s *fakeCredentialStore) StoredCredentials(_ context.Context, username string) (uuid.UUID, string, bool, error) {
	if s.err != nil {
		return uuid.Nil, "", false, s.err
	}
	u, ok := s.users[username]
	if !ok {
		return uuid.Nil, "", false, nil
	}
	return u.id, u.hash, true, nil
}

func newTestValidator(t *testing.T, store CredentialStore, logger zerolog.Logger) *CredentialValidator {
	t.Helper()
	pool := NewVerifierPool(2, NewPasswordHasher(testParams))
	t.Cleanup(pool.Close)
	return NewCredentialValidator(store, pool, logger)
}

func TestCredentialValidator_Validate(t *testing.T) {
	t.Parallel()

	hash, err := NewPasswordHasher(testParams).Hash("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	adminID := uuid.New()
	store := &fakeCredentialStore{users: map[string]storedUser{"admin": {id: adminID, hash: hash}}}
	v := newTestValidator(t, store, zerolog.Nop())

	tests := []struct {
		name     string
		creds    Credentials
		wantID   uuid.UUID
		wantKind AuthErrorKind
	}{
		{"valid", Credentials{Username: "admin", Password: "s3cret"}, adminID, ""},
		{"wrong password", Credentials{Username: "admin", Password: "nope"}, uuid.Nil, AuthErrorInvalidPassword},
		{"unknown user", Credentials{Username: "ghost", Password: "s3cret"}, uuid.Nil, AuthErrorUnknownUsername},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := v.Validate(context.Background(), tt.creds, "publish_auth")

			if tt.wantKind == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
			} else {
				var authErr *AuthError
				if !errors.As(err, &authErr) {
					t.Fatalf("Validate() error = %v, want *AuthError", err)
				}
				if authErr.Kind != tt.wantKind {
					t.Errorf("Kind = %q, want %q", authErr.Kind, tt.wantKind)
				}
			}
			if id != tt.wantID {
				t.Errorf("id = %v, want %v", id, tt.wantID)
			}
		})
	}
}

func TestCredentialValidator_StoreErrorIsUnexpected(t *testing.T) {
	t.Parallel()

	store := &fakeCredentialStore{err: errors.New("connection refused")}
	v := newTestValidator(t, store, zerolog.Nop())

	_, err := v.Validate(context.Background(), Credentials{Username: "admin", Password: "x"}, "publish_auth")
	if err == nil {
		t.Fatal("expected error")
	}
	if IsAuthError(err) {
		t.Errorf("store failure must not be an *AuthError: %v", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("cause chain lost: %v", err)
	}
}

// countingVerifier records every hash handed to the inner verifier.
type countingVerifier struct {
	inner  HashVerifier
	hashes []string
}

func (c *countingVerifier) Verify(ctx context.Context, hash, password string) (bool, error) {
	c.hashes = append(c.hashes, hash)
	return c.inner.Verify(ctx, hash, password)
}

func TestCredentialValidator_UnknownUserStillHashes(t *testing.T) {
	t.Parallel()

	hash, err := NewPasswordHasher(testParams).Hash("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	store := &fakeCredentialStore{users: map[string]storedUser{"admin": {id: uuid.New(), hash: hash}}}
	pool := NewVerifierPool(1, NewPasswordHasher(testParams))
	t.Cleanup(pool.Close)

	tests := []struct {
		name     string
		username string
		wantHash string
	}{
		{"unknown user", "ghost", DummyPasswordHash},
		{"wrong password", "admin", hash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			counter := &countingVerifier{inner: pool}
			v := NewCredentialValidator(store, counter, zerolog.Nop())

			_, err := v.Validate(context.Background(), Credentials{Username: tt.username, Password: "wrong"}, "login")
			if !IsAuthError(err) {
				t.Fatalf("Validate() error = %v, want *AuthError", err)
			}
			if len(counter.hashes) != 1 {
				t.Fatalf("verifications = %d, want exactly 1", len(counter.hashes))
			}
			if counter.hashes[0] != tt.wantHash {
				t.Errorf("verified against %q, want %q", counter.hashes[0], tt.wantHash)
			}
		})
	}
}

func TestCredentialValidator_LogsSecurityEvents(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	store := &fakeCredentialStore{users: map[string]storedUser{}}
	v := newTestValidator(t, store, logging.NewTestLogger(&buf))

	ctx := ContextWithClientIP(context.Background(), "203.0.113.7")
	_, _ = v.Validate(ctx, Credentials{Username: "ghost", Password: "x"}, "login")

	out := buf.String()
	for _, want := range []string{`"event":"login"`, `"status":"failed"`, `"reason":"unknown_username"`, `"ip":"203.0.113.7"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s: %s", want, out)
		}
	}
	if strings.Contains(out, `"password"`) {
		t.Error("password must never be logged")
	}
}

func TestVerifierPool_ContextCanceled(t *testing.T) {
	t.Parallel()

	pool := NewVerifierPool(1, NewPasswordHasher(testParams))
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pool.Verify(ctx, DummyPasswordHash, "x")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Verify() error = %v, want context.Canceled", err)
	}
}

func TestVerifierPool_Closed(t *testing.T) {
	t.Parallel()

	pool := NewVerifierPool(1, NewPasswordHasher(testParams))
	pool.Close()
	pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := pool.Verify(ctx, DummyPasswordHash, "x")
	if !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Verify() error = %v, want ErrPoolClosed", err)
	}
}

func TestVerifierPool_Concurrent(t *testing.T) {
	t.Parallel()

	hasher := NewPasswordHasher(testParams)
	hash, err := hasher.Hash("pw")
	if err != nil {
		t.Fatal(err)
	}
	pool := NewVerifierPool(3, hasher)
	defer pool.Close()

	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		go func() {
			ok, err := pool.Verify(context.Background(), hash, "pw")
			if err == nil && !ok {
				err = errors.New("expected match")
			}
			errs <- err
		}()
	}
	for i := 0; i < 20; i++ {
		if err := <-errs; err != nil {
			t.Error(err)
		}
	}
}

func TestContextWithSubject(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := logging.ContextWithLogger(context.Background(), logging.NewTestLogger(&buf))

	subject := &Subject{UserID: uuid.New(), Username: "admin"}
	ctx = ContextWithSubject(ctx, subject)

	if got := SubjectFromContext(ctx); got != subject {
		t.Errorf("SubjectFromContext() = %v, want %v", got, subject)
	}

	logging.Ctx(ctx).Info().Msg("publishing")
	if !strings.Contains(buf.String(), subject.UserID.String()) || !strings.Contains(buf.String(), `"username":"admin"`) {
		t.Errorf("identity not bound to logger: %s", buf.String())
	}

	if SubjectFromContext(context.Background()) != nil {
		t.Error("expected nil subject on empty context")
	}
}
