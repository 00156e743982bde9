// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package newsletter

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/tomtom215/zero2prod/internal/auth"
	"github.com/tomtom215/zero2prod/internal/database"
	"github.com/tomtom215/zero2prod/internal/distlock"
	"github.com/tomtom215/zero2prod/internal/models"
	"github.com/tomtom215/zero2prod/internal/newsletter/delivery"
)

var errStore = errors.New("store unavailable")

// fakeStore is an in-memory SubscriberStore, TokenStore and RecipientStore.
type fakeStore struct {
	mu          sync.Mutex
	subscribers map[uuid.UUID]models.NewSubscriber
	tokens      map[string]uuid.UUID
	confirmed   map[uuid.UUID]bool
	emails      []string

	insertErr  error
	tokenErr   error
	lookupErr  error
	confirmErr error
	listErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		subscribers: make(map[uuid.UUID]models.NewSubscriber),
		tokens:      make(map[string]uuid.UUID),
		confirmed:   make(map[uuid.UUID]bool),
	}
}

type fakeTx struct {
	store       *fakeStore
	subscribers map[uuid.UUID]models.NewSubscriber
	tokens      map[string]uuid.UUID
}

func (tx *fakeTx) InsertSubscriber(_ context.Context, sub models.NewSubscriber) (uuid.UUID, error) {
	if tx.store.insertErr != nil {
		return uuid.Nil, tx.store.insertErr
	}
	id := uuid.New()
	tx.subscribers[id] = sub
	return id, nil
}

func (tx *fakeTx) StoreToken(_ context.Context, id uuid.UUID, token string) error {
	if tx.store.tokenErr != nil {
		return tx.store.tokenErr
	}
	tx.tokens[token] = id
	return nil
}

func (s *fakeStore) InTx(_ context.Context, fn func(database.SubscriberWriter) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &fakeTx{store: s, subscribers: map[uuid.UUID]models.NewSubscriber{}, tokens: map[string]uuid.UUID{}}
	if err := fn(tx); err != nil {
		return err
	}
	for k, v := range tx.subscribers {
		s.subscribers[k] = v
	}
	for k, v := range tx.tokens {
		s.tokens[k] = v
	}
	return nil
}

func (s *fakeStore) SubscriberIDFromToken(_ context.Context, token string) (uuid.UUID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lookupErr != nil {
		return uuid.Nil, false, s.lookupErr
	}
	id, ok := s.tokens[token]
	return id, ok, nil
}

func (s *fakeStore) ConfirmSubscriber(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.confirmErr != nil {
		return s.confirmErr
	}
	s.confirmed[id] = true
	return nil
}

func (s *fakeStore) ConfirmedSubscriberEmails(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]string(nil), s.emails...), nil
}

func (s *fakeStore) onlyToken() (string, uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for tok, id := range s.tokens {
		return tok, id
	}
	return "", uuid.Nil
}

// fakeChannel records every send and fails for addresses in failFor.
type fakeChannel struct {
	mu      sync.Mutex
	sent    []delivery.SendParams
	failFor map[string]bool
	err     error
}

func (c *fakeChannel) Name() string { return "fake" }

func (c *fakeChannel) Send(_ context.Context, params *delivery.SendParams) (*delivery.DeliveryResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, *params)
	result := &delivery.DeliveryResult{Recipient: params.Recipient}
	if c.err != nil {
		return result, c.err
	}
	if c.failFor[params.Recipient] {
		return result, errors.New("provider rejected")
	}
	result.Success = true
	return result, nil
}

func (c *fakeChannel) Sent() []delivery.SendParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]delivery.SendParams(nil), c.sent...)
}

// fakeCredentials accepts exactly one username/password pair.
type fakeCredentials struct {
	userID   uuid.UUID
	username string
	password string
	err      error
}

func (f *fakeCredentials) Validate(_ context.Context, creds auth.Credentials, _ string) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	if creds.Username != f.username {
		return uuid.Nil, &auth.AuthError{Kind: auth.AuthErrorUnknownUsername, Err: auth.ErrUnknownUsername}
	}
	if creds.Password != f.password {
		return uuid.Nil, &auth.AuthError{Kind: auth.AuthErrorInvalidPassword, Err: auth.ErrInvalidPassword}
	}
	return f.userID, nil
}

// fakeLocker grants each key to one holder at a time.
type fakeLocker struct {
	mu   sync.Mutex
	held map[string]bool
	err  error
	keys []string
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]bool)}
}

func (l *fakeLocker) NewLock(key string) distlock.Lock {
	return &fakeLock{locker: l, key: key}
}

func (l *fakeLocker) Backend() string { return "fake" }

func (l *fakeLocker) isHeld(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held[key]
}

type fakeLock struct {
	locker *fakeLocker
	key    string
}

func (k *fakeLock) Acquire(context.Context) (bool, error) {
	k.locker.mu.Lock()
	defer k.locker.mu.Unlock()
	k.locker.keys = append(k.locker.keys, k.key)
	if k.locker.err != nil {
		return false, k.locker.err
	}
	if k.locker.held[k.key] {
		return false, nil
	}
	k.locker.held[k.key] = true
	return true, nil
}

func (k *fakeLock) Release(context.Context) error {
	k.locker.mu.Lock()
	defer k.locker.mu.Unlock()
	delete(k.locker.held, k.key)
	return nil
}
