// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

// Package distlock provides cross-instance mutual exclusion for work that
// must not run twice at once, such as fanning out one newsletter issue.
//
// Redis is preferred when configured. Otherwise PostgreSQL session-scoped
// advisory locks are used, each held on a dedicated connection so the lock
// and its release run in the same database session.
package distlock

import (
	"context"
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lock is a single named lock. A Lock is not safe for concurrent use; create
// one per critical section.
type Lock interface {
	// Acquire tries to take the lock without blocking. It returns false
	// when another holder owns it.
	Acquire(ctx context.Context) (bool, error)
	// Release gives the lock up if this Lock still owns it.
	Release(ctx context.Context) error
}

// Locker creates locks by key.
type Locker interface {
	NewLock(key string) Lock
	Backend() string
}

// NewLocker picks Redis when client is non-nil and falls back to Postgres
// advisory locks on db.
func NewLocker(client *redis.Client, db *sql.DB, ttl time.Duration) Locker {
	if client != nil {
		return &RedisLocker{client: client, ttl: ttl}
	}
	return &PGLocker{db: db}
}

// RedisLocker creates RedisLocks that expire after ttl.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLock implements Locker.
func (l *RedisLocker) NewLock(key string) Lock {
	return NewRedisLock(l.client, key, l.ttl)
}

// Backend implements Locker.
func (l *RedisLocker) Backend() string { return "redis" }

// PGLocker creates PGAdvisoryLocks.
type PGLocker struct {
	db *sql.DB
}

// NewLock implements Locker.
func (l *PGLocker) NewLock(key string) Lock {
	return NewPGAdvisoryLock(l.db, key)
}

// Backend implements Locker.
func (l *PGLocker) Backend() string { return "postgres" }
