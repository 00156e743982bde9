// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

// Package database is the PostgreSQL store for subscribers, confirmation
// tokens and publisher accounts.
//
// Every statement first acquires a pooled connection under the configured
// acquire timeout, then runs under the caller's context. database/sql has
// no pool-wait deadline of its own, so the split keeps a saturated pool
// from stalling requests indefinitely without also capping query time.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog"

	"github.com/tomtom215/zero2prod/internal/config"
)

// DB wraps the PostgreSQL connection pool.
type DB struct {
	conn           *sql.DB
	acquireTimeout time.Duration
	logger         zerolog.Logger
}

// New opens the pool described by cfg and verifies it with a ping.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(ctx context.Context, cfg *config.DatabaseConfig, logger zerolog.Logger) (*DB, error) {
	conn, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	db := NewWithConn(conn, cfg.AcquireTimeout, logger)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.AcquireTimeout)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.InitSchema {
		if err := db.InitSchema(ctx); err != nil {
			closeQuietly(conn)
			return nil, err
		}
	}

	db.logger.Info().
		Int("max_open_conns", cfg.MaxOpenConns).
		Dur("acquire_timeout", cfg.AcquireTimeout).
		Msg("Database connection established")
	return db, nil
}

// NewWithConn wraps an existing pool. Used by tests with sqlmock.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewWithConn(conn *sql.DB, acquireTimeout time.Duration, logger zerolog.Logger) *DB {
	if acquireTimeout <= 0 {
		acquireTimeout = 2 * time.Second
	}
	return &DB{
		conn:           conn,
		acquireTimeout: acquireTimeout,
		logger:         logger.With().Str("component", "database").Logger(),
	}
}

// Conn exposes the pool for components that need raw access (advisory locks).
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Close closes the pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// acquire takes a connection from the pool, waiting at most acquireTimeout.
func (db *DB) acquire(ctx context.Context) (*sql.Conn, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, db.acquireTimeout)
	defer cancel()

	conn, err := db.conn.Conn(acquireCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire database connection: %w", err)
	}
	return conn, nil
}

type closer interface {
	Close() error
}

func closeQuietly(c closer) {
	_ = c.Close()
}
