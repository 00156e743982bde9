// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/zero2prod/internal/metrics"
)

// StoredCredentials returns the user id and PHC password hash for username.
// found is false when the username does not exist.
func (db *DB) StoredCredentials(ctx context.Context, username string) (userID uuid.UUID, passwordHash string, found bool, err error) {
	conn, err := db.acquire(ctx)
	if err != nil {
		return uuid.Nil, "", false, err
	}
	defer closeQuietly(conn)

	start := time.Now()
	err = conn.QueryRowContext(ctx,
		`SELECT user_id, password_hash FROM users WHERE username = $1`,
		username,
	).Scan(&userID, &passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordDBQuery("SELECT", "users", time.Since(start), nil)
		return uuid.Nil, "", false, nil
	}
	metrics.RecordDBQuery("SELECT", "users", time.Since(start), err)
	if err != nil {
		return uuid.Nil, "", false, fmt.Errorf("failed to retrieve stored credentials: %w", err)
	}
	return userID, passwordHash, true, nil
}

// UpsertUser creates a publisher account or replaces the password hash of
// an existing one.
func (db *DB) UpsertUser(ctx context.Context, username, passwordHash string) (uuid.UUID, error) {
	conn, err := db.acquire(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	defer closeQuietly(conn)

	start := time.Now()
	var userID uuid.UUID
	err = conn.QueryRowContext(ctx,
		`INSERT INTO users (user_id, username, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash
		RETURNING user_id`,
		uuid.New(), username, passwordHash,
	).Scan(&userID)
	metrics.RecordDBQuery("UPSERT", "users", time.Since(start), err)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return userID, nil
}
