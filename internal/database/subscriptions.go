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
	"github.com/tomtom215/zero2prod/internal/models"
)

// SubscriberWriter is the write surface available inside a registration
// transaction.
type SubscriberWriter interface {
	InsertSubscriber(ctx context.Context, sub models.NewSubscriber) (uuid.UUID, error)
	StoreToken(ctx context.Context, subscriberID uuid.UUID, token string) error
}

// Tx is a registration transaction bound to one pooled connection.
type Tx struct {
	tx  *sql.Tx
	now func() time.Time
}

var _ SubscriberWriter = (*Tx)(nil)

// InTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise, so the subscriber and token rows
// are persisted together or not at all.
func (db *DB) InTx(ctx context.Context, fn func(SubscriberWriter) error) error {
	conn, err := db.acquire(ctx)
	if err != nil {
		return err
	}
	defer closeQuietly(conn)

	sqlTx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	tx := &Tx{tx: sqlTx, now: time.Now}
	if err := fn(tx); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			db.logger.Warn().Err(rbErr).Msg("Failed to roll back transaction")
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// InsertSubscriber inserts a pending subscriber and returns its new id.
func (t *Tx) InsertSubscriber(ctx context.Context, sub models.NewSubscriber) (uuid.UUID, error) {
	start := time.Now()
	id := uuid.New()

	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO subscriptions (id, email, name, subscribed_at, status)
		VALUES ($1, $2, $3, $4, $5)`,
		id, sub.Email.String(), sub.Name.String(), t.now().UTC(), string(models.StatusPendingConfirmation),
	)
	metrics.RecordDBQuery("INSERT", "subscriptions", time.Since(start), err)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert subscriber: %w", err)
	}
	return id, nil
}

// StoreToken binds a confirmation token to a subscriber.
func (t *Tx) StoreToken(ctx context.Context, subscriberID uuid.UUID, token string) error {
	start := time.Now()

	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO subscription_tokens (subscription_token, subscriber_id)
		VALUES ($1, $2)`,
		token, subscriberID,
	)
	metrics.RecordDBQuery("INSERT", "subscription_tokens", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to store subscription token: %w", err)
	}
	return nil
}

// SubscriberIDFromToken resolves a confirmation token. found is false when
// no subscriber is bound to token.
func (db *DB) SubscriberIDFromToken(ctx context.Context, token string) (id uuid.UUID, found bool, err error) {
	conn, err := db.acquire(ctx)
	if err != nil {
		return uuid.Nil, false, err
	}
	defer closeQuietly(conn)

	start := time.Now()
	err = conn.QueryRowContext(ctx,
		`SELECT subscriber_id FROM subscription_tokens WHERE subscription_token = $1`,
		token,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordDBQuery("SELECT", "subscription_tokens", time.Since(start), nil)
		return uuid.Nil, false, nil
	}
	metrics.RecordDBQuery("SELECT", "subscription_tokens", time.Since(start), err)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to look up subscription token: %w", err)
	}
	return id, true, nil
}

// ConfirmSubscriber marks a subscriber confirmed. Confirming an already
// confirmed subscriber is a no-op.
func (db *DB) ConfirmSubscriber(ctx context.Context, subscriberID uuid.UUID) error {
	conn, err := db.acquire(ctx)
	if err != nil {
		return err
	}
	defer closeQuietly(conn)

	start := time.Now()
	_, err = conn.ExecContext(ctx,
		`UPDATE subscriptions SET status = $1 WHERE id = $2`,
		string(models.StatusConfirmed), subscriberID,
	)
	metrics.RecordDBQuery("UPDATE", "subscriptions", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to confirm subscriber: %w", err)
	}
	return nil
}

// ConfirmedSubscriberEmails returns the stored email of every confirmed
// subscriber. Values are returned as stored and may fail re-validation.
func (db *DB) ConfirmedSubscriberEmails(ctx context.Context) ([]string, error) {
	conn, err := db.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer closeQuietly(conn)

	start := time.Now()
	rows, err := conn.QueryContext(ctx,
		`SELECT email FROM subscriptions WHERE status = $1`,
		string(models.StatusConfirmed),
	)
	if err != nil {
		metrics.RecordDBQuery("SELECT", "subscriptions", time.Since(start), err)
		return nil, fmt.Errorf("failed to query confirmed subscribers: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			metrics.RecordDBQuery("SELECT", "subscriptions", time.Since(start), err)
			return nil, fmt.Errorf("failed to scan subscriber email: %w", err)
		}
		emails = append(emails, email)
	}
	err = rows.Err()
	metrics.RecordDBQuery("SELECT", "subscriptions", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to iterate confirmed subscribers: %w", err)
	}
	return emails, nil
}

// GetSubscriberByEmail loads one subscriber row. found is false when no row
// matches.
func (db *DB) GetSubscriberByEmail(ctx context.Context, email string) (sub models.Subscriber, found bool, err error) {
	conn, err := db.acquire(ctx)
	if err != nil {
		return models.Subscriber{}, false, err
	}
	defer closeQuietly(conn)

	start := time.Now()
	var status string
	err = conn.QueryRowContext(ctx,
		`SELECT id, email, name, status, subscribed_at FROM subscriptions WHERE email = $1`,
		email,
	).Scan(&sub.ID, &sub.Email, &sub.Name, &status, &sub.SubscribedAt)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordDBQuery("SELECT", "subscriptions", time.Since(start), nil)
		return models.Subscriber{}, false, nil
	}
	metrics.RecordDBQuery("SELECT", "subscriptions", time.Since(start), err)
	if err != nil {
		return models.Subscriber{}, false, fmt.Errorf("failed to load subscriber: %w", err)
	}
	sub.Status = models.SubscriptionStatus(status)
	return sub, true, nil
}
