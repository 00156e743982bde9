// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package database

import (
	"context"
	_ "embed"
	"fmt"
	"time"
)

// Schema holds the idempotent DDL for all tables.
//
//go:embed schema.sql
var Schema string

// InitSchema creates missing tables. Existing tables are left untouched.
func (db *DB) InitSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, Schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	db.logger.Debug().Dur("duration", time.Since(start)).Msg("Schema initialized")
	return nil
}
