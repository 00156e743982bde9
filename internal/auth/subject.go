// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/tomtom215/zero2prod/internal/logging"
)

type contextKey string

const (
	subjectContextKey  contextKey = "subject"
	clientIPContextKey contextKey = "client_ip"
)

// Subject is an authenticated publisher.
type Subject struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}

// ContextWithSubject stores the subject on ctx and binds user_id and
// username to the context logger for the rest of the request.
func ContextWithSubject(ctx context.Context, subject *Subject) context.Context {
	ctx = context.WithValue(ctx, subjectContextKey, subject)
	return logging.ContextWithFields(ctx,
		"user_id", subject.UserID.String(),
		"username", logging.SanitizeUsername(subject.Username),
	)
}

// SubjectFromContext returns the authenticated subject, or nil.
func SubjectFromContext(ctx context.Context) *Subject {
	subject, _ := ctx.Value(subjectContextKey).(*Subject)
	return subject
}

// ContextWithClientIP records the caller's address for security events.
func ContextWithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey, ip)
}

// ClientIPFromContext returns the address stored by ContextWithClientIP.
func ClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPContextKey).(string)
	return ip
}
