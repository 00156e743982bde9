// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package middleware

import (
	"context"
	"net"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tomtom215/zero2prod/internal/auth"
	"github.com/tomtom215/zero2prod/internal/logging"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLength caps ids accepted from upstream proxies.
const maxRequestIDLength = 128

// RequestID assigns each request an id and a request-scoped logger.
//
// An incoming X-Request-ID from an upstream proxy is reused when present
// and reasonably short; otherwise a UUID v4 is generated. The id is echoed
// in the response header and attached to every line logged through
// logging.Ctx for the rest of the request.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func RequestID(logger zerolog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" || len(requestID) > maxRequestIDLength {
				requestID = logging.GenerateRequestID()
			}
			w.Header().Set(RequestIDHeader, requestID)

			ctx := logging.ContextWithLogger(r.Context(), logger)
			ctx = logging.ContextWithRequestID(ctx, requestID)

			next(w, r.WithContext(ctx))
		}
	}
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	return logging.RequestIDFromContext(ctx)
}

// ClientIP stores the caller address on the context for security events.
// Run it after chi's RealIP so proxy headers are already resolved.
func ClientIP(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		next(w, r.WithContext(auth.ContextWithClientIP(r.Context(), ip)))
	}
}
