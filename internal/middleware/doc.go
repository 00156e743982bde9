// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

/*
Package middleware provides the HTTP middleware shared by every route.

Key Components:

  - RequestID: assigns or propagates X-Request-ID and installs a
    request-scoped zerolog logger in the context
  - ClientIP: records the caller address for security logging
  - AccessLog: one structured line per completed request
  - PrometheusMetrics: request totals, durations and in-flight gauge

Middleware are written as func(http.HandlerFunc) http.HandlerFunc. The api
package adapts them to chi's r.Use.

Middleware Stack:

	r.Use(chimiddleware.RealIP)
	r.Use(adapt(middleware.RequestID(logger)))
	r.Use(adapt(middleware.ClientIP))
	r.Use(adapt(middleware.AccessLog))
	r.Use(chimiddleware.Recoverer)
	r.Use(adapt(middleware.PrometheusMetrics))

RequestID must run before anything that logs, since logging.Ctx returns a
disabled logger when no logger is stored in the context.

See Also:

  - internal/logging: context logger helpers
  - internal/metrics: Prometheus collector definitions
*/
package middleware
