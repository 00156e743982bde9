// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

// Package metrics holds the Prometheus collectors for the service.
//
// Collectors are registered on the default registry through promauto and
// exposed by the /metrics route. Callers use the Record* helpers rather than
// touching the vectors directly.
package metrics

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "postgres_query_duration_seconds",
			Help:    "Duration of PostgreSQL queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postgres_query_errors_total",
			Help: "Total number of PostgreSQL query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Subscription Metrics
	SubscriptionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsletter_subscriptions_created_total",
			Help: "Total number of subscribers registered as pending",
		},
	)

	SubscriptionsConfirmed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsletter_subscriptions_confirmed_total",
			Help: "Total number of successful confirmation requests",
		},
	)

	// Delivery Metrics
	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsletter_emails_sent_total",
			Help: "Total number of emails accepted by the provider",
		},
		[]string{"channel", "kind"},
	)

	EmailsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsletter_emails_failed_total",
			Help: "Total number of emails the provider rejected or that could not be sent",
		},
		[]string{"channel", "kind"},
	)

	EmailSendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsletter_email_send_duration_seconds",
			Help:    "Duration of a single provider call in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"channel"},
	)

	RecipientsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsletter_recipients_skipped_total",
			Help: "Confirmed subscribers skipped because their stored email is invalid",
		},
	)

	PublishesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsletter_publishes_total",
			Help: "Total number of publish requests by outcome",
		},
		[]string{"outcome"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "email_circuit_breaker_state",
			Help: "Email channel circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"channel"},
	)

	// Authentication Metrics
	PasswordVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_password_verifications_total",
			Help: "Total number of password hash verifications by result",
		},
		[]string{"result"},
	)

	PasswordVerifyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "auth_password_verify_duration_seconds",
			Help:    "Time spent verifying password hashes, including queueing",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)
)

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table, dbErrorType(err)).Inc()
	}
}

// dbErrorType keeps the error label bounded.
func dbErrorType(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, sql.ErrConnDone), errors.Is(err, sql.ErrTxDone):
		return "connection"
	default:
		return "query"
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit counts a rejected request.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordEmailSend records one provider call. kind is "confirmation" or "issue".
func RecordEmailSend(channel, kind string, duration time.Duration, err error) {
	EmailSendDuration.WithLabelValues(channel).Observe(duration.Seconds())
	if err != nil {
		EmailsFailed.WithLabelValues(channel, kind).Inc()
		return
	}
	EmailsSent.WithLabelValues(channel, kind).Inc()
}

// RecordPublish records the outcome of a publish request.
func RecordPublish(outcome string) {
	PublishesTotal.WithLabelValues(outcome).Inc()
}

// RecordPasswordVerification records one hash verification.
func RecordPasswordVerification(ok bool, duration time.Duration) {
	result := "mismatch"
	if ok {
		result = "match"
	}
	PasswordVerifications.WithLabelValues(result).Inc()
	PasswordVerifyDuration.Observe(duration.Seconds())
}

// SetCircuitBreakerState publishes the breaker state for channel.
func SetCircuitBreakerState(channel string, state float64) {
	CircuitBreakerState.WithLabelValues(channel).Set(state)
}
