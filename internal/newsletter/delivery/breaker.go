// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package delivery

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/zero2prod/internal/logging"
	"github.com/tomtom215/zero2prod/internal/metrics"
)

// BreakerSettings configures a BreakerChannel.
type BreakerSettings struct {
	// MaxFailures consecutive failures open the circuit.
	MaxFailures uint32
	// Timeout is how long the circuit stays open before a half-open probe.
	Timeout time.Duration
}

// BreakerChannel wraps a Channel in a circuit breaker. While open, Send
// fails immediately with ErrorCodeCircuitOpen instead of calling the
// provider. It never retries.
type BreakerChannel struct {
	inner  Channel
	cb     *gobreaker.CircuitBreaker[*DeliveryResult]
	logger zerolog.Logger
}

// NewBreakerChannel wraps inner.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewBreakerChannel(inner Channel, settings BreakerSettings, logger zerolog.Logger) *BreakerChannel {
	if settings.MaxFailures == 0 {
		settings.MaxFailures = 5
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 30 * time.Second
	}

	name := inner.Name()
	logger = logging.WithComponent(logger, "delivery").With().Str("channel", name).Logger()
	metrics.SetCircuitBreakerState(name, stateToFloat(gobreaker.StateClosed))

	b := &BreakerChannel{inner: inner, logger: logger}
	b.cb = gobreaker.NewCircuitBreaker[*DeliveryResult](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.MaxFailures
		},
		// A caller giving up is not a provider failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.logger.Warn().
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("Email circuit breaker state transition")
			metrics.SetCircuitBreakerState(name, stateToFloat(to))
		},
	})
	return b
}

// Name returns the wrapped channel's name.
func (b *BreakerChannel) Name() string {
	return b.inner.Name()
}

// State returns the current breaker state.
func (b *BreakerChannel) State() gobreaker.State {
	return b.cb.State()
}

// Send forwards to the wrapped channel unless the circuit is open.
func (b *BreakerChannel) Send(ctx context.Context, params *SendParams) (*DeliveryResult, error) {
	start := time.Now()
	result, err := b.cb.Execute(func() (*DeliveryResult, error) {
		return b.inner.Send(ctx, params)
	})
	metrics.RecordEmailSend(b.Name(), params.Kind, time.Since(start), err)

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fail(&DeliveryResult{Recipient: params.Recipient}, &DeliveryError{
			Channel: b.Name(),
			Code:    ErrorCodeCircuitOpen,
			Err:     err,
		})
	}
	return result, err
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
