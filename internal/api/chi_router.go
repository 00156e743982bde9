// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tomtom215/zero2prod/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	logger        zerolog.Logger
}

// NewRouter creates a Router. logger becomes the base of every request
// logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewRouter(handler *Handler, mw *ChiMiddleware, logger zerolog.Logger) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw, logger: logger}
}

// chiMiddleware adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Applied to ALL routes in order
	r.Use(chimiddleware.RealIP)
	r.Use(chiMiddleware(middleware.RequestID(router.logger)))
	r.Use(chiMiddleware(middleware.ClientIP))
	r.Use(chiMiddleware(middleware.AccessLog))
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(SecurityHeaders())
	r.Use(chiMiddleware(middleware.PrometheusMetrics))

	r.Get("/health_check", router.handler.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/subscriptions", router.handler.Subscribe)
	r.Get("/subscriptions/confirm", router.handler.ConfirmSubscription)
	r.Post("/newsletters", router.handler.PublishNewsletter)

	r.Get("/", router.handler.Home)
	r.Get("/login", router.handler.LoginForm)
	r.With(router.chiMiddleware.RateLimitLogin()).Post("/login", router.handler.Login)

	return r
}
