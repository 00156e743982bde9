// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

/*
Package api provides the HTTP layer of the newsletter service.

Routes:

	GET  /health_check                 liveness, always 200
	POST /subscriptions                form name, email
	GET  /subscriptions/confirm        query subscription_token
	POST /newsletters                  JSON issue, Basic auth
	GET  /                             home page
	GET  /login                        login form
	POST /login                        form username, password
	GET  /metrics                      Prometheus exposition

Handlers translate the tagged errors returned by the newsletter roles into
status codes. Unexpected errors are logged with their full cause chain
through the request logger and answered without internal detail.

Usage Example:

	handler, err := api.NewHandler(api.HandlerDeps{
	    Registrar: registrar,
	    Confirmer: confirmer,
	    Publisher: publisher,
	    Login:     validator,
	    Flash:     api.NewFlashSigner(cfg.Security.HMACSecret),
	})
	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(cfg), logger)
	srv := &http.Server{Handler: router.SetupChi()}

See Also:

  - internal/newsletter: the subscribe, confirm and publish workflows
  - internal/middleware: request id, logging and metrics middleware
*/
package api
