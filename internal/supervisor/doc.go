// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

/*
Package supervisor runs long-lived components under a suture v4 tree.

The tree has a root supervisor named "zero2prod" with one child, the api
layer, which holds the HTTP server. A service that returns an error is
restarted with suture's backoff; canceling the context passed to Serve
stops the whole tree and waits up to ShutdownTimeout for each service.

Supervisor events (service panics, restarts, backoff) are logged through
sutureslog, which takes a *slog.Logger. Build one that writes into the
application's zerolog handle with logging.NewSlogLogger.

Example:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logger), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout))
	return tree.Serve(ctx)
*/
package supervisor
