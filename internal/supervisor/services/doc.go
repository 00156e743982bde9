// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

/*
Package services provides suture.Service wrappers for long-running
components.

HTTPServerService translates http.Server's blocking ListenAndServe into
suture's context-aware Serve: it starts the server, waits for either a
server error or context cancellation, and on cancellation drains active
connections with Shutdown under a timeout. http.ErrServerClosed is not
treated as a failure.
*/
package services
