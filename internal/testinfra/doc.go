// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

// Package testinfra starts throwaway PostgreSQL and Redis containers for
// integration tests.
//
// All files carry the integration build tag:
//
//	go test -tags integration ./...
//
// Tests that use this package call SkipIfNoDocker first so they are skipped
// on machines without a Docker daemon.
//
//	func TestSubscriptionFlow(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    pg, err := testinfra.NewPostgresContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, pg.Container)
//	    // connect with pg.URL
//	}
//
// First runs download the images. Later runs use the local cache.
package testinfra
