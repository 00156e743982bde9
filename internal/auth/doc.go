// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

/*
Package auth authenticates newsletter publishers.

Callers present HTTP Basic credentials (POST /newsletters) or a login form
(POST /login). Both paths end in CredentialValidator.Validate, which loads
the stored argon2id PHC hash for the username and verifies it on a
VerifierPool worker:

	creds, err := auth.ParseBasicAuth(r.Header.Get("Authorization"))
	userID, err := validator.Validate(ctx, creds, "publish_auth")

Unknown usernames are verified against DummyPasswordHash before failing,
so the response time does not reveal which usernames exist.

Rejections are returned as *AuthError; every other error is unexpected.
*/
package auth
