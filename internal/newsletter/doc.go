// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

/*
Package newsletter implements the three subscriber-facing workflows.

	Registrar  - validate, store a pending subscriber and token, send the confirmation email
	Confirmer  - redeem a confirmation token
	Publisher  - authenticate a publisher and fan an issue out to confirmed subscribers

Outgoing email bodies are Liquid templates rendered by TemplateEngine.
Each workflow returns a tagged error (SubscribeError, ConfirmError,
PublishError) whose Kind the HTTP layer maps to a status code.
*/
package newsletter
