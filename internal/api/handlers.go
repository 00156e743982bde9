// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package api

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/tomtom215/zero2prod/internal/auth"
	"github.com/tomtom215/zero2prod/internal/models"
)

// maxFormBytes bounds form and JSON request bodies.
const maxFormBytes = 1 << 20

// Registrar accepts new subscriptions.
type Registrar interface {
	Subscribe(ctx context.Context, name, email string) error
}

// Confirmer redeems confirmation tokens.
type Confirmer interface {
	Confirm(ctx context.Context, token string) error
}

// Publisher fans an issue out to confirmed subscribers.
type Publisher interface {
	Publish(ctx context.Context, creds auth.Credentials, issue models.NewsletterIssue) error
}

// LoginValidator checks login form credentials.
type LoginValidator interface {
	Validate(ctx context.Context, creds auth.Credentials, event string) (uuid.UUID, error)
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers_health.go: liveness
//   - handlers_subscriptions.go: subscribe and confirm
//   - handlers_newsletters.go: publish
//   - handlers_login.go: home and login pages
type Handler struct {
	registrar Registrar
	confirmer Confirmer
	publisher Publisher
	login     LoginValidator
	flash     *FlashSigner
	pages     *pages
}

// HandlerDeps are the collaborators of a Handler. All fields are required.
type HandlerDeps struct {
	Registrar Registrar
	Confirmer Confirmer
	Publisher Publisher
	Login     LoginValidator
	Flash     *FlashSigner
}

// NewHandler creates a Handler and parses the embedded page templates.
func NewHandler(deps HandlerDeps) (*Handler, error) {
	if deps.Registrar == nil || deps.Confirmer == nil || deps.Publisher == nil || deps.Login == nil || deps.Flash == nil {
		return nil, errors.New("api: all handler dependencies are required")
	}
	p, err := parsePages()
	if err != nil {
		return nil, err
	}
	return &Handler{
		registrar: deps.Registrar,
		confirmer: deps.Confirmer,
		publisher: deps.Publisher,
		login:     deps.Login,
		flash:     deps.Flash,
		pages:     p,
	}, nil
}
