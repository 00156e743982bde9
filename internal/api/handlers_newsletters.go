// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/zero2prod/internal/auth"
	"github.com/tomtom215/zero2prod/internal/logging"
	"github.com/tomtom215/zero2prod/internal/models"
	"github.com/tomtom215/zero2prod/internal/newsletter"
	"github.com/tomtom215/zero2prod/internal/validation"
)

// PublishNewsletter handles POST /newsletters.
//
// The body is decoded before credentials are checked, so a malformed body
// is a 422 regardless of authentication.
func (h *Handler) PublishNewsletter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	var body models.PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondText(ctx, w, http.StatusUnprocessableEntity, "Failed to deserialize the JSON body: "+err.Error())
		return
	}
	if verr := validation.ValidateStruct(&body); verr != nil {
		respondText(ctx, w, http.StatusUnprocessableEntity, "Failed to deserialize the JSON body: "+verr.Error())
		return
	}
	issue := body.Issue()

	creds, err := auth.ParseBasicAuth(r.Header.Get("Authorization"))
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Rejected publish request without usable credentials")
		unauthorized(w)
		return
	}

	// The fan-out is sequential with a per-send timeout, so its total can
	// exceed Server.WriteTimeout. Lift the deadline for this response only.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to clear write deadline for publish")
	}

	err = h.publisher.Publish(ctx, creds, issue)
	if err == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	var perr *newsletter.PublishError
	if errors.As(err, &perr) {
		switch perr.Kind {
		case newsletter.PublishErrorAuth:
			unauthorized(w)
			return
		case newsletter.PublishErrorInProgress:
			respondText(ctx, w, http.StatusConflict, perr.Error())
			return
		}
	}
	logUnexpected(ctx, err, "Failed to publish newsletter issue")
	w.WriteHeader(http.StatusInternalServerError)
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", auth.WWWAuthenticateHeader)
	w.WriteHeader(http.StatusUnauthorized)
}
