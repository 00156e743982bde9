// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tomtom215/zero2prod/internal/newsletter"
)

// subscribeFields are checked in this order so the reported missing field
// is deterministic.
var subscribeFields = []string{"email", "name"}

// Subscribe handles POST /subscriptions.
//
// A body without both form fields is rejected with 422 before any
// validation runs. Field values that fail validation get a 400.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	if err := r.ParseForm(); err != nil {
		respondText(ctx, w, http.StatusUnprocessableEntity, "Failed to deserialize form body: "+err.Error())
		return
	}
	for _, field := range subscribeFields {
		if _, ok := r.PostForm[field]; !ok {
			respondText(ctx, w, http.StatusUnprocessableEntity,
				fmt.Sprintf("Failed to deserialize form body: %s `%s`", ErrMissingField, field))
			return
		}
	}

	err := h.registrar.Subscribe(ctx, r.PostForm.Get("name"), r.PostForm.Get("email"))
	if err == nil {
		w.WriteHeader(http.StatusCreated)
		return
	}

	var serr *newsletter.SubscribeError
	if errors.As(err, &serr) && serr.Kind == newsletter.SubscribeErrorValidation {
		respondText(ctx, w, http.StatusBadRequest, serr.Error())
		return
	}
	logUnexpected(ctx, err, "Failed to subscribe")
	w.WriteHeader(http.StatusInternalServerError)
}

// ConfirmSubscription handles GET /subscriptions/confirm.
func (h *Handler) ConfirmSubscription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()
	if !query.Has("subscription_token") {
		respondText(ctx, w, http.StatusBadRequest,
			fmt.Sprintf("Failed to deserialize query string: %s `subscription_token`", ErrMissingField))
		return
	}

	err := h.confirmer.Confirm(ctx, query.Get("subscription_token"))
	if err == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	var cerr *newsletter.ConfirmError
	if errors.As(err, &cerr) && cerr.Kind == newsletter.ConfirmErrorUnknownToken {
		respondJSONError(ctx, w, http.StatusUnauthorized, msgInvalidToken)
		return
	}
	logUnexpected(ctx, err, "Failed to confirm subscription")
	respondJSONError(ctx, w, http.StatusInternalServerError, msgUnexpectedError)
}
