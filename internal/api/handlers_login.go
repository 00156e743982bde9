// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package api

import (
	"net/http"

	"github.com/tomtom215/zero2prod/internal/auth"
	"github.com/tomtom215/zero2prod/internal/logging"
)

// Home serves the landing page.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	page, err := render(h.pages.home, nil)
	if err != nil {
		logUnexpected(r.Context(), err, "Failed to render home page")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	respondHTML(r.Context(), w, http.StatusOK, page)
}

// LoginForm serves the login page. An error message from a failed login
// is shown only when its tag verifies.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	var data loginPageData
	if query.Has("error") && query.Has("tag") {
		msg, err := h.flash.Verify(query.Get("error"), query.Get("tag"))
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Failed to verify query parameters using the HMAC tag")
		} else {
			data.Error = msg
		}
	}

	page, err := render(h.pages.login, data)
	if err != nil {
		logUnexpected(ctx, err, "Failed to render login page")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	respondHTML(ctx, w, http.StatusOK, page)
}

// Login handles the login form post. Both outcomes are a 303: home on
// success, back to the form with a signed error otherwise.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	if err := r.ParseForm(); err != nil {
		h.redirectLoginError(w, r, msgAuthenticationFailed)
		return
	}
	creds := auth.Credentials{
		Username: r.PostForm.Get("username"),
		Password: r.PostForm.Get("password"),
	}

	userID, err := h.login.Validate(ctx, creds, "login")
	if err != nil {
		if auth.IsAuthError(err) {
			h.redirectLoginError(w, r, msgAuthenticationFailed)
			return
		}
		logUnexpected(ctx, err, "Login failed unexpectedly")
		h.redirectLoginError(w, r, msgLoginUnexpected)
		return
	}

	logging.Ctx(ctx).Info().
		Str("user_id", userID.String()).
		Str("username", logging.SanitizeUsername(creds.Username)).
		Msg("User logged in")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) redirectLoginError(w http.ResponseWriter, r *http.Request, message string) {
	http.Redirect(w, r, "/login?"+h.flash.RedirectQuery(message), http.StatusSeeOther)
}
