// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/zero2prod/internal/logging"
	"github.com/tomtom215/zero2prod/internal/models"
)

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with proper headers
func respondJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondJSONError sends {"error": message}.
func respondJSONError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	respondJSON(ctx, w, status, models.ErrorResponse{Error: message})
}

// respondText sends a plain-text body. Used for framework-level rejections
// such as malformed forms.
func respondText(ctx context.Context, w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(message)); err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to write response")
	}
}

// respondHTML sends a rendered page.
func respondHTML(ctx context.Context, w http.ResponseWriter, status int, page []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(page); err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to write HTML response")
	}
}

// logUnexpected logs err with its wrapped cause chain. The client only
// ever sees a generic status.
func logUnexpected(ctx context.Context, err error, msg string) {
	logging.Ctx(ctx).Error().
		Str("error", sanitizeLogValue(err.Error())).
		Msg(msg)
}
