// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package models

import (
	"crypto/sha256"
	"encoding/hex"
)

// NewsletterIssue is one issue to publish. It is never persisted.
type NewsletterIssue struct {
	Title   string       `json:"title"`
	Content IssueContent `json:"content"`
}

// IssueContent carries both renditions of an issue.
type IssueContent struct {
	HTML string `json:"html"`
	Text string `json:"text"`
}

// PublishRequest is the decoded JSON body of a publish request. Every field
// must be present, but empty strings are allowed, so the fields are
// pointers and "required" only rejects absent keys and nulls.
type PublishRequest struct {
	Title   *string                `json:"title" validate:"required"`
	Content *PublishRequestContent `json:"content" validate:"required"`
}

// PublishRequestContent is the content object of a PublishRequest.
type PublishRequestContent struct {
	HTML *string `json:"html" validate:"required"`
	Text *string `json:"text" validate:"required"`
}

// Issue converts a validated request. It must only be called after
// validation has succeeded.
func (r *PublishRequest) Issue() NewsletterIssue {
	return NewsletterIssue{
		Title: *r.Title,
		Content: IssueContent{
			HTML: *r.Content.HTML,
			Text: *r.Content.Text,
		},
	}
}

// Fingerprint identifies an issue by its content. Two publish requests with
// the same title and bodies share a fingerprint.
func (i NewsletterIssue) Fingerprint() string {
	h := sha256.New()
	for _, part := range []string{i.Title, i.Content.HTML, i.Content.Text} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ErrorResponse is the JSON error body returned by the confirmation endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}
