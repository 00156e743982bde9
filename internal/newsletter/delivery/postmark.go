// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package delivery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// PostmarkTokenHeader carries the server token on every Postmark request.
const PostmarkTokenHeader = "X-Postmark-Server-Token"

// PostmarkChannel sends email through the Postmark HTTP API, or any server
// speaking the same /email contract.
type PostmarkChannel struct {
	client  *http.Client
	baseURL string
	sender  string
	token   string
}

// NewPostmarkChannel creates a Postmark channel. timeout bounds each request.
func NewPostmarkChannel(baseURL, sender, token string, timeout time.Duration) *PostmarkChannel {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PostmarkChannel{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		sender:  sender,
		token:   token,
	}
}

// Name returns the channel identifier.
func (c *PostmarkChannel) Name() string {
	return "postmark"
}

// PostmarkRequest is the body of POST /email.
type PostmarkRequest struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HTMLBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
}

type postmarkResponse struct {
	MessageID string `json:"MessageID"`
	ErrorCode int    `json:"ErrorCode"`
	Message   string `json:"Message"`
}

// Send delivers one email via POST {base_url}/email.
func (c *PostmarkChannel) Send(ctx context.Context, params *SendParams) (*DeliveryResult, error) {
	result := &DeliveryResult{Recipient: params.Recipient}

	if params.Recipient == "" {
		return fail(result, &DeliveryError{Channel: c.Name(), Code: ErrorCodeInvalidConfig, Err: ErrInvalidRecipient})
	}

	payload, err := json.Marshal(PostmarkRequest{
		From:     c.sender,
		To:       params.Recipient,
		Subject:  params.Subject,
		HTMLBody: params.BodyHTML,
		TextBody: params.BodyText,
	})
	if err != nil {
		return fail(result, &DeliveryError{Channel: c.Name(), Code: ErrorCodeUnknown, Err: fmt.Errorf("failed to marshal payload: %w", err)})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/email", bytes.NewReader(payload))
	if err != nil {
		return fail(result, &DeliveryError{Channel: c.Name(), Code: ErrorCodeInvalidConfig, Err: fmt.Errorf("failed to create request: %w", err)})
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(PostmarkTokenHeader, c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fail(result, &DeliveryError{Channel: c.Name(), Code: classifyHTTPError(err), Err: fmt.Errorf("failed to send request: %w", err)})
	}
	defer resp.Body.Close()

	result.ResponseCode = resp.StatusCode

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		body = []byte("(failed to read response)")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fail(result, &DeliveryError{
			Channel:    c.Name(),
			Code:       classifyHTTPStatusCode(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("postmark returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		})
	}

	var parsed postmarkResponse
	if err := json.Unmarshal(body, &parsed); err == nil {
		result.ExternalID = parsed.MessageID
	}

	now := time.Now()
	result.Success = true
	result.DeliveredAt = &now
	return result, nil
}
