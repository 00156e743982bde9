// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
)

// FlashSigner authenticates error messages carried in the login redirect
// so the login page never displays attacker-chosen text.
//
// The tag is the hex HMAC-SHA256 of the literal query fragment
// "error=<urlencoded message>".
type FlashSigner struct {
	secret []byte
}

// NewFlashSigner creates a signer keyed with secret.
func NewFlashSigner(secret string) *FlashSigner {
	return &FlashSigner{secret: []byte(secret)}
}

func (f *FlashSigner) mac(message string) []byte {
	m := hmac.New(sha256.New, f.secret)
	m.Write([]byte("error=" + url.QueryEscape(message)))
	return m.Sum(nil)
}

// RedirectQuery returns "error=<urlenc>&tag=<hex>" for message.
func (f *FlashSigner) RedirectQuery(message string) string {
	return fmt.Sprintf("error=%s&tag=%s", url.QueryEscape(message), hex.EncodeToString(f.mac(message)))
}

// Verify returns message if tag is its valid HMAC.
func (f *FlashSigner) Verify(message, tag string) (string, error) {
	raw, err := hex.DecodeString(tag)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidFlashTag, err)
	}
	if !hmac.Equal(raw, f.mac(message)) {
		return "", ErrInvalidFlashTag
	}
	return message, nil
}
