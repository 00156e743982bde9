// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"unicode/utf8"
)

// WWWAuthenticateHeader is sent with every 401 from a Basic-protected route.
const WWWAuthenticateHeader = `Basic realm="publish"`

// Header parsing errors. Each is wrapped in an *AuthError of kind
// AuthErrorMalformedHeader by ParseBasicAuth.
var (
	ErrMissingHeader   = errors.New("the 'Authorization' header was missing")
	ErrNotBasicScheme  = errors.New("the authorization scheme was not 'Basic'")
	ErrInvalidBase64   = errors.New("failed to base64-decode 'Basic' credentials")
	ErrInvalidUTF8     = errors.New("the decoded credential string is not valid UTF-8")
	ErrMissingUsername = errors.New("a username must be provided in 'Basic' auth")
	ErrMissingPassword = errors.New("a password must be provided in 'Basic' auth")
)

// Credentials are a username and password pair supplied by a caller.
type Credentials struct {
	Username string
	Password string
}

// ParseBasicAuth extracts credentials from an Authorization header value.
func ParseBasicAuth(header string) (Credentials, error) {
	if header == "" {
		return Credentials{}, malformed(ErrMissingHeader)
	}

	encoded, ok := strings.CutPrefix(header, "Basic ")
	if !ok {
		return Credentials{}, malformed(ErrNotBasicScheme)
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Credentials{}, malformed(ErrInvalidBase64)
	}
	if !utf8.Valid(decoded) {
		return Credentials{}, malformed(ErrInvalidUTF8)
	}

	// Split on the first colon only; passwords may contain colons.
	username, password, found := strings.Cut(string(decoded), ":")
	if !found {
		if username == "" {
			return Credentials{}, malformed(ErrMissingUsername)
		}
		return Credentials{}, malformed(ErrMissingPassword)
	}

	return Credentials{Username: username, Password: password}, nil
}

func malformed(err error) *AuthError {
	return &AuthError{Kind: AuthErrorMalformedHeader, Err: err}
}
