// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package newsletter

import (
	"net/url"
	"strings"
)

// EmailTemplate is a named set of Liquid templates for one email.
type EmailTemplate struct {
	Name     string
	Subject  string
	BodyHTML string
	BodyText string
}

// RenderedEmail is an EmailTemplate after rendering.
type RenderedEmail struct {
	Subject  string
	BodyHTML string
	BodyText string
}

// ConfirmationTemplate is sent to every new subscriber. Both bodies carry
// the same confirmation_link.
var ConfirmationTemplate = EmailTemplate{
	Name:     "confirmation",
	Subject:  "Welcome!",
	BodyHTML: `Welcome to our newsletter!<br />Click <a href="{{ confirmation_link | escape }}">here</a> to confirm your subscription.`,
	BodyText: "Welcome to our newsletter!\nVisit {{ confirmation_link }} to confirm your subscription.",
}

// RenderEmail renders all three parts of tmpl with bindings.
func (te *TemplateEngine) RenderEmail(tmpl EmailTemplate, bindings map[string]any) (*RenderedEmail, error) {
	subject, err := te.RenderSubject(tmpl.Name+".subject", tmpl.Subject, bindings)
	if err != nil {
		return nil, err
	}
	html, err := te.Render(tmpl.Name+".html", tmpl.BodyHTML, bindings)
	if err != nil {
		return nil, err
	}
	text, err := te.Render(tmpl.Name+".text", tmpl.BodyText, bindings)
	if err != nil {
		return nil, err
	}
	return &RenderedEmail{Subject: subject, BodyHTML: html, BodyText: text}, nil
}

// ConfirmationLink builds {baseURL}/subscriptions/confirm?subscription_token={token}.
func ConfirmationLink(baseURL, token string) string {
	q := url.Values{}
	q.Set("subscription_token", token)
	return strings.TrimRight(baseURL, "/") + "/subscriptions/confirm?" + q.Encode()
}
