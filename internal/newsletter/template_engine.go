// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package newsletter

import (
	"fmt"
	"strings"
	"sync"

	"github.com/osteele/liquid"
)

// TemplateEngine renders Liquid templates for outgoing email. Parsed
// templates are cached by name.
type TemplateEngine struct {
	engine *liquid.Engine
	cache  sync.Map // map[string]*liquid.Template
}

// NewTemplateEngine creates a template engine.
func NewTemplateEngine() *TemplateEngine {
	return &TemplateEngine{engine: liquid.NewEngine()}
}

// Render renders src with bindings. name is the cache key; an empty name
// disables caching.
func (te *TemplateEngine) Render(name, src string, bindings map[string]any) (string, error) {
	tpl, err := te.parse(name, src)
	if err != nil {
		return "", err
	}

	out, renderErr := tpl.RenderString(bindings)
	if renderErr != nil {
		return "", fmt.Errorf("failed to execute template %q: %w", name, renderErr)
	}
	return out, nil
}

// RenderSubject renders a subject line and trims surrounding whitespace.
func (te *TemplateEngine) RenderSubject(name, src string, bindings map[string]any) (string, error) {
	out, err := te.Render(name, src, bindings)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ValidateTemplate checks if a template is syntactically valid.
func (te *TemplateEngine) ValidateTemplate(src string) error {
	if _, err := te.engine.ParseString(src); err != nil {
		return fmt.Errorf("invalid template syntax: %w", err)
	}
	return nil
}

func (te *TemplateEngine) parse(name, src string) (*liquid.Template, error) {
	if name != "" {
		if cached, ok := te.cache.Load(name); ok {
			return cached.(*liquid.Template), nil
		}
	}

	tpl, err := te.engine.ParseString(src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %q: %w", name, err)
	}

	if name != "" {
		te.cache.Store(name, tpl)
	}
	return tpl, nil
}
