// Package template renders notification bodies from stored templates.
package template

import (
	"context"
	"errors"
	"fmt"
	"strings"
	texttemplate "text/template"

	"github.com/example/pulse/internal/models"
	"github.com/example/pulse/internal/ports/secondary"
)

// Renderer resolves templates from the template repository and executes them
// with Go text/template syntax. Payload keys are available as {{.key}}.
type Renderer struct {
	templates secondary.TemplateRepository
}

// NewRenderer creates a repository-backed template renderer.
func NewRenderer(templates secondary.TemplateRepository) *Renderer {
	return &Renderer{templates: templates}
}

// Render resolves the active template for the triple and executes it with the
// payload. A missing locale falls back to the default locale before giving up
// with models.TemplateNotFoundError.
func (r *Renderer) Render(ctx context.Context, eventKey, channel, locale string, payload map[string]string) (*secondary.Message, error) {
	if locale == "" {
		locale = models.DefaultLocale
	}

	rec, err := r.templates.GetActive(ctx, eventKey, channel, locale)
	if errors.Is(err, models.ErrNotFound) && locale != models.DefaultLocale {
		rec, err = r.templates.GetActive(ctx, eventKey, channel, models.DefaultLocale)
	}
	if errors.Is(err, models.ErrNotFound) {
		return nil, &models.TemplateNotFoundError{EventKey: eventKey, Channel: channel, Locale: locale}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve template: %w", err)
	}

	body, err := execute(rec.ID+":body", rec.Body, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to render template %s: %w", rec.ID, err)
	}

	subject := ""
	if rec.Subject != "" {
		subject, err = execute(rec.ID+":subject", rec.Subject, payload)
		if err != nil {
			return nil, fmt.Errorf("failed to render template %s: %w", rec.ID, err)
		}
	}

	return &secondary.Message{
		EventKey: eventKey,
		Subject:  subject,
		Body:     body,
		Metadata: payload,
	}, nil
}

func execute(name, text string, payload map[string]string) (string, error) {
	tmpl, err := texttemplate.New(name).Option("missingkey=zero").Parse(text)
	if err != nil {
		return "", err
	}

	data := payload
	if data == nil {
		data = map[string]string{}
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// Ensure Renderer implements the interface
var _ secondary.TemplateRenderer = (*Renderer)(nil)
