package notify

import (
	"fmt"
	"html/template"
	"strings"
)

// TemplateRenderer turns a named template plus variables into an email body.
// Rendered bodies are always treated as HTML by the facade.
type TemplateRenderer interface {
	Render(name string, vars map[string]any) (string, error)
}

// HTMLTemplateRenderer renders html/template sets by template name.
type HTMLTemplateRenderer struct {
	templates *template.Template
}

// NewHTMLTemplateRenderer wraps a parsed template set. Typically built with
// template.ParseFS or template.ParseGlob.
func NewHTMLTemplateRenderer(templates *template.Template) *HTMLTemplateRenderer {
	return &HTMLTemplateRenderer{templates: templates}
}

// Render implements TemplateRenderer.
func (r *HTMLTemplateRenderer) Render(name string, vars map[string]any) (string, error) {
	if r.templates == nil {
		return "", fmt.Errorf("render template %q: no templates loaded", name)
	}
	var buf strings.Builder
	if err := r.templates.ExecuteTemplate(&buf, name, vars); err != nil {
		return "", fmt.Errorf("render template %q: %w", name, err)
	}
	return buf.String(), nil
}
